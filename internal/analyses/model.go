package analyses

import "time"

const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

const (
	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

const (
	CauseNetworkError        = "network_error"
	CauseAuthenticationError = "authentication_error"
	CausePermissionDenied    = "permission_denied"
	CauseTimeout             = "timeout"
	CauseNotFound            = "not_found"
	CauseRateLimit           = "rate_limit"
	CauseInvalidInput        = "invalid_input"
	CauseServerError         = "server_error"
	CauseDependencyDown      = "dependency_down"
	CauseUnknown             = "unknown"
)

// MaxSuggestedFixChars caps suggested_fix, counted in Unicode code points.
const MaxSuggestedFixChars = 500

// MaxFollowUpQuestions caps follow_up_questions.
const MaxFollowUpQuestions = 3

var probableCauses = map[string]struct{}{
	CauseNetworkError:        {},
	CauseAuthenticationError: {},
	CausePermissionDenied:    {},
	CauseTimeout:             {},
	CauseNotFound:            {},
	CauseRateLimit:           {},
	CauseInvalidInput:        {},
	CauseServerError:         {},
	CauseDependencyDown:      {},
	CauseUnknown:             {},
}

var severities = map[string]struct{}{
	SeverityLow:    {},
	SeverityMedium: {},
	SeverityHigh:   {},
}

// IsProbableCause reports whether v is a known probable cause.
func IsProbableCause(v string) bool {
	_, ok := probableCauses[v]
	return ok
}

// IsSeverity reports whether v is a known severity.
func IsSeverity(v string) bool {
	_, ok := severities[v]
	return ok
}

// Environment describes where the error was observed.
type Environment struct {
	OS      *string `json:"os"`
	Browser *string `json:"browser"`
	App     *string `json:"app"`
	Version *string `json:"version"`
}

func (e *Environment) clone() *Environment {
	if e == nil {
		return nil
	}
	return &Environment{
		OS:      cloneString(e.OS),
		Browser: cloneString(e.Browser),
		App:     cloneString(e.App),
		Version: cloneString(e.Version),
	}
}

// AnalysisResult is a persisted screenshot diagnosis.
type AnalysisResult struct {
	ID                string       `json:"id"`
	ErrorTitle        *string      `json:"errorTitle"`
	ErrorCode         *string      `json:"errorCode"`
	Product           *string      `json:"product"`
	Environment       *Environment `json:"environment"`
	ProbableCause     *string      `json:"probableCause"`
	SuggestedFix      *string      `json:"suggestedFix"`
	Severity          *string      `json:"severity"`
	Confidence        *float64     `json:"confidence"`
	FollowUpQuestions []string     `json:"followUpQuestions"`
	Status            string       `json:"status"`
	Reason            *string      `json:"reason"`
	CreatedAt         time.Time    `json:"createdAt"`
}

// InsertAnalysisResult holds the caller-supplied fields of a new record.
// ID is optional; repos generate one when it is empty.
type InsertAnalysisResult struct {
	ID                string
	ErrorTitle        *string
	ErrorCode         *string
	Product           *string
	Environment       *Environment
	ProbableCause     *string
	SuggestedFix      *string
	Severity          *string
	Confidence        *float64
	FollowUpQuestions []string
	Status            string
	Reason            *string
}

func (r AnalysisResult) clone() AnalysisResult {
	out := r
	out.ErrorTitle = cloneString(r.ErrorTitle)
	out.ErrorCode = cloneString(r.ErrorCode)
	out.Product = cloneString(r.Product)
	out.Environment = r.Environment.clone()
	out.ProbableCause = cloneString(r.ProbableCause)
	out.SuggestedFix = cloneString(r.SuggestedFix)
	out.Severity = cloneString(r.Severity)
	out.Reason = cloneString(r.Reason)
	if r.Confidence != nil {
		v := *r.Confidence
		out.Confidence = &v
	}
	out.FollowUpQuestions = cloneStrings(r.FollowUpQuestions)
	return out
}

// newRecord builds a stored record from insert fields without aliasing them.
func newRecord(id string, in InsertAnalysisResult, createdAt time.Time) AnalysisResult {
	rec := AnalysisResult{
		ID:                id,
		ErrorTitle:        in.ErrorTitle,
		ErrorCode:         in.ErrorCode,
		Product:           in.Product,
		Environment:       in.Environment,
		ProbableCause:     in.ProbableCause,
		SuggestedFix:      in.SuggestedFix,
		Severity:          in.Severity,
		Confidence:        in.Confidence,
		FollowUpQuestions: in.FollowUpQuestions,
		Status:            in.Status,
		Reason:            in.Reason,
		CreatedAt:         createdAt,
	}
	return rec.clone()
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func strPtr(s string) *string {
	return &s
}
