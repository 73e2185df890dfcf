package analyses

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"
)

// AnalysisResponse is the body returned by the analyze endpoint.
type AnalysisResponse struct {
	AnalysisID        string       `json:"analysis_id"`
	ErrorTitle        *string      `json:"error_title"`
	ErrorCode         *string      `json:"error_code"`
	Product           *string      `json:"product"`
	Environment       *Environment `json:"environment"`
	ProbableCause     string       `json:"probable_cause"`
	SuggestedFix      *string      `json:"suggested_fix"`
	Severity          string       `json:"severity"`
	Confidence        float64      `json:"confidence"`
	FollowUpQuestions []string     `json:"follow_up_questions"`
	Status            string       `json:"status"`
	Reason            string       `json:"reason,omitempty"`
}

// FieldError names one violated field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists every field that failed validation.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Validate checks every invariant of a response and reports all violations.
func (r AnalysisResponse) Validate() error {
	var fields []FieldError
	add := func(field, format string, args ...any) {
		fields = append(fields, FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if strings.TrimSpace(r.AnalysisID) == "" {
		add("analysis_id", "is required")
	}
	switch r.Status {
	case StatusOK:
		if r.ErrorTitle == nil {
			add("error_title", "is required when status is ok")
		}
		if r.SuggestedFix == nil {
			add("suggested_fix", "is required when status is ok")
		}
	case StatusFailed:
		if strings.TrimSpace(r.Reason) == "" {
			add("reason", "is required when status is failed")
		}
	case "":
		add("status", "is required")
	default:
		add("status", "must be one of ok, failed; got %q", r.Status)
	}
	if !IsProbableCause(r.ProbableCause) {
		add("probable_cause", "unknown value %q", r.ProbableCause)
	}
	if !IsSeverity(r.Severity) {
		add("severity", "must be one of low, medium, high; got %q", r.Severity)
	}
	if math.IsNaN(r.Confidence) || r.Confidence < 0 || r.Confidence > 1 {
		add("confidence", "must be within [0,1]; got %v", r.Confidence)
	}
	if r.SuggestedFix != nil {
		if n := utf8.RuneCountInString(*r.SuggestedFix); n > MaxSuggestedFixChars {
			add("suggested_fix", "must be at most %d characters; got %d", MaxSuggestedFixChars, n)
		}
	}
	if len(r.FollowUpQuestions) > MaxFollowUpQuestions {
		add("follow_up_questions", "must have at most %d entries; got %d", MaxFollowUpQuestions, len(r.FollowUpQuestions))
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// ToInsert maps a response onto a record keyed by its analysis id.
func (r AnalysisResponse) ToInsert() InsertAnalysisResult {
	confidence := r.Confidence
	in := InsertAnalysisResult{
		ID:                r.AnalysisID,
		ErrorTitle:        cloneString(r.ErrorTitle),
		ErrorCode:         cloneString(r.ErrorCode),
		Product:           cloneString(r.Product),
		Environment:       r.Environment.clone(),
		ProbableCause:     strPtr(r.ProbableCause),
		SuggestedFix:      cloneString(r.SuggestedFix),
		Severity:          strPtr(r.Severity),
		Confidence:        &confidence,
		FollowUpQuestions: cloneStrings(r.FollowUpQuestions),
		Status:            r.Status,
	}
	if r.Reason != "" {
		in.Reason = strPtr(r.Reason)
	}
	return in
}
