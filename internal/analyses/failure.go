package analyses

import "strings"

const (
	ReasonNoFile        = "No file uploaded. Please upload a PNG or JPEG image."
	ReasonFileTooLarge  = "File size exceeds 15MB limit. Please upload a smaller image."
	ReasonUnsupported   = "Only PNG and JPEG images are allowed"
	ReasonInvalidFormat = "Invalid response format from AI model"
	reasonUnknown       = "Unknown error occurred"
)

// FailedResponse builds the well-formed failure body returned when analysis
// could not produce a validated result.
func FailedResponse(reason string) AnalysisResponse {
	return failed(reason, CauseUnknown, SeverityLow)
}

// RejectedUploadResponse builds the failure body for uploads refused before
// analysis starts.
func RejectedUploadResponse(reason string) AnalysisResponse {
	return failed(reason, CauseInvalidInput, SeverityLow)
}

// ServerErrorResponse builds the failure body for unexpected request errors.
func ServerErrorResponse(reason string) AnalysisResponse {
	return failed(reason, CauseServerError, SeverityMedium)
}

func failed(reason, cause, severity string) AnalysisResponse {
	if strings.TrimSpace(reason) == "" {
		reason = reasonUnknown
	}
	return AnalysisResponse{
		AnalysisID:        newAnalysisID(),
		ProbableCause:     cause,
		Severity:          severity,
		Confidence:        0,
		FollowUpQuestions: []string{},
		Status:            StatusFailed,
		Reason:            reason,
	}
}
