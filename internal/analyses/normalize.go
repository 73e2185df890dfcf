package analyses

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

const (
	defaultErrorTitle   = "Unknown Error"
	defaultSuggestedFix = "No fix suggestion available"
	defaultConfidence   = 0.5
)

var newAnalysisID = uuid.NewString

// NormalizeModelReply parses a model reply as a JSON object and normalizes it.
// A reply that is not a JSON object yields an error wrapping ErrInvalidReply.
func NormalizeModelReply(reply []byte) (AnalysisResponse, error) {
	body := stripCodeFence(bytes.TrimSpace(reply))
	if len(body) == 0 {
		return AnalysisResponse{}, fmt.Errorf("%w: empty reply", ErrInvalidReply)
	}
	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return AnalysisResponse{}, fmt.Errorf("%w: %v", ErrInvalidReply, err)
	}
	if raw == nil {
		return AnalysisResponse{}, fmt.Errorf("%w: reply is null", ErrInvalidReply)
	}
	return ValidateAndNormalize(raw)
}

// ValidateAndNormalize applies defaults to a raw model object and validates
// the result. It either returns a response satisfying every invariant or a
// *ValidationError listing each violated field.
func ValidateAndNormalize(raw map[string]any) (AnalysisResponse, error) {
	var fields []FieldError
	violate := func(field, msg string) {
		fields = append(fields, FieldError{Field: field, Message: msg})
	}

	resp := AnalysisResponse{
		AnalysisID: newAnalysisID(),
		Status:     StatusOK,
	}

	if v, ok := stringField(raw, "error_title", violate); ok {
		resp.ErrorTitle = strPtr(v)
	} else {
		resp.ErrorTitle = strPtr(defaultErrorTitle)
	}

	resp.ErrorCode = errorCodeField(raw, violate)

	if v, ok := stringField(raw, "product", violate); ok {
		resp.Product = strPtr(v)
	}

	resp.Environment = environmentField(raw, violate)

	if v, ok := stringField(raw, "probable_cause", violate); ok {
		resp.ProbableCause = v
	} else {
		resp.ProbableCause = CauseUnknown
	}

	fix := defaultSuggestedFix
	if v, ok := stringField(raw, "suggested_fix", violate); ok {
		fix = v
	}
	resp.SuggestedFix = strPtr(truncateRunes(fix, MaxSuggestedFixChars))

	if v, ok := stringField(raw, "severity", violate); ok {
		resp.Severity = v
	} else {
		resp.Severity = SeverityMedium
	}

	resp.Confidence = confidenceField(raw)
	resp.FollowUpQuestions = followUpField(raw, violate)

	if err := resp.Validate(); err != nil {
		if ve, ok := err.(*ValidationError); ok {
			fields = append(fields, ve.Fields...)
		}
	}
	if len(fields) > 0 {
		return AnalysisResponse{}, &ValidationError{Fields: fields}
	}
	return resp, nil
}

// stringField returns a non-empty string value. Missing, null and empty
// values report ok=false so the caller applies its default; any other type
// is recorded as a violation.
func stringField(raw map[string]any, key string, violate func(string, string)) (string, bool) {
	v, present := raw[key]
	if !present || v == nil {
		return "", false
	}
	s, isString := v.(string)
	if !isString {
		violate(key, fmt.Sprintf("must be a string; got %T", v))
		return "", false
	}
	if strings.TrimSpace(s) == "" {
		return "", false
	}
	return s, true
}

func errorCodeField(raw map[string]any, violate func(string, string)) *string {
	v, present := raw["error_code"]
	if !present || v == nil {
		return nil
	}
	if f, ok := toFloat(v); ok {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			violate("error_code", "must be a string")
			return nil
		}
		return strPtr(strconv.FormatFloat(f, 'f', -1, 64))
	}
	s, ok := stringField(raw, "error_code", violate)
	if !ok {
		return nil
	}
	return strPtr(s)
}

func environmentField(raw map[string]any, violate func(string, string)) *Environment {
	v, present := raw["environment"]
	if !present || v == nil {
		return nil
	}
	obj, ok := v.(map[string]any)
	if !ok {
		violate("environment", fmt.Sprintf("must be an object; got %T", v))
		return nil
	}
	env := &Environment{}
	targets := []struct {
		key string
		dst **string
	}{
		{"os", &env.OS},
		{"browser", &env.Browser},
		{"app", &env.App},
		{"version", &env.Version},
	}
	for _, t := range targets {
		s, ok := stringField(obj, t.key, func(field, msg string) {
			violate("environment."+field, msg)
		})
		if ok {
			*t.dst = strPtr(s)
		}
	}
	return env
}

func confidenceField(raw map[string]any) float64 {
	f, ok := toFloat(raw["confidence"])
	if !ok || math.IsNaN(f) {
		return defaultConfidence
	}
	return math.Min(1, math.Max(0, f))
}

func followUpField(raw map[string]any, violate func(string, string)) []string {
	out := []string{}
	var items []any
	switch v := raw["follow_up_questions"].(type) {
	case []any:
		items = v
	case []string:
		for _, s := range v {
			items = append(items, s)
		}
	default:
		return out
	}
	if len(items) > MaxFollowUpQuestions {
		items = items[:MaxFollowUpQuestions]
	}
	for i, item := range items {
		s, ok := item.(string)
		if !ok {
			violate(fmt.Sprintf("follow_up_questions[%d]", i), fmt.Sprintf("must be a string; got %T", item))
			continue
		}
		out = append(out, s)
	}
	return out
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

func truncateRunes(s string, max int) string {
	if len(s) <= max {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

func stripCodeFence(body []byte) []byte {
	if !bytes.HasPrefix(body, []byte("```")) {
		return body
	}
	body = bytes.TrimPrefix(body, []byte("```"))
	if nl := bytes.IndexByte(body, '\n'); nl >= 0 {
		body = body[nl+1:]
	}
	body = bytes.TrimSuffix(bytes.TrimSpace(body), []byte("```"))
	return bytes.TrimSpace(body)
}
