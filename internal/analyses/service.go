package analyses

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"time"

	"errorlens-backend/internal/llm"
	"errorlens-backend/internal/shared/metrics"
	"errorlens-backend/internal/shared/storage/object"
	"errorlens-backend/internal/shared/telemetry"
)

const persistTimeout = 5 * time.Second

// Screenshot is an uploaded image that already passed upload checks.
type Screenshot struct {
	Data      []byte
	MediaType string
	FileName  string
}

// Service orchestrates a single screenshot analysis.
type Service struct {
	Repo     Repo
	LLM      llm.Client
	Archive  object.ObjectStore
	Provider string
	Model    string
}

// Analyze calls the model, normalizes its reply and persists the outcome.
// It always returns a well-formed response; failures are reported with
// status "failed" and a reason.
func (s *Service) Analyze(ctx context.Context, shot Screenshot) AnalysisResponse {
	start := time.Now()
	requestID := requestIDFromContext(ctx)
	metrics.IncAnalysisStarted()

	resp, failure := s.run(ctx, shot)

	durationMs := time.Since(start).Milliseconds()
	metrics.ObserveAnalysisDurationMs(float64(durationMs))
	fields := map[string]any{
		"request_id":     requestID,
		"analysis_id":    resp.AnalysisID,
		"status":         resp.Status,
		"provider":       s.Provider,
		"model":          s.Model,
		"prompt_version": llm.PromptVersion,
		"duration_ms":    durationMs,
		"file_name":      shot.FileName,
		"file_bytes":     len(shot.Data),
	}
	if resp.Status == StatusOK {
		metrics.IncAnalysisCompleted()
		telemetry.Info("analysis.complete", fields)
	} else {
		metrics.IncAnalysisFailed(failure)
		fields["failure"] = failure
		fields["reason"] = resp.Reason
		telemetry.Error("analysis.failed", fields)
	}

	s.persist(ctx, resp)
	s.archive(ctx, resp.AnalysisID, shot)
	return resp
}

func (s *Service) run(ctx context.Context, shot Screenshot) (AnalysisResponse, string) {
	if s.LLM == nil {
		return FailedResponse(llm.ErrNotImplemented.Error()), "llm_error"
	}

	input := llm.ScreenshotInput{
		MediaType:  shot.MediaType,
		Base64Data: base64.StdEncoding.EncodeToString(shot.Data),
	}
	reply, err := s.LLM.AnalyzeScreenshot(ctx, input)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) || isTimeout(err) {
			return FailedResponse(err.Error()), "timeout"
		}
		return FailedResponse(err.Error()), "llm_error"
	}

	resp, err := NormalizeModelReply([]byte(reply))
	if err != nil {
		var ve *ValidationError
		if errors.As(err, &ve) {
			return FailedResponse(ReasonInvalidFormat + ": " + ve.Error()), "validation"
		}
		return FailedResponse(err.Error()), "parse"
	}
	return resp, ""
}

// persist stores the outcome. Failures are logged and counted only.
func (s *Service) persist(ctx context.Context, resp AnalysisResponse) {
	if s.Repo == nil {
		return
	}
	persistCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
	defer cancel()

	if _, err := s.Repo.Create(persistCtx, resp.ToInsert()); err != nil {
		metrics.IncPersistFailed()
		telemetry.Error("analysis.persist_failed", map[string]any{
			"request_id":  requestIDFromContext(ctx),
			"analysis_id": resp.AnalysisID,
			"error":       err,
		})
	}
}

func (s *Service) archive(ctx context.Context, analysisID string, shot Screenshot) {
	if s.Archive == nil || len(shot.Data) == 0 {
		return
	}
	archiveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
	defer cancel()

	key := analysisID + extensionFor(shot.MediaType)
	if _, err := s.Archive.Save(archiveCtx, key, shot.MediaType, bytes.NewReader(shot.Data)); err != nil {
		telemetry.Warn("analysis.archive_failed", map[string]any{
			"request_id":  requestIDFromContext(ctx),
			"analysis_id": analysisID,
			"error":       err,
		})
	}
}

func extensionFor(mediaType string) string {
	switch mediaType {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	default:
		return ""
	}
}

type timeoutError interface {
	Timeout() bool
}

func isTimeout(err error) bool {
	var te timeoutError
	return errors.As(err, &te) && te.Timeout()
}
