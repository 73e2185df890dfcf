package analyses

import "context"

// Repo defines persistence operations for analysis results.
type Repo interface {
	Create(ctx context.Context, in InsertAnalysisResult) (AnalysisResult, error)
	GetByID(ctx context.Context, id string) (AnalysisResult, error)
	List(ctx context.Context) ([]AnalysisResult, error)
	Ping(ctx context.Context) error
}
