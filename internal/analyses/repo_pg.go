package analyses

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

const pgUniqueViolation = "23505"

const selectColumns = `id, error_title, error_code, product, environment, probable_cause, suggested_fix,
       severity, confidence, follow_up_questions, status, reason, created_at`

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a new analysis result.
func (r *PGRepo) Create(ctx context.Context, in InsertAnalysisResult) (AnalysisResult, error) {
	const query = `
INSERT INTO analysis_results (
	id, error_title, error_code, product, environment, probable_cause, suggested_fix,
	severity, confidence, follow_up_questions, status, reason
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
RETURNING created_at`

	id := in.ID
	if id == "" {
		id = uuid.NewString()
	}
	rec := newRecord(id, in, time.Time{})

	envPayload, err := marshalEnvironment(rec.Environment)
	if err != nil {
		return AnalysisResult{}, err
	}
	followUps, err := json.Marshal(rec.FollowUpQuestions)
	if err != nil {
		return AnalysisResult{}, fmt.Errorf("marshal follow_up_questions: %w", err)
	}

	err = r.DB.QueryRowContext(ctx, query,
		rec.ID,
		nullableString(rec.ErrorTitle),
		nullableString(rec.ErrorCode),
		nullableString(rec.Product),
		envPayload,
		nullableString(rec.ProbableCause),
		nullableString(rec.SuggestedFix),
		nullableString(rec.Severity),
		nullableFloat(rec.Confidence),
		followUps,
		rec.Status,
		nullableString(rec.Reason),
	).Scan(&rec.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return AnalysisResult{}, ErrDuplicateID
		}
		return AnalysisResult{}, fmt.Errorf("insert analysis result: %w", err)
	}
	rec.CreatedAt = rec.CreatedAt.UTC()
	return rec, nil
}

// GetByID returns an analysis result by ID.
func (r *PGRepo) GetByID(ctx context.Context, id string) (AnalysisResult, error) {
	query := `
SELECT ` + selectColumns + `
FROM analysis_results
WHERE id = $1`
	rec, err := scanResult(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return AnalysisResult{}, ErrNotFound
		}
		return AnalysisResult{}, fmt.Errorf("get analysis result: %w", err)
	}
	return rec, nil
}

// List returns every analysis result, newest first.
func (r *PGRepo) List(ctx context.Context) ([]AnalysisResult, error) {
	query := `
SELECT ` + selectColumns + `
FROM analysis_results
ORDER BY created_at DESC`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list analysis results: %w", err)
	}
	defer rows.Close()

	out := []AnalysisResult{}
	for rows.Next() {
		rec, err := scanResult(rows)
		if err != nil {
			return nil, fmt.Errorf("scan analysis result: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list analysis results: %w", err)
	}
	return out, nil
}

// Ping verifies database connectivity.
func (r *PGRepo) Ping(ctx context.Context) error {
	return r.DB.PingContext(ctx)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanResult(row rowScanner) (AnalysisResult, error) {
	var rec AnalysisResult
	var errorTitle, errorCode, product, probableCause, suggestedFix, severity, reason sql.NullString
	var environment, followUps []byte
	var confidence sql.NullFloat64

	if err := row.Scan(
		&rec.ID,
		&errorTitle,
		&errorCode,
		&product,
		&environment,
		&probableCause,
		&suggestedFix,
		&severity,
		&confidence,
		&followUps,
		&rec.Status,
		&reason,
		&rec.CreatedAt,
	); err != nil {
		return AnalysisResult{}, err
	}

	rec.ErrorTitle = fromNullString(errorTitle)
	rec.ErrorCode = fromNullString(errorCode)
	rec.Product = fromNullString(product)
	rec.ProbableCause = fromNullString(probableCause)
	rec.SuggestedFix = fromNullString(suggestedFix)
	rec.Severity = fromNullString(severity)
	rec.Reason = fromNullString(reason)
	if confidence.Valid {
		v := confidence.Float64
		rec.Confidence = &v
	}
	if len(environment) > 0 && string(environment) != "null" {
		var env Environment
		if err := json.Unmarshal(environment, &env); err != nil {
			return AnalysisResult{}, fmt.Errorf("decode environment: %w", err)
		}
		rec.Environment = &env
	}
	rec.FollowUpQuestions = []string{}
	if len(followUps) > 0 && string(followUps) != "null" {
		if err := json.Unmarshal(followUps, &rec.FollowUpQuestions); err != nil {
			return AnalysisResult{}, fmt.Errorf("decode follow_up_questions: %w", err)
		}
	}
	rec.CreatedAt = rec.CreatedAt.UTC()
	return rec, nil
}

func marshalEnvironment(env *Environment) (any, error) {
	if env == nil {
		return nil, nil
	}
	payload, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("marshal environment: %w", err)
	}
	return payload, nil
}

func nullableString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func nullableFloat(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}

func fromNullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}

var _ Repo = (*PGRepo)(nil)
