package analyses

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleInsert(title string) InsertAnalysisResult {
	confidence := 0.75
	return InsertAnalysisResult{
		ErrorTitle:    strPtr(title),
		ErrorCode:     strPtr("E42"),
		Product:       strPtr("Acme"),
		Environment:   &Environment{OS: strPtr("Linux"), Browser: strPtr("Firefox")},
		ProbableCause: strPtr(CauseServerError),
		SuggestedFix:  strPtr("Restart the worker."),
		Severity:      strPtr(SeverityHigh),
		Confidence:    &confidence,
		FollowUpQuestions: []string{
			"When did it start?",
			"Is it reproducible?",
		},
		Status: StatusOK,
	}
}

// runRepoContract exercises the behavior every Repo variant must share.
func runRepoContract(t *testing.T, newRepo func(t *testing.T) Repo) {
	t.Run("create then get returns equal record", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Create(ctx, sampleInsert("Boom"))
		require.NoError(t, err)
		assert.NotEmpty(t, created.ID)
		assert.False(t, created.CreatedAt.IsZero())

		got, err := repo.GetByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.ID, got.ID)
		assert.Equal(t, created.ErrorTitle, got.ErrorTitle)
		assert.Equal(t, created.ErrorCode, got.ErrorCode)
		assert.Equal(t, created.Product, got.Product)
		assert.Equal(t, created.Environment, got.Environment)
		assert.Equal(t, created.ProbableCause, got.ProbableCause)
		assert.Equal(t, created.SuggestedFix, got.SuggestedFix)
		assert.Equal(t, created.Severity, got.Severity)
		assert.InDelta(t, *created.Confidence, *got.Confidence, 1e-9)
		assert.Equal(t, created.FollowUpQuestions, got.FollowUpQuestions)
		assert.Equal(t, created.Status, got.Status)
		assert.Equal(t, created.Reason, got.Reason)
		assert.WithinDuration(t, created.CreatedAt, got.CreatedAt, time.Millisecond)
	})

	t.Run("uses supplied id", func(t *testing.T) {
		repo := newRepo(t)
		in := sampleInsert("Boom")
		in.ID = "6f1c1c4e-6a3e-4e55-9a51-2a0b0f4f1a11"

		created, err := repo.Create(context.Background(), in)
		require.NoError(t, err)
		assert.Equal(t, in.ID, created.ID)
	})

	t.Run("duplicate id is rejected", func(t *testing.T) {
		repo := newRepo(t)
		in := sampleInsert("Boom")
		in.ID = "0b8f8a8e-2f0c-4a57-8d57-0a2c6a7d9e01"

		_, err := repo.Create(context.Background(), in)
		require.NoError(t, err)
		_, err = repo.Create(context.Background(), in)
		assert.ErrorIs(t, err, ErrDuplicateID)
	})

	t.Run("create does not mutate input", func(t *testing.T) {
		repo := newRepo(t)
		in := sampleInsert("Boom")
		created, err := repo.Create(context.Background(), in)
		require.NoError(t, err)

		assert.Empty(t, in.ID)
		*in.ErrorTitle = "mutated"
		in.FollowUpQuestions[0] = "mutated"
		*in.Environment.OS = "mutated"

		got, err := repo.GetByID(context.Background(), created.ID)
		require.NoError(t, err)
		assert.Equal(t, "Boom", *got.ErrorTitle)
		assert.Equal(t, "When did it start?", got.FollowUpQuestions[0])
		assert.Equal(t, "Linux", *got.Environment.OS)
	})

	t.Run("failed record with nulls round trips", func(t *testing.T) {
		repo := newRepo(t)
		created, err := repo.Create(context.Background(), FailedResponse("openai request timeout").ToInsert())
		require.NoError(t, err)

		got, err := repo.GetByID(context.Background(), created.ID)
		require.NoError(t, err)
		assert.Equal(t, StatusFailed, got.Status)
		require.NotNil(t, got.Reason)
		assert.Equal(t, "openai request timeout", *got.Reason)
		assert.Nil(t, got.ErrorTitle)
		assert.Nil(t, got.Environment)
		assert.Nil(t, got.SuggestedFix)
		require.NotNil(t, got.Confidence)
		assert.Equal(t, 0.0, *got.Confidence)
		assert.NotNil(t, got.FollowUpQuestions)
		assert.Empty(t, got.FollowUpQuestions)
	})

	t.Run("missing id is not found", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.GetByID(context.Background(), "nonexistent-id")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("list is newest first", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		for _, title := range []string{"first", "second", "third"} {
			_, err := repo.Create(ctx, sampleInsert(title))
			require.NoError(t, err)
			time.Sleep(2 * time.Millisecond)
		}

		list, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, list, 3)
		for i := 1; i < len(list); i++ {
			assert.False(t, list[i].CreatedAt.After(list[i-1].CreatedAt), "records must be in non-increasing createdAt order")
		}
		assert.Equal(t, "third", *list[0].ErrorTitle)
		assert.Equal(t, "first", *list[2].ErrorTitle)
	})

	t.Run("empty list", func(t *testing.T) {
		repo := newRepo(t)
		list, err := repo.List(context.Background())
		require.NoError(t, err)
		assert.NotNil(t, list)
		assert.Empty(t, list)
	})

	t.Run("ping", func(t *testing.T) {
		repo := newRepo(t)
		assert.NoError(t, repo.Ping(context.Background()))
	})
}
