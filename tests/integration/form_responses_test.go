package integration

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/formloop/formloop/internal/models"
	"github.com/formloop/formloop/internal/services"
)

func TestFormsAndResponses(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	db, err := SetupTestDatabase(ctx)
	require.NoError(t, err)
	defer db.Teardown(context.Background())

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	formRepo, _, responseRepo := InitializeRepositories(db.DB)
	formService := services.NewFormService(formRepo, logger)
	responseService := services.NewResponseService(responseRepo, formRepo, logger)

	t.Run("create and fetch form", func(t *testing.T) {
		require.NoError(t, db.CleanupTables(ctx))

		created, err := formService.CreateForm(ctx, &models.Form{
			Title:       "Onboarding Survey",
			Description: "Tell us how your first month went",
			Type:        models.FormTypePrivate,
			Questions: []models.Question{
				{Type: models.QuestionTypeMCQ, Question: "Overall experience?", Options: []string{"Good", "Bad"}},
				{Type: models.QuestionTypeText, Question: "What should we improve?"},
			},
		})
		require.NoError(t, err)
		require.NotEmpty(t, created.ID)
		assert.True(t, created.IsPrivate())

		// Question IDs are assigned on creation
		for _, q := range created.Questions {
			assert.NotEmpty(t, q.ID)
		}

		fetched, err := formService.GetForm(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.Title, fetched.Title)
		assert.Len(t, fetched.Questions, 2)
	})

	t.Run("list filters by visibility", func(t *testing.T) {
		require.NoError(t, db.CleanupTables(ctx))

		_, err := SeedForm(ctx, formRepo, models.FormTypePublic)
		require.NoError(t, err)
		_, err = SeedForm(ctx, formRepo, models.FormTypePrivate)
		require.NoError(t, err)

		all, err := formService.ListForms(ctx, "")
		require.NoError(t, err)
		assert.Len(t, all, 2)

		private, err := formService.ListForms(ctx, models.FormTypePrivate)
		require.NoError(t, err)
		require.Len(t, private, 1)
		assert.Equal(t, models.FormTypePrivate, private[0].Type)
	})

	t.Run("submit and summarize responses", func(t *testing.T) {
		require.NoError(t, db.CleanupTables(ctx))

		form, err := SeedForm(ctx, formRepo, models.FormTypePublic)
		require.NoError(t, err)

		_, err = responseService.SubmitResponse(ctx, form.ID, map[string]string{
			"q1": "Great",
			"q2": "More coffee",
		})
		require.NoError(t, err)
		_, err = responseService.SubmitResponse(ctx, form.ID, map[string]string{
			"q1": "Great",
		})
		require.NoError(t, err)
		_, err = responseService.SubmitResponse(ctx, form.ID, map[string]string{
			"q1": "Rough",
			"q2": "Fewer meetings",
		})
		require.NoError(t, err)

		responses, err := responseService.ListResponses(ctx, form.ID)
		require.NoError(t, err)
		assert.Len(t, responses, 3)

		summary, err := responseService.Summarize(ctx, form.ID)
		require.NoError(t, err)
		assert.Equal(t, 3, summary.ResponseCount)
		require.Len(t, summary.Questions, 2)

		mcq := summary.Questions[0]
		assert.Equal(t, 2, mcq.Counts["Great"])
		assert.Equal(t, 0, mcq.Counts["Okay"])
		assert.Equal(t, 1, mcq.Counts["Rough"])

		text := summary.Questions[1]
		assert.ElementsMatch(t, []string{"More coffee", "Fewer meetings"}, text.Answers)
	})

	t.Run("submission requires an existing form", func(t *testing.T) {
		require.NoError(t, db.CleanupTables(ctx))

		_, err := responseService.SubmitResponse(ctx,
			"00000000-0000-0000-0000-000000000000",
			map[string]string{"q1": "Great"})
		assert.ErrorIs(t, err, models.ErrNotFound)
	})
}
