package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/joseph-ayodele/specs-importer/constants"
	"github.com/joseph-ayodele/specs-importer/internal/common"
	"github.com/joseph-ayodele/specs-importer/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	ctx := context.Background()
	db, err := Open(ctx, Config{Driver: "sqlite", DSN: "file::memory:"}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close(nil) })
	require.NoError(t, db.Migrate(ctx))
	require.NoError(t, db.Migrate(ctx), "migrate is idempotent")
	return db
}

func TestCatalogueReplaceAndList(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := NewCatalogueRepository(db, nil)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	entries := []entity.CatalogueEntry{
		{ID: "c2", TestCode: "PH01", Analysis: "pH", Component: "pH value", Synonyms: "Acidity", Priority: "High"},
		{ID: "c1", TestCode: "APP01", Analysis: "Appearance", Component: "Visual", Tags: "visual,physical"},
	}
	require.NoError(t, repo.ReplaceAll(ctx, entries))

	list, err = repo.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, entries, list, "stored order is kept")

	require.NoError(t, repo.ReplaceAll(ctx, entries[1:]))
	list, err = repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "c1", list[0].ID)
}

func TestCatalogueReplaceAllRollsBack(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := NewCatalogueRepository(db, nil)
	require.NoError(t, repo.ReplaceAll(ctx, []entity.CatalogueEntry{{ID: "keep"}}))

	err := repo.ReplaceAll(ctx, []entity.CatalogueEntry{{ID: "dup"}, {ID: "dup"}})
	assert.ErrorIs(t, err, common.ErrDatabase)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "keep", list[0].ID)
}

func TestImportJobLifecycle(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := NewImportJobRepository(db, nil).(*importJobRepo)

	clock := time.Date(2024, 6, 10, 8, 0, 0, 0, time.UTC)
	repo.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}

	batch := uuid.New()
	ok, err := repo.Start(ctx, batch, "one.pdf")
	require.NoError(t, err)
	bad, err := repo.Start(ctx, batch, "two.pdf")
	require.NoError(t, err)
	_, err = repo.Start(ctx, uuid.New(), "other-batch.pdf")
	require.NoError(t, err)

	spec := &entity.ProductSpec{ProductCode: "P-1", Tests: []entity.TestItem{
		{MatchStatus: constants.MatchStatusMatched},
		{MatchStatus: constants.MatchStatusLowConfidence},
		{MatchStatus: constants.MatchStatusUnmatched},
		{MatchStatus: constants.MatchStatusManual},
	}}
	require.NoError(t, repo.FinishSuccess(ctx, ok.ID, spec))
	require.NoError(t, repo.FinishFailure(ctx, bad.ID, "no text extracted"))

	jobs, err := repo.ListByBatch(ctx, batch)
	require.NoError(t, err)
	require.Len(t, jobs, 2)

	first := jobs[0]
	assert.Equal(t, ok.ID, first.ID)
	assert.Equal(t, batch, first.BatchID)
	assert.Equal(t, string(constants.JobStatusOK), first.Status)
	require.NotNil(t, first.ProductCode)
	assert.Equal(t, "P-1", *first.ProductCode)
	assert.Equal(t, "Success - Product Code: P-1", *first.Message)
	assert.Equal(t, 4, first.Tests)
	assert.Equal(t, 2, first.Matched)
	assert.Equal(t, 1, first.LowConfidence)
	assert.Equal(t, 1, first.Unmatched)
	assert.Equal(t, time.Date(2024, 6, 10, 8, 0, 1, 0, time.UTC), first.StartedAt)
	require.NotNil(t, first.FinishedAt)

	second := jobs[1]
	assert.Equal(t, "two.pdf", second.FileName)
	assert.Equal(t, string(constants.JobStatusFailed), second.Status)
	assert.Equal(t, "no text extracted", *second.Message)
	assert.Nil(t, second.ProductCode)

	assert.ErrorIs(t, repo.FinishFailure(ctx, uuid.New(), "x"), common.ErrNotFound)
}

func TestCountsAndHealth(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	require.NoError(t, db.HealthCheck(ctx, time.Second, nil))

	require.NoError(t, NewCatalogueRepository(db, nil).ReplaceAll(ctx, []entity.CatalogueEntry{{ID: "a"}, {ID: "b"}}))
	counts, err := db.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{catalogueTable: 2, importJobTable: 0}, counts)
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), Config{Driver: "mysql"}, nil)
	assert.Error(t, err)
}
