package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/joseph-ayodele/specs-importer/internal/common"
	"github.com/joseph-ayodele/specs-importer/internal/entity"
)

const catalogueTable = "catalogue_entry"

var catalogueColumns = []string{
	"id", "position", "test_code", "analysis", "component", "units", "category",
	"type", "default_grade", "rounding", "synonyms", "tags", "priority",
}

// CatalogueRepository stores the catalogue snapshot batch imports match against.
type CatalogueRepository interface {
	List(ctx context.Context) ([]entity.CatalogueEntry, error)
	ReplaceAll(ctx context.Context, entries []entity.CatalogueEntry) error
}

type catalogueRepo struct {
	db  *DB
	log *slog.Logger
}

func NewCatalogueRepository(db *DB, log *slog.Logger) CatalogueRepository {
	if log == nil {
		log = slog.Default()
	}
	return &catalogueRepo{db: db, log: log}
}

// List returns entries in the order they were stored.
func (r *catalogueRepo) List(ctx context.Context) ([]entity.CatalogueEntry, error) {
	query, args := r.db.builder().
		Select(catalogueColumns...).
		From(entsql.Table(catalogueTable)).
		OrderBy("position").
		Query()
	rows, err := r.db.SQL.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, common.NewAppError("DB_ERROR", "list catalogue", fmt.Errorf("%w: %v", common.ErrDatabase, err))
	}
	defer func() { _ = rows.Close() }()

	var out []entity.CatalogueEntry
	for rows.Next() {
		var e entity.CatalogueEntry
		var pos int
		if err := rows.Scan(&e.ID, &pos, &e.TestCode, &e.Analysis, &e.Component, &e.Units, &e.Category,
			&e.Type, &e.DefaultGrade, &e.Rounding, &e.Synonyms, &e.Tags, &e.Priority); err != nil {
			return nil, common.NewAppError("DB_ERROR", "scan catalogue", fmt.Errorf("%w: %v", common.ErrDatabase, err))
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, common.NewAppError("DB_ERROR", "list catalogue", fmt.Errorf("%w: %v", common.ErrDatabase, err))
	}
	return out, nil
}

// ReplaceAll swaps the stored catalogue for entries in one transaction.
func (r *catalogueRepo) ReplaceAll(ctx context.Context, entries []entity.CatalogueEntry) error {
	tx, err := r.db.SQL.BeginTx(ctx, nil)
	if err != nil {
		return common.NewAppError("DB_ERROR", "begin tx", fmt.Errorf("%w: %v", common.ErrDatabase, err))
	}
	if err := r.replace(ctx, tx, entries); err != nil {
		_ = tx.Rollback()
		r.log.Error("catalogue replace failed", "entries", len(entries), "err", err)
		return common.NewAppError("DB_ERROR", "replace catalogue", fmt.Errorf("%w: %v", common.ErrDatabase, err))
	}
	if err := tx.Commit(); err != nil {
		return common.NewAppError("DB_ERROR", "commit catalogue", fmt.Errorf("%w: %v", common.ErrDatabase, err))
	}
	r.log.Info("catalogue replaced", "entries", len(entries))
	return nil
}

func (r *catalogueRepo) replace(ctx context.Context, tx *sql.Tx, entries []entity.CatalogueEntry) error {
	query, args := r.db.builder().Delete(catalogueTable).Query()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return err
	}
	for i, e := range entries {
		query, args := r.db.builder().
			Insert(catalogueTable).
			Columns(catalogueColumns...).
			Values(e.ID, i, e.TestCode, e.Analysis, e.Component, e.Units, e.Category,
				e.Type, e.DefaultGrade, e.Rounding, e.Synonyms, e.Tags, e.Priority).
			Query()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert %s: %w", e.ID, err)
		}
	}
	return nil
}
