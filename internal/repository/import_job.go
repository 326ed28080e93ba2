package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
	"github.com/joseph-ayodele/specs-importer/constants"
	"github.com/joseph-ayodele/specs-importer/internal/common"
	"github.com/joseph-ayodele/specs-importer/internal/entity"
)

const importJobTable = "import_job"

var importJobColumns = []string{
	"id", "batch_id", "file_name", "status", "message", "product_code",
	"tests", "matched", "low_confidence", "unmatched", "started_at", "finished_at",
}

// ImportJobRepository is the journal of documents processed by batch imports.
type ImportJobRepository interface {
	Start(ctx context.Context, batchID uuid.UUID, fileName string) (*entity.ImportJob, error)
	FinishSuccess(ctx context.Context, jobID uuid.UUID, spec *entity.ProductSpec) error
	FinishFailure(ctx context.Context, jobID uuid.UUID, message string) error
	ListByBatch(ctx context.Context, batchID uuid.UUID) ([]entity.ImportJob, error)
}

type importJobRepo struct {
	db  *DB
	log *slog.Logger
	now func() time.Time
}

func NewImportJobRepository(db *DB, log *slog.Logger) ImportJobRepository {
	if log == nil {
		log = slog.Default()
	}
	return &importJobRepo{db: db, log: log, now: time.Now}
}

func (r *importJobRepo) Start(ctx context.Context, batchID uuid.UUID, fileName string) (*entity.ImportJob, error) {
	job := &entity.ImportJob{
		ID:        uuid.New(),
		BatchID:   batchID,
		FileName:  fileName,
		Status:    string(constants.JobStatusRunning),
		StartedAt: r.now().UTC(),
	}
	query, args := r.db.builder().
		Insert(importJobTable).
		Columns("id", "batch_id", "file_name", "status", "started_at").
		Values(job.ID.String(), batchID.String(), fileName, job.Status, formatTime(job.StartedAt)).
		Query()
	if _, err := r.db.SQL.ExecContext(ctx, query, args...); err != nil {
		r.log.Error("import_job start failed", "batch_id", batchID, "file", fileName, "err", err)
		return nil, common.NewAppError("DB_ERROR", "start import job", fmt.Errorf("%w: %v", common.ErrDatabase, err))
	}
	r.log.Debug("import_job started", "job_id", job.ID, "batch_id", batchID, "file", fileName)
	return job, nil
}

func (r *importJobRepo) FinishSuccess(ctx context.Context, jobID uuid.UUID, spec *entity.ProductSpec) error {
	matched, low, unmatched := spec.MatchCounts()
	msg := "Success - Product Code: " + spec.ProductCode
	query, args := r.db.builder().
		Update(importJobTable).
		Set("status", string(constants.JobStatusOK)).
		Set("message", msg).
		Set("product_code", spec.ProductCode).
		Set("tests", len(spec.Tests)).
		Set("matched", matched).
		Set("low_confidence", low).
		Set("unmatched", unmatched).
		Set("finished_at", formatTime(r.now().UTC())).
		Where(entsql.EQ("id", jobID.String())).
		Query()
	if err := r.exec(ctx, jobID, query, args); err != nil {
		r.log.Error("import_job finish(OK) failed", "job_id", jobID, "err", err)
		return err
	}
	r.log.Debug("import_job finished (OK)", "job_id", jobID, "product_code", spec.ProductCode)
	return nil
}

func (r *importJobRepo) FinishFailure(ctx context.Context, jobID uuid.UUID, message string) error {
	query, args := r.db.builder().
		Update(importJobTable).
		Set("status", string(constants.JobStatusFailed)).
		Set("message", message).
		Set("finished_at", formatTime(r.now().UTC())).
		Where(entsql.EQ("id", jobID.String())).
		Query()
	if err := r.exec(ctx, jobID, query, args); err != nil {
		r.log.Error("import_job finish(FAILED) failed", "job_id", jobID, "err", err)
		return err
	}
	r.log.Warn("import_job finished (FAILED)", "job_id", jobID, "error", message)
	return nil
}

func (r *importJobRepo) exec(ctx context.Context, jobID uuid.UUID, query string, args []any) error {
	res, err := r.db.SQL.ExecContext(ctx, query, args...)
	if err != nil {
		return common.NewAppError("DB_ERROR", "update import job", fmt.Errorf("%w: %v", common.ErrDatabase, err))
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("import job %s: %w", jobID, common.ErrNotFound)
	}
	return nil
}

// ListByBatch returns the batch's jobs in start order.
func (r *importJobRepo) ListByBatch(ctx context.Context, batchID uuid.UUID) ([]entity.ImportJob, error) {
	query, args := r.db.builder().
		Select(importJobColumns...).
		From(entsql.Table(importJobTable)).
		Where(entsql.EQ("batch_id", batchID.String())).
		OrderBy("started_at", "id").
		Query()
	rows, err := r.db.SQL.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, common.NewAppError("DB_ERROR", "list import jobs", fmt.Errorf("%w: %v", common.ErrDatabase, err))
	}
	defer func() { _ = rows.Close() }()

	var out []entity.ImportJob
	for rows.Next() {
		job, err := scanImportJob(rows)
		if err != nil {
			return nil, common.NewAppError("DB_ERROR", "scan import job", fmt.Errorf("%w: %v", common.ErrDatabase, err))
		}
		out = append(out, job)
	}
	return out, rows.Err()
}

func scanImportJob(rows *sql.Rows) (entity.ImportJob, error) {
	var (
		job                 entity.ImportJob
		id, batchID         string
		message, code       sql.NullString
		startedAt, finished sql.NullString
	)
	if err := rows.Scan(&id, &batchID, &job.FileName, &job.Status, &message, &code,
		&job.Tests, &job.Matched, &job.LowConfidence, &job.Unmatched, &startedAt, &finished); err != nil {
		return job, err
	}
	var err error
	if job.ID, err = uuid.Parse(id); err != nil {
		return job, err
	}
	if job.BatchID, err = uuid.Parse(batchID); err != nil {
		return job, err
	}
	if message.Valid {
		job.Message = &message.String
	}
	if code.Valid {
		job.ProductCode = &code.String
	}
	if job.StartedAt, err = parseTime(startedAt.String); err != nil {
		return job, err
	}
	if finished.Valid {
		t, err := parseTime(finished.String)
		if err != nil {
			return job, err
		}
		job.FinishedAt = &t
	}
	return job, nil
}

// fixed width so text ordering matches time ordering
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, errors.New("empty timestamp")
	}
	return time.Parse(timeLayout, s)
}
