package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/emberfeed/emberfeed/internal/models"
)

type DispatchHistoryRepository interface {
	Create(ctx context.Context, dr *models.DispatchRecord) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.DispatchRecord, error)
	ListRecent(ctx context.Context, limit int) ([]*models.DispatchRecord, error)
	ListByBatchID(ctx context.Context, batchID string) ([]*models.DispatchRecord, error)
}

type dispatchHistoryRepository struct {
	db *sql.DB
}

func NewDispatchHistoryRepository(db *sql.DB) DispatchHistoryRepository {
	return &dispatchHistoryRepository{db: db}
}

func (r *dispatchHistoryRepository) Create(ctx context.Context, dr *models.DispatchRecord) (int64, error) {
	query := `
		INSERT INTO dispatch_history (batch_id, tab, row_index, post_text, posted, error_message)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query, dr.BatchID, dr.Tab, dr.RowIndex, dr.PostText, dr.Posted, dr.ErrorMessage).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func (r *dispatchHistoryRepository) GetByID(ctx context.Context, id int64) (*models.DispatchRecord, error) {
	query := `SELECT id, batch_id, tab, row_index, post_text, posted, error_message, created_at FROM dispatch_history WHERE id = $1`
	row := r.db.QueryRowContext(ctx, query, id)

	var dr models.DispatchRecord
	err := row.Scan(&dr.ID, &dr.BatchID, &dr.Tab, &dr.RowIndex, &dr.PostText, &dr.Posted, &dr.ErrorMessage, &dr.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	return &dr, nil
}

func (r *dispatchHistoryRepository) ListRecent(ctx context.Context, limit int) ([]*models.DispatchRecord, error) {
	query := `SELECT id, batch_id, tab, row_index, post_text, posted, error_message, created_at FROM dispatch_history ORDER BY created_at DESC LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	return scanDispatchRecords(rows)
}

func (r *dispatchHistoryRepository) ListByBatchID(ctx context.Context, batchID string) ([]*models.DispatchRecord, error) {
	query := `SELECT id, batch_id, tab, row_index, post_text, posted, error_message, created_at FROM dispatch_history WHERE batch_id = $1 ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, batchID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	return scanDispatchRecords(rows)
}

func scanDispatchRecords(rows *sql.Rows) ([]*models.DispatchRecord, error) {
	var drs []*models.DispatchRecord
	for rows.Next() {
		var dr models.DispatchRecord
		err := rows.Scan(&dr.ID, &dr.BatchID, &dr.Tab, &dr.RowIndex, &dr.PostText, &dr.Posted, &dr.ErrorMessage, &dr.CreatedAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		drs = append(drs, &dr)
	}
	return drs, nil
}
