package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/coaching-api/internal/models"
)

const extensionColumns = "id, batch_id, teacher_id, reason, extra_classes, status, created_at, updated_at"

// ExtensionRequestRepository stores class extension requests.
type ExtensionRequestRepository struct {
	db *sqlx.DB
}

// NewExtensionRequestRepository constructs an ExtensionRequestRepository.
func NewExtensionRequestRepository(db *sqlx.DB) *ExtensionRequestRepository {
	return &ExtensionRequestRepository{db: db}
}

// Create inserts a request in pending state.
func (r *ExtensionRequestRepository) Create(ctx context.Context, req *models.ClassExtensionRequest) error {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	req.Status = models.ExtensionPending
	req.CreatedAt = now
	req.UpdatedAt = now
	const query = `INSERT INTO class_extension_requests (id, batch_id, teacher_id, reason, extra_classes, status, created_at, updated_at)
        VALUES (:id, :batch_id, :teacher_id, :reason, :extra_classes, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, req); err != nil {
		return fmt.Errorf("create extension request: %w", err)
	}
	return nil
}

// FindByID fetches a request. Missing rows surface as sql.ErrNoRows.
func (r *ExtensionRequestRepository) FindByID(ctx context.Context, id string) (*models.ClassExtensionRequest, error) {
	var req models.ClassExtensionRequest
	if err := r.db.GetContext(ctx, &req, "SELECT "+extensionColumns+" FROM class_extension_requests WHERE id = $1", id); err != nil {
		return nil, err
	}
	return &req, nil
}

// List returns every request, newest first.
func (r *ExtensionRequestRepository) List(ctx context.Context) ([]models.ClassExtensionRequest, error) {
	var reqs []models.ClassExtensionRequest
	if err := r.db.SelectContext(ctx, &reqs, "SELECT "+extensionColumns+" FROM class_extension_requests ORDER BY created_at DESC"); err != nil {
		return nil, fmt.Errorf("list extension requests: %w", err)
	}
	return reqs, nil
}

// Transition moves a request from one status to another. It returns
// sql.ErrNoRows when the request is absent or not in the from state.
func (r *ExtensionRequestRepository) Transition(ctx context.Context, id string, from, to models.ExtensionStatus) (*models.ClassExtensionRequest, error) {
	var req models.ClassExtensionRequest
	query := "UPDATE class_extension_requests SET status = $3, updated_at = $4 WHERE id = $1 AND status = $2 RETURNING " + extensionColumns
	if err := r.db.GetContext(ctx, &req, query, id, from, to, time.Now().UTC()); err != nil {
		return nil, err
	}
	return &req, nil
}
