package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/coaching-api/internal/models"
)

// CareerRepository stores career applications.
type CareerRepository struct {
	db *sqlx.DB
}

// NewCareerRepository constructs a CareerRepository.
func NewCareerRepository(db *sqlx.DB) *CareerRepository {
	return &CareerRepository{db: db}
}

// Create inserts an application.
func (r *CareerRepository) Create(ctx context.Context, app *models.CareerApplication) error {
	if app.ID == "" {
		app.ID = uuid.NewString()
	}
	app.CreatedAt = time.Now().UTC()
	const query = `INSERT INTO career_applications (id, name, phone, email, address, resume, created_at)
        VALUES (:id, :name, :phone, :email, :address, :resume, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, app); err != nil {
		return fmt.Errorf("create career application: %w", err)
	}
	return nil
}

// List returns every application, newest first.
func (r *CareerRepository) List(ctx context.Context) ([]models.CareerApplication, error) {
	var apps []models.CareerApplication
	const query = `SELECT id, name, phone, email, address, resume, created_at FROM career_applications ORDER BY created_at DESC`
	if err := r.db.SelectContext(ctx, &apps, query); err != nil {
		return nil, fmt.Errorf("list career applications: %w", err)
	}
	return apps, nil
}
