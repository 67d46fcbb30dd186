package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/coaching-api/internal/dto"
	"github.com/noah-isme/coaching-api/internal/models"
	appErrors "github.com/noah-isme/coaching-api/pkg/errors"
)

type extensionStore interface {
	Create(ctx context.Context, req *models.ClassExtensionRequest) error
	FindByID(ctx context.Context, id string) (*models.ClassExtensionRequest, error)
	List(ctx context.Context) ([]models.ClassExtensionRequest, error)
	Transition(ctx context.Context, id string, from, to models.ExtensionStatus) (*models.ClassExtensionRequest, error)
}

type classLookup interface {
	FindByID(ctx context.Context, id string) (*models.Class, error)
}

// ExtensionRequestService manages requests for extra class sessions.
// Status moves one way: pending to approved or rejected.
type ExtensionRequestService struct {
	repo      extensionStore
	classes   classLookup
	teachers  teacherLookup
	validator *validator.Validate
	logger    *zap.Logger
}

// NewExtensionRequestService constructs an ExtensionRequestService.
func NewExtensionRequestService(repo extensionStore, classes classLookup, teachers teacherLookup, validate *validator.Validate, logger *zap.Logger) *ExtensionRequestService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExtensionRequestService{repo: repo, classes: classes, teachers: teachers, validator: validate, logger: logger}
}

// Create files a pending request for an existing class and teacher.
func (s *ExtensionRequestService) Create(ctx context.Context, req dto.CreateExtensionRequest) (*models.ClassExtensionRequest, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid extension request payload")
	}
	if _, err := s.classes.FindByID(ctx, req.BatchID); err != nil {
		return nil, lookupError(err, "class not found", "failed to load class")
	}
	if _, err := s.teachers.FindByID(ctx, req.TeacherID); err != nil {
		return nil, lookupError(err, "teacher not found", "failed to load teacher")
	}
	record := &models.ClassExtensionRequest{
		BatchID:      req.BatchID,
		TeacherID:    req.TeacherID,
		Reason:       req.Reason,
		ExtraClasses: req.ExtraClasses,
	}
	if err := s.repo.Create(ctx, record); err != nil {
		return nil, appErrors.Internal(err, "failed to create extension request")
	}
	return record, nil
}

// List returns every request, newest first.
func (s *ExtensionRequestService) List(ctx context.Context) ([]models.ClassExtensionRequest, error) {
	reqs, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list extension requests")
	}
	return reqs, nil
}

// Approve moves a pending request to approved.
func (s *ExtensionRequestService) Approve(ctx context.Context, id string) (*models.ClassExtensionRequest, error) {
	return s.transition(ctx, id, models.ExtensionApproved)
}

// Reject moves a pending request to rejected.
func (s *ExtensionRequestService) Reject(ctx context.Context, id string) (*models.ClassExtensionRequest, error) {
	return s.transition(ctx, id, models.ExtensionRejected)
}

func (s *ExtensionRequestService) transition(ctx context.Context, id string, to models.ExtensionStatus) (*models.ClassExtensionRequest, error) {
	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "extension request not found", "failed to load extension request")
	}
	if current.Status != models.ExtensionPending {
		return nil, appErrors.Clone(appErrors.ErrConflict, "extension request already "+string(current.Status))
	}
	updated, err := s.repo.Transition(ctx, id, models.ExtensionPending, to)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "extension request is no longer pending")
		}
		return nil, appErrors.Internal(err, "failed to update extension request")
	}
	s.logger.Info("extension request decided", zap.String("id", id), zap.String("status", string(to)))
	return updated, nil
}
