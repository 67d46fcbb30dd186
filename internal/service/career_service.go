package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/coaching-api/internal/dto"
	"github.com/noah-isme/coaching-api/internal/models"
	appErrors "github.com/noah-isme/coaching-api/pkg/errors"
)

type careerStore interface {
	Create(ctx context.Context, app *models.CareerApplication) error
	List(ctx context.Context) ([]models.CareerApplication, error)
}

// CareerService accepts job applications with resumes.
type CareerService struct {
	repo      careerStore
	files     *FileService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCareerService constructs a CareerService.
func NewCareerService(repo careerStore, files *FileService, validate *validator.Validate, logger *zap.Logger) *CareerService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CareerService{repo: repo, files: files, validator: validate, logger: logger}
}

// Submit stores the resume and records the application.
func (s *CareerService) Submit(ctx context.Context, req dto.CareerApplicationRequest, resume dto.UploadFile) (*dto.CareerApplicationView, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid application payload")
	}
	blob, err := s.files.store("resumes", resume, resumeMimes)
	if err != nil {
		return nil, err
	}
	app := &models.CareerApplication{
		Name:    req.Name,
		Phone:   req.Phone,
		Email:   req.Email,
		Address: req.Address,
		Resume:  blob.Path,
	}
	if err := s.repo.Create(ctx, app); err != nil {
		s.files.Discard(blob.Path)
		return nil, appErrors.Internal(err, "failed to save application")
	}
	return s.view(*app)
}

// List returns applications, newest first.
func (s *CareerService) List(ctx context.Context) ([]dto.CareerApplicationView, error) {
	apps, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list applications")
	}
	views := make([]dto.CareerApplicationView, 0, len(apps))
	for _, a := range apps {
		view, err := s.view(a)
		if err != nil {
			return nil, err
		}
		views = append(views, *view)
	}
	return views, nil
}

func (s *CareerService) view(a models.CareerApplication) (*dto.CareerApplicationView, error) {
	link, err := s.files.Link(a.ID, a.Resume)
	if err != nil {
		return nil, err
	}
	return &dto.CareerApplicationView{CareerApplication: a, Download: link}, nil
}
