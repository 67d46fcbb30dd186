package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/coaching-api/internal/dto"
	"github.com/noah-isme/coaching-api/internal/models"
	appErrors "github.com/noah-isme/coaching-api/pkg/errors"
)

type assignmentStore interface {
	Create(ctx context.Context, assignment *models.Assignment) error
	List(ctx context.Context, filter models.AssignmentFilter) ([]models.Assignment, error)
}

type projectStore interface {
	Create(ctx context.Context, project *models.StudentProject) error
	List(ctx context.Context, course, teacherID string) ([]models.StudentProject, error)
	UpdateScore(ctx context.Context, id string, score float64) (*models.StudentProject, error)
}

type studentLookup interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
}

// CourseworkService handles assignment uploads and student project submissions.
type CourseworkService struct {
	assignments assignmentStore
	projects    projectStore
	teachers    teacherLookup
	students    studentLookup
	files       *FileService
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewCourseworkService constructs a CourseworkService.
func NewCourseworkService(assignments assignmentStore, projects projectStore, teachers teacherLookup, students studentLookup, files *FileService, validate *validator.Validate, logger *zap.Logger) *CourseworkService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseworkService{
		assignments: assignments,
		projects:    projects,
		teachers:    teachers,
		students:    students,
		files:       files,
		validator:   validate,
		logger:      logger,
	}
}

// UploadAssignment stores an image or PDF for a course batch.
func (s *CourseworkService) UploadAssignment(ctx context.Context, meta dto.UploadAssignmentRequest, upload dto.UploadFile) (*dto.AssignmentView, error) {
	if err := s.validator.Struct(meta); err != nil {
		return nil, validationError(err, "invalid assignment payload")
	}
	if _, err := s.teachers.FindByID(ctx, meta.TeacherID); err != nil {
		return nil, lookupError(err, "teacher not found", "failed to load teacher")
	}
	blob, err := s.files.store("assignments", upload, assignmentMimes)
	if err != nil {
		return nil, err
	}
	assignment := &models.Assignment{
		Course:       meta.Course,
		TeacherID:    meta.TeacherID,
		BatchID:      meta.BatchID,
		Filename:     blob.Path,
		OriginalName: upload.Name,
		MimeType:     blob.MimeType,
		Size:         blob.Size,
	}
	if err := s.assignments.Create(ctx, assignment); err != nil {
		s.files.Discard(blob.Path)
		return nil, appErrors.Internal(err, "failed to save assignment")
	}
	return s.assignmentView(*assignment)
}

// ListAssignments returns a batch's assignments, newest first. course and
// batchId are required; teacherId narrows further.
func (s *CourseworkService) ListAssignments(ctx context.Context, filter models.AssignmentFilter) ([]dto.AssignmentView, error) {
	if filter.Course == "" || filter.BatchID == "" {
		return nil, invalid("course and batchId are required")
	}
	return s.listAssignments(ctx, filter)
}

// ListAssignmentsForStudent returns assignments with optional filters.
func (s *CourseworkService) ListAssignmentsForStudent(ctx context.Context, course, batchID string) ([]dto.AssignmentView, error) {
	return s.listAssignments(ctx, models.AssignmentFilter{Course: course, BatchID: batchID})
}

func (s *CourseworkService) listAssignments(ctx context.Context, filter models.AssignmentFilter) ([]dto.AssignmentView, error) {
	assignments, err := s.assignments.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list assignments")
	}
	views := make([]dto.AssignmentView, 0, len(assignments))
	for _, a := range assignments {
		view, err := s.assignmentView(a)
		if err != nil {
			return nil, err
		}
		views = append(views, *view)
	}
	return views, nil
}

// SubmitProject stores a student's image, PDF or zip submission.
func (s *CourseworkService) SubmitProject(ctx context.Context, meta dto.SubmitProjectRequest, upload dto.UploadFile) (*dto.ProjectView, error) {
	if err := s.validator.Struct(meta); err != nil {
		return nil, validationError(err, "invalid project payload")
	}
	if _, err := s.teachers.FindByID(ctx, meta.TeacherID); err != nil {
		return nil, lookupError(err, "teacher not found", "failed to load teacher")
	}
	if _, err := s.students.FindByID(ctx, meta.StudentID); err != nil {
		return nil, lookupError(err, "student not found", "failed to load student")
	}
	blob, err := s.files.store("projects", upload, projectMimes)
	if err != nil {
		return nil, err
	}
	project := &models.StudentProject{
		Course:       meta.Course,
		TeacherID:    meta.TeacherID,
		StudentID:    meta.StudentID,
		Filename:     blob.Path,
		OriginalName: upload.Name,
		MimeType:     blob.MimeType,
		Size:         blob.Size,
	}
	if err := s.projects.Create(ctx, project); err != nil {
		s.files.Discard(blob.Path)
		return nil, appErrors.Internal(err, "failed to save project")
	}
	return s.projectView(*project)
}

// ListProjects returns the projects submitted to a teacher for a course.
func (s *CourseworkService) ListProjects(ctx context.Context, course, teacherID string) ([]dto.ProjectView, error) {
	if course == "" || teacherID == "" {
		return nil, invalid("course and teacherId are required")
	}
	projects, err := s.projects.List(ctx, course, teacherID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list projects")
	}
	views := make([]dto.ProjectView, 0, len(projects))
	for _, p := range projects {
		view, err := s.projectView(p)
		if err != nil {
			return nil, err
		}
		views = append(views, *view)
	}
	return views, nil
}

// ScoreProject records a non-negative score.
func (s *CourseworkService) ScoreProject(ctx context.Context, req dto.ScoreProjectRequest) (*models.StudentProject, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid score payload")
	}
	project, err := s.projects.UpdateScore(ctx, req.ProjectID, *req.Score)
	if err != nil {
		return nil, lookupError(err, "project not found", "failed to score project")
	}
	return project, nil
}

func (s *CourseworkService) assignmentView(a models.Assignment) (*dto.AssignmentView, error) {
	link, err := s.files.Link(a.ID, a.Filename)
	if err != nil {
		return nil, err
	}
	return &dto.AssignmentView{Assignment: a, Download: link}, nil
}

func (s *CourseworkService) projectView(p models.StudentProject) (*dto.ProjectView, error) {
	link, err := s.files.Link(p.ID, p.Filename)
	if err != nil {
		return nil, err
	}
	return &dto.ProjectView{StudentProject: p, Download: link}, nil
}
