package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/noah-isme/coaching-api/internal/dto"
	"github.com/noah-isme/coaching-api/internal/models"
	appErrors "github.com/noah-isme/coaching-api/pkg/errors"
)

const clockLayout = "15:04"

type classStore interface {
	List(ctx context.Context, filter models.ClassFilter) ([]models.Class, error)
	FindByID(ctx context.Context, id string) (*models.Class, error)
	Create(ctx context.Context, class *models.Class) error
	Update(ctx context.Context, class *models.Class) error
	SetLive(ctx context.Context, id string, live bool, meetLink *string) error
	Delete(ctx context.Context, id string) error
}

type teacherLookup interface {
	FindByID(ctx context.Context, id string) (*models.Teacher, error)
}

// ClassService authors recurring templates and sessions. A template is a
// single row standing in for its whole series; occurrences are never
// materialised.
type ClassService struct {
	classes   classStore
	teachers  teacherLookup
	validator *validator.Validate
	logger    *zap.Logger
}

// NewClassService constructs a ClassService.
func NewClassService(classes classStore, teachers teacherLookup, validate *validator.Validate, logger *zap.Logger) *ClassService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClassService{classes: classes, teachers: teachers, validator: validate, logger: logger}
}

// CreateRecurringClass stores one template row for teacherID. A teacherId in
// the body must match the path.
func (s *ClassService) CreateRecurringClass(ctx context.Context, teacherID string, req dto.CreateClassRequest) (*models.Class, error) {
	if req.TeacherID == "" {
		req.TeacherID = teacherID
	}
	if teacherID != "" && req.TeacherID != teacherID {
		return nil, invalid("teacherId does not match path")
	}
	if err := s.validateSchedule(&req); err != nil {
		return nil, err
	}
	if err := s.ensureTeacher(ctx, req.TeacherID); err != nil {
		return nil, err
	}

	class := newClassFromRequest(req)
	class.IsRecurring = true
	if err := s.classes.Create(ctx, class); err != nil {
		return nil, appErrors.Internal(err, "failed to create class")
	}
	s.logger.Info("recurring class created", zap.String("class_id", class.ID), zap.String("teacher_id", class.TeacherID),
		zap.Int("duration", class.Duration), zap.String("frequency", class.Frequency))
	return class, nil
}

// CreateSession stores a one-off class, optionally linked to its template.
func (s *ClassService) CreateSession(ctx context.Context, req dto.CreateClassRequest) (*models.Class, error) {
	if err := s.validateSchedule(&req); err != nil {
		return nil, err
	}
	if err := s.ensureTeacher(ctx, req.TeacherID); err != nil {
		return nil, err
	}
	if req.RecurringID != nil && *req.RecurringID != "" {
		parent, err := s.classes.FindByID(ctx, *req.RecurringID)
		if err != nil {
			return nil, lookupError(err, "recurring class not found", "failed to load recurring class")
		}
		if !parent.IsRecurring {
			return nil, invalid("recurringId must reference a recurring class")
		}
	} else {
		req.RecurringID = nil
	}

	class := newClassFromRequest(req)
	class.RecurringID = req.RecurringID
	if err := s.classes.Create(ctx, class); err != nil {
		return nil, appErrors.Internal(err, "failed to create class")
	}
	return class, nil
}

// ListClassesForTeacher returns templates and sessions by start time ascending.
func (s *ClassService) ListClassesForTeacher(ctx context.Context, teacherID string) ([]models.Class, error) {
	classes, err := s.classes.List(ctx, models.ClassFilter{TeacherID: teacherID})
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list classes")
	}
	return classes, nil
}

// ListClasses returns classes matching the filter.
func (s *ClassService) ListClasses(ctx context.Context, filter models.ClassFilter) ([]models.Class, error) {
	if filter.Kind != "" && filter.Kind != models.ClassKindTemplate && filter.Kind != models.ClassKindSession {
		return nil, invalid("kind must be template or session")
	}
	classes, err := s.classes.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list classes")
	}
	return classes, nil
}

// GetClass returns a class by id.
func (s *ClassService) GetClass(ctx context.Context, id string) (*models.Class, error) {
	class, err := s.classes.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "class not found", "failed to load class")
	}
	return class, nil
}

// UpdateClass replaces the schedule of a class. Editing a template updates
// the whole series.
func (s *ClassService) UpdateClass(ctx context.Context, id string, req dto.UpdateClassRequest) (*models.Class, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid class payload")
	}
	start, end, err := canonicalClock(req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}
	class, err := s.classes.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "class not found", "failed to load class")
	}
	class.Course = req.Course
	class.StartTime = start
	class.EndTime = end
	class.StartDate = req.StartDate
	class.StudentIDs = uniqueIDs(req.StudentIDs)
	class.MeetLink = req.MeetLink
	if req.Duration != nil {
		class.Duration = *req.Duration
	}
	if req.Frequency != "" {
		class.Frequency = req.Frequency
	}
	if err := s.classes.Update(ctx, class); err != nil {
		return nil, lookupError(err, "class not found", "failed to update class")
	}
	return class, nil
}

// SetLive toggles live delivery for a class. Teachers may only toggle their
// own classes.
func (s *ClassService) SetLive(ctx context.Context, id string, req dto.SetLiveRequest, caller *models.JWTClaims) (*models.Class, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid live payload")
	}
	class, err := s.GetClass(ctx, id)
	if err != nil {
		return nil, err
	}
	if caller != nil && caller.Role == models.RoleTeacher && caller.UserID != class.TeacherID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "class belongs to another teacher")
	}
	if err := s.classes.SetLive(ctx, id, req.IsLive, req.MeetLink); err != nil {
		return nil, lookupError(err, "class not found", "failed to update class")
	}
	return s.GetClass(ctx, id)
}

// DeleteClass removes a class by id without cascading.
func (s *ClassService) DeleteClass(ctx context.Context, id string) error {
	if err := s.classes.Delete(ctx, id); err != nil {
		return lookupError(err, "class not found", "failed to delete class")
	}
	return nil
}

// validateSchedule checks the payload and rewrites the clock fields to
// zero-padded HH:MM so start_time orders correctly as text.
func (s *ClassService) validateSchedule(req *dto.CreateClassRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return validationError(err, "invalid class payload")
	}
	start, end, err := canonicalClock(req.StartTime, req.EndTime)
	if err != nil {
		return err
	}
	req.StartTime, req.EndTime = start, end
	return nil
}

func (s *ClassService) ensureTeacher(ctx context.Context, id string) error {
	if _, err := s.teachers.FindByID(ctx, id); err != nil {
		return lookupError(err, "teacher not found", "failed to load teacher")
	}
	return nil
}

func newClassFromRequest(req dto.CreateClassRequest) *models.Class {
	class := &models.Class{
		Course:     req.Course,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		StartDate:  req.StartDate,
		TeacherID:  req.TeacherID,
		StudentIDs: uniqueIDs(req.StudentIDs),
		Duration:   models.DefaultClassDuration,
		Frequency:  models.FrequencyWeekday,
		MeetLink:   req.MeetLink,
	}
	if req.Duration != nil {
		class.Duration = *req.Duration
	}
	if req.Frequency != "" {
		class.Frequency = req.Frequency
	}
	return class
}

func canonicalClock(start, end string) (string, string, error) {
	from, err := time.Parse(clockLayout, start)
	if err != nil {
		return "", "", invalid("startTime must be HH:MM")
	}
	to, err := time.Parse(clockLayout, end)
	if err != nil {
		return "", "", invalid("endTime must be HH:MM")
	}
	if !to.After(from) {
		return "", "", invalid("endTime must be after startTime")
	}
	return from.Format(clockLayout), to.Format(clockLayout), nil
}

func uniqueIDs(ids []string) pq.StringArray {
	out := pq.StringArray{}
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
