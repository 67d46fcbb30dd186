package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/coaching-api/internal/dto"
	"github.com/noah-isme/coaching-api/internal/models"
	appErrors "github.com/noah-isme/coaching-api/pkg/errors"
)

const dateLayout = "2006-01-02"

type attendanceStore interface {
	DeleteFor(ctx context.Context, studentID, classID string, date time.Time) error
	Insert(ctx context.Context, record *models.Attendance) error
	ListByStudent(ctx context.Context, studentID string) ([]models.Attendance, error)
	ListByClass(ctx context.Context, classID string) ([]models.AttendanceRow, error)
}

// AttendanceService records attendance by overwriting each (student, class,
// day) mark with delete-then-insert.
type AttendanceService struct {
	repo      attendanceStore
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAttendanceService constructs an AttendanceService.
func NewAttendanceService(repo attendanceStore, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{repo: repo, validator: validate, logger: logger}
}

// Mark writes the batch record by record. Earlier records stay written if a
// later one fails.
func (s *AttendanceService) Mark(ctx context.Context, req dto.MarkAttendanceRequest) (*dto.MarkAttendanceResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid attendance payload")
	}
	day, err := parseDay(req.Date)
	if err != nil {
		return nil, invalid("date must be YYYY-MM-DD or RFC3339")
	}

	records := *req.Records
	for i, rec := range records {
		if err := s.repo.DeleteFor(ctx, rec.StudentID, req.ClassID, day); err != nil {
			return nil, s.partialFailure(err, req.ClassID, i, len(records))
		}
		row := &models.Attendance{
			StudentID: rec.StudentID,
			ClassID:   req.ClassID,
			Date:      day,
			Status:    models.AttendanceStatus(rec.Status),
			Reason:    rec.Reason,
		}
		if err := s.repo.Insert(ctx, row); err != nil {
			return nil, s.partialFailure(err, req.ClassID, i, len(records))
		}
	}
	return &dto.MarkAttendanceResult{ClassID: req.ClassID, Date: day.Format(dateLayout), Marked: len(records)}, nil
}

func (s *AttendanceService) partialFailure(err error, classID string, index, total int) error {
	s.logger.Warn("attendance batch interrupted", zap.String("class_id", classID), zap.Int("index", index), zap.Int("total", total), zap.Error(err))
	return appErrors.Internal(err, fmt.Sprintf("failed to mark attendance at record %d of %d", index, total))
}

// ListForStudent returns a student's attendance history.
func (s *AttendanceService) ListForStudent(ctx context.Context, studentID string) ([]models.Attendance, error) {
	records, err := s.repo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list attendance")
	}
	return records, nil
}

// ListForClass returns a class's attendance joined with student names.
func (s *AttendanceService) ListForClass(ctx context.Context, classID string) ([]models.AttendanceRow, error) {
	rows, err := s.repo.ListByClass(ctx, classID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list attendance")
	}
	return rows, nil
}

// parseDay truncates a date or timestamp to its UTC calendar day.
func parseDay(raw string) (time.Time, error) {
	if t, err := time.Parse(dateLayout, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, err
	}
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}
