package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/coaching-api/internal/models"
	appErrors "github.com/noah-isme/coaching-api/pkg/errors"
	"github.com/noah-isme/coaching-api/pkg/export"
)

type rosterSource interface {
	GetTeacher(ctx context.Context, id string) (*models.TeacherDetail, error)
}

type classAttendanceSource interface {
	GetClass(ctx context.Context, id string) (*models.Class, error)
}

type attendanceSource interface {
	ListForClass(ctx context.Context, classID string) ([]models.AttendanceRow, error)
}

// ExportFile is a rendered document ready to be streamed to the client.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ExportService renders roster and attendance sheets as CSV, PDF or XLSX.
type ExportService struct {
	roster     rosterSource
	classes    classAttendanceSource
	attendance attendanceSource
	logger     *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(roster rosterSource, classes classAttendanceSource, attendance attendanceSource, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{roster: roster, classes: classes, attendance: attendance, logger: logger}
}

var rosterHeaders = []string{"Name", "Phone", "Email", "Course"}

// ExportRoster renders a teacher's roster.
func (s *ExportService) ExportRoster(ctx context.Context, teacherID, format string) (*ExportFile, error) {
	exporter, err := exporterFor(format)
	if err != nil {
		return nil, err
	}
	detail, err := s.roster.GetTeacher(ctx, teacherID)
	if err != nil {
		return nil, err
	}
	dataset := export.Dataset{
		Title:   fmt.Sprintf("Students of %s", detail.Name),
		Headers: rosterHeaders,
		Rows:    make([]map[string]string, 0, len(detail.Students)),
	}
	for _, st := range detail.Students {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Name":   st.Name,
			"Phone":  st.Number,
			"Email":  st.Email,
			"Course": st.Course,
		})
	}
	return s.render(exporter, dataset, "roster-"+teacherID)
}

var attendanceHeaders = []string{"Date", "Student", "Status", "Reason"}

// ExportClassAttendance renders every attendance record of a class.
func (s *ExportService) ExportClassAttendance(ctx context.Context, classID, format string) (*ExportFile, error) {
	exporter, err := exporterFor(format)
	if err != nil {
		return nil, err
	}
	class, err := s.classes.GetClass(ctx, classID)
	if err != nil {
		return nil, err
	}
	rows, err := s.attendance.ListForClass(ctx, classID)
	if err != nil {
		return nil, err
	}
	dataset := export.Dataset{
		Title:   fmt.Sprintf("Attendance for %s %s-%s", class.Course, class.StartTime, class.EndTime),
		Headers: attendanceHeaders,
		Rows:    make([]map[string]string, 0, len(rows)),
	}
	for _, row := range rows {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Date":    row.Date.Format("2006-01-02"),
			"Student": row.StudentName,
			"Status":  string(row.Status),
			"Reason":  deref(row.Reason),
		})
	}
	return s.render(exporter, dataset, "attendance-"+classID)
}

func (s *ExportService) render(exporter export.Exporter, dataset export.Dataset, name string) (*ExportFile, error) {
	data, err := exporter.Render(dataset)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to render export")
	}
	s.logger.Debug("export rendered", zap.String("name", name), zap.String("format", exporter.Extension()), zap.Int("rows", len(dataset.Rows)))
	return &ExportFile{
		Filename:    name + "." + exporter.Extension(),
		ContentType: exporter.ContentType(),
		Data:        data,
	}, nil
}

func exporterFor(format string) (export.Exporter, error) {
	exporter, err := export.ForFormat(strings.ToLower(strings.TrimSpace(format)))
	if err != nil {
		return nil, invalid("format must be csv, pdf or xlsx")
	}
	return exporter, nil
}
