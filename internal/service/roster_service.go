package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/coaching-api/internal/dto"
	"github.com/noah-isme/coaching-api/internal/models"
	appErrors "github.com/noah-isme/coaching-api/pkg/errors"
)

type studentStore interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error)
	FindByID(ctx context.Context, id string) (*models.Student, error)
	ListByTeacher(ctx context.Context, teacherID string) ([]models.Student, error)
	ListSummariesByIDs(ctx context.Context, ids []string) ([]models.StudentSummary, error)
	ExistsByNumber(ctx context.Context, number, excludeID string) (bool, error)
	ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
	SetTeacher(ctx context.Context, studentID, teacherID string) error
	ClearTeacherIf(ctx context.Context, studentID, teacherID string) (bool, error)
	ClearTeacherForAll(ctx context.Context, teacherID string) (int64, error)
	Delete(ctx context.Context, id string) error
}

type teacherStore interface {
	List(ctx context.Context, filter models.TeacherFilter) ([]models.Teacher, int, error)
	FindByID(ctx context.Context, id string) (*models.Teacher, error)
	ExistsByNumber(ctx context.Context, number, excludeID string) (bool, error)
	ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error)
	Create(ctx context.Context, teacher *models.Teacher) error
	Update(ctx context.Context, teacher *models.Teacher) error
	AddStudent(ctx context.Context, teacherID, studentID string) error
	RemoveStudent(ctx context.Context, teacherID, studentID string) error
	Delete(ctx context.Context, id string) error
}

// scanInvalidator drops cached integrity reports after roster mutations.
type scanInvalidator interface {
	InvalidateScan(ctx context.Context)
}

// RosterConfig tunes roster mutations.
type RosterConfig struct {
	// EvictOnReassign is the default for AssignStudentRequest.EvictPrevious.
	EvictOnReassign bool
}

// RosterService keeps the teacher roster and the student back-reference in
// agreement. The two sides live in separate rows and are written in a fixed
// order without a transaction; a failure between steps leaves a one-sided
// link that IntegrityService.Scan reports.
type RosterService struct {
	students   studentStore
	teachers   teacherStore
	invalidate scanInvalidator
	validator  *validator.Validate
	logger     *zap.Logger
	cfg        RosterConfig
}

// NewRosterService constructs a RosterService.
func NewRosterService(students studentStore, teachers teacherStore, invalidate scanInvalidator, validate *validator.Validate, logger *zap.Logger, cfg RosterConfig) *RosterService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RosterService{students: students, teachers: teachers, invalidate: invalidate, validator: validate, logger: logger, cfg: cfg}
}

// CreateStudent enrolls a student and adds it to the teacher's roster. The
// teacher is resolved before any write.
func (s *RosterService) CreateStudent(ctx context.Context, req dto.CreateStudentRequest) (*dto.CreatedStudent, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid student payload")
	}
	if err := s.ensureStudentUnique(ctx, req.Number, req.Email, ""); err != nil {
		return nil, err
	}
	teacher, err := s.teachers.FindByID(ctx, req.TeacherID)
	if err != nil {
		return nil, lookupError(err, "teacher not found", "failed to load teacher")
	}
	hash, err := hashPassword(req.Password)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to hash password")
	}

	student := &models.Student{
		Name:         req.Name,
		Number:       req.Number,
		Email:        req.Email,
		Course:       req.Course,
		Address:      req.Address,
		PasswordHash: hash,
		TeacherID:    &teacher.ID,
	}
	if err := s.students.Create(ctx, student); err != nil {
		return nil, appErrors.Internal(err, "failed to create student")
	}
	defer s.invalidateScan(ctx)
	if err := s.teachers.AddStudent(ctx, teacher.ID, student.ID); err != nil {
		s.logger.Warn("roster add failed after student insert",
			zap.String("teacher_id", teacher.ID), zap.String("student_id", student.ID), zap.Error(err))
		return nil, appErrors.Internal(err, "student created but roster update failed")
	}
	s.logger.Info("student enrolled", zap.String("student_id", student.ID), zap.String("teacher_id", teacher.ID))
	return &dto.CreatedStudent{Student: *student, InitialPassword: req.Password}, nil
}

// UpdateStudent applies a partial profile update. A teacher change is
// routed through the assignment sequence.
func (s *RosterService) UpdateStudent(ctx context.Context, id string, req dto.UpdateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid student payload")
	}
	student, err := s.students.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "student not found", "failed to load student")
	}
	number, email := student.Number, student.Email
	if req.Number != nil {
		number = *req.Number
	}
	if req.Email != nil {
		email = *req.Email
	}
	if err := s.ensureStudentUnique(ctx, number, email, id); err != nil {
		return nil, err
	}
	var newTeacher *models.Teacher
	if req.TeacherID != nil && !student.OwnedBy(*req.TeacherID) {
		newTeacher, err = s.teachers.FindByID(ctx, *req.TeacherID)
		if err != nil {
			return nil, lookupError(err, "teacher not found", "failed to load teacher")
		}
	}

	student.Number, student.Email = number, email
	applyString(&student.Name, req.Name)
	applyString(&student.Course, req.Course)
	applyString(&student.Address, req.Address)
	if req.Password != nil {
		if student.PasswordHash, err = hashPassword(*req.Password); err != nil {
			return nil, appErrors.Internal(err, "failed to hash password")
		}
	}
	if err := s.students.Update(ctx, student); err != nil {
		return nil, lookupError(err, "student not found", "failed to update student")
	}
	if newTeacher != nil {
		if err := s.assign(ctx, newTeacher, student, s.cfg.EvictOnReassign); err != nil {
			return nil, err
		}
	}
	return s.GetStudent(ctx, id)
}

// AssignStudentToTeacher adds the student to the teacher's roster, then
// points the student at the teacher. With eviction the previous owner's
// roster entry is removed last.
func (s *RosterService) AssignStudentToTeacher(ctx context.Context, teacherID string, req dto.AssignStudentRequest) (*models.Teacher, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid assignment payload")
	}
	teacher, err := s.teachers.FindByID(ctx, teacherID)
	if err != nil {
		return nil, lookupError(err, "teacher not found", "failed to load teacher")
	}
	student, err := s.students.FindByID(ctx, req.StudentID)
	if err != nil {
		return nil, lookupError(err, "student not found", "failed to load student")
	}
	evict := s.cfg.EvictOnReassign
	if req.EvictPrevious != nil {
		evict = *req.EvictPrevious
	}
	if err := s.assign(ctx, teacher, student, evict); err != nil {
		return nil, err
	}
	return s.reloadTeacher(ctx, teacherID)
}

func (s *RosterService) assign(ctx context.Context, teacher *models.Teacher, student *models.Student, evict bool) error {
	defer s.invalidateScan(ctx)
	previous := student.TeacherID

	if err := s.teachers.AddStudent(ctx, teacher.ID, student.ID); err != nil {
		return appErrors.Internal(err, "failed to update roster")
	}
	if err := s.students.SetTeacher(ctx, student.ID, teacher.ID); err != nil {
		s.logger.Warn("back-reference update failed after roster add",
			zap.String("teacher_id", teacher.ID), zap.String("student_id", student.ID), zap.Error(err))
		return appErrors.Internal(err, "roster updated but student back-reference failed")
	}
	student.TeacherID = &teacher.ID

	if evict && previous != nil && *previous != teacher.ID {
		if err := s.teachers.RemoveStudent(ctx, *previous, student.ID); err != nil {
			s.logger.Warn("previous roster eviction failed",
				zap.String("teacher_id", *previous), zap.String("student_id", student.ID), zap.Error(err))
			return appErrors.Internal(err, "student reassigned but previous roster eviction failed")
		}
	}
	return nil
}

// RemoveStudentFromTeacher drops the roster entry and clears the student's
// back-reference only when it still points at this teacher.
func (s *RosterService) RemoveStudentFromTeacher(ctx context.Context, teacherID, studentID string) (*models.Teacher, error) {
	if _, err := s.teachers.FindByID(ctx, teacherID); err != nil {
		return nil, lookupError(err, "teacher not found", "failed to load teacher")
	}
	if _, err := s.students.FindByID(ctx, studentID); err != nil {
		return nil, lookupError(err, "student not found", "failed to load student")
	}
	defer s.invalidateScan(ctx)
	if err := s.teachers.RemoveStudent(ctx, teacherID, studentID); err != nil {
		return nil, appErrors.Internal(err, "failed to update roster")
	}
	if _, err := s.students.ClearTeacherIf(ctx, studentID, teacherID); err != nil {
		s.logger.Warn("back-reference clear failed after roster removal",
			zap.String("teacher_id", teacherID), zap.String("student_id", studentID), zap.Error(err))
		return nil, appErrors.Internal(err, "roster updated but student back-reference failed")
	}
	return s.reloadTeacher(ctx, teacherID)
}

// DeleteStudent removes the student from its owner's roster before the
// record itself is deleted.
func (s *RosterService) DeleteStudent(ctx context.Context, id string) error {
	student, err := s.students.FindByID(ctx, id)
	if err != nil {
		return lookupError(err, "student not found", "failed to load student")
	}
	defer s.invalidateScan(ctx)
	if student.TeacherID != nil {
		if err := s.teachers.RemoveStudent(ctx, *student.TeacherID, id); err != nil {
			return appErrors.Internal(err, "failed to update roster")
		}
	}
	if err := s.students.Delete(ctx, id); err != nil {
		s.logger.Warn("student delete failed after roster removal",
			zap.String("teacher_id", deref(student.TeacherID)), zap.String("student_id", id), zap.Error(err))
		return lookupError(err, "student not found", "failed to delete student")
	}
	return nil
}

// DeleteTeacher orphans every student referencing the teacher, then deletes it.
func (s *RosterService) DeleteTeacher(ctx context.Context, id string) error {
	if _, err := s.teachers.FindByID(ctx, id); err != nil {
		return lookupError(err, "teacher not found", "failed to load teacher")
	}
	defer s.invalidateScan(ctx)
	orphaned, err := s.students.ClearTeacherForAll(ctx, id)
	if err != nil {
		return appErrors.Internal(err, "failed to release students")
	}
	if err := s.teachers.Delete(ctx, id); err != nil {
		s.logger.Warn("teacher delete failed after releasing students", zap.String("teacher_id", id), zap.Error(err))
		return lookupError(err, "teacher not found", "failed to delete teacher")
	}
	s.logger.Info("teacher deleted", zap.String("teacher_id", id), zap.Int64("orphaned_students", orphaned))
	return nil
}

// CreateTeacher registers a teacher with an empty roster.
func (s *RosterService) CreateTeacher(ctx context.Context, req dto.CreateTeacherRequest) (*models.Teacher, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid teacher payload")
	}
	if err := s.ensureTeacherUnique(ctx, req.Number, req.Email, ""); err != nil {
		return nil, err
	}
	hash, err := hashPassword(req.Password)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to hash password")
	}
	teacher := &models.Teacher{
		Name:         req.Name,
		Number:       req.Number,
		Email:        req.Email,
		Course:       req.Course,
		Address:      req.Address,
		PasswordHash: hash,
	}
	if err := s.teachers.Create(ctx, teacher); err != nil {
		return nil, appErrors.Internal(err, "failed to create teacher")
	}
	return teacher, nil
}

// UpdateTeacher applies a partial teacher profile update.
func (s *RosterService) UpdateTeacher(ctx context.Context, id string, req dto.UpdateTeacherRequest) (*models.Teacher, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid teacher payload")
	}
	teacher, err := s.teachers.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "teacher not found", "failed to load teacher")
	}
	applyString(&teacher.Number, req.Number)
	applyString(&teacher.Email, req.Email)
	if err := s.ensureTeacherUnique(ctx, teacher.Number, teacher.Email, id); err != nil {
		return nil, err
	}
	applyString(&teacher.Name, req.Name)
	applyString(&teacher.Course, req.Course)
	applyString(&teacher.Address, req.Address)
	if req.Password != nil {
		if teacher.PasswordHash, err = hashPassword(*req.Password); err != nil {
			return nil, appErrors.Internal(err, "failed to hash password")
		}
	}
	if err := s.teachers.Update(ctx, teacher); err != nil {
		return nil, lookupError(err, "teacher not found", "failed to update teacher")
	}
	return teacher, nil
}

// GetTeacher returns a teacher with its roster resolved.
func (s *RosterService) GetTeacher(ctx context.Context, id string) (*models.TeacherDetail, error) {
	teacher, err := s.teachers.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "teacher not found", "failed to load teacher")
	}
	students, err := s.students.ListSummariesByIDs(ctx, teacher.StudentIDs)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load roster")
	}
	return &models.TeacherDetail{Teacher: *teacher, Students: students}, nil
}

// ListTeachers returns teachers and pagination metadata.
func (s *RosterService) ListTeachers(ctx context.Context, filter models.TeacherFilter) ([]models.Teacher, *models.Pagination, error) {
	teachers, total, err := s.teachers.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to list teachers")
	}
	return teachers, pagination(filter.Page, filter.PageSize, total), nil
}

// GetStudent returns a single student.
func (s *RosterService) GetStudent(ctx context.Context, id string) (*models.Student, error) {
	student, err := s.students.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "student not found", "failed to load student")
	}
	return student, nil
}

// ListStudents returns students and pagination metadata.
func (s *RosterService) ListStudents(ctx context.Context, filter models.StudentFilter) ([]models.Student, *models.Pagination, error) {
	students, total, err := s.students.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to list students")
	}
	return students, pagination(filter.Page, filter.PageSize, total), nil
}

// ListStudentsByTeacher returns the students pointing at the teacher.
func (s *RosterService) ListStudentsByTeacher(ctx context.Context, teacherID string) ([]models.Student, error) {
	if _, err := s.teachers.FindByID(ctx, teacherID); err != nil {
		return nil, lookupError(err, "teacher not found", "failed to load teacher")
	}
	students, err := s.students.ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list students")
	}
	return students, nil
}

func (s *RosterService) ensureStudentUnique(ctx context.Context, number, email, excludeID string) error {
	taken, err := s.students.ExistsByNumber(ctx, number, excludeID)
	if err != nil {
		return appErrors.Internal(err, "failed to validate phone number")
	}
	if taken {
		return appErrors.Clone(appErrors.ErrConflict, "phone number already used by another student")
	}
	taken, err = s.students.ExistsByEmail(ctx, email, excludeID)
	if err != nil {
		return appErrors.Internal(err, "failed to validate email")
	}
	if taken {
		return appErrors.Clone(appErrors.ErrConflict, "email already used by another student")
	}
	return nil
}

func (s *RosterService) ensureTeacherUnique(ctx context.Context, number, email, excludeID string) error {
	taken, err := s.teachers.ExistsByNumber(ctx, number, excludeID)
	if err != nil {
		return appErrors.Internal(err, "failed to validate phone number")
	}
	if taken {
		return appErrors.Clone(appErrors.ErrConflict, "phone number already used by another teacher")
	}
	taken, err = s.teachers.ExistsByEmail(ctx, email, excludeID)
	if err != nil {
		return appErrors.Internal(err, "failed to validate email")
	}
	if taken {
		return appErrors.Clone(appErrors.ErrConflict, "email already used by another teacher")
	}
	return nil
}

func (s *RosterService) reloadTeacher(ctx context.Context, id string) (*models.Teacher, error) {
	teacher, err := s.teachers.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "teacher not found", "failed to reload teacher")
	}
	return teacher, nil
}

func (s *RosterService) invalidateScan(ctx context.Context) {
	if s.invalidate != nil {
		s.invalidate.InvalidateScan(ctx)
	}
}

// passwordCost is lowered in tests.
var passwordCost = bcrypt.DefaultCost

func hashPassword(raw string) (string, error) {
	if raw == "" {
		return "", errors.New("empty password")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(raw), passwordCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func applyString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func deref(ptr *string) string {
	if ptr == nil {
		return ""
	}
	return *ptr
}

func pagination(page, size, total int) *models.Pagination {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 20
	}
	return &models.Pagination{Page: page, PageSize: size, TotalCount: total}
}
