package dto

import "github.com/noah-isme/coaching-api/internal/models"

// CreateStudentRequest enrolls a student under an existing teacher.
type CreateStudentRequest struct {
	Name      string `json:"name" validate:"required"`
	Number    string `json:"number" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Course    string `json:"course" validate:"required"`
	Address   string `json:"address" validate:"required"`
	Password  string `json:"password" validate:"required,min=6"`
	TeacherID string `json:"teacherId" validate:"required"`
}

// CreatedStudent is returned once on enrollment with the initial password.
type CreatedStudent struct {
	models.Student
	InitialPassword string `json:"initialPassword"`
}

// UpdateStudentRequest carries a partial profile update.
type UpdateStudentRequest struct {
	Name      *string `json:"name" validate:"omitempty,min=1"`
	Number    *string `json:"number" validate:"omitempty,min=1"`
	Email     *string `json:"email" validate:"omitempty,email"`
	Course    *string `json:"course" validate:"omitempty,min=1"`
	Address   *string `json:"address" validate:"omitempty,min=1"`
	Password  *string `json:"password" validate:"omitempty,min=6"`
	TeacherID *string `json:"teacherId" validate:"omitempty,min=1"`
}

// CreateTeacherRequest registers a teacher.
type CreateTeacherRequest struct {
	Name     string `json:"name" validate:"required"`
	Number   string `json:"number" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Course   string `json:"course" validate:"required"`
	Address  string `json:"address" validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
}

// UpdateTeacherRequest carries a partial teacher profile update.
type UpdateTeacherRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=1"`
	Number   *string `json:"number" validate:"omitempty,min=1"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Course   *string `json:"course" validate:"omitempty,min=1"`
	Address  *string `json:"address" validate:"omitempty,min=1"`
	Password *string `json:"password" validate:"omitempty,min=6"`
}

// AssignStudentRequest links a student to the teacher in the path.
// EvictPrevious overrides the configured reassign behaviour when set.
type AssignStudentRequest struct {
	StudentID     string `json:"studentId" validate:"required"`
	EvictPrevious *bool  `json:"evictPrevious"`
}
