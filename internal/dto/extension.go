package dto

// CreateExtensionRequest asks for extra sessions on a class batch.
type CreateExtensionRequest struct {
	BatchID      string `json:"batchId" validate:"required"`
	TeacherID    string `json:"teacherId" validate:"required"`
	Reason       string `json:"reason" validate:"required"`
	ExtraClasses int    `json:"extraClasses" validate:"required,min=1"`
}
