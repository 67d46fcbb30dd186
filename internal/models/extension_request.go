package models

import "time"

// ExtensionStatus is the lifecycle state of a class extension request.
type ExtensionStatus string

const (
	ExtensionPending  ExtensionStatus = "pending"
	ExtensionApproved ExtensionStatus = "approved"
	ExtensionRejected ExtensionStatus = "rejected"
)

// ClassExtensionRequest asks for extra sessions on a class batch.
type ClassExtensionRequest struct {
	ID           string          `db:"id" json:"id"`
	BatchID      string          `db:"batch_id" json:"batchId"`
	TeacherID    string          `db:"teacher_id" json:"teacherId"`
	Reason       string          `db:"reason" json:"reason"`
	ExtraClasses int             `db:"extra_classes" json:"extraClasses"`
	Status       ExtensionStatus `db:"status" json:"status"`
	CreatedAt    time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updatedAt"`
}
