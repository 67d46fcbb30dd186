package dto

// AttendanceRecordInput is one student's mark inside a batch.
type AttendanceRecordInput struct {
	StudentID string  `json:"studentId" validate:"required"`
	Status    string  `json:"status" validate:"required,oneof=Present Absent"`
	Reason    *string `json:"reason"`
}

// MarkAttendanceRequest overwrites attendance for a class on a day. Records
// must be present but may be empty.
type MarkAttendanceRequest struct {
	ClassID string                   `json:"classId" validate:"required"`
	Date    string                   `json:"date" validate:"required"`
	Records *[]AttendanceRecordInput `json:"records" validate:"required,dive"`
}

// MarkAttendanceResult reports how many rows were written.
type MarkAttendanceResult struct {
	ClassID string `json:"classId"`
	Date    string `json:"date"`
	Marked  int    `json:"marked"`
}
