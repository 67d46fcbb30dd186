package dto

// CreateClassRequest authors a recurring template or, with IsRecurring
// false, a one-off session.
type CreateClassRequest struct {
	Course      string   `json:"course" validate:"required"`
	StartTime   string   `json:"startTime" validate:"required"`
	EndTime     string   `json:"endTime" validate:"required"`
	StartDate   *string  `json:"startDate" validate:"omitempty,datetime=2006-01-02"`
	TeacherID   string   `json:"teacherId" validate:"required"`
	StudentIDs  []string `json:"studentIds"`
	Duration    *int     `json:"duration" validate:"omitempty,min=1"`
	Frequency   string   `json:"frequency" validate:"omitempty,oneof=weekday weekend"`
	RecurringID *string  `json:"recurringId"`
	MeetLink    *string  `json:"meetLink" validate:"omitempty,url"`
}

// UpdateClassRequest replaces the mutable fields of a class.
type UpdateClassRequest struct {
	Course     string   `json:"course" validate:"required"`
	StartTime  string   `json:"startTime" validate:"required"`
	EndTime    string   `json:"endTime" validate:"required"`
	StartDate  *string  `json:"startDate" validate:"omitempty,datetime=2006-01-02"`
	StudentIDs []string `json:"studentIds"`
	Duration   *int     `json:"duration" validate:"omitempty,min=1"`
	Frequency  string   `json:"frequency" validate:"omitempty,oneof=weekday weekend"`
	MeetLink   *string  `json:"meetLink" validate:"omitempty,url"`
}

// SetLiveRequest toggles live delivery of a session.
type SetLiveRequest struct {
	IsLive   bool    `json:"isLive"`
	MeetLink *string `json:"meetLink" validate:"omitempty,url"`
}
