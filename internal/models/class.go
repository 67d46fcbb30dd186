package models

import (
	"encoding/json"
	"time"

	"github.com/lib/pq"
)

// ClassKind distinguishes recurring templates from concrete sessions.
type ClassKind string

const (
	ClassKindTemplate ClassKind = "template"
	ClassKindSession  ClassKind = "session"
)

// Frequency values for recurring templates.
const (
	FrequencyWeekday = "weekday"
	FrequencyWeekend = "weekend"
)

// DefaultClassDuration is the number of months a template runs when unset.
const DefaultClassDuration = 3

// Class is either a recurring template (one row per series) or a one-off
// session, optionally pointing at its parent template via RecurringID.
type Class struct {
	ID          string         `db:"id" json:"id"`
	Course      string         `db:"course" json:"course"`
	StartTime   string         `db:"start_time" json:"startTime"`
	EndTime     string         `db:"end_time" json:"endTime"`
	StartDate   *string        `db:"start_date" json:"startDate,omitempty"`
	TeacherID   string         `db:"teacher_id" json:"teacherId"`
	StudentIDs  pq.StringArray `db:"student_ids" json:"studentIds"`
	Duration    int            `db:"duration" json:"duration"`
	Frequency   string         `db:"frequency" json:"frequency"`
	IsRecurring bool           `db:"is_recurring" json:"isRecurring"`
	RecurringID *string        `db:"recurring_id" json:"recurringId,omitempty"`
	IsLive      bool           `db:"is_live" json:"isLive"`
	MeetLink    *string        `db:"meet_link" json:"meetLink,omitempty"`
	CreatedAt   time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updatedAt"`
}

// Kind returns the tagged variant of the class.
func (c *Class) Kind() ClassKind {
	if c.IsRecurring {
		return ClassKindTemplate
	}
	return ClassKindSession
}

// MarshalJSON adds the derived kind to the wire form.
func (c Class) MarshalJSON() ([]byte, error) {
	type plain Class
	return json.Marshal(struct {
		plain
		Kind ClassKind `json:"kind"`
	}{plain: plain(c), Kind: c.Kind()})
}

// ClassFilter defines filter criteria for listing classes.
type ClassFilter struct {
	TeacherID string
	Course    string
	Kind      ClassKind
}
