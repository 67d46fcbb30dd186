package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"
)

// QuizOptionCount is the number of options every quiz must carry.
const QuizOptionCount = 4

// Quiz is a single multiple-choice question posted to a batch.
type Quiz struct {
	ID            string         `db:"id" json:"id"`
	BatchID       string         `db:"batch_id" json:"batchId"`
	Course        string         `db:"course" json:"course"`
	Question      string         `db:"question" json:"question"`
	Options       pq.StringArray `db:"options" json:"options"`
	CorrectAnswer int            `db:"correct_answer" json:"correctAnswer"`
	CreatedAt     time.Time      `db:"created_at" json:"createdAt"`
}

// TopicMarks maps a topic index to its covered flag. Stored as JSONB.
type TopicMarks map[string]bool

// Value implements driver.Valuer.
func (m TopicMarks) Value() (driver.Value, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner.
func (m *TopicMarks) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*m = TopicMarks{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported topic marks type %T", src)
	}
	out := TopicMarks{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("decode topic marks: %w", err)
	}
	*m = out
	return nil
}

// CoveredTopicStatus tracks which syllabus topics a batch has covered.
type CoveredTopicStatus struct {
	BatchID   string     `db:"batch_id" json:"batchId"`
	Course    string     `db:"course" json:"course"`
	Marked    TopicMarks `db:"marked" json:"marked"`
	UpdatedAt time.Time  `db:"updated_at" json:"updatedAt"`
}
