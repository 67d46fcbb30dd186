package models

import "time"

// CareerApplication is a job application with an uploaded resume.
type CareerApplication struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Phone     string    `db:"phone" json:"phone"`
	Email     string    `db:"email" json:"email"`
	Address   string    `db:"address" json:"address"`
	Resume    string    `db:"resume" json:"resume"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}
