package dto

// CreateQuizRequest posts a four-option question to a batch.
type CreateQuizRequest struct {
	BatchID       string   `json:"batchId" validate:"required"`
	Course        string   `json:"course" validate:"required"`
	Question      string   `json:"question" validate:"required"`
	Options       []string `json:"options" validate:"len=4,dive,required"`
	CorrectAnswer *int     `json:"correctAnswer" validate:"required,min=0,max=3"`
}

// CoveredTopicsRequest replaces the covered-topic marks of a batch.
type CoveredTopicsRequest struct {
	BatchID string          `json:"batchId" validate:"required"`
	Course  string          `json:"course" validate:"required"`
	Marked  map[string]bool `json:"marked" validate:"required"`
}
