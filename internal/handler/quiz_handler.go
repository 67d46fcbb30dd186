package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/coaching-api/internal/dto"
	"github.com/noah-isme/coaching-api/internal/models"
	"github.com/noah-isme/coaching-api/pkg/response"
)

type quizService interface {
	CreateQuiz(ctx context.Context, req dto.CreateQuizRequest) (*models.Quiz, error)
	LatestQuiz(ctx context.Context, batchID, course string) (*models.Quiz, error)
	CoveredTopics(ctx context.Context, batchID, course string) (*models.CoveredTopicStatus, error)
	SaveCoveredTopics(ctx context.Context, req dto.CoveredTopicsRequest) (*models.CoveredTopicStatus, error)
}

// QuizHandler exposes quiz and covered-topic endpoints.
type QuizHandler struct {
	quizzes quizService
}

// NewQuizHandler constructs QuizHandler.
func NewQuizHandler(quizzes quizService) *QuizHandler {
	return &QuizHandler{quizzes: quizzes}
}

// Create godoc
// @Summary Post quiz question
// @Tags Quizzes
// @Accept json
// @Produce json
// @Param payload body dto.CreateQuizRequest true "Quiz payload"
// @Success 201 {object} response.Envelope
// @Router /quizzes [post]
func (h *QuizHandler) Create(c *gin.Context) {
	var req dto.CreateQuizRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	quiz, err := h.quizzes.CreateQuiz(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, quiz)
}

// Latest godoc
// @Summary Latest quiz for a batch
// @Description Data is null when no quiz was posted yet
// @Tags Quizzes
// @Produce json
// @Param batchId query string true "Batch ID"
// @Param course query string true "Course"
// @Success 200 {object} response.Envelope
// @Router /quizzes [get]
func (h *QuizHandler) Latest(c *gin.Context) {
	quiz, err := h.quizzes.LatestQuiz(c.Request.Context(), c.Query("batchId"), c.Query("course"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if quiz == nil {
		response.Empty(c, http.StatusOK, "no quiz available")
		return
	}
	response.JSON(c, http.StatusOK, quiz, nil)
}

// GetCoveredTopics godoc
// @Summary Covered topics for a batch
// @Tags Quizzes
// @Produce json
// @Param batchId query string true "Batch ID"
// @Param course query string true "Course"
// @Success 200 {object} response.Envelope
// @Router /covered-topics [get]
func (h *QuizHandler) GetCoveredTopics(c *gin.Context) {
	status, err := h.quizzes.CoveredTopics(c.Request.Context(), c.Query("batchId"), c.Query("course"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, status, nil)
}

// SaveCoveredTopics godoc
// @Summary Replace covered topics
// @Tags Quizzes
// @Accept json
// @Produce json
// @Param payload body dto.CoveredTopicsRequest true "Covered topics"
// @Success 200 {object} response.Envelope
// @Router /covered-topics [post]
func (h *QuizHandler) SaveCoveredTopics(c *gin.Context) {
	var req dto.CoveredTopicsRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	status, err := h.quizzes.SaveCoveredTopics(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, status, nil)
}
