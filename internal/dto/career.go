package dto

import "github.com/noah-isme/coaching-api/internal/models"

// CareerApplicationRequest is the form part of a career application.
type CareerApplicationRequest struct {
	Name    string `form:"name" validate:"required"`
	Phone   string `form:"phone" validate:"required"`
	Email   string `form:"email" validate:"required,email"`
	Address string `form:"address" validate:"required"`
}

// CareerApplicationView is an application with a signed resume link.
type CareerApplicationView struct {
	models.CareerApplication
	Download *models.StoredFile `json:"download"`
}
