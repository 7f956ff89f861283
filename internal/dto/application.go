package dto

import (
	"time"

	"github.com/noah-isme/intern-progress-api/internal/models"
)

// ApplicationRequest is the first step of an admission application.
type ApplicationRequest struct {
	Name             string     `json:"name" validate:"required,max=100"`
	Surname          string     `json:"surname" validate:"required,max=100"`
	MentorID         string     `json:"mentorId" validate:"required"`
	BranchID         string     `json:"branchId" validate:"required"`
	Grade            string     `json:"grade" validate:"required"`
	YearsOfStudy     int        `json:"yearsOfStudy" validate:"required,gt=0,max=20"`
	Direction        string     `json:"direction" validate:"required"`
	TelegramUsername string     `json:"telegramUsername" validate:"required,max=64"`
	Phone            string     `json:"phone" validate:"required"`
	Date             *time.Time `json:"date" validate:"required"`
}

// ApplicationDetailsRequest completes an application with free-text answers.
type ApplicationDetailsRequest struct {
	AboutYourself string `json:"aboutYourself" validate:"required,max=2000"`
	WhatYouKnow   string `json:"whatYouKnow" validate:"required,max=2000"`
}

// ApplicationLoginRequest looks an applicant up by their contact details.
type ApplicationLoginRequest struct {
	Name             string `json:"name" validate:"required"`
	Surname          string `json:"surname" validate:"required"`
	TelegramUsername string `json:"telegramUsername" validate:"required"`
	Phone            string `json:"phone" validate:"required"`
}

// ApplicationStatusRequest moves an application through review.
type ApplicationStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending approved canceled"`
}

// ProjectLinkRequest attaches the applicant's test project.
type ProjectLinkRequest struct {
	ProjectLink string `json:"projectLink" validate:"required,url,max=500"`
}

// ApplicationQuery filters the application listing.
type ApplicationQuery struct {
	Status   string `form:"status"`
	BranchID string `form:"branchId"`
	Page     int    `form:"page"`
	PageSize int    `form:"pageSize"`
}

// ApplicationStatusResult carries the updated application and the message shown to the applicant.
type ApplicationStatusResult struct {
	Application models.Application `json:"application"`
	UserMessage string             `json:"userMessage"`
}

// QuestionRequest adds or replaces a question bank entry. Points follow the difficulty.
type QuestionRequest struct {
	Text       string `json:"text" validate:"required,max=2000"`
	Direction  string `json:"direction" validate:"required,oneof=frontend backend fullstack"`
	Topic      string `json:"topic" validate:"required,max=64"`
	Difficulty string `json:"difficulty" validate:"required,oneof=easy medium hard"`
}

// QuestionQuery filters the question bank.
type QuestionQuery struct {
	Direction  string `form:"direction"`
	Difficulty string `form:"difficulty"`
	Topic      string `form:"topic"`
}
