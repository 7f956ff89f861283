package models

import "time"

// ApplicationStatus tracks an applicant through admission review.
type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "pending"
	ApplicationApproved ApplicationStatus = "approved"
	ApplicationCanceled ApplicationStatus = "canceled"
)

// Valid reports whether the status is known.
func (s ApplicationStatus) Valid() bool {
	switch s {
	case ApplicationPending, ApplicationApproved, ApplicationCanceled:
		return true
	}
	return false
}

// Direction is the track an applicant studies.
type Direction string

const (
	DirectionFrontend  Direction = "frontend"
	DirectionBackend   Direction = "backend"
	DirectionFullstack Direction = "fullstack"
)

// Valid reports whether the direction is known.
func (d Direction) Valid() bool {
	switch d {
	case DirectionFrontend, DirectionBackend, DirectionFullstack:
		return true
	}
	return false
}

// Application is a prospective intern's admission request.
type Application struct {
	ID               string            `db:"id" json:"id"`
	Name             string            `db:"name" json:"name"`
	Surname          string            `db:"surname" json:"surname"`
	MentorID         string            `db:"mentor_id" json:"mentor_id"`
	BranchID         string            `db:"branch_id" json:"branch_id"`
	Grade            Grade             `db:"grade" json:"grade"`
	YearsOfStudy     int               `db:"years_of_study" json:"years_of_study"`
	Direction        Direction         `db:"direction" json:"direction"`
	TelegramUsername string            `db:"telegram_username" json:"telegram_username"`
	Phone            string            `db:"phone" json:"phone"`
	InterviewDate    time.Time         `db:"interview_date" json:"interview_date"`
	Status           ApplicationStatus `db:"status" json:"status"`
	AboutYourself    string            `db:"about_yourself" json:"about_yourself"`
	WhatYouKnow      string            `db:"what_you_know" json:"what_you_know"`
	ProjectLink      string            `db:"project_link" json:"project_link"`
	CreatedAt        time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time         `db:"updated_at" json:"updated_at"`
}

// ApplicationDetail joins an application with its mentor and branch names.
type ApplicationDetail struct {
	Application
	MentorName     string `db:"mentor_name" json:"mentor_name"`
	MentorLastName string `db:"mentor_last_name" json:"mentor_last_name"`
	BranchName     string `db:"branch_name" json:"branch_name"`
}

// ApplicationFilter narrows application listings.
type ApplicationFilter struct {
	Status   ApplicationStatus
	BranchID string
	Page     int
	PageSize int
}
