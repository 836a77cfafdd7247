package domain

import "time"

// Job is an owned resource: CreatedBy is set once at creation and never transferred.
type Job struct {
	JobID           string    `json:"id" dynamodbav:"job_id"`
	Title           string    `json:"title" dynamodbav:"title"`
	Description     string    `json:"description" dynamodbav:"description"`
	Requirements    []string  `json:"requirements" dynamodbav:"requirements"`
	Salary          float64   `json:"salary" dynamodbav:"salary"`
	Location        string    `json:"location" dynamodbav:"location"`
	JobType         string    `json:"job_type" dynamodbav:"job_type"`
	ExperienceLevel string    `json:"experience_level" dynamodbav:"experience_level"`
	Position        int       `json:"position" dynamodbav:"position"`
	CompanyID       string    `json:"company_id" dynamodbav:"company_id"`
	CreatedBy       string    `json:"created_by" dynamodbav:"created_by"`
	CreatedAt       time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt       time.Time `json:"updated" dynamodbav:"updated_at"`
}

func (j Job) OwnerID() string { return j.CreatedBy }

// JobInput is used for both creation and full update.
type JobInput struct {
	Title        string  `json:"title" validate:"required"`
	Description  string  `json:"description" validate:"required"`
	Requirements string  `json:"requirements" validate:"required"` // comma separated
	Salary       float64 `json:"salary" validate:"required,gt=0"`
	Location     string  `json:"location" validate:"required"`
	JobType      string  `json:"job_type" validate:"required"`
	Experience   string  `json:"experience" validate:"required"`
	Position     int     `json:"position" validate:"required,gt=0"`
	CompanyID    string  `json:"company_id" validate:"required"`
}
