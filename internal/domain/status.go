package domain

const (
	StatusActive  = "active"
	StatusBlocked = "blocked"
)

func ValidStatus(s string) bool {
	return s == StatusActive || s == StatusBlocked
}

// UpdateStatusRequest sets a principal's or newsletter's moderation status.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}
