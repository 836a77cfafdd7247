package domain

import "time"

// Newsletter is an owned, visibility-scoped resource.
type Newsletter struct {
	NewsletterID string    `json:"id" dynamodbav:"newsletter_id"`
	Title        string    `json:"title" dynamodbav:"title"`
	Content      string    `json:"content" dynamodbav:"content"`
	IsPrivate    bool      `json:"is_private" dynamodbav:"is_private"`
	Status       string    `json:"status" dynamodbav:"status"`
	CreatedBy    string    `json:"created_by" dynamodbav:"created_by"`
	CreatedAt    time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt    time.Time `json:"updated" dynamodbav:"updated_at"`
}

func (n Newsletter) OwnerID() string    { return n.CreatedBy }
func (n Newsletter) Private() bool      { return n.IsPrivate }
func (n Newsletter) ItemID() string     { return n.NewsletterID }
func (n Newsletter) Created() time.Time { return n.CreatedAt }

type CreateNewsletterRequest struct {
	Title     string `json:"title" validate:"required"`
	Content   string `json:"content" validate:"required"`
	IsPrivate bool   `json:"is_private"`
}

type UpdateNewsletterRequest struct {
	Title     *string `json:"title"`
	Content   *string `json:"content"`
	IsPrivate *bool   `json:"is_private"`
}

const (
	NewsletterPublished = "published"
	NewsletterArchived  = "archived"
)

func ValidNewsletterStatus(s string) bool {
	return s == NewsletterPublished || s == NewsletterArchived
}
