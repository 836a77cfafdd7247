package domain

import "time"

// User is the Principal aggregate.
type User struct {
	UserID       string    `json:"id" dynamodbav:"user_id"`
	Email        string    `json:"email" dynamodbav:"email"`
	FullName     string    `json:"fullname" dynamodbav:"full_name"`
	Phone        string    `json:"phone_number" dynamodbav:"phone"`
	PasswordHash string    `json:"-" dynamodbav:"password_hash,omitempty"`
	Role         string    `json:"role" dynamodbav:"role"`
	Status       string    `json:"status" dynamodbav:"status"`
	IsPublic     bool      `json:"is_public" dynamodbav:"is_public"`
	AuthProvider string    `json:"auth_provider,omitempty" dynamodbav:"auth_provider"` // "local" | "google"
	GoogleSub    string    `json:"-" dynamodbav:"google_sub,omitempty"`
	Profile      Profile   `json:"profile" dynamodbav:"profile"`
	CreatedAt    time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt    time.Time `json:"updated" dynamodbav:"updated_at"`
}

type Profile struct {
	Bio                string   `json:"bio" dynamodbav:"bio"`
	Skills             []string `json:"skills" dynamodbav:"skills"`
	Resume             string   `json:"resume,omitempty" dynamodbav:"resume"` // object key
	ResumeOriginalName string   `json:"resume_original_name,omitempty" dynamodbav:"resume_original_name"`
	CompanyID          string   `json:"company,omitempty" dynamodbav:"company_id"`
	ProfilePhoto       string   `json:"profile_photo,omitempty" dynamodbav:"profile_photo"`
}

func (u *User) IsAdmin() bool   { return u.Role == RoleAdmin }
func (u *User) IsBlocked() bool { return u.Status == StatusBlocked }

type CreateUserRequest struct {
	FullName string `json:"fullname" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone_number" validate:"required"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Role     string `json:"role" validate:"required,oneof=student recruiter"`
}

type UpdateProfileRequest struct {
	FullName *string `json:"fullname"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Phone    *string `json:"phone_number"`
	Bio      *string `json:"bio"`
	Skills   *string `json:"skills"` // comma separated
}
