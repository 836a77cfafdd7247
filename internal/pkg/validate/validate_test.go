package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type sample struct {
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role,omitempty" validate:"required,oneof=student recruiter"`
	Note  string `validate:"max=3"`
}

func TestStruct_Valid(t *testing.T) {
	assert.NoError(t, Struct(&sample{Email: "a@b.com", Role: "student"}))
}

func TestStruct_ReportsEveryFieldByJSONName(t *testing.T) {
	err := Struct(&sample{Email: "nope", Role: "admin", Note: "long"})
	assert.ErrorContains(t, err, "email: must satisfy email")
	assert.ErrorContains(t, err, "role: must satisfy oneof=student recruiter")
	assert.ErrorContains(t, err, "Note: must satisfy max=3")
}
