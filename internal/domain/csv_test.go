package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitCSV(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, SplitCSV(" a ,, b ,"))
	assert.Equal(t, []string{}, SplitCSV(""))
}
