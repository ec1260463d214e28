package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsPunctuation(t *testing.T) {
	tests := []struct {
		s    string
		want bool
	}{
		{".", true},
		{"...", true},
		{"$", true},
		{"。", true},
		{"！", true},
		{"a.", false},
		{"3", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsPunctuation(tt.s), tt.s)
	}
}

func TestAttaches(t *testing.T) {
	assert.True(t, AttachesLeft(","))
	assert.True(t, AttachesLeft(")"))
	assert.True(t, AttachesLeft("。"))
	assert.False(t, AttachesLeft("("))
	assert.False(t, AttachesLeft("-"))
	assert.False(t, AttachesLeft("'s"))

	assert.True(t, AttachesRight("("))
	assert.False(t, AttachesRight(")"))
}
