package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContainsPattern(t *testing.T) {
	tests := []struct {
		term string
		want string
	}{
		{"phone", "%phone%"},
		{"PHONE", "%phone%"},
		{"", "%%"},
		{"50%", "%50!%%"},
		{"usb_c", "%usb!_c%"},
		{"wow!", "%wow!!%"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ContainsPattern(tt.term), "term %q", tt.term)
	}
}
