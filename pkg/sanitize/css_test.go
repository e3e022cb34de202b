package sanitize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeStyle(t *testing.T) {
	testCases := []struct {
		input, want string
	}{
		{"", ""},
		{"color: red;", "color: red;"},
		{"background-color: black; color: white", "background-color: black;color: white"},
		{"background-color: black; invalid: true; color: white", "background-color: black;color: white"},
		{"position: fixed; top: 0", ""},
		{"display: none; color: red", "color: red"},
		{"background: #fff; color: red", "background: #fff;color: red"},
		{"background: url(http://t.example/p.gif); color: red", "color: red"},
		{"color: red; background: URL('http://t.example/p.gif')", "color: red;"},
	}
	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			assert.Equal(t, tc.want, sanitizeStyle(tc.input))
		})
	}
}
