package sanitize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "  see you at 8  ", "see you at 8"},
		{"script removed", `hi<script>alert(1)</script>`, "hi"},
		{"tags stripped", `<b>bold</b> move`, "bold move"},
		{"ampersand survives", "fish & chips", "fish & chips"},
		{"only markup", "<img src=x onerror=alert(1)>", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Text(tt.in))
		})
	}
}

func TestTexts(t *testing.T) {
	assert.Equal(t, []string{"Beach", "Museum"}, Texts([]string{"Beach", "<br>", " Museum "}))
}
