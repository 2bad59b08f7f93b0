package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedactEmail(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"jane.roe@example.com", "ja***@example.com"},
		{"ab@example.com", "***@example.com"},
		{"a@b.co", "***@b.co"},
		{"not-an-email", "***@***"},
		{"", "***@***"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, RedactEmail(tt.in))
	}
}

func TestEmailFieldsAreMaskedInEntries(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stderr)
	SetRedactPII(true)

	Info("subscription accepted", "email", "jane.roe@example.com", "form", "footer")

	var entry map[string]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "ja***@example.com", entry["email"])
	assert.Equal(t, "footer", entry["form"])
}
