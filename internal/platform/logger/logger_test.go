package logger

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeValue(t *testing.T) {
	assert.Equal(t, "[REDACTED]", sanitizeValue("redis_password", "hunter2"))
	assert.Equal(t, "[REDACTED]", sanitizeValue("postgres_dsn", "postgres://u:p@h/db"))
	assert.Equal(t, "open", sanitizeValue("status", "open"))

	hashed, ok := sanitizeValue("actor_id", "user-42").(string)
	assert.True(t, ok)
	assert.True(t, strings.HasPrefix(hashed, "hash:"))
	assert.NotContains(t, hashed, "user-42")
	assert.Equal(t, hashed, sanitizeValue("member_id", "user-42"))
}

func TestSanitizeValue_NestedMap(t *testing.T) {
	out := sanitizeValue("payload", map[string]interface{}{"api_key": "k", "rfp": "r-1"})
	m, ok := out.(map[string]interface{})
	assert.True(t, ok)
	assert.Equal(t, "[REDACTED]", m["api_key"])
	assert.Equal(t, "r-1", m["rfp"])
}

func TestNewTestLogger(t *testing.T) {
	log, err := New("test")
	assert.NoError(t, err)
	log.With("component", "logger_test").Info("ignored below warn")
	log.Sync()
}
