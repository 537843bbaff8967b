package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetEnvString(t *testing.T) {
	t.Setenv("NP_TEST_STRING", "value")
	assert.Equal(t, "value", GetEnvString("NP_TEST_STRING", "def"))
	assert.Equal(t, "def", GetEnvString("NP_TEST_STRING_UNSET", "def"))
}

func TestGetEnvInt(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want int
	}{
		{"valid", "42", 42},
		{"padded", " 7 ", 7},
		{"not a number", "abc", 5},
		{"empty", "", 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("NP_TEST_INT", tt.raw)
			assert.Equal(t, tt.want, GetEnvInt("NP_TEST_INT", 5))
		})
	}
}

func TestGetEnvBool(t *testing.T) {
	t.Setenv("NP_TEST_BOOL", "true")
	assert.True(t, GetEnvBool("NP_TEST_BOOL", false))

	t.Setenv("NP_TEST_BOOL", "nope")
	assert.True(t, GetEnvBool("NP_TEST_BOOL", true))
}

func TestGetEnvDuration(t *testing.T) {
	t.Setenv("NP_TEST_DUR", "90s")
	assert.Equal(t, 90*time.Second, GetEnvDuration("NP_TEST_DUR", time.Second))

	t.Setenv("NP_TEST_DUR", "soon")
	assert.Equal(t, time.Second, GetEnvDuration("NP_TEST_DUR", time.Second))
}

func TestGetEnvStringList(t *testing.T) {
	t.Setenv("NP_TEST_LIST", "a, b,,c ")
	assert.Equal(t, []string{"a", "b", "c"}, GetEnvStringList("NP_TEST_LIST", nil))

	t.Setenv("NP_TEST_LIST", " , ")
	assert.Equal(t, []string{"x"}, GetEnvStringList("NP_TEST_LIST", []string{"x"}))
}
