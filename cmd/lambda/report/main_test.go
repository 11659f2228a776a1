package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHandler_RequiresEmailSettings(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("EMAIL_FROM", "")
	t.Setenv("EMAIL_PASSWORD", "")
	t.Setenv("EMAIL_TO", "")

	resp, err := Handler(context.Background(), nil)
	assert.Error(t, err)
	assert.Equal(t, 400, resp.StatusCode)
	assert.False(t, resp.Sent)
}
