package logging_test

import (
	"bytes"
	"context"
	"testing"

	"warehouse-slotting/internal/logging"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, log.InfoLevel, logging.ParseLevel(""))
	assert.Equal(t, log.DebugLevel, logging.ParseLevel("DEBUG"))
	assert.Equal(t, log.WarnLevel, logging.ParseLevel(" warn "))
	assert.Equal(t, log.InfoLevel, logging.ParseLevel("chatty"))
}

func TestFromContext(t *testing.T) {
	assert.Same(t, log.Default(), logging.FromContext(context.Background()))

	var buf bytes.Buffer
	l := logging.New(&buf, log.DebugLevel)
	ctx := logging.WithLogger(context.Background(), l)
	assert.Same(t, l, logging.FromContext(ctx))

	logging.FromContext(ctx).Debug("planned", "moves", 3)
	assert.Contains(t, buf.String(), "moves=3")
}
