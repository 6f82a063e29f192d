package logging

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "warn")

	logger.Info("should not appear")
	logger.Warn("should appear")

	out := buf.String()
	assert.NotContains(t, out, "should not appear")
	assert.Contains(t, out, "should appear")
}

func TestWithFileTagsEveryLine(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "debug")
	tagged := WithFile(logger, "a.lv")

	tagged.Info("compiled")
	assert.True(t, strings.Contains(buf.String(), "file=a.lv"))
}

func TestFromContextFallsBackToDiscard(t *testing.T) {
	logger := FromContext(context.Background())
	assert.NotNil(t, logger)
}

func TestIntoContextRoundTrips(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "debug")
	ctx := IntoContext(context.Background(), logger)
	assert.Same(t, logger, FromContext(ctx))
}
