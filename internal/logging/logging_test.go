package logging

import (
	"bytes"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLevel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, logrus.DebugLevel, NewWithWriter("debug", &bytes.Buffer{}).GetLevel())
	assert.Equal(t, logrus.WarnLevel, NewWithWriter("warn", &bytes.Buffer{}).GetLevel())
	assert.Equal(t, logrus.InfoLevel, NewWithWriter("loud", &bytes.Buffer{}).GetLevel())
}

func TestForRun(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewWithWriter("info", &buf)
	entry := ForRun(logger, "label")

	id, ok := entry.Data["run_id"].(string)
	require.True(t, ok)
	_, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, "label", entry.Data["command"])

	entry.Info("labeled tiles")
	assert.Contains(t, buf.String(), "command=label")
	assert.Contains(t, buf.String(), "run_id="+id)

	other := ForRun(logger, "label")
	assert.NotEqual(t, id, other.Data["run_id"])
}
