package app

import (
	"testing"

	"github.com/RubachokBoss/classroom-gradebook/internal/config"
	"github.com/RubachokBoss/classroom-gradebook/internal/gradebook"
	"github.com/stretchr/testify/assert"
)

func TestDefaultSettings(t *testing.T) {
	got := DefaultSettings(config.GradebookConfig{DefaultUseWeights: true, DefaultAssignmentsWeight: 60, DefaultQuizzesWeight: 40})
	assert.Equal(t, gradebook.Settings{UseWeights: true, AssignmentsWeight: 60, QuizzesWeight: 40}, got)

	// A misconfigured pair falls back to the built-in defaults.
	got = DefaultSettings(config.GradebookConfig{DefaultAssignmentsWeight: 60, DefaultQuizzesWeight: 30})
	assert.Equal(t, gradebook.DefaultSettings(), got)
}
