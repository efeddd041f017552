package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("escalator")
	require.NoError(t, err)

	assert.Equal(t, "escalator", cfg.Service.Name)
	assert.Equal(t, 24*time.Hour, cfg.Escalation.NudgeThreshold)
	assert.Equal(t, 48*time.Hour, cfg.Escalation.DefaultAlertCycle)
	assert.Equal(t, 12*time.Hour, cfg.Escalation.HalfCycleFloor)
	assert.Equal(t, 6*time.Minute, cfg.Escalation.FullCycleTolerance)
	assert.Equal(t, 3, cfg.Retention.StandardMonths)
	assert.Equal(t, 12, cfg.Retention.PremiumMonths)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("NUDGE_THRESHOLD", "36h")
	t.Setenv("RETENTION_STANDARD_MONTHS", "6")

	cfg, err := Load("escalator")
	require.NoError(t, err)

	assert.Equal(t, 36*time.Hour, cfg.Escalation.NudgeThreshold)
	assert.Equal(t, 6, cfg.Retention.StandardMonths)
}

func TestValidate_RejectsInvertedRetention(t *testing.T) {
	cfg, err := Load("escalator")
	require.NoError(t, err)

	cfg.Retention.StandardMonths = 12
	cfg.Retention.PremiumMonths = 3

	assert.Error(t, cfg.Validate())
}

func TestValidate_RejectsExcessiveHalfCycleFloor(t *testing.T) {
	cfg, err := Load("escalator")
	require.NoError(t, err)

	cfg.Escalation.HalfCycleFloor = 30 * time.Hour

	assert.Error(t, cfg.Validate())
}

func TestDatabaseURL(t *testing.T) {
	cfg, err := Load("escalator")
	require.NoError(t, err)

	assert.Contains(t, cfg.DatabaseURL(), "postgres://")
	assert.Contains(t, cfg.DatabaseURL(), "sslmode=disable")
}
