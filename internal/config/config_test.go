package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "induction_config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()

	require.NoError(t, Validate(cfg))
	assert.Equal(t, 25, cfg.FleetSize)
	assert.Equal(t, 18, cfg.TargetServiceCount)
	assert.Equal(t, 30*time.Second, cfg.SolverTimeBudget)
}

func TestLoadFromPath_OverlaysDefaults(t *testing.T) {
	path := writeConfig(t, `
fleetSize: 30
targetServiceCount: 20
weights:
  readiness: 0.6
  branding: 0.2
  urgency: 0.2
server:
  listenAddr: ":8080"
`)

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)

	assert.Equal(t, 30, cfg.FleetSize)
	assert.Equal(t, 20, cfg.TargetServiceCount)
	assert.Equal(t, 0.6, cfg.Weights.Readiness)
	assert.Equal(t, ":8080", cfg.Server.ListenAddr)
	// Untouched fields keep their defaults.
	assert.Equal(t, "FREQ=DAILY;INTERVAL=3", cfg.CleaningRule)
	assert.Equal(t, 5, cfg.CleaningBayCapacity)
}

func TestLoadFromPath_MissingFile(t *testing.T) {
	_, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestValidate_WeightsMustSumToOne(t *testing.T) {
	cfg := Default()
	cfg.Weights = Weights{Readiness: 0.5, Branding: 0.4, Urgency: 0.3}

	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "weights must sum to 1.0")
}

func TestValidate_NegativeWeightRejected(t *testing.T) {
	cfg := Default()
	cfg.Weights = Weights{Readiness: 1.2, Branding: -0.1, Urgency: -0.1}

	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestValidate_FleetSizeRequired(t *testing.T) {
	cfg := Default()
	cfg.FleetSize = 0

	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestValidate_ThresholdBounds(t *testing.T) {
	cfg := Default()
	cfg.CriticalUrgencyThreshold = 150

	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestValidate_BadCleaningRule(t *testing.T) {
	cfg := Default()
	cfg.CleaningRule = "EVERY=3DAYS"

	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid cleaningRule")
}

func TestValidate_ValidCleaningRule(t *testing.T) {
	cfg := Default()
	cfg.CleaningRule = "FREQ=WEEKLY;BYDAY=MO,TH"

	assert.NoError(t, Validate(cfg))
}
