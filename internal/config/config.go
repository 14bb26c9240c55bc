package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/teambition/rrule-go"
	"gopkg.in/yaml.v3"
)

// Weights are the objective weights applied to the three sub-scores.
// They must sum to 1.0.
type Weights struct {
	Readiness float64 `yaml:"readiness" validate:"gte=0"`
	Branding  float64 `yaml:"branding" validate:"gte=0"`
	Urgency   float64 `yaml:"urgency" validate:"gte=0"`
}

// DatabaseConfig holds the optional Postgres connection for committed
// plan persistence. Empty ConnString runs the engine storeless.
type DatabaseConfig struct {
	ConnString string `yaml:"connString,omitempty"`
}

// GmailConfig holds the settings for emailing the nightly plan summary.
type GmailConfig struct {
	UserID     string   `yaml:"userID,omitempty"`
	Sender     string   `yaml:"sender,omitempty"`
	Recipients []string `yaml:"recipients,omitempty"`
}

// ServerConfig holds the HTTP API settings.
type ServerConfig struct {
	ListenAddr string `yaml:"listenAddr,omitempty"`
}

// Config represents the application configuration.
type Config struct {
	// FleetSize is the expected trainset count, used by the mock fleet
	// generator.
	FleetSize int `yaml:"fleetSize" validate:"required,min=1"`

	// TargetServiceCount is the default number of trainsets to induct
	// for service each night, per the fleet operating plan.
	TargetServiceCount int `yaml:"targetServiceCount" validate:"min=0"`

	Weights Weights `yaml:"weights"`

	// SolverTimeBudget caps the wall clock of one optimizer run.
	SolverTimeBudget time.Duration `yaml:"solverTimeBudget"`

	// CertificateWarningWindow is how far ahead of expiry a fitness
	// certificate starts costing readiness.
	CertificateWarningWindow time.Duration `yaml:"certificateWarningWindow"`

	// CriticalUrgencyThreshold forces a trainset into maintenance when
	// its urgency score reaches it.
	CriticalUrgencyThreshold float64 `yaml:"criticalUrgencyThreshold" validate:"gte=0,lte=100"`

	// MaintenanceUrgencyThreshold routes non-service trainsets to
	// maintenance instead of standby.
	MaintenanceUrgencyThreshold float64 `yaml:"maintenanceUrgencyThreshold" validate:"gte=0,lte=100"`

	// CleaningRule is the deep-clean cadence as an RFC 5545 recurrence
	// rule, e.g. "FREQ=DAILY;INTERVAL=3".
	CleaningRule string `yaml:"cleaningRule,omitempty"`

	// CleaningBayCapacity is the number of deep-clean bay slots per
	// night cycle.
	CleaningBayCapacity int `yaml:"cleaningBayCapacity" validate:"min=0"`

	Database DatabaseConfig `yaml:"database,omitempty"`
	Gmail    GmailConfig    `yaml:"gmail,omitempty"`
	Server   ServerConfig   `yaml:"server,omitempty"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Default returns the configuration reflecting the fleet operating
// plan: 25 trainsets, 18 in service, readiness-led weights.
func Default() *Config {
	return &Config{
		FleetSize:                   25,
		TargetServiceCount:          18,
		Weights:                     Weights{Readiness: 0.5, Branding: 0.3, Urgency: 0.2},
		SolverTimeBudget:            30 * time.Second,
		CertificateWarningWindow:    7 * 24 * time.Hour,
		CriticalUrgencyThreshold:    90,
		MaintenanceUrgencyThreshold: 60,
		CleaningRule:                "FREQ=DAILY;INTERVAL=3",
		CleaningBayCapacity:         5,
		Server:                      ServerConfig{ListenAddr: ":5001"},
	}
}

// Load loads and validates the configuration from induction_config.yaml.
// It looks for the config file in the current directory first, then in
// the user's home directory.
func Load() (*Config, error) {
	configPath, err := findConfigFile()
	if err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}

	return LoadFromPath(configPath)
}

// LoadFromPath loads and validates the configuration from a specific
// path. Unset fields keep their defaults.
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate validates the configuration struct, the weight sum and the
// cleaning rule syntax.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	sum := cfg.Weights.Readiness + cfg.Weights.Branding + cfg.Weights.Urgency
	if math.Abs(sum-1.0) > 1e-9 {
		return fmt.Errorf("config validation failed: weights must sum to 1.0, got %.4f", sum)
	}

	if cfg.SolverTimeBudget < 0 {
		return fmt.Errorf("config validation failed: solverTimeBudget must not be negative")
	}

	if cfg.CleaningRule != "" {
		if _, err := rrule.StrToRRule(cfg.CleaningRule); err != nil {
			return fmt.Errorf("invalid cleaningRule: %w", err)
		}
	}

	return nil
}

// findConfigFile searches for induction_config.yaml in the current
// directory and the home directory.
func findConfigFile() (string, error) {
	configFileName := "induction_config.yaml"

	if _, err := os.Stat(configFileName); err == nil {
		return configFileName, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	homeConfigPath := filepath.Join(homeDir, configFileName)
	if _, err := os.Stat(homeConfigPath); err == nil {
		return homeConfigPath, nil
	}

	return "", fmt.Errorf("config file not found in current directory or home directory")
}
