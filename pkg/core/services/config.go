package services

import (
	"time"

	"github.com/sai290404/Kochi-Metro/internal/config"
	"github.com/sai290404/Kochi-Metro/pkg/core/optimizer"
)

// RunConfigFrom builds a run configuration for the given service date
// from the application configuration.
func RunConfigFrom(cfg *config.Config, serviceDate time.Time) RunConfig {
	return RunConfig{
		ServiceDate:        serviceDate,
		TargetServiceCount: cfg.TargetServiceCount,
		Weights: optimizer.Weights{
			Readiness: cfg.Weights.Readiness,
			Branding:  cfg.Weights.Branding,
			Urgency:   cfg.Weights.Urgency,
		},
		SolverTimeBudget:            cfg.SolverTimeBudget,
		CertificateWarningWindow:    cfg.CertificateWarningWindow,
		CriticalUrgencyThreshold:    cfg.CriticalUrgencyThreshold,
		MaintenanceUrgencyThreshold: cfg.MaintenanceUrgencyThreshold,
	}
}
