// Package server is the thin HTTP surface over the induction engine.
// It owns no decision logic: every handler parses a request, calls the
// engine and renders the result.
package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/sai290404/Kochi-Metro/internal/config"
	"github.com/sai290404/Kochi-Metro/pkg/core/optimizer"
	"github.com/sai290404/Kochi-Metro/pkg/core/services"
	"github.com/sai290404/Kochi-Metro/pkg/core/simulation"
	"github.com/sai290404/Kochi-Metro/pkg/ingest"
)

// Server wires the HTTP API to the induction engine.
type Server struct {
	engine *services.Engine
	cfg    *config.Config
	logger *zap.Logger
	router *gin.Engine

	registry    *prometheus.Registry
	runsTotal   *prometheus.CounterVec
	runDuration prometheus.Histogram
	objective   prometheus.Gauge
}

// New creates the server and registers all routes.
func New(engine *services.Engine, cfg *config.Config, logger *zap.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		engine:   engine,
		cfg:      cfg,
		logger:   logger,
		router:   gin.New(),
		registry: prometheus.NewRegistry(),
	}

	s.runsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "induction_runs_total",
		Help: "Optimization runs by solver status.",
	}, []string{"status"})
	s.runDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "induction_run_duration_seconds",
		Help:    "Wall-clock duration of optimization runs.",
		Buckets: prometheus.DefBuckets,
	})
	s.objective = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "induction_last_objective_value",
		Help: "Objective value of the last committed plan.",
	})
	s.registry.MustRegister(s.runsTotal, s.runDuration, s.objective)

	s.router.Use(gin.Recovery())

	api := s.router.Group("/api")
	api.GET("/health", s.handleHealth)
	api.POST("/data/refresh", s.handleRefresh)
	api.GET("/trains", s.handleTrains)
	api.GET("/trains/:id", s.handleTrainDetails)
	api.POST("/optimize", s.handleOptimize)
	api.POST("/simulation", s.handleSimulation)
	api.GET("/alerts", s.handleAlerts)
	api.GET("/dashboard/summary", s.handleDashboardSummary)

	s.router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))

	return s
}

// Router exposes the gin router, mainly for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Run blocks serving HTTP on the configured listen address.
func (s *Server) Run() error {
	addr := s.cfg.Server.ListenAddr
	if addr == "" {
		addr = ":5001"
	}
	s.logger.Info("HTTP server listening", zap.String("addr", addr))
	return s.router.Run(addr)
}

// serviceDate plans for the next service day.
func (s *Server) serviceDate() time.Time {
	return time.Now().AddDate(0, 0, 1)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"message": "Kochi Metro Induction System API",
	})
}

type refreshRequest struct {
	Seed *int64 `json:"seed"`
}

func (s *Server) handleRefresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	seed := time.Now().UnixNano()
	if req.Seed != nil {
		seed = *req.Seed
	}

	snap, err := ingest.GenerateSnapshot(ingest.GeneratorConfig{
		FleetSize:           s.cfg.FleetSize,
		Now:                 time.Now(),
		Seed:                seed,
		CleaningRule:        s.cfg.CleaningRule,
		CleaningBayCapacity: s.cfg.CleaningBayCapacity,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": err.Error()})
		return
	}

	if err := s.engine.Refresh(snap); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Data refreshed successfully",
		"summary": gin.H{
			"trains":               len(snap.Trainsets),
			"fitness_certificates": len(snap.Certificates),
			"job_cards":            len(snap.JobCards),
			"branding_contracts":   len(snap.Branding),
		},
	})
}

func (s *Server) handleTrains(c *gin.Context) {
	summary, err := s.engine.FleetSummary(services.RunConfigFrom(s.cfg, s.serviceDate()))
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"status": "error", "message": err.Error()})
		return
	}

	trains := make([]gin.H, 0, len(summary.Trainsets))
	for _, ts := range summary.Trainsets {
		trains = append(trains, gin.H{
			"train_id":            ts.TrainsetID,
			"status":              ts.Role,
			"readiness_score":     round1(ts.Readiness),
			"branding_priority":   round1(ts.Branding),
			"maintenance_urgency": round1(ts.Urgency),
			"feasible":            ts.Feasible,
			"issues":              ts.Issues,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"status":      "success",
		"trains":      trains,
		"total_count": len(trains),
	})
}

func (s *Server) handleTrainDetails(c *gin.Context) {
	trainsetID := c.Param("id")

	snap, err := s.engine.Snapshot()
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"status": "error", "message": err.Error()})
		return
	}

	found := false
	for _, ts := range snap.Trainsets {
		if ts.ID == trainsetID {
			found = true
			break
		}
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"status": "error", "message": "unknown trainset " + trainsetID})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":               "success",
		"train_id":             trainsetID,
		"fitness_certificates": snap.CertificatesFor(trainsetID),
		"job_cards":            snap.JobCardsFor(trainsetID),
		"branding":             snap.BrandingFor(trainsetID),
		"mileage":              snap.MileageFor(trainsetID),
		"cleaning":             snap.CleaningFor(trainsetID),
	})
}

type optimizeRequest struct {
	TargetServiceCount *int               `json:"target_service_trains"`
	Weights            *optimizer.Weights `json:"weights"`
}

func (s *Server) handleOptimize(c *gin.Context) {
	var req optimizeRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	runCfg := services.RunConfigFrom(s.cfg, s.serviceDate())
	if req.TargetServiceCount != nil {
		runCfg.TargetServiceCount = *req.TargetServiceCount
	}
	if req.Weights != nil {
		runCfg.Weights = *req.Weights
	}

	started := time.Now()
	plan, err := s.engine.Optimize(c.Request.Context(), runCfg)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	s.runsTotal.WithLabelValues(string(plan.Solver.Status)).Inc()
	s.runDuration.Observe(time.Since(started).Seconds())
	s.objective.Set(plan.Solver.ObjectiveValue)

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"plan":   renderPlan(plan),
		"optimization_params": gin.H{
			"target_service_trains": runCfg.TargetServiceCount,
			"total_trains":          len(plan.Solver.Decisions),
		},
	})
}

type simulationRequest struct {
	Scenarios []simulation.Scenario `json:"scenarios"`
}

func (s *Server) handleSimulation(c *gin.Context) {
	var req simulationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	results, err := s.engine.SimulateScenarios(c.Request.Context(),
		services.RunConfigFrom(s.cfg, s.serviceDate()), req.Scenarios)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	rendered := make([]gin.H, 0, len(results))
	for _, r := range results {
		rendered = append(rendered, gin.H{
			"scenario_name": r.Name,
			"plan":          renderPlan(r.Plan),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"status":             "success",
		"simulation_results": rendered,
	})
}

func (s *Server) handleAlerts(c *gin.Context) {
	latest := s.engine.LatestPlan()
	if latest == nil {
		c.JSON(http.StatusOK, gin.H{
			"status":          "success",
			"alerts":          []string{},
			"recommendations": []string{"Run optimization to generate alerts and recommendations"},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":          "success",
		"alerts":          latest.Alerts,
		"recommendations": latest.Recommendations,
		"timestamp":       latest.GeneratedAt,
	})
}

func (s *Server) handleDashboardSummary(c *gin.Context) {
	summary, err := s.engine.FleetSummary(services.RunConfigFrom(s.cfg, s.serviceDate()))
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"status": "error", "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"summary": gin.H{
			"total_trains":         len(summary.Trainsets),
			"expired_certificates": summary.CertExpired,
			"open_job_cards":       summary.OpenJobCards,
			"branding_contracts":   summary.BrandingActive,
			"current_allocation": gin.H{
				"service_count":     summary.Allocation.Service,
				"standby_count":     summary.Allocation.Standby,
				"maintenance_count": summary.Allocation.Maintenance,
			},
			"alerts_count":      summary.AlertCount,
			"last_optimization": s.engine.LatestPlan() != nil,
		},
	})
}

func round1(v float64) float64 {
	return float64(int(v*10+0.5)) / 10
}
