package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sai290404/Kochi-Metro/pkg/core/model"
	"github.com/sai290404/Kochi-Metro/pkg/core/optimizer"
	"github.com/sai290404/Kochi-Metro/pkg/core/simulation"
	"github.com/sai290404/Kochi-Metro/pkg/db"
)

var serviceDate = time.Date(2025, 11, 2, 0, 0, 0, 0, time.UTC)

// mockPlanStore implements db.PlanStore for testing
type mockPlanStore struct {
	mu            sync.Mutex
	insertedPlans []db.InductionPlan
	insertedDecs  [][]db.PlanDecision
	insertPlanErr error
}

func (m *mockPlanStore) InsertPlan(ctx context.Context, plan db.InductionPlan, decisions []db.PlanDecision) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.insertPlanErr != nil {
		return m.insertPlanErr
	}
	m.insertedPlans = append(m.insertedPlans, plan)
	m.insertedDecs = append(m.insertedDecs, decisions)
	return nil
}

func (m *mockPlanStore) GetLatestPlan(ctx context.Context) (*db.InductionPlan, []db.PlanDecision, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.insertedPlans) == 0 {
		return nil, nil, nil
	}
	last := len(m.insertedPlans) - 1
	return &m.insertedPlans[last], m.insertedDecs[last], nil
}

func (m *mockPlanStore) ListPlans(ctx context.Context, limit int) ([]db.InductionPlan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.insertedPlans, nil
}

// fleetSnapshot builds a fully certified fleet of n trainsets with
// distinct mileage so scores differ.
func fleetSnapshot(n int) *model.Snapshot {
	snap := model.NewSnapshot(serviceDate.Add(-2 * time.Hour))
	for i := 1; i <= n; i++ {
		id := fmt.Sprintf("KMRL-%03d", i)
		snap.Trainsets = append(snap.Trainsets, model.Trainset{ID: id})
		for _, dept := range model.RequiredDepartments {
			snap.Certificates = append(snap.Certificates, model.FitnessCertificate{
				CertificateID: fmt.Sprintf("%s-%s", id, dept),
				TrainsetID:    id,
				Department:    dept,
				IssuedAt:      serviceDate.AddDate(0, -6, 0),
				ExpiresAt:     serviceDate.AddDate(0, 6, 0),
			})
		}
		snap.Mileage = append(snap.Mileage, model.MileageRecord{
			TrainsetID:   id,
			CumulativeKm: 40000 + float64(i)*500,
			BogieWear:    30 + float64(i),
			BrakeWear:    30 + float64(i),
			HVACWear:     30 + float64(i),
		})
	}
	snap.CleaningBayCapacity = 5
	return snap
}

func testRunConfig(target int) RunConfig {
	return RunConfig{
		ServiceDate:                 serviceDate,
		TargetServiceCount:          target,
		Weights:                     optimizer.DefaultWeights,
		SolverTimeBudget:            5 * time.Second,
		CertificateWarningWindow:    7 * 24 * time.Hour,
		CriticalUrgencyThreshold:    90,
		MaintenanceUrgencyThreshold: 60,
	}
}

func TestRunConfigValidate(t *testing.T) {
	assert.NoError(t, testRunConfig(18).Validate())

	bad := testRunConfig(-1)
	err := bad.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")

	bad = testRunConfig(18)
	bad.Weights = optimizer.Weights{Readiness: 0.5, Branding: 0.3, Urgency: 0.3}
	err = bad.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "weights must sum to 1.0")

	bad = testRunConfig(18)
	bad.Weights = optimizer.Weights{Readiness: 1.5, Branding: -0.3, Urgency: -0.2}
	err = bad.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must not be negative")
}

func TestEngine_OptimizeWithoutSnapshot(t *testing.T) {
	engine := NewEngine(zap.NewNop(), nil)

	_, err := engine.Optimize(context.Background(), testRunConfig(5))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no fleet snapshot loaded")
}

func TestEngine_RefreshRejectsBrokenSnapshot(t *testing.T) {
	engine := NewEngine(zap.NewNop(), nil)
	snap := fleetSnapshot(2)
	snap.Trainsets = append(snap.Trainsets, model.Trainset{ID: "KMRL-001"})

	err := engine.Refresh(snap)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "snapshot rejected")
}

func TestEngine_OptimizeCommitsAndPersists(t *testing.T) {
	store := &mockPlanStore{}
	engine := NewEngine(zap.NewNop(), store)
	require.NoError(t, engine.Refresh(fleetSnapshot(10)))

	plan, err := engine.Optimize(context.Background(), testRunConfig(6))
	require.NoError(t, err)

	assert.Equal(t, optimizer.StatusOptimal, plan.Solver.Status)
	assert.Equal(t, 6, plan.Summary.Service)
	assert.Equal(t, plan, engine.LatestPlan())

	require.Len(t, store.insertedPlans, 1)
	assert.Equal(t, plan.RunID, store.insertedPlans[0].RunID)
	assert.Len(t, store.insertedDecs[0], 10)
}

func TestEngine_PersistenceFailureKeepsPlan(t *testing.T) {
	store := &mockPlanStore{insertPlanErr: fmt.Errorf("connection refused")}
	engine := NewEngine(zap.NewNop(), store)
	require.NoError(t, engine.Refresh(fleetSnapshot(5)))

	plan, err := engine.Optimize(context.Background(), testRunConfig(3))
	require.NoError(t, err)
	assert.NotNil(t, plan)
	assert.Equal(t, plan, engine.LatestPlan())
}

func TestEngine_SimulateLeavesCanonicalStateAlone(t *testing.T) {
	engine := NewEngine(zap.NewNop(), nil)
	require.NoError(t, engine.Refresh(fleetSnapshot(10)))

	committed, err := engine.Optimize(context.Background(), testRunConfig(6))
	require.NoError(t, err)

	// Revoking a certificate in simulation must exclude the trainset
	// there, and only there.
	simulated, err := engine.Simulate(context.Background(), testRunConfig(6), simulation.Overrides{
		RevokeCertificates: []simulation.CertificateRef{
			{TrainsetID: "KMRL-001", Department: model.DeptSignalling},
		},
	})
	require.NoError(t, err)
	assert.NotContains(t, simulated.Solver.ServiceIDs(), "KMRL-001")

	// The committed plan is untouched and a fresh run reproduces it.
	assert.Equal(t, committed, engine.LatestPlan())
	again, err := engine.Optimize(context.Background(), testRunConfig(6))
	require.NoError(t, err)
	assert.Equal(t, committed.Solver.ServiceIDs(), again.Solver.ServiceIDs())
	assert.Equal(t, committed.Solver.ObjectiveValue, again.Solver.ObjectiveValue)
}

func TestEngine_SimulateConfigOverrides(t *testing.T) {
	engine := NewEngine(zap.NewNop(), nil)
	require.NoError(t, engine.Refresh(fleetSnapshot(10)))

	target := 3
	plan, err := engine.Simulate(context.Background(), testRunConfig(6), simulation.Overrides{
		TargetServiceCount: &target,
	})
	require.NoError(t, err)

	assert.Equal(t, 3, plan.Summary.Service)
	assert.Equal(t, 3, plan.Config.TargetServiceCount)
}

func TestEngine_SimulateUnknownTargetFails(t *testing.T) {
	engine := NewEngine(zap.NewNop(), nil)
	require.NoError(t, engine.Refresh(fleetSnapshot(3)))

	_, err := engine.Simulate(context.Background(), testRunConfig(2), simulation.Overrides{
		SetMileage: map[string]float64{"KMRL-099": 1000},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to apply overrides")
}

func TestEngine_SimulateScenariosRunsAllConcurrently(t *testing.T) {
	engine := NewEngine(zap.NewNop(), nil)
	require.NoError(t, engine.Refresh(fleetSnapshot(10)))

	lowTarget, highTarget := 2, 8
	scenarios := []simulation.Scenario{
		{Name: "quiet night", Overrides: simulation.Overrides{TargetServiceCount: &lowTarget}},
		{Name: "festival peak", Overrides: simulation.Overrides{TargetServiceCount: &highTarget}},
		{Name: "baseline"},
	}

	results, err := engine.SimulateScenarios(context.Background(), testRunConfig(6), scenarios)
	require.NoError(t, err)

	require.Len(t, results, 3)
	assert.Equal(t, "quiet night", results[0].Name)
	assert.Equal(t, 2, results[0].Plan.Summary.Service)
	assert.Equal(t, "festival peak", results[1].Name)
	assert.Equal(t, 8, results[1].Plan.Summary.Service)
	assert.Equal(t, "baseline", results[2].Name)
	assert.Equal(t, 6, results[2].Plan.Summary.Service)
}

func TestEngine_SimulateScenariosPropagatesError(t *testing.T) {
	engine := NewEngine(zap.NewNop(), nil)
	require.NoError(t, engine.Refresh(fleetSnapshot(5)))

	scenarios := []simulation.Scenario{
		{Name: "broken", Overrides: simulation.Overrides{
			CloseJobCards: []string{"J-404"},
		}},
	}

	_, err := engine.SimulateScenarios(context.Background(), testRunConfig(3), scenarios)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `scenario "broken"`)
}

func TestEngine_InfeasibleTargetReportedInResult(t *testing.T) {
	engine := NewEngine(zap.NewNop(), nil)
	require.NoError(t, engine.Refresh(fleetSnapshot(5)))

	plan, err := engine.Optimize(context.Background(), testRunConfig(8))
	require.NoError(t, err)

	assert.Equal(t, optimizer.StatusInfeasible, plan.Solver.Status)
	assert.Equal(t, 3, plan.Solver.Shortfall)
	assert.Equal(t, 5, plan.Summary.Service)
	require.NotEmpty(t, plan.Alerts)
	assert.Contains(t, plan.Alerts[0], "CRITICAL: service target short by 3")
}

func TestEngine_AlertsEmptyBeforeFirstPlan(t *testing.T) {
	engine := NewEngine(zap.NewNop(), nil)
	assert.Empty(t, engine.Alerts())
}

func TestEngine_FleetSummary(t *testing.T) {
	engine := NewEngine(zap.NewNop(), nil)
	snap := fleetSnapshot(5)
	// Break one trainset so the summary shows an issue.
	snap.JobCards = append(snap.JobCards, model.JobCard{
		JobCardID: "J-1", TrainsetID: "KMRL-004",
		Priority: model.PriorityCritical, Status: model.JobOpen,
	})
	require.NoError(t, engine.Refresh(snap))

	_, err := engine.Optimize(context.Background(), testRunConfig(3))
	require.NoError(t, err)

	summary, err := engine.FleetSummary(testRunConfig(3))
	require.NoError(t, err)

	require.Len(t, summary.Trainsets, 5)
	assert.Equal(t, 3, summary.Allocation.Service)
	assert.Equal(t, 1, summary.OpenJobCards)

	var broken *TrainsetSummary
	for i := range summary.Trainsets {
		if summary.Trainsets[i].TrainsetID == "KMRL-004" {
			broken = &summary.Trainsets[i]
		}
	}
	require.NotNil(t, broken)
	assert.False(t, broken.Feasible)
	assert.NotEqual(t, model.RoleService, broken.Role)
}
