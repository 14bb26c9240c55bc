package optimizer

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/sai290404/Kochi-Metro/pkg/core/feasibility"
	"github.com/sai290404/Kochi-Metro/pkg/core/model"
	"github.com/sai290404/Kochi-Metro/pkg/core/scoring"
)

// Status reports how the solver finished.
type Status string

const (
	// StatusOptimal means the returned assignment is provably the best.
	StatusOptimal Status = "optimal"

	// StatusSuboptimal means the time budget expired and the best
	// incumbent found so far is returned.
	StatusSuboptimal Status = "feasible-suboptimal"

	// StatusInfeasible means the requested service count exceeds the
	// number of feasible trainsets. The result still carries the best
	// attainable assignment plus the shortfall.
	StatusInfeasible Status = "infeasible"
)

// Weights are the objective weights over the three sub-scores. They
// must sum to 1; config validation enforces this before a run starts.
type Weights struct {
	Readiness float64
	Branding  float64
	Urgency   float64
}

// DefaultWeights mirrors the fleet operating plan: readiness first,
// branding obligations second, maintenance balancing third.
var DefaultWeights = Weights{Readiness: 0.5, Branding: 0.3, Urgency: 0.2}

// Input is everything the solver needs for one run. Assessments and
// Scores must cover every trainset in the snapshot.
type Input struct {
	Snapshot           *model.Snapshot
	Assessments        map[string]feasibility.Assessment
	Scores             map[string]scoring.Scores
	TargetServiceCount int
	Weights            Weights

	// TimeBudget bounds the wall clock for the search; on expiry the
	// best incumbent is returned with StatusSuboptimal.
	TimeBudget time.Duration

	// CriticalUrgencyThreshold forces a trainset into Maintenance when
	// its urgency score reaches it, even if otherwise feasible.
	CriticalUrgencyThreshold float64

	// MaintenanceUrgencyThreshold routes non-service trainsets to
	// Maintenance instead of Standby.
	MaintenanceUrgencyThreshold float64
}

// Decision is the per-trainset outcome, with the intermediate scores
// retained for the explanation layer.
type Decision struct {
	TrainsetID        string
	Role              model.Role
	Scores            scoring.Scores
	Combined          float64
	Feasible          bool
	BlockingReasons   []string
	ForcedMaintenance bool

	// StablingBay is the preferred bay for the next night, set for
	// service trainsets by the greedy stabling pass.
	StablingBay string
}

// Result is the immutable outcome of one solver run.
type Result struct {
	Decisions []Decision // ordered by trainset id
	Status    Status

	// ObjectiveValue is the summed combined score of the service set.
	ObjectiveValue float64

	// Shortfall is how many service slots could not be filled; zero
	// unless Status is StatusInfeasible.
	Shortfall int

	// CutoffScore is the combined score of the lowest-ranked selected
	// trainset, when at least one was selected. Near-miss explanations
	// compare against it.
	CutoffScore float64
	HasCutoff   bool

	// StandbyOrder lists standby trainsets, lowest combined score
	// first: the order in which they would be held back.
	StandbyOrder []string

	NodesExplored int
	Elapsed       time.Duration
}

// ServiceIDs returns the ids assigned the Service role.
func (r *Result) ServiceIDs() []string {
	var out []string
	for _, d := range r.Decisions {
		if d.Role == model.RoleService {
			out = append(out, d.TrainsetID)
		}
	}
	return out
}

// Decision returns the decision for one trainset, or nil.
func (r *Result) Decision(trainsetID string) *Decision {
	for i := range r.Decisions {
		if r.Decisions[i].TrainsetID == trainsetID {
			return &r.Decisions[i]
		}
	}
	return nil
}

// candidate is a service-eligible trainset in solver ordering.
type candidate struct {
	id       string
	combined float64
}

// Solve assigns every trainset exactly one role for the next service
// day: exactly TargetServiceCount trainsets in Service maximizing the
// weighted combined score, with infeasible trainsets hard-excluded and
// high-urgency trainsets forced to Maintenance. The selection is solved
// as a small integer program by branch-and-bound; the standby versus
// maintenance split for the remainder is a deterministic threshold
// rule.
//
// Solve is deterministic: identical snapshot and input produce an
// identical result, with ties broken by trainset id ascending.
func Solve(ctx context.Context, in Input) (*Result, error) {
	if in.TargetServiceCount < 0 {
		return nil, fmt.Errorf("target service count must not be negative, got %d", in.TargetServiceCount)
	}
	if in.Snapshot == nil {
		return nil, fmt.Errorf("nil snapshot")
	}

	started := time.Now()
	deadline := started.Add(in.TimeBudget)
	if in.TimeBudget <= 0 {
		deadline = started.Add(30 * time.Second)
	}

	// Build the candidate list: feasible and not forced into
	// maintenance. Sorted by combined score descending, id ascending,
	// which both fixes tie-breaking and makes the greedy prefix the
	// first incumbent.
	candidates := make([]candidate, 0, len(in.Snapshot.Trainsets))
	combined := make(map[string]float64, len(in.Snapshot.Trainsets))
	forced := make(map[string]bool)

	for _, ts := range in.Snapshot.Trainsets {
		sc := in.Scores[ts.ID]
		combined[ts.ID] = sc.Combined(in.Weights.Readiness, in.Weights.Branding, in.Weights.Urgency)

		if in.CriticalUrgencyThreshold > 0 && sc.Urgency >= in.CriticalUrgencyThreshold {
			forced[ts.ID] = true
			continue
		}
		if !in.Assessments[ts.ID].Feasible {
			continue
		}
		candidates = append(candidates, candidate{id: ts.ID, combined: combined[ts.ID]})
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].combined != candidates[j].combined {
			return candidates[i].combined > candidates[j].combined
		}
		return candidates[i].id < candidates[j].id
	})

	status := StatusOptimal
	shortfall := 0
	target := in.TargetServiceCount

	if len(candidates) < target {
		// Operational impossibility for the day: report it, and fall
		// back to the best attainable plan with every candidate in
		// service.
		status = StatusInfeasible
		shortfall = target - len(candidates)
		target = len(candidates)
	}

	sel, nodes, proven := searchServiceSet(ctx, candidates, target, deadline)
	if status == StatusOptimal && !proven {
		status = StatusSuboptimal
	}

	selected := make(map[string]bool, len(sel))
	objective := 0.0
	cutoff := 0.0
	hasCutoff := false
	for _, idx := range sel {
		c := candidates[idx]
		selected[c.id] = true
		objective += c.combined
		if !hasCutoff || c.combined < cutoff {
			cutoff = c.combined
			hasCutoff = true
		}
	}

	decisions := buildDecisions(in, selected, forced, combined)
	assignStabling(in.Snapshot, decisions, combined)

	result := &Result{
		Decisions:      decisions,
		Status:         status,
		ObjectiveValue: objective,
		Shortfall:      shortfall,
		CutoffScore:    cutoff,
		HasCutoff:      hasCutoff,
		StandbyOrder:   standbyOrder(decisions),
		NodesExplored:  nodes,
		Elapsed:        time.Since(started),
	}
	return result, nil
}

// buildDecisions applies the secondary rule to the non-service
// remainder: forced or blocked-by-critical-job or urgency at the
// maintenance threshold goes to Maintenance, the rest to Standby.
func buildDecisions(in Input, selected, forced map[string]bool, combined map[string]float64) []Decision {
	ids := make([]string, 0, len(in.Snapshot.Trainsets))
	for _, ts := range in.Snapshot.Trainsets {
		ids = append(ids, ts.ID)
	}
	sort.Strings(ids)

	decisions := make([]Decision, 0, len(ids))
	for _, id := range ids {
		assessment := in.Assessments[id]
		d := Decision{
			TrainsetID:        id,
			Scores:            in.Scores[id],
			Combined:          combined[id],
			Feasible:          assessment.Feasible,
			BlockingReasons:   append([]string(nil), assessment.BlockingReasons...),
			ForcedMaintenance: forced[id],
		}

		switch {
		case selected[id]:
			d.Role = model.RoleService
		case forced[id]:
			d.Role = model.RoleMaintenance
		case !assessment.Feasible && hasOpenCriticalJob(in.Snapshot, id):
			d.Role = model.RoleMaintenance
		case in.MaintenanceUrgencyThreshold > 0 && d.Scores.Urgency >= in.MaintenanceUrgencyThreshold:
			d.Role = model.RoleMaintenance
		default:
			d.Role = model.RoleStandby
		}
		decisions = append(decisions, d)
	}
	return decisions
}

func hasOpenCriticalJob(snap *model.Snapshot, trainsetID string) bool {
	for _, job := range snap.JobCardsFor(trainsetID) {
		if job.IsBlocking() {
			return true
		}
	}
	return false
}

// standbyOrder ranks standby trainsets lowest combined score first,
// ties by id ascending.
func standbyOrder(decisions []Decision) []string {
	type entry struct {
		id       string
		combined float64
	}
	var entries []entry
	for _, d := range decisions {
		if d.Role == model.RoleStandby {
			entries = append(entries, entry{d.TrainsetID, d.Combined})
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].combined != entries[j].combined {
			return entries[i].combined < entries[j].combined
		}
		return entries[i].id < entries[j].id
	})
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.id
	}
	return out
}

// assignStabling is the greedy secondary pass: service trainsets claim
// the cheapest-shunt bays in selection order. Bay assignment is a
// preference for downstream move planning, never a hard constraint.
func assignStabling(snap *model.Snapshot, decisions []Decision, combined map[string]float64) {
	bays := append([]model.StablingPosition(nil), snap.Stabling...)
	sort.Slice(bays, func(i, j int) bool {
		if bays[i].ShuntCost != bays[j].ShuntCost {
			return bays[i].ShuntCost < bays[j].ShuntCost
		}
		return bays[i].BayID < bays[j].BayID
	})

	service := make([]int, 0, len(decisions))
	for i := range decisions {
		if decisions[i].Role == model.RoleService {
			service = append(service, i)
		}
	}
	sort.Slice(service, func(a, b int) bool {
		di, dj := decisions[service[a]], decisions[service[b]]
		if combined[di.TrainsetID] != combined[dj.TrainsetID] {
			return combined[di.TrainsetID] > combined[dj.TrainsetID]
		}
		return di.TrainsetID < dj.TrainsetID
	})

	for i, idx := range service {
		if i >= len(bays) {
			break
		}
		decisions[idx].StablingBay = bays[i].BayID
	}
}
