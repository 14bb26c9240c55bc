package scoring

import (
	"time"

	"github.com/sai290404/Kochi-Metro/pkg/core/model"
)

// Penalty and scaling constants for the readiness score. Values follow
// depot practice: an expired certificate is a heavier event than one
// merely approaching expiry, and a critical job card outweighs routine
// work orders.
const (
	penaltyExpiredCert  = 30.0
	penaltyExpiringCert = 10.0

	penaltyJobCritical = 25.0
	penaltyJobHigh     = 15.0
	penaltyJobMedium   = 8.0
	penaltyJobLow      = 3.0

	// Readiness deduction per wear percentage point above fleet mean.
	wearPenaltyPerPoint = 0.2

	// Urgency contribution caps: mileage imbalance and cleaning
	// contention split the [0,100] range 60/40.
	urgencyMileageCap  = 60.0
	urgencyCleaningCap = 40.0

	// A cleaning that is due contributes this much even when bay
	// capacity covers every due trainset.
	urgencyCleaningDue = 20.0
)

// Config carries the knobs the scoring engine reads.
type Config struct {
	// ServiceDate is the day being planned for.
	ServiceDate time.Time

	// CertificateWarningWindow is how far ahead of expiry a
	// certificate starts costing readiness.
	CertificateWarningWindow time.Duration
}

// Scores holds the three independent sub-scores for one trainset, each
// clamped to [0,100]. Degraded lists data-quality notes recorded when a
// required attribute was missing and a fleet average stood in.
type Scores struct {
	TrainsetID string
	Readiness  float64
	Branding   float64
	Urgency    float64
	Degraded   []string
}

// Combined applies the objective weights to the sub-scores.
func (s Scores) Combined(readinessW, brandingW, urgencyW float64) float64 {
	return s.Readiness*readinessW + s.Branding*brandingW + s.Urgency*urgencyW
}

// Engine scores trainsets against a single snapshot. Fleet-wide
// aggregates are computed once at construction so missing per-trainset
// attributes can fall back to the fleet average.
type Engine struct {
	snap *model.Snapshot
	cfg  Config
	avg  FleetAverages
}

// NewEngine builds a scoring engine over the given snapshot.
func NewEngine(snap *model.Snapshot, cfg Config) *Engine {
	return &Engine{snap: snap, cfg: cfg, avg: ComputeFleetAverages(snap)}
}

// Averages exposes the fleet-wide aggregates backing the fallback policy.
func (e *Engine) Averages() FleetAverages {
	return e.avg
}

// Score computes the three sub-scores for one trainset. Deterministic
// given the snapshot; missing data never fails the run, it degrades it.
func (e *Engine) Score(trainsetID string) Scores {
	s := Scores{TrainsetID: trainsetID}

	mileage, degradedNote := e.mileageOrFallback(trainsetID)
	if degradedNote != "" {
		s.Degraded = append(s.Degraded, degradedNote)
	}

	s.Readiness = e.readiness(trainsetID, mileage)
	s.Branding = e.branding(trainsetID)
	s.Urgency = e.urgency(trainsetID, mileage)
	return s
}

// ScoreAll scores every trainset in the snapshot, keyed by id.
func (e *Engine) ScoreAll() map[string]Scores {
	out := make(map[string]Scores, len(e.snap.Trainsets))
	for _, ts := range e.snap.Trainsets {
		out[ts.ID] = e.Score(ts.ID)
	}
	return out
}

// readiness starts at 100 and deducts for certificate trouble, open job
// cards and component wear above the fleet mean.
func (e *Engine) readiness(trainsetID string, mileage model.MileageRecord) float64 {
	score := 100.0

	warningCutoff := e.cfg.ServiceDate.Add(e.cfg.CertificateWarningWindow)
	for _, cert := range e.snap.CertificatesFor(trainsetID) {
		switch {
		case !cert.ValidOn(e.cfg.ServiceDate):
			score -= penaltyExpiredCert
		case cert.ExpiresAt.Before(warningCutoff):
			score -= penaltyExpiringCert
		}
	}

	for _, job := range e.snap.JobCardsFor(trainsetID) {
		if job.Status != model.JobOpen {
			continue
		}
		switch job.Priority {
		case model.PriorityCritical:
			score -= penaltyJobCritical
		case model.PriorityHigh:
			score -= penaltyJobHigh
		case model.PriorityMedium:
			score -= penaltyJobMedium
		default:
			score -= penaltyJobLow
		}
	}

	if excess := mileage.AverageWear() - e.avg.Wear; excess > 0 {
		score -= excess * wearPenaltyPerPoint
	}

	return clamp(score)
}

// branding scores the exposure shortfall against the remaining contract
// window: the same shortfall grows more urgent as the deadline nears.
func (e *Engine) branding(trainsetID string) float64 {
	contract := e.snap.BrandingFor(trainsetID)
	if contract == nil || contract.RequiredHours <= 0 {
		return 0
	}

	shortfall := contract.RequiredHours - contract.AccruedHours
	if shortfall <= 0 {
		return 0
	}

	total := contract.EndsAt.Sub(contract.StartsAt)
	remaining := contract.EndsAt.Sub(e.cfg.ServiceDate)
	remainingFraction := 1.0
	if total > 0 {
		remainingFraction = float64(remaining) / float64(total)
	}
	if remainingFraction < 0.1 {
		remainingFraction = 0.1
	}

	return clamp(100 * (shortfall / contract.RequiredHours) / remainingFraction)
}

// urgency combines mileage imbalance (over- and under-run trainsets both
// flagged, for wear equalization) with cleaning bay contention.
func (e *Engine) urgency(trainsetID string, mileage model.MileageRecord) float64 {
	score := 0.0

	if e.avg.CumulativeKm > 0 {
		deviation := mileage.CumulativeKm - e.avg.CumulativeKm
		if deviation < 0 {
			deviation = -deviation
		}
		relative := deviation / e.avg.CumulativeKm
		mileageTerm := urgencyMileageCap * 2 * relative
		if mileageTerm > urgencyMileageCap {
			mileageTerm = urgencyMileageCap
		}
		score += mileageTerm
	}

	if cleaning := e.snap.CleaningFor(trainsetID); cleaning != nil && cleaning.Due {
		score += urgencyCleaningDue
		if e.avg.CleaningDue > e.snap.CleaningBayCapacity && e.avg.CleaningDue > 0 {
			contention := float64(e.avg.CleaningDue-e.snap.CleaningBayCapacity) / float64(e.avg.CleaningDue)
			score += (urgencyCleaningCap - urgencyCleaningDue) * contention
		}
	}

	return clamp(score)
}

// mileageOrFallback returns the trainset's mileage record, or the
// fleet-average record plus a degraded-confidence note when the feed
// did not deliver one.
func (e *Engine) mileageOrFallback(trainsetID string) (model.MileageRecord, string) {
	if m := e.snap.MileageFor(trainsetID); m != nil {
		return *m, ""
	}
	fallback := model.MileageRecord{
		TrainsetID:   trainsetID,
		CumulativeKm: e.avg.CumulativeKm,
		BogieWear:    e.avg.Wear,
		BrakeWear:    e.avg.Wear,
		HVACWear:     e.avg.Wear,
	}
	return fallback, "mileage record missing; fleet averages substituted"
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
