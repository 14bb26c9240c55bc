// Package ingest generates fleet snapshots for the induction engine.
// Real deployments replace this with feeds from the maintenance and
// certification systems; the generator produces a realistic fleet for
// development and demos.
package ingest

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/sai290404/Kochi-Metro/pkg/core/model"
)

var brands = []string{"Coca-Cola", "Samsung", "Airtel", "BSNL", "Kerala Tourism"}

var jobDescriptions = []string{
	"Brake pad replacement",
	"HVAC filter change",
	"Door mechanism check",
	"Bogie inspection",
	"Electrical system check",
	"Interior cleaning",
	"Exterior wash",
	"Signal system calibration",
}

// GeneratorConfig controls the mock fleet generator.
type GeneratorConfig struct {
	FleetSize           int
	Now                 time.Time
	Seed                int64
	CleaningRule        string // RFC 5545 recurrence for deep cleans
	CleaningBayCapacity int
}

// GenerateSnapshot produces a complete fleet snapshot: certificates
// with mixed validity, a scattering of open job cards, branding on
// roughly 70% of the fleet, mileage with component wear, a cleaning
// schedule driven by the recurrence rule, and stabling bays with rising
// shunt cost. Deterministic for a given config.
func GenerateSnapshot(cfg GeneratorConfig) (*model.Snapshot, error) {
	rng := rand.New(rand.NewSource(cfg.Seed))

	snap := model.NewSnapshot(cfg.Now)
	snap.CleaningBayCapacity = cfg.CleaningBayCapacity

	var cleanRule *rrule.RRule
	if cfg.CleaningRule != "" {
		var err error
		cleanRule, err = rrule.StrToRRule(cfg.CleaningRule)
		if err != nil {
			return nil, fmt.Errorf("invalid cleaning rule: %w", err)
		}
	}

	for i := 1; i <= cfg.FleetSize; i++ {
		id := fmt.Sprintf("KMRL-%03d", i)
		snap.Trainsets = append(snap.Trainsets, model.Trainset{
			ID:          id,
			CurrentRole: model.RoleStandby,
		})

		generateCertificates(snap, rng, id, cfg.Now)
		generateJobCards(snap, rng, id, cfg.Now)
		generateBranding(snap, rng, id, cfg.Now)
		generateMileage(snap, rng, id)
		generateCleaning(snap, rng, id, cfg.Now, cleanRule)

		snap.Stabling = append(snap.Stabling, model.StablingPosition{
			BayID:      fmt.Sprintf("BAY-%02d", i),
			TrainsetID: id,
			ShuntCost:  float64(i) * 1.5,
		})
	}

	return snap, nil
}

func generateCertificates(snap *model.Snapshot, rng *rand.Rand, trainsetID string, now time.Time) {
	for _, dept := range model.RequiredDepartments {
		issued := now.AddDate(0, 0, -(1 + rng.Intn(60)))
		expires := issued.AddDate(0, 0, 30+rng.Intn(61))

		snap.Certificates = append(snap.Certificates, model.FitnessCertificate{
			CertificateID: fmt.Sprintf("%.2s-%s-%04d", string(dept), trainsetID, 1000+rng.Intn(9000)),
			TrainsetID:    trainsetID,
			Department:    dept,
			IssuedAt:      issued,
			ExpiresAt:     expires,
			Inspector:     fmt.Sprintf("Inspector %c", 'A'+rng.Intn(4)),
		})
	}
}

func generateJobCards(snap *model.Snapshot, rng *rand.Rand, trainsetID string, now time.Time) {
	for n := rng.Intn(4); n > 0; n-- {
		priority := []model.JobCardPriority{
			model.PriorityLow, model.PriorityMedium, model.PriorityHigh, model.PriorityCritical,
		}[rng.Intn(4)]

		status := []model.JobCardStatus{model.JobOpen, model.JobClosed}[rng.Intn(2)]
		// Critical work doesn't sit closed for long in the feed.
		if priority == model.PriorityCritical {
			status = model.JobOpen
		}

		snap.JobCards = append(snap.JobCards, model.JobCard{
			JobCardID:   fmt.Sprintf("JC-%05d", 10000+rng.Intn(90000)),
			TrainsetID:  trainsetID,
			Description: jobDescriptions[rng.Intn(len(jobDescriptions))],
			Priority:    priority,
			Status:      status,
			RaisedAt:    now.AddDate(0, 0, -(1 + rng.Intn(30))),
		})
	}
}

func generateBranding(snap *model.Snapshot, rng *rand.Rand, trainsetID string, now time.Time) {
	if rng.Float64() <= 0.3 {
		return
	}

	start := now.AddDate(0, 0, -(30 + rng.Intn(336)))
	end := start.AddDate(0, 0, 90+rng.Intn(641))
	required := float64(8 + rng.Intn(9))

	snap.Branding = append(snap.Branding, model.BrandingContract{
		TrainsetID:    trainsetID,
		Brand:         brands[rng.Intn(len(brands))],
		RequiredHours: required,
		AccruedHours:  float64(rng.Intn(int(required) + 3)),
		StartsAt:      start,
		EndsAt:        end,
		PenaltyPerHr:  float64(5000 + rng.Intn(20001)),
	})
}

func generateMileage(snap *model.Snapshot, rng *rand.Rand, trainsetID string) {
	snap.Mileage = append(snap.Mileage, model.MileageRecord{
		TrainsetID:   trainsetID,
		CumulativeKm: 50000 + rng.Float64()*100000,
		BogieWear:    rng.Float64() * 80,
		BrakeWear:    rng.Float64() * 80,
		HVACWear:     rng.Float64() * 80,
	})
}

func generateCleaning(snap *model.Snapshot, rng *rand.Rand, trainsetID string, now time.Time, rule *rrule.RRule) {
	lastClean := now.AddDate(0, 0, -rng.Intn(6))

	nextDue := lastClean.AddDate(0, 0, 3)
	if rule != nil {
		rule.DTStart(lastClean)
		if after := rule.After(lastClean, false); !after.IsZero() {
			nextDue = after
		}
	}

	snap.Cleaning = append(snap.Cleaning, model.CleaningSchedule{
		TrainsetID: trainsetID,
		Due:        !nextDue.After(now),
		LastClean:  lastClean,
		NextDue:    nextDue,
	})
}
