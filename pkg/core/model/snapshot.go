package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Snapshot is a point-in-time copy of the whole fleet state. A run
// operates on exactly one snapshot and never mutates it; refreshes
// produce a new snapshot with a new version.
type Snapshot struct {
	Version string
	TakenAt time.Time

	Trainsets    []Trainset
	Certificates []FitnessCertificate
	JobCards     []JobCard
	Branding     []BrandingContract
	Mileage      []MileageRecord
	Cleaning     []CleaningSchedule
	Stabling     []StablingPosition

	// CleaningBayCapacity is the number of deep-clean bay slots
	// available for the next cycle.
	CleaningBayCapacity int
}

// NewSnapshot stamps a fresh version and capture time onto the given
// fleet state.
func NewSnapshot(takenAt time.Time) *Snapshot {
	return &Snapshot{
		Version: uuid.NewString(),
		TakenAt: takenAt,
	}
}

// Clone returns a deep copy of the snapshot under a new version.
// Simulations work on clones so the canonical snapshot is never touched.
func (s *Snapshot) Clone() *Snapshot {
	c := &Snapshot{
		Version:             uuid.NewString(),
		TakenAt:             s.TakenAt,
		Trainsets:           append([]Trainset(nil), s.Trainsets...),
		Certificates:        append([]FitnessCertificate(nil), s.Certificates...),
		JobCards:            append([]JobCard(nil), s.JobCards...),
		Branding:            append([]BrandingContract(nil), s.Branding...),
		Mileage:             append([]MileageRecord(nil), s.Mileage...),
		Cleaning:            append([]CleaningSchedule(nil), s.Cleaning...),
		Stabling:            append([]StablingPosition(nil), s.Stabling...),
		CleaningBayCapacity: s.CleaningBayCapacity,
	}
	return c
}

// Validate checks snapshot invariants: unique trainset ids, every
// dependent record owned by a known trainset, at most one branding
// contract and one mileage record per trainset, non-negative mileage.
func (s *Snapshot) Validate() error {
	known := make(map[string]bool, len(s.Trainsets))
	for _, ts := range s.Trainsets {
		if ts.ID == "" {
			return fmt.Errorf("trainset with empty id")
		}
		if known[ts.ID] {
			return fmt.Errorf("duplicate trainset id %s", ts.ID)
		}
		if ts.CurrentRole != "" && !ts.CurrentRole.IsValid() {
			return fmt.Errorf("trainset %s has invalid role %q", ts.ID, ts.CurrentRole)
		}
		known[ts.ID] = true
	}

	for _, cert := range s.Certificates {
		if !known[cert.TrainsetID] {
			return fmt.Errorf("certificate %s references unknown trainset %s", cert.CertificateID, cert.TrainsetID)
		}
	}
	for _, job := range s.JobCards {
		if !known[job.TrainsetID] {
			return fmt.Errorf("job card %s references unknown trainset %s", job.JobCardID, job.TrainsetID)
		}
	}

	seenBrand := make(map[string]bool)
	for _, b := range s.Branding {
		if !known[b.TrainsetID] {
			return fmt.Errorf("branding contract references unknown trainset %s", b.TrainsetID)
		}
		if seenBrand[b.TrainsetID] {
			return fmt.Errorf("trainset %s has more than one active branding contract", b.TrainsetID)
		}
		seenBrand[b.TrainsetID] = true
	}

	seenMileage := make(map[string]bool)
	for _, m := range s.Mileage {
		if !known[m.TrainsetID] {
			return fmt.Errorf("mileage record references unknown trainset %s", m.TrainsetID)
		}
		if seenMileage[m.TrainsetID] {
			return fmt.Errorf("trainset %s has more than one mileage record", m.TrainsetID)
		}
		if m.CumulativeKm < 0 {
			return fmt.Errorf("trainset %s has negative cumulative mileage", m.TrainsetID)
		}
		seenMileage[m.TrainsetID] = true
	}

	if s.CleaningBayCapacity < 0 {
		return fmt.Errorf("negative cleaning bay capacity %d", s.CleaningBayCapacity)
	}

	return nil
}

// CertificatesFor returns the certificates owned by a trainset.
func (s *Snapshot) CertificatesFor(trainsetID string) []FitnessCertificate {
	var out []FitnessCertificate
	for _, c := range s.Certificates {
		if c.TrainsetID == trainsetID {
			out = append(out, c)
		}
	}
	return out
}

// JobCardsFor returns the job cards raised against a trainset.
func (s *Snapshot) JobCardsFor(trainsetID string) []JobCard {
	var out []JobCard
	for _, j := range s.JobCards {
		if j.TrainsetID == trainsetID {
			out = append(out, j)
		}
	}
	return out
}

// BrandingFor returns the active branding contract for a trainset, or
// nil if it carries none.
func (s *Snapshot) BrandingFor(trainsetID string) *BrandingContract {
	for i := range s.Branding {
		if s.Branding[i].TrainsetID == trainsetID {
			return &s.Branding[i]
		}
	}
	return nil
}

// MileageFor returns the mileage record for a trainset, or nil if the
// feed did not deliver one.
func (s *Snapshot) MileageFor(trainsetID string) *MileageRecord {
	for i := range s.Mileage {
		if s.Mileage[i].TrainsetID == trainsetID {
			return &s.Mileage[i]
		}
	}
	return nil
}

// CleaningFor returns the cleaning schedule entry for a trainset, or
// nil if there is none.
func (s *Snapshot) CleaningFor(trainsetID string) *CleaningSchedule {
	for i := range s.Cleaning {
		if s.Cleaning[i].TrainsetID == trainsetID {
			return &s.Cleaning[i]
		}
	}
	return nil
}
