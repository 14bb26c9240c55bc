package simulation

import (
	"fmt"
	"time"

	"github.com/sai290404/Kochi-Metro/pkg/core/model"
	"github.com/sai290404/Kochi-Metro/pkg/core/optimizer"
)

// CertificateRef identifies one department certificate on a trainset.
type CertificateRef struct {
	TrainsetID string           `yaml:"trainsetId" json:"trainsetId"`
	Department model.Department `yaml:"department" json:"department"`
}

// CertificateExpiry moves a certificate's expiry to a given instant,
// typically into the past to model a lapse.
type CertificateExpiry struct {
	TrainsetID string           `yaml:"trainsetId" json:"trainsetId"`
	Department model.Department `yaml:"department" json:"department"`
	ExpiresAt  time.Time        `yaml:"expiresAt" json:"expiresAt"`
}

// Overrides describes a hypothetical applied on top of a cloned
// snapshot before a counterfactual run. Zero values mean "leave as is".
type Overrides struct {
	// RevokeCertificates removes the named certificates entirely.
	RevokeCertificates []CertificateRef `yaml:"revokeCertificates,omitempty" json:"revokeCertificates,omitempty"`

	// ExpireCertificates rewrites the named certificates' expiry dates.
	ExpireCertificates []CertificateExpiry `yaml:"expireCertificates,omitempty" json:"expireCertificates,omitempty"`

	// OpenJobCards adds hypothetical job cards.
	OpenJobCards []model.JobCard `yaml:"openJobCards,omitempty" json:"openJobCards,omitempty"`

	// CloseJobCards marks the named job cards closed.
	CloseJobCards []string `yaml:"closeJobCards,omitempty" json:"closeJobCards,omitempty"`

	// SetBrandingAccrued overwrites accrued exposure hours per trainset.
	SetBrandingAccrued map[string]float64 `yaml:"setBrandingAccrued,omitempty" json:"setBrandingAccrued,omitempty"`

	// SetMileage overwrites cumulative km per trainset.
	SetMileage map[string]float64 `yaml:"setMileage,omitempty" json:"setMileage,omitempty"`

	// SetCleaningDue overwrites the cleaning-due flag per trainset.
	SetCleaningDue map[string]bool `yaml:"setCleaningDue,omitempty" json:"setCleaningDue,omitempty"`

	// Run-configuration overrides. Nil means keep the live setting.
	TargetServiceCount          *int               `yaml:"targetServiceCount,omitempty" json:"targetServiceCount,omitempty"`
	Weights                     *optimizer.Weights `yaml:"weights,omitempty" json:"weights,omitempty"`
	SolverTimeBudget            *time.Duration     `yaml:"solverTimeBudget,omitempty" json:"solverTimeBudget,omitempty"`
	CriticalUrgencyThreshold    *float64           `yaml:"criticalUrgencyThreshold,omitempty" json:"criticalUrgencyThreshold,omitempty"`
	MaintenanceUrgencyThreshold *float64           `yaml:"maintenanceUrgencyThreshold,omitempty" json:"maintenanceUrgencyThreshold,omitempty"`
}

// Scenario is a named set of overrides for batch what-if analysis.
type Scenario struct {
	Name      string    `yaml:"name" json:"name"`
	Overrides Overrides `yaml:"overrides" json:"overrides"`
}

// ApplySnapshot mutates the given snapshot in place. Callers pass a
// clone; the canonical snapshot is never handed to this function.
func (o Overrides) ApplySnapshot(snap *model.Snapshot) error {
	for _, ref := range o.RevokeCertificates {
		kept := snap.Certificates[:0]
		found := false
		for _, cert := range snap.Certificates {
			if cert.TrainsetID == ref.TrainsetID && cert.Department == ref.Department {
				found = true
				continue
			}
			kept = append(kept, cert)
		}
		if !found {
			return fmt.Errorf("no %s certificate to revoke on trainset %s", ref.Department, ref.TrainsetID)
		}
		snap.Certificates = kept
	}

	for _, exp := range o.ExpireCertificates {
		found := false
		for i := range snap.Certificates {
			cert := &snap.Certificates[i]
			if cert.TrainsetID == exp.TrainsetID && cert.Department == exp.Department {
				cert.ExpiresAt = exp.ExpiresAt
				found = true
			}
		}
		if !found {
			return fmt.Errorf("no %s certificate to expire on trainset %s", exp.Department, exp.TrainsetID)
		}
	}

	snap.JobCards = append(snap.JobCards, o.OpenJobCards...)

	for _, jobID := range o.CloseJobCards {
		found := false
		for i := range snap.JobCards {
			if snap.JobCards[i].JobCardID == jobID {
				snap.JobCards[i].Status = model.JobClosed
				found = true
			}
		}
		if !found {
			return fmt.Errorf("no job card %s to close", jobID)
		}
	}

	for trainsetID, hours := range o.SetBrandingAccrued {
		contract := snap.BrandingFor(trainsetID)
		if contract == nil {
			return fmt.Errorf("trainset %s has no branding contract", trainsetID)
		}
		contract.AccruedHours = hours
	}

	for trainsetID, km := range o.SetMileage {
		record := snap.MileageFor(trainsetID)
		if record == nil {
			return fmt.Errorf("trainset %s has no mileage record", trainsetID)
		}
		record.CumulativeKm = km
	}

	for trainsetID, due := range o.SetCleaningDue {
		entry := snap.CleaningFor(trainsetID)
		if entry == nil {
			return fmt.Errorf("trainset %s has no cleaning schedule entry", trainsetID)
		}
		entry.Due = due
	}

	return nil
}
