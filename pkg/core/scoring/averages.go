package scoring

import "github.com/sai290404/Kochi-Metro/pkg/core/model"

// FleetAverages holds the fleet-wide aggregates used both for wear
// equalization terms and as the fallback values for trainsets with
// missing records.
type FleetAverages struct {
	CumulativeKm float64
	Wear         float64
	CleaningDue  int
}

// ComputeFleetAverages derives the aggregates from the trainsets that
// do have records. An empty fleet yields zero averages.
func ComputeFleetAverages(snap *model.Snapshot) FleetAverages {
	var avg FleetAverages

	if n := len(snap.Mileage); n > 0 {
		var kmSum, wearSum float64
		for _, m := range snap.Mileage {
			kmSum += m.CumulativeKm
			wearSum += m.AverageWear()
		}
		avg.CumulativeKm = kmSum / float64(n)
		avg.Wear = wearSum / float64(n)
	}

	for _, c := range snap.Cleaning {
		if c.Due {
			avg.CleaningDue++
		}
	}

	return avg
}
