// Copyright EpiMind Project, 2026. All rights reserved.

package scoring

import (
	"fmt"

	"github.com/razorlong2/epimind-app/pkg/types"
)

// LabScore sums the threshold-banded contribution of each configured
// laboratory marker present in the dataset. Markers without a
// configured banding, and configured markers absent from the dataset,
// contribute nothing. Iteration follows the configuration order, so the
// result is independent of the dataset's lab entry order.
func LabScore(ds types.ClinicalDataset, cfg types.ScoringConfig) (int, []types.BreakdownEntry) {
	var total int
	var entries []types.BreakdownEntry

	for _, lb := range cfg.LabBands {
		lv, ok := ds.Lab(lb.Field)
		if !ok {
			continue
		}

		points := bandPoints(lb.Bands, lv.Value)
		note := fmt.Sprintf("%s = %v", lb.Field, lv.Value)
		if points == 0 && lb.LowPoints > 0 && lv.Value < lb.Low {
			points = lb.LowPoints
			note += fmt.Sprintf(" (below %v)", lb.Low)
		}
		if points == 0 {
			continue
		}

		total += points
		entries = append(entries, types.BreakdownEntry{
			Domain: types.DomainLaboratory,
			Points: points,
			Fields: []string{string(lb.Field)},
			Note:   note,
		})
	}

	return total, entries
}
