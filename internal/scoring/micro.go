// Copyright EpiMind Project, 2026. All rights reserved.

package scoring

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/razorlong2/epimind-app/pkg/types"
)

// MicrobiologyScore weights positive cultures with extra points per
// resistance marker from the controlled vocabulary and a multiplier for
// polymicrobial growth. A marker outside the vocabulary is a structural
// invariant violation: the evaluation is rejected rather than scored on
// unvetted input.
func MicrobiologyScore(ds types.ClinicalDataset, cfg types.ScoringConfig) (int, []types.BreakdownEntry, error) {
	cultures := append([]types.CultureResult(nil), ds.Cultures...)
	sort.SliceStable(cultures, func(i, j int) bool { return cultures[i].Pathogen < cultures[j].Pathogen })

	var total int
	var entries []types.BreakdownEntry

	for _, c := range cultures {
		if c.Pathogen == "" {
			continue
		}

		points := cfg.CulturePoints
		fields := []string{c.Pathogen}

		markers := append([]string(nil), c.Resistances...)
		sort.Strings(markers)
		for _, m := range markers {
			pts, ok := cfg.ResistancePoints[m]
			if !ok {
				return 0, nil, fmt.Errorf("%w: resistance marker %q for %s is not in the controlled vocabulary",
					ErrInvalidDataset, m, c.Pathogen)
			}
			points += pts
			fields = append(fields, m)
		}

		note := "positive culture: " + c.Pathogen
		if len(markers) > 0 {
			note += " (" + strings.Join(markers, ", ") + ")"
		}
		if c.Polymicrobial && cfg.PolymicrobialMultiplier > 1 {
			points = int(math.Round(float64(points) * cfg.PolymicrobialMultiplier))
			note += ", polymicrobial"
		}

		total += points
		entries = append(entries, types.BreakdownEntry{
			Domain: types.DomainMicrobiology,
			Points: points,
			Fields: fields,
			Note:   note,
		})
	}

	return total, entries, nil
}
