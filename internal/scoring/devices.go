// Copyright EpiMind Project, 2026. All rights reserved.

package scoring

import (
	"fmt"
	"sort"

	"github.com/razorlong2/epimind-app/pkg/types"
)

// defaultDeviceWeight applies to device types absent from the
// configured weight table.
const defaultDeviceWeight = 5

// DeviceScore accumulates per-device contributions: the type's base
// weight plus a duration-band bonus, summed over devices in place and
// capped at the configured maximum. The score is monotonically
// non-decreasing in both device count and days in place.
func DeviceScore(ds types.ClinicalDataset, cfg types.ScoringConfig) (int, []types.BreakdownEntry) {
	devices := append([]types.Device(nil), ds.Devices...)
	sort.SliceStable(devices, func(i, j int) bool { return devices[i].Type < devices[j].Type })

	var total int
	var entries []types.BreakdownEntry

	for _, dev := range devices {
		if !dev.InPlace {
			continue
		}

		base, ok := cfg.DeviceWeights[dev.Type]
		if !ok {
			base = defaultDeviceWeight
		}

		days := dev.DaysInPlace(ds.EvaluatedAt)
		points := base + bandPoints(cfg.DeviceDurationBands, float64(days))
		total += points

		entries = append(entries, types.BreakdownEntry{
			Domain: types.DomainDevice,
			Points: points,
			Fields: []string{string(dev.Type)},
			Note:   fmt.Sprintf("%s in place %d days", dev.Type, days),
		})
	}

	if cfg.DeviceScoreCap > 0 && total > cfg.DeviceScoreCap {
		entries = append(entries, types.BreakdownEntry{
			Domain: types.DomainDevice,
			Points: cfg.DeviceScoreCap - total,
			Note:   fmt.Sprintf("device score capped at %d", cfg.DeviceScoreCap),
		})
		total = cfg.DeviceScoreCap
	}

	return total, entries
}

// bandPoints returns the points of the highest band whose Min the value
// reaches, or 0 below every band.
func bandPoints(bands []types.Band, value float64) int {
	best := 0
	bestMin := -1.0
	for _, b := range bands {
		if value >= b.Min && b.Min > bestMin {
			best = b.Points
			bestMin = b.Min
		}
	}
	return best
}
