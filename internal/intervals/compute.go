// Package intervals derives the gaps between a producer's consecutive wins and
// selects the ones at the global minimum and maximum.
package intervals

import (
	"slices"

	"github.com/sells-group/producer-intervals/internal/model"
)

// Compute groups win events by producer and emits one Interval per pair of
// consecutive winning years. Producers are visited in first-seen order.
// Duplicate years are kept and produce zero-length intervals.
func Compute(events []model.WinEvent) []model.Interval {
	order := make([]string, 0)
	years := make(map[string][]int)
	for _, ev := range events {
		if _, seen := years[ev.Producer]; !seen {
			order = append(order, ev.Producer)
		}
		years[ev.Producer] = append(years[ev.Producer], ev.Year)
	}

	out := make([]model.Interval, 0)
	for _, producer := range order {
		wins := years[producer]
		if len(wins) < 2 {
			continue
		}
		slices.Sort(wins)
		for i := 1; i < len(wins); i++ {
			out = append(out, model.Interval{
				Producer:     producer,
				Interval:     wins[i] - wins[i-1],
				PreviousWin:  wins[i-1],
				FollowingWin: wins[i],
			})
		}
	}
	return out
}
