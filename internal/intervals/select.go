package intervals

import "github.com/sells-group/producer-intervals/internal/model"

// Select returns every interval equal to the smallest gap in Min and every
// interval equal to the largest gap in Max, preserving input order. When all
// gaps are equal the same intervals appear in both sets.
func Select(intervals []model.Interval) model.ResultSet {
	result := model.EmptyResultSet()
	if len(intervals) == 0 {
		return result
	}

	minVal, maxVal := intervals[0].Interval, intervals[0].Interval
	for _, iv := range intervals[1:] {
		minVal = min(minVal, iv.Interval)
		maxVal = max(maxVal, iv.Interval)
	}

	for _, iv := range intervals {
		if iv.Interval == minVal {
			result.Min = append(result.Min, iv)
		}
		if iv.Interval == maxVal {
			result.Max = append(result.Max, iv)
		}
	}
	return result
}
