package model

// Interval is the gap in years between two consecutive wins by one producer.
type Interval struct {
	Producer     string `json:"producer"`
	Interval     int    `json:"interval"`
	PreviousWin  int    `json:"previousWin"`
	FollowingWin int    `json:"followingWin"`
}

// ResultSet holds every interval tied at the global minimum and maximum gap.
// Min and Max are never nil so they always encode as JSON arrays.
type ResultSet struct {
	Min []Interval `json:"min"`
	Max []Interval `json:"max"`
}

// EmptyResultSet returns the answer served when nothing could be computed.
func EmptyResultSet() ResultSet {
	return ResultSet{Min: []Interval{}, Max: []Interval{}}
}

// IsEmpty reports whether neither set holds an interval.
func (r ResultSet) IsEmpty() bool {
	return len(r.Min) == 0 && len(r.Max) == 0
}
