package models

import "time"

// Selection is the current multi-dimensional filter criteria. A record must
// match every dimension (AND across dimensions, OR within a dimension's value
// set); an empty set on any one dimension matches nothing. The date range is
// inclusive on both ends.
type Selection struct {
	Countries []string  `json:"countries"`
	Segments  []string  `json:"segments"`
	Years     []int     `json:"years"`
	Quarters  []Quarter `json:"quarters"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}

// SelectionPatch is a partial selection update; nil fields are left unchanged.
type SelectionPatch struct {
	Countries *[]string  `json:"countries,omitempty"`
	Segments  *[]string  `json:"segments,omitempty"`
	Years     *[]int     `json:"years,omitempty"`
	Quarters  *[]Quarter `json:"quarters,omitempty"`
	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`
}

// Matches reports whether r satisfies every criterion of s.
func (s Selection) Matches(r Record) bool {
	return containsString(s.Countries, r.Country) &&
		containsString(s.Segments, r.Segment) &&
		containsInt(s.Years, r.Year) &&
		containsQuarter(s.Quarters, r.Quarter) &&
		!r.Date.Before(s.StartDate) &&
		!r.Date.After(s.EndDate)
}

func containsString(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

func containsInt(set []int, v int) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

func containsQuarter(set []Quarter, v Quarter) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
