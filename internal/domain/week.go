package domain

import "time"

// Shortlist is one day's ordered client selection, plus the derived centroid
// (lon, lat), the convention standardized across this package.
type Shortlist struct {
	Day      int
	Clients  []Client
	Centroid Coordinates
}

// ClientIDs returns the ordered client id sequence of the shortlist.
func (s Shortlist) ClientIDs() []int {
	ids := make([]int, len(s.Clients))
	for i, c := range s.Clients {
		ids[i] = c.ClientID
	}
	return ids
}

// Week is the partitioner's output: a week tag, its ordered days, and the
// leftover pool that could not be placed.
type Week struct {
	Tag      string // YYYYMMDD of the Monday
	Days     []Shortlist
	Leftover int
}

// NormalizeWeekTag validates an 8-digit YYYYMMDD tag; if it is not
// conformant, it is replaced by the ISO Monday of the reference time,
// matching the orchestrator's boundary-normalization rule.
func NormalizeWeekTag(tag string, ref time.Time) (string, bool) {
	if isValidWeekTag(tag) {
		return tag, false
	}
	return mondayTag(ref), true
}

func isValidWeekTag(tag string) bool {
	if len(tag) != 8 {
		return false
	}
	for _, r := range tag {
		if r < '0' || r > '9' {
			return false
		}
	}
	t, err := time.Parse("20060102", tag)
	if err != nil {
		return false
	}
	return t.Weekday() == time.Monday
}

func mondayTag(ref time.Time) string {
	wd := int(ref.Weekday())
	if wd == 0 {
		wd = 7 // ISO: Sunday is day 7
	}
	monday := ref.AddDate(0, 0, -(wd - 1))
	return monday.Format("20060102")
}
