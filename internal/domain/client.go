package domain

import "time"

// Client is a stable geo-located delivery target. Clients are immutable
// within a run; CoordRepair produces a derived, repaired view rather than
// mutating this struct in place.
type Client struct {
	ClientID  int
	Name      string
	Zone      string
	Priority  int // 1..5, 0 means unset
	Coords    Coordinates
}

// CoordSource tags where a client's final coordinate came from after repair.
type CoordSource string

const (
	SourceOriginal CoordSource = "original"
	SourceEvent1   CoordSource = "event_1"
	SourceEvent2   CoordSource = "event_2"
	SourceNone     CoordSource = "none"
)

// Event is a historical coordinate observation for a client, used only to
// supply repair candidates. Events are consumed newest-first.
type Event struct {
	ClientID  int
	Timestamp time.Time
	Coords    Coordinates
}

// RepairedClient is the output of CoordRepair for a single client: the final
// coordinate decision plus its provenance.
type RepairedClient struct {
	Client          Client
	LonFinal        float64
	LatFinal        float64
	HasFinal        bool
	InPerimeterFinal bool
	CoordSource     CoordSource
}

// FinalCoords returns the repaired coordinate pair. Callers must check
// HasFinal before trusting the result (CoordSource==None means no valid
// candidate was ever found).
func (r RepairedClient) FinalCoords() Coordinates {
	return Coordinates{Lon: r.LonFinal, Lat: r.LatFinal}
}
