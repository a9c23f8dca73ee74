package dto

// VehicleInput is the wire shape of one fleet vehicle row.
type VehicleInput struct {
	VehicleID  int     `json:"vehicle_id"`
	StartLon   float64 `json:"start_lon"`
	StartLat   float64 `json:"start_lat"`
	EndLon     float64 `json:"end_lon"`
	EndLat     float64 `json:"end_lat"`
	MaxStops   int     `json:"max_stops"`
	TWStart    string  `json:"tw_start"`
	TWEnd      string  `json:"tw_end"`
	BreakStart string  `json:"break_start"`
	BreakEnd   string  `json:"break_end"`
}

// SolveRequest is the Solve workflow's request body: one day's shortlist
// (by client id, resolved server-side against the partitioned week) and
// the fleet serving it.
type SolveRequest struct {
	WeekTag         string         `json:"week_tag"`
	Day             int            `json:"day"`
	ClientIDs       []int          `json:"client_ids"`
	Vehicles        []VehicleInput `json:"vehicles"`
	UseCache        bool           `json:"use_cache"`
	IncludeArrivals bool           `json:"include_arrivals"`
}

// RouteLegResponse is one leg of a solved route.
type RouteLegResponse struct {
	FromID    int     `json:"from_id"`
	ToID      int     `json:"to_id"`
	DistanceM float64 `json:"distance_m"`
	DurationS float64 `json:"duration_s"`
}

// StopArrivalResponse is one stop's computed arrival/departure, present only
// when the request set include_arrivals.
type StopArrivalResponse struct {
	ClientID  int     `json:"client_id"`
	ArriveSec float64 `json:"arrive_sec"`
	DepartSec float64 `json:"depart_sec"`
}

// RouteResponse is one vehicle's solved route.
type RouteResponse struct {
	VehicleID       int                    `json:"vehicle_id"`
	ClientIDs       []int                  `json:"client_ids"`
	DistanceKM      float64                `json:"distance_km"`
	DurationMinutes float64                `json:"duration_minutes"`
	Legs            []RouteLegResponse     `json:"legs"`
	Arrivals        []StopArrivalResponse  `json:"arrivals,omitempty"`
	GeometryValid   bool                   `json:"geometry_valid"`
	Polyline        string                 `json:"polyline"`
}

// SolveResponse is the Solve workflow's response.
type SolveResponse struct {
	Routes          []RouteResponse `json:"routes"`
	UnservedIDs     []int           `json:"unserved_ids"`
	ServedPct       float64         `json:"served_pct"`
	KMTotal         float64         `json:"km_total"`
	MinTotal        float64         `json:"min_total"`
	BalanceStdStops float64         `json:"balance_std_stops"`
	Status          string          `json:"status"`
}
