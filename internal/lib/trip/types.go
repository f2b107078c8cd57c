package trip

import (
	"ifta-mileage/internal/lib/attribution"
	"ifta-mileage/internal/lib/geo"
)

// Role identifies a waypoint's position in the trip sheet.
type Role string

const (
	RoleOrigin  Role = "origin"
	RoleDrop    Role = "drop"
	RolePickup  Role = "pickup"
	RoleDropoff Role = "dropoff"
)

// Waypoint is one stop on a trip. Coord is nil when geocoding failed; such
// waypoints are excluded from leg computation but never replaced with
// another waypoint's value. State is an optional hint parsed from the
// location string ("City, ST").
type Waypoint struct {
	Label string     `json:"label"`
	Role  Role       `json:"role"`
	State string     `json:"state,omitempty"`
	Coord *geo.Point `json:"coord,omitempty"`
}

// Distance methods for a leg.
const (
	MethodAuthoritative       = "authoritative"
	MethodGreatCircleFallback = "great_circle_fallback"
)

// Leg is the portion of a trip between two consecutive resolved waypoints.
// Immutable after the aggregator returns it.
type Leg struct {
	Index             int                      `json:"index"`
	Origin            Waypoint                 `json:"origin"`
	Destination       Waypoint                 `json:"destination"`
	DistanceMiles     float64                  `json:"distance_miles"`
	Geometry          []geo.Path               `json:"-"`
	Method            string                   `json:"method"`
	Attribution       []attribution.StateShare `json:"attribution"`
	AttributionMethod string                   `json:"attribution_method"`
	Failed            bool                     `json:"failed,omitempty"`
	Error             string                   `json:"error,omitempty"`
}

// StateMileage is one row of the trip-level per-state table.
type StateMileage struct {
	StateCode  string  `json:"state_code"`
	Miles      float64 `json:"miles"`
	Percentage float64 `json:"percentage"`
}

// Trip is the aggregate result for one processed trip. Read-only for
// downstream consumers.
type Trip struct {
	Legs               []Leg          `json:"legs"`
	TotalDistanceMiles float64        `json:"total_distance_miles"`
	StateMileage       []StateMileage `json:"state_mileage"`
	SuccessfulLegs     int            `json:"successful_legs"`
	ErrorSummary       string         `json:"error_summary,omitempty"`
	PrimaryError       string         `json:"primary_error,omitempty"`
}
