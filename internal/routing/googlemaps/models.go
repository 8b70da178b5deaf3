package googlemaps

// directionsResponse represents the Directions API JSON response.
type directionsResponse struct {
	Status       string  `json:"status"`
	ErrorMessage string  `json:"error_message,omitempty"`
	Routes       []route `json:"routes"`
}

// route represents a single route alternative.
type route struct {
	Summary          string         `json:"summary"`
	OverviewPolyline polylinePoints `json:"overview_polyline"`
	Legs             []leg          `json:"legs"`
}

// polylinePoints holds an encoded polyline of the whole route.
type polylinePoints struct {
	Points string `json:"points"`
}

// leg is one origin-to-destination segment of a route. Requests without
// waypoints produce exactly one leg.
type leg struct {
	Distance textValue `json:"distance"`
	Duration textValue `json:"duration"`
	Steps    []step    `json:"steps"`
}

// textValue pairs a display string with its numeric value
// (meters for distance, seconds for duration).
type textValue struct {
	Text  string  `json:"text"`
	Value float64 `json:"value"`
}

// step represents a single instruction within a leg.
type step struct {
	TravelMode       string          `json:"travel_mode"`
	HTMLInstructions string          `json:"html_instructions"`
	Distance         textValue       `json:"distance"`
	Duration         textValue       `json:"duration"`
	TransitDetails   *transitDetails `json:"transit_details,omitempty"`
}

// transitDetails describes the public transport line used by a TRANSIT step.
type transitDetails struct {
	Line transitLine `json:"line"`
}

type transitLine struct {
	Name      string  `json:"name"`
	ShortName string  `json:"short_name"`
	Vehicle   vehicle `json:"vehicle"`
}

type vehicle struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

// Directions API status codes used for error mapping.
const (
	statusOK             = "OK"
	statusZeroResults    = "ZERO_RESULTS"
	statusNotFound       = "NOT_FOUND"
	statusOverQueryLimit = "OVER_QUERY_LIMIT"
	statusRequestDenied  = "REQUEST_DENIED"
)

// Travel modes and vehicle types consulted by the mode heuristics.
const (
	travelModeTransit = "TRANSIT"
	travelModeWalking = "WALKING"

	vehicleSubway    = "SUBWAY"
	vehicleMetroRail = "METRO_RAIL"
	vehicleBus       = "BUS"
)
