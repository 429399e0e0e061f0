package models

type TripType string

const (
	TripOneWay    TripType = "oneway"
	TripRoundTrip TripType = "roundtrip"
	TripMulti     TripType = "multi"
)

type Airport struct {
	Code        string       `json:"code"`
	City        string       `json:"city"`
	CountryCode string       `json:"countryCode"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
}

// FlightLeg is one segment of the itinerary. Dates are ISO "2006-01-02"
// strings; they cross surface boundaries as-is.
type FlightLeg struct {
	ID                string  `json:"id"`
	LegIndex          int     `json:"legIndex"`
	Origin            Airport `json:"origin"`
	Arrival           Airport `json:"arrival"`
	DepartDate        string  `json:"departDate"`
	ReturnDate        string  `json:"returnDate,omitempty"`
	UserModifiedDates bool    `json:"userModifiedDates"`
}

func (l *FlightLeg) Clone() *FlightLeg {
	cp := *l
	return &cp
}
