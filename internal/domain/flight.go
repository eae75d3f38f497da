package domain

import "time"

type Flight struct {
	ID               int64     `json:"id"`
	FlightNumber     string    `json:"flightNumber"`
	DepartureAirport string    `json:"departureAirport"`
	ArrivalAirport   string    `json:"arrivalAirport"`
	DepartureTime    time.Time `json:"departureTime"`
	ArrivalTime      time.Time `json:"arrivalTime"`
}

// FlightCreate is the payload of an add command. Status is accepted for
// compatibility with existing clients and never stored.
type FlightCreate struct {
	FlightNumber     string    `json:"flightNumber"`
	DepartureAirport string    `json:"departureAirport"`
	ArrivalAirport   string    `json:"arrivalAirport"`
	DepartureTime    time.Time `json:"departureTime"`
	ArrivalTime      time.Time `json:"arrivalTime"`
	Status           string    `json:"status,omitempty"`
}

// FlightView is a Flight as presented to clients, with its status derived at read time.
type FlightView struct {
	Flight
	Status FlightStatus `json:"status"`
}

func NewFlightView(f Flight, now time.Time) FlightView {
	return FlightView{Flight: f, Status: DeriveStatus(f.DepartureTime, now)}
}

// UTC returns a copy of f with both timestamps normalised to UTC.
func (f Flight) UTC() Flight {
	f.DepartureTime = f.DepartureTime.UTC()
	f.ArrivalTime = f.ArrivalTime.UTC()
	return f
}
