package domain

import "time"

type FlightStatus string

const (
	FlightStatusScheduled   FlightStatus = "Scheduled"
	FlightStatusBoarding    FlightStatus = "Boarding"
	FlightStatusDeparted    FlightStatus = "Departed"
	FlightStatusLanded      FlightStatus = "Landed"
	FlightStatusInvalidTime FlightStatus = "Invalid Time"
)

const (
	boardingWindow = 30 * time.Minute
	departedWindow = 60 * time.Minute
)

// DeriveStatus maps a departure time and the current instant to a lifecycle
// label. A flight departing exactly now is Departed, not Boarding.
func DeriveStatus(departureTime, now time.Time) FlightStatus {
	untilDeparture := departureTime.Sub(now)
	sinceDeparture := now.Sub(departureTime)

	switch {
	case untilDeparture > boardingWindow:
		return FlightStatusScheduled
	case untilDeparture > 0:
		return FlightStatusBoarding
	case sinceDeparture >= 0 && sinceDeparture <= departedWindow:
		return FlightStatusDeparted
	case sinceDeparture > departedWindow:
		return FlightStatusLanded
	default:
		return FlightStatusInvalidTime
	}
}
