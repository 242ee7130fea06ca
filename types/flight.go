package types

import "time"

type FlightDirection string

const (
	FlightDirectionArrival   FlightDirection = "arrival"
	FlightDirectionDeparture FlightDirection = "departure"
)

// FlightInfo lets members coordinate airport pickups. One row per
// (trip, user, direction).
type FlightInfo struct {
	ID               int64           `json:"id"`
	TripID           int64           `json:"tripId"`
	UserID           int64           `json:"userId"`
	Direction        FlightDirection `json:"direction"`
	Airline          string          `json:"airline"`
	FlightNumber     string          `json:"flightNumber"`
	DepartureAirport string          `json:"departureAirport"`
	ArrivalAirport   string          `json:"arrivalAirport"`
	DepartureTime    time.Time       `json:"departureTime"`
	ArrivalTime      time.Time       `json:"arrivalTime"`
	Notes            string          `json:"notes,omitempty"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

type FlightInfoRequest struct {
	Direction        FlightDirection `json:"direction" binding:"required,oneof=arrival departure"`
	Airline          string          `json:"airline" binding:"required,max=80"`
	FlightNumber     string          `json:"flightNumber" binding:"required,max=12"`
	DepartureAirport string          `json:"departureAirport" binding:"required,len=3"`
	ArrivalAirport   string          `json:"arrivalAirport" binding:"required,len=3"`
	DepartureTime    time.Time       `json:"departureTime" binding:"required"`
	ArrivalTime      time.Time       `json:"arrivalTime" binding:"required"`
	Notes            string          `json:"notes" binding:"max=500"`
}
