package pexels

import (
	"strings"

	"github.com/NomadCrew/crewtrip-backend/types"
)

// BuildSearchQuery picks the most specific location text on the trip:
// destination, then destination country, then the trip name.
func BuildSearchQuery(trip *types.Trip) string {
	if trip == nil {
		return ""
	}
	for _, candidate := range []string{trip.Destination, trip.DestinationCountry, trip.Name} {
		if s := strings.TrimSpace(candidate); s != "" {
			return s
		}
	}
	return ""
}
