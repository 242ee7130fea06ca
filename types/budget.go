package types

// BudgetEstimate is the response of GET /trips/:id/budget-estimate. When the
// destination cannot be resolved, Currency is USD, Multiplier is 1.0 and
// Message asks the organizer to refine the destination.
type BudgetEstimate struct {
	TripID             int64   `json:"tripId"`
	Destination        string  `json:"destination"`
	CountryName        string  `json:"countryName,omitempty"`
	Region             string  `json:"region,omitempty"`
	Currency           string  `json:"currency"`
	LocalCurrency      string  `json:"localCurrency,omitempty"`
	Multiplier         float64 `json:"multiplier"`
	Days               int     `json:"days"`
	DailyPerPerson     string  `json:"dailyPerPerson"`
	TotalPerPerson     string  `json:"totalPerPerson"`
	SpentPerPerson     string  `json:"spentPerPerson"`
	ConfirmedTravelers int     `json:"confirmedTravelers"`
	CountryResolved    bool    `json:"countryResolved"`
	Message            string  `json:"message,omitempty"`
}
