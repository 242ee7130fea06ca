package countries

// DefaultMultiplier applies when the destination is unknown.
const DefaultMultiplier = 1.0

var subregionMultipliers = map[string]float64{
	"Northern Europe":           1.4,
	"Western Europe":            1.3,
	"Southern Europe":           1.1,
	"Eastern Europe":            0.8,
	"Northern America":          1.3,
	"Central America":           0.7,
	"South America":             0.7,
	"Caribbean":                 1.0,
	"Eastern Asia":              0.9,
	"South-Eastern Asia":        0.55,
	"Southern Asia":             0.5,
	"Western Asia":              0.9,
	"Central Asia":              0.6,
	"Northern Africa":           0.6,
	"Sub-Saharan Africa":        0.65,
	"Australia and New Zealand": 1.25,
}

var regionMultipliers = map[string]float64{
	"Europe":   1.2,
	"Americas": 1.0,
	"Asia":     0.75,
	"Africa":   0.6,
	"Oceania":  1.1,
}

// Multiplier returns the cost-of-travel factor relative to the base daily
// USD budget. Subregion wins over region.
func Multiplier(c *Country) float64 {
	if c == nil {
		return DefaultMultiplier
	}
	if m, ok := subregionMultipliers[c.Subregion]; ok {
		return m
	}
	if m, ok := regionMultipliers[c.Region]; ok {
		return m
	}
	return DefaultMultiplier
}
