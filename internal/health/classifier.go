// Package health maps a battery health score to its operational bands.
package health

// Tier is the operational class of a battery.
type Tier int

const (
	TierCritical Tier = iota
	TierFair
	TierGood
	TierExcellent
)

// Suitability labels.
const (
	SuitabilityExcellent = "Excellent"
	SuitabilityGood      = "Good"
	SuitabilityFair      = "Fair"
	SuitabilityCritical  = "Critical"
)

// Bands is the classification derived from a single health score.
type Bands struct {
	Tier            Tier   `json:"-"`
	RemainingLife   string `json:"remainingLife"`
	RecommendedLoad string `json:"recommendedLoad"`
	Suitability     string `json:"suitability"`
	Usage           string `json:"usage"`
}

type band struct {
	min   float64
	bands Bands
}

// Evaluated top to bottom; the first band whose lower bound is met wins.
var table = []band{
	{80, Bands{TierExcellent, "2–3 Years", "High (≤500W)", SuitabilityExcellent, "Solar/UPS/EV"}},
	{50, Bands{TierGood, "1–2 Years", "Medium (≤150W)", SuitabilityGood, "LED/Fans/Small Electronics"}},
	{30, Bands{TierFair, "6 Months–1 Year", "Low (<50W)", SuitabilityFair, "Emergency backup only"}},
}

var critical = Bands{TierCritical, "0 Months", "No Load (Recycle)", SuitabilityCritical, "Not safe for use"}

// Classify returns the bands for score. Lower bounds are inclusive. Scores
// outside [0, 100] are not clamped: anything at or above 80 is Excellent and
// anything below 30, negatives and NaN included, is Critical.
func Classify(score float64) Bands {
	for _, b := range table {
		if score >= b.min {
			return b.bands
		}
	}
	return critical
}

// String returns the suitability label of the tier.
func (t Tier) String() string {
	switch t {
	case TierExcellent:
		return SuitabilityExcellent
	case TierGood:
		return SuitabilityGood
	case TierFair:
		return SuitabilityFair
	default:
		return SuitabilityCritical
	}
}
