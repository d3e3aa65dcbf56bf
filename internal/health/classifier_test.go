package health

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	excellent := Bands{TierExcellent, "2–3 Years", "High (≤500W)", "Excellent", "Solar/UPS/EV"}
	good := Bands{TierGood, "1–2 Years", "Medium (≤150W)", "Good", "LED/Fans/Small Electronics"}
	fair := Bands{TierFair, "6 Months–1 Year", "Low (<50W)", "Fair", "Emergency backup only"}
	crit := Bands{TierCritical, "0 Months", "No Load (Recycle)", "Critical", "Not safe for use"}

	tests := []struct {
		name  string
		score float64
		want  Bands
	}{
		{"full health", 100, excellent},
		{"typical healthy", 85.3, excellent},
		{"boundary 80 belongs to higher tier", 80, excellent},
		{"just below 80", 79.99, good},
		{"boundary 50 belongs to higher tier", 50, good},
		{"just below 50", 49.99, fair},
		{"boundary 30 belongs to higher tier", 30, fair},
		{"just below 30", 29.99, crit},
		{"zero", 0, crit},
		{"negative is not clamped", -12.5, crit},
		{"above 100 is not clamped", 140, excellent},
		{"positive infinity", math.Inf(1), excellent},
		{"negative infinity", math.Inf(-1), crit},
		{"NaN falls through to critical", math.NaN(), crit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.score))
		})
	}
}

func TestClassify_Monotonic(t *testing.T) {
	t.Parallel()

	prev := Classify(-50).Tier
	for s := -50.0; s <= 150; s += 0.25 {
		tier := Classify(s).Tier
		assert.GreaterOrEqualf(t, tier, prev, "tier decreased at score %.2f", s)
		prev = tier
	}
}

func TestTierString(t *testing.T) {
	t.Parallel()

	for _, s := range []float64{95, 60, 35, 5} {
		b := Classify(s)
		assert.Equal(t, b.Suitability, b.Tier.String())
	}
}
