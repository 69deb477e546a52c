package domain

// Band is the qualitative fee/load level of the network.
type Band string

const (
	BandLow      Band = "low"
	BandNormal   Band = "normal"
	BandElevated Band = "elevated"
	BandExtreme  Band = "extreme"
)

var bandOrder = []Band{BandLow, BandNormal, BandElevated, BandExtreme}

// String returns the string representation of Band.
func (b Band) String() string {
	return string(b)
}

// IsValid checks if the band is a known value.
func (b Band) IsValid() bool {
	return b.Rank() >= 0
}

// Rank returns the severity order of the band, or -1 for unknown bands.
func (b Band) Rank() int {
	for i, v := range bandOrder {
		if v == b {
			return i
		}
	}
	return -1
}

// AtLeast reports whether b is as severe as other or more.
func (b Band) AtLeast(other Band) bool {
	return b.Rank() >= other.Rank() && b.IsValid()
}

// Escalate returns the next more severe band, capped at extreme.
func (b Band) Escalate() Band {
	r := b.Rank()
	if r < 0 {
		return BandNormal
	}
	if r+1 >= len(bandOrder) {
		return BandExtreme
	}
	return bandOrder[r+1]
}

// IsStressed reports whether the band is elevated or extreme.
func (b Band) IsStressed() bool {
	return b == BandElevated || b == BandExtreme
}

// FeeBand is the classifier output.
type FeeBand struct {
	Band    Band   `json:"band"`
	Comment string `json:"comment"`
}

// TrendDirection describes the slope sign of a fee window.
type TrendDirection string

const (
	TrendRising  TrendDirection = "rising"
	TrendFalling TrendDirection = "falling"
	TrendFlat    TrendDirection = "flat"
)

// Trend is the direction and raw slope (drops per second) over a window.
type Trend struct {
	Direction TrendDirection `json:"direction"`
	Slope     float64        `json:"slope"`
}

// FeeHorizon is the short-range projection of the fee band.
type FeeHorizon struct {
	ProjectedBand  Band   `json:"projected_band"`
	CurrentBand    Band   `json:"current_band"`
	TrendShort     Trend  `json:"trend_short"`
	TrendLong      Trend  `json:"trend_long"`
	HorizonSeconds int    `json:"horizon_seconds"`
	Points         int    `json:"points"`
	Comment        string `json:"comment"`
}
