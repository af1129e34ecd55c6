package scoring

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Policy holds every tunable threshold used by the noise filter and the
// signal evaluators. All values live here, not inline in evaluator
// code, so the universe and bands can change without a redeploy.
type Policy struct {
	Noise   NoisePolicy   `yaml:"noise"`
	Signals SignalsPolicy `yaml:"signals"`
}

// NoisePolicy configures the eligibility gate.
type NoisePolicy struct {
	// Exclusions lists symbols too liquid to manipulate, typically
	// large-index constituents.
	Exclusions []string `yaml:"exclusions"`

	// EventQuietDays suppresses scoring for this many trading days
	// after an earnings or dividend announcement.
	EventQuietDays int `yaml:"event_quiet_days"`

	// TurnoverCeiling is the 90-day average daily turnover (rupees)
	// above which a security is considered too liquid.
	TurnoverCeiling float64 `yaml:"turnover_ceiling"`

	// MinHistoryDays is the minimum trading days of bar history
	// required before scoring.
	MinHistoryDays int `yaml:"min_history_days"`
}

// SignalsPolicy configures the seven evaluators.
type SignalsPolicy struct {
	VolumeConsistency VolumeConsistencyPolicy `yaml:"volume_consistency"`
	LowDelivery       LowDeliveryPolicy       `yaml:"low_delivery"`
	SteadyGrind       SteadyGrindPolicy       `yaml:"steady_grind"`
	PriceDetachment   PriceDetachmentPolicy   `yaml:"price_detachment"`
	Velocity          VelocityPolicy          `yaml:"velocity"`
	MicroCap          MicroCapPolicy          `yaml:"micro_cap"`
	Reversal          ReversalPolicy          `yaml:"reversal"`
}

type VolumeConsistencyPolicy struct {
	WindowDays      int     `yaml:"window_days"`      // lookback for the fraction
	SpikeMultiplier float64 `yaml:"spike_multiplier"` // vs the 90-day average
	MinFraction     float64 `yaml:"min_fraction"`     // fraction of spike days to fire
}

type LowDeliveryPolicy struct {
	WindowDays    int     `yaml:"window_days"`
	DeliveryFloor float64 `yaml:"delivery_floor"` // delivered_pct below this qualifies
	BandLow       int     `yaml:"band_low"`       // qualifying up-days for half score
	BandHigh      int     `yaml:"band_high"`      // qualifying up-days for full score
}

type SteadyGrindPolicy struct {
	WindowDays    int     `yaml:"window_days"`
	MinUpFraction float64 `yaml:"min_up_fraction"`
	MaxStddevPct  float64 `yaml:"max_stddev_pct"`
}

type PriceDetachmentPolicy struct {
	WindowDays int     `yaml:"window_days"`
	MarginPP   float64 `yaml:"margin_pp"` // excess over benchmark, percentage points
}

type VelocityPolicy struct {
	WindowDays    int     `yaml:"window_days"`
	MinReturnPct  float64 `yaml:"min_return_pct"`
	MinUpFraction float64 `yaml:"min_up_fraction"`
}

type MicroCapPolicy struct {
	TurnoverCeiling float64 `yaml:"turnover_ceiling"` // average daily turnover, rupees
	MinReturnPct    float64 `yaml:"min_return_pct"`   // 60-day move floor
}

type ReversalPolicy struct {
	DeclineDays      int     `yaml:"decline_days"`
	ContractionRatio float64 `yaml:"contraction_ratio"` // volume vs 30-day average
	MinConditions    int     `yaml:"min_conditions"`
}

// DefaultPolicy returns the shipped thresholds. Each constant sits
// inside the band the detection model was calibrated with.
func DefaultPolicy() *Policy {
	return &Policy{
		Noise: NoisePolicy{
			Exclusions:      defaultExclusions,
			EventQuietDays:  5,
			TurnoverCeiling: 100_000_000, // ₹10 crore
			MinHistoryDays:  60,
		},
		Signals: SignalsPolicy{
			VolumeConsistency: VolumeConsistencyPolicy{
				WindowDays:      30,
				SpikeMultiplier: 2.0,
				MinFraction:     0.40,
			},
			LowDelivery: LowDeliveryPolicy{
				WindowDays:    30,
				DeliveryFloor: 25.0,
				BandLow:       8,
				BandHigh:      15,
			},
			SteadyGrind: SteadyGrindPolicy{
				WindowDays:    45,
				MinUpFraction: 0.75,
				MaxStddevPct:  1.2,
			},
			PriceDetachment: PriceDetachmentPolicy{
				WindowDays: 60,
				MarginPP:   50.0,
			},
			Velocity: VelocityPolicy{
				WindowDays:    60,
				MinReturnPct:  75.0,
				MinUpFraction: 0.75,
			},
			MicroCap: MicroCapPolicy{
				TurnoverCeiling: 25_000_000, // ₹2.5 crore
				MinReturnPct:    50.0,
			},
			Reversal: ReversalPolicy{
				DeclineDays:      5,
				ContractionRatio: 0.5,
				MinConditions:    2,
			},
		},
	}
}

// defaultExclusions covers NIFTY 50 constituents, far too liquid for
// the manipulation patterns this engine targets.
var defaultExclusions = []string{
	"ADANIENT", "ADANIPORTS", "APOLLOHOSP", "ASIANPAINT", "AXISBANK",
	"BAJAJ-AUTO", "BAJFINANCE", "BAJAJFINSV", "BEL", "BHARTIARTL",
	"CIPLA", "COALINDIA", "DRREDDY", "EICHERMOT", "ETERNAL",
	"GRASIM", "HCLTECH", "HDFCBANK", "HDFCLIFE", "HEROMOTOCO",
	"HINDALCO", "HINDUNILVR", "ICICIBANK", "INDUSINDBK", "INFY",
	"ITC", "JIOFIN", "JSWSTEEL", "KOTAKBANK", "LT",
	"M&M", "MARUTI", "NESTLEIND", "NTPC", "ONGC",
	"POWERGRID", "RELIANCE", "SBILIFE", "SBIN", "SHRIRAMFIN",
	"SUNPHARMA", "TATACONSUM", "TATAMOTORS", "TATASTEEL", "TCS",
	"TECHM", "TITAN", "TRENT", "ULTRACEMCO", "WIPRO",
}

// LoadPolicy reads a policy YAML file. Unknown fields fail the load so
// a typo in a threshold name cannot silently fall back to a default.
func LoadPolicy(path string) (*Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := DefaultPolicy()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("parse policy %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ValidationError reports a bad policy value. The program stops on it.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks cross-field constraints.
func (p *Policy) Validate() error {
	if p.Noise.MinHistoryDays <= 0 {
		return ValidationError{"noise.min_history_days", "must be > 0"}
	}
	if p.Noise.EventQuietDays < 0 {
		return ValidationError{"noise.event_quiet_days", "must be >= 0"}
	}
	if p.Noise.TurnoverCeiling <= 0 {
		return ValidationError{"noise.turnover_ceiling", "must be > 0"}
	}
	if p.Signals.VolumeConsistency.MinFraction <= 0 || p.Signals.VolumeConsistency.MinFraction > 1 {
		return ValidationError{"signals.volume_consistency.min_fraction", "must be in (0, 1]"}
	}
	if p.Signals.VolumeConsistency.SpikeMultiplier <= 1 {
		return ValidationError{"signals.volume_consistency.spike_multiplier", "must be > 1"}
	}
	if p.Signals.LowDelivery.BandLow >= p.Signals.LowDelivery.BandHigh {
		return ValidationError{"signals.low_delivery", "band_low must be < band_high"}
	}
	if p.Signals.SteadyGrind.MinUpFraction <= 0 || p.Signals.SteadyGrind.MinUpFraction > 1 {
		return ValidationError{"signals.steady_grind.min_up_fraction", "must be in (0, 1]"}
	}
	if p.Signals.Velocity.MinUpFraction <= 0 || p.Signals.Velocity.MinUpFraction > 1 {
		return ValidationError{"signals.velocity.min_up_fraction", "must be in (0, 1]"}
	}
	if p.Signals.Reversal.MinConditions < 1 || p.Signals.Reversal.MinConditions > 3 {
		return ValidationError{"signals.reversal.min_conditions", "must be in [1, 3]"}
	}
	return nil
}

// Excluded reports whether a symbol is on the exclusion list.
func (p *Policy) Excluded(symbol string) bool {
	for _, s := range p.Noise.Exclusions {
		if s == symbol {
			return true
		}
	}
	return false
}
