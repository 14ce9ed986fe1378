package scoring

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/ngmaloney/reefcast/internal/models"
)

// Component weights. They sum to 1.0.
const (
	WeightWavePower  = 0.35
	WeightWind       = 0.25
	WeightVisibility = 0.20
	WeightTide       = 0.10
	WeightTime       = 0.10
)

// DiveableThreshold is the lowest total score considered diveable
const DiveableThreshold = 40.0

// Grade is the letter grade for a total score
type Grade string

const (
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
	GradeD Grade = "D"
	GradeF Grade = "F"
)

// Label returns the one-word meaning of the grade
func (g Grade) Label() string {
	switch g {
	case GradeA:
		return "Excellent"
	case GradeB:
		return "Good"
	case GradeC:
		return "Fair"
	case GradeD:
		return "Poor"
	default:
		return "Unsafe"
	}
}

// GradeFor maps a score to its grade band. Lower bounds are inclusive.
func GradeFor(score float64) Grade {
	switch {
	case score >= 85:
		return GradeA
	case score >= 70:
		return GradeB
	case score >= 55:
		return GradeC
	case score >= 40:
		return GradeD
	default:
		return GradeF
	}
}

// Gate identifiers
const (
	GateAdvisory   = "water_quality_advisory"
	GateWaveHeight = "wave_height"
)

// GateFailure is one failed safety gate
type GateFailure struct {
	Gate   string `json:"gate"`
	Reason string `json:"reason"`
}

// Input is everything the engine needs to score one site at one moment
type Input struct {
	WaveHeightFt      *float64
	WavePeriodS       *float64
	SwellDirectionDeg *float64

	WindSpeedMph     *float64
	WindDirectionDeg *float64 // direction the wind blows from

	Rainfall48hIn      *float64
	StreamDischargeCfs *float64
	Advisory           bool
	AdvisoryReason     string

	TidePhase    models.TidePhase
	WaterLevelFt *float64

	EvaluationTime time.Time // zero means now

	HighSurfWarning  bool
	HighSurfAdvisory bool

	MaxSafeHeightFt float64 // zero means models.DefaultMaxSafeWaveHeightFt
	OptimalTide     string  // "any", "high", "low"
	ExposurePrimary string  // compass point the site faces
}

// NewInput builds engine input from a snapshot and the site it was taken for
func NewInput(loc *models.Location, snap *models.EnvironmentalSnapshot) Input {
	return Input{
		WaveHeightFt:       snap.WaveHeightFt,
		WavePeriodS:        snap.WavePeriodS,
		SwellDirectionDeg:  snap.SwellDirectionDeg,
		WindSpeedMph:       snap.WindSpeedMph,
		WindDirectionDeg:   snap.WindDirectionDeg,
		Rainfall48hIn:      snap.Rainfall48hIn,
		StreamDischargeCfs: snap.StreamDischargeCfs,
		Advisory:           snap.Advisory,
		AdvisoryReason:     snap.AdvisoryReason,
		TidePhase:          snap.TidePhase,
		WaterLevelFt:       snap.WaterLevelFt,
		EvaluationTime:     snap.FetchedAt,
		HighSurfWarning:    snap.HighSurfWarning,
		HighSurfAdvisory:   snap.HighSurfAdvisory,
		MaxSafeHeightFt:    loc.MaxSafeWaveHeight(),
		OptimalTide:        loc.TidePreference(),
		ExposurePrimary:    loc.SwellExposure.Primary,
	}
}

// Result is the complete, final scoring verdict for one site
type Result struct {
	TotalScore float64 `json:"total_score"`
	Grade      Grade   `json:"grade"`
	Diveable   bool    `json:"diveable"`

	WavePowerScore  float64 `json:"wave_power_score"`
	WindScore       float64 `json:"wind_score"`
	VisibilityScore float64 `json:"visibility_score"`
	TideScore       float64 `json:"tide_score"`
	TimeScore       float64 `json:"time_score"`

	GatesPassed bool          `json:"gates_passed"`
	FailedGates []GateFailure `json:"failed_gates,omitempty"`

	WavePowerIndex *float64  `json:"wave_power_index"`
	WindClass      WindClass `json:"wind_class"`

	Warnings []string `json:"warnings"`
	Summary  string   `json:"summary"`
}

// CheckSafetyGates returns every failed gate, in check order
func CheckSafetyGates(in Input) []GateFailure {
	var failed []GateFailure

	if in.Advisory {
		reason := "Water quality advisory active"
		if in.AdvisoryReason != "" {
			reason += ": " + in.AdvisoryReason
		}
		failed = append(failed, GateFailure{Gate: GateAdvisory, Reason: reason})
	}

	limit := in.MaxSafeHeightFt
	if limit <= 0 {
		limit = models.DefaultMaxSafeWaveHeightFt
	}
	if in.WaveHeightFt != nil && *in.WaveHeightFt > limit {
		failed = append(failed, GateFailure{
			Gate:   GateWaveHeight,
			Reason: fmt.Sprintf("Wave height (%.1fft) exceeds safe threshold (%gft)", *in.WaveHeightFt, limit),
		})
	}

	return failed
}

// Score evaluates the input
func Score(in Input) Result {
	if in.EvaluationTime.IsZero() {
		in.EvaluationTime = clock.Now().In(models.HawaiiTime)
	}

	wpi := WavePowerIndex(in.WaveHeightFt, in.WavePeriodS)
	windScore, windClass := ScoreWind(in.WindSpeedMph, in.WindDirectionDeg, in.ExposurePrimary)

	if failed := CheckSafetyGates(in); len(failed) > 0 {
		reasons := make([]string, len(failed))
		for i, g := range failed {
			reasons[i] = g.Reason
		}
		return Result{
			TotalScore:     0,
			Grade:          GradeF,
			Diveable:       false,
			GatesPassed:    false,
			FailedGates:    failed,
			WavePowerIndex: roundPtr(wpi),
			WindClass:      windClass,
			Warnings:       reasons,
			Summary:        "CONDITIONS UNSAFE - " + strings.Join(reasons, "; "),
		}
	}

	waveScore := ScoreWavePower(wpi)
	visibilityScore := ScoreVisibility(in.Rainfall48hIn, in.StreamDischargeCfs, in.Advisory)
	tideScore := ScoreTide(in.TidePhase, in.OptimalTide)
	timeScore := ScoreTimeOfDay(in.EvaluationTime)

	raw := waveScore*WeightWavePower +
		windScore*WeightWind +
		visibilityScore*WeightVisibility +
		tideScore*WeightTide +
		timeScore*WeightTime

	// Grade and diveable come from the unrounded total
	grade := GradeFor(raw)

	return Result{
		TotalScore:      round1(raw),
		Grade:           grade,
		Diveable:        raw >= DiveableThreshold,
		WavePowerScore:  round1(waveScore),
		WindScore:       round1(windScore),
		VisibilityScore: round1(visibilityScore),
		TideScore:       round1(tideScore),
		TimeScore:       round1(timeScore),
		GatesPassed:     true,
		WavePowerIndex:  roundPtr(wpi),
		WindClass:       windClass,
		Warnings:        buildWarnings(in, wpi, windClass, visibilityScore),
		Summary:         buildSummary(grade, wpi, in, windClass),
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func roundPtr(v *float64) *float64 {
	if v == nil {
		return nil
	}
	r := round1(*v)
	return &r
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
