package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cinar/indicator/v2/helper"
	"github.com/cinar/indicator/v2/trend"
	"github.com/jjm-manufacturing/core1-backend/internal/models"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const (
	// AmountPlaces is the number of decimal places every reported average is rounded to.
	AmountPlaces int32 = 2

	// DefaultWindowSize is the moving average window used when none is configured.
	DefaultWindowSize = 3

	// FallbackNarrative replaces the narrative when the generator fails.
	FallbackNarrative = "Failed to generate AI-powered analysis."
)

// Narrative outcomes reported to AnalysisMetrics.
const (
	NarrativeGenerated = "generated"
	NarrativeFailed    = "failed"
	NarrativeRejected  = "rejected"
	NarrativeDisabled  = "disabled"
)

// ErrInvalidWindowSize is returned when the moving average window is not positive.
var ErrInvalidWindowSize = errors.New("window size must be a positive integer")

// RoundAmount rounds v to AmountPlaces using exact decimal arithmetic,
// half away from zero (2.675 -> 2.68, -2.675 -> -2.68).
func RoundAmount(v float64) float64 {
	return roundDecimal(decimal.NewFromFloat(v))
}

func roundDecimal(d decimal.Decimal) float64 {
	f, _ := d.Round(AmountPlaces).Float64()
	return f
}

// NarrativeGenerator turns a prompt into prose.
type NarrativeGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// AnalysisMetrics receives timing and narrative outcomes. Optional.
type AnalysisMetrics interface {
	ObserveAnalysis(duration time.Duration, observations int)
	RecordNarrative(outcome string)
}

// MovingAverageWindow is the mean of one run of consecutive observations.
type MovingAverageWindow struct {
	WindowIndex  int     `json:"window"`
	PeriodLabels string  `json:"months"`
	Average      float64 `json:"average"`
}

// ExponentialAverage is the EMA value at the period closing each window.
type ExponentialAverage struct {
	Period  string  `json:"month"`
	Average float64 `json:"average"`
}

// AnalysisResult is the summary returned by the forecast analysis.
type AnalysisResult struct {
	MovingAverages      []MovingAverageWindow `json:"movingAverages"`
	ExponentialAverages []ExponentialAverage  `json:"exponentialAverages,omitempty"`
	TotalValue          float64               `json:"totalSales"`
	AverageValue        float64               `json:"averageSales"`
	Highest             models.Observation    `json:"highestSales"`
	Lowest              models.Observation    `json:"lowestSales"`
	PredictedNext       *float64              `json:"predictedNextMonthSales"`
	Narrative           string                `json:"analysis"`
}

// ComputeSummary computes every numeric field of the analysis. Observations
// are used in the order given; the caller supplies them sorted by period.
func ComputeSummary(observations []models.Observation, windowSize int) (*AnalysisResult, error) {
	if windowSize <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidWindowSize, windowSize)
	}

	result := &AnalysisResult{
		MovingAverages: movingAverages(observations, windowSize),
	}

	total := decimal.Zero
	for _, o := range observations {
		total = total.Add(decimal.NewFromFloat(o.Value))
	}
	result.TotalValue = total.InexactFloat64()

	if n := len(observations); n > 0 {
		result.AverageValue = roundDecimal(total.Div(decimal.NewFromInt(int64(n))))
		result.Highest, result.Lowest = extrema(observations)
	}

	if n := len(result.MovingAverages); n > 0 {
		predicted := result.MovingAverages[n-1].Average
		result.PredictedNext = &predicted
	}

	result.ExponentialAverages = exponentialAverages(observations, windowSize)

	return result, nil
}

func movingAverages(observations []models.Observation, windowSize int) []MovingAverageWindow {
	windows := []MovingAverageWindow{}
	size := decimal.NewFromInt(int64(windowSize))

	for i := 0; i+windowSize <= len(observations); i++ {
		run := observations[i : i+windowSize]
		sum := decimal.Zero
		labels := make([]string, len(run))
		for j, o := range run {
			sum = sum.Add(decimal.NewFromFloat(o.Value))
			labels[j] = o.Period
		}
		windows = append(windows, MovingAverageWindow{
			WindowIndex:  i + 1,
			PeriodLabels: strings.Join(labels, ", "),
			Average:      roundDecimal(sum.Div(size)),
		})
	}
	return windows
}

// extrema returns the first observation holding the maximum and minimum value.
func extrema(observations []models.Observation) (highest, lowest models.Observation) {
	highest, lowest = observations[0], observations[0]
	for _, o := range observations[1:] {
		if o.Value > highest.Value {
			highest = o
		}
		if o.Value < lowest.Value {
			lowest = o
		}
	}
	return highest, lowest
}

func exponentialAverages(observations []models.Observation, windowSize int) []ExponentialAverage {
	// The indicator seeds with an SMA over the first window and emits a
	// spurious zero when it never fills.
	if len(observations) < windowSize {
		return nil
	}

	values := make([]float64, len(observations))
	for i, o := range observations {
		values[i] = o.Value
	}

	ema := trend.NewEmaWithPeriod[float64](windowSize)
	out := helper.ChanToSlice(ema.Compute(helper.SliceToChan(values)))

	averages := make([]ExponentialAverage, 0, len(out))
	for i, v := range out {
		averages = append(averages, ExponentialAverage{
			Period:  observations[i+windowSize-1].Period,
			Average: RoundAmount(v),
		})
	}
	return averages
}

// ForecastAnalyzer computes AnalysisResult and asks a NarrativeGenerator to explain it.
type ForecastAnalyzer struct {
	generator NarrativeGenerator
	currency  string
	logger    logrus.FieldLogger
	metrics   AnalysisMetrics
}

// AnalyzerOption customises a ForecastAnalyzer.
type AnalyzerOption func(*ForecastAnalyzer)

func WithAnalysisMetrics(m AnalysisMetrics) AnalyzerOption {
	return func(a *ForecastAnalyzer) { a.metrics = m }
}

// NewForecastAnalyzer builds an analyzer. A nil generator disables the narrative.
func NewForecastAnalyzer(generator NarrativeGenerator, currency string, logger logrus.FieldLogger, opts ...AnalyzerOption) *ForecastAnalyzer {
	if currency == "" {
		currency = "PHP"
	}
	a := &ForecastAnalyzer{
		generator: generator,
		currency:  currency,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze computes the summary and the narrative. Only an invalid window
// size is returned as an error; narrative failures become FallbackNarrative.
func (a *ForecastAnalyzer) Analyze(ctx context.Context, observations []models.Observation, windowSize int) (*AnalysisResult, error) {
	start := time.Now()

	result, err := ComputeSummary(observations, windowSize)
	if err != nil {
		return nil, err
	}

	result.Narrative = a.narrate(ctx, observations, result, windowSize)

	if a.metrics != nil {
		a.metrics.ObserveAnalysis(time.Since(start), len(observations))
	}
	return result, nil
}

func (a *ForecastAnalyzer) narrate(ctx context.Context, observations []models.Observation, result *AnalysisResult, windowSize int) string {
	if a.generator == nil {
		a.recordNarrative(NarrativeDisabled)
		return ""
	}

	text, err := a.generator.Generate(ctx, BuildNarrativePrompt(observations, result.MovingAverages, windowSize, a.currency))
	if err != nil {
		outcome := NarrativeFailed
		if errors.Is(err, ErrCircuitOpen) {
			outcome = NarrativeRejected
		}
		a.recordNarrative(outcome)
		a.logger.WithError(err).WithFields(logrus.Fields{
			"observations": len(observations),
			"outcome":      outcome,
		}).Warn("Forecast narrative generation failed")
		return FallbackNarrative
	}

	a.recordNarrative(NarrativeGenerated)
	return text
}

func (a *ForecastAnalyzer) recordNarrative(outcome string) {
	if a.metrics != nil {
		a.metrics.RecordNarrative(outcome)
	}
}

// BuildNarrativePrompt renders the data context followed by the fixed instruction.
func BuildNarrativePrompt(observations []models.Observation, windows []MovingAverageWindow, windowSize int, currency string) string {
	var b strings.Builder

	b.WriteString("Monthly sales data:\n")
	for _, o := range observations {
		fmt.Fprintf(&b, "- %s: %s\n", o.Period, decimal.NewFromFloat(o.Value).StringFixed(AmountPlaces))
	}

	fmt.Fprintf(&b, "\n%d-month moving averages:\n", windowSize)
	if len(windows) == 0 {
		b.WriteString("- not enough data for a full window\n")
	}
	for _, w := range windows {
		fmt.Fprintf(&b, "- Window %d (%s): %s\n", w.WindowIndex, w.PeriodLabels,
			decimal.NewFromFloat(w.Average).StringFixed(AmountPlaces))
	}

	fmt.Fprintf(&b, "\nUsing the data above, summarize the overall sales trend, point out notable peaks "+
		"and dips, and give a short prediction for next month based on the moving averages. "+
		"Write in a professional tone for a manufacturing operations team and state all amounts in %s.", currency)

	return b.String()
}
