package prometheus

import (
	"strconv"
)

// PositivityMetrics records engine activity.
type PositivityMetrics interface {
	// RecordAssessment counts one built assessment by seed source and
	// whether the overlap turned out empty.
	RecordAssessment(seedSource string, empty bool)

	// RecordClassified counts n rows of origin with the given verdict.
	RecordClassified(origin string, valid bool, n int)

	// SolveTimer starts timing one distance solve.
	SolveTimer() *Timer

	// RecordDistanceSolve observes one distance solve's iteration count.
	// failed marks a solve that did not converge or ran out of time.
	RecordDistanceSolve(iterations int, failed bool)

	// SetOverlapVolume publishes the most recent overlap volume.
	SetOverlapVolume(v float64)
}

// Default buckets.
var (
	DefaultSolveDurationBuckets = []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1, 5}
	DefaultIterationBuckets     = []float64{1, 10, 50, 100, 500, 1000, 5000, 10000, 50000}
)

type positivityMetrics struct {
	assessmentsTotal      CounterVec
	pointsClassifiedTotal CounterVec
	distanceFailuresTotal CounterVec
	distanceSolveSeconds  HistogramVec
	distanceIterations    HistogramVec
	overlapVolume         GaugeVec
}

// NewPositivityMetrics registers the engine metrics on collector.
func NewPositivityMetrics(collector MetricsCollector) PositivityMetrics {
	return &positivityMetrics{
		assessmentsTotal:      collector.RegisterCounter("assessments_total", "Assessments built", "seed_source", "empty"),
		pointsClassifiedTotal: collector.RegisterCounter("points_classified_total", "Rows classified against the opposite hull", "origin", "valid"),
		distanceFailuresTotal: collector.RegisterCounter("distance_failures_total", "Distance solves that did not converge or timed out"),
		distanceSolveSeconds:  collector.RegisterHistogram("distance_solve_seconds", "Distance solve duration", DefaultSolveDurationBuckets),
		distanceIterations:    collector.RegisterHistogram("distance_iterations", "Distance solver iterations", DefaultIterationBuckets),
		overlapVolume:         collector.RegisterGauge("overlap_volume", "Volume of the most recent overlap polytope"),
	}
}

func (m *positivityMetrics) RecordAssessment(seedSource string, empty bool) {
	m.assessmentsTotal.WithLabelValues(seedSource, strconv.FormatBool(empty)).Inc()
}

func (m *positivityMetrics) RecordClassified(origin string, valid bool, n int) {
	if n <= 0 {
		return
	}
	m.pointsClassifiedTotal.WithLabelValues(origin, strconv.FormatBool(valid)).Add(float64(n))
}

func (m *positivityMetrics) SolveTimer() *Timer {
	return NewTimer(m.distanceSolveSeconds.WithLabelValues())
}

func (m *positivityMetrics) RecordDistanceSolve(iterations int, failed bool) {
	m.distanceIterations.WithLabelValues().Observe(float64(iterations))
	if failed {
		m.distanceFailuresTotal.WithLabelValues().Inc()
	}
}

func (m *positivityMetrics) SetOverlapVolume(v float64) {
	m.overlapVolume.WithLabelValues().Set(v)
}

type noopPositivityMetrics struct{}

// NewNoopPositivityMetrics returns a PositivityMetrics that records nothing.
func NewNoopPositivityMetrics() PositivityMetrics { return noopPositivityMetrics{} }

func (noopPositivityMetrics) RecordAssessment(string, bool)      {}
func (noopPositivityMetrics) RecordClassified(string, bool, int) {}
func (noopPositivityMetrics) SolveTimer() *Timer                 { return NewTimer(nil) }
func (noopPositivityMetrics) RecordDistanceSolve(int, bool)      {}
func (noopPositivityMetrics) SetOverlapVolume(float64)           {}

//Personal.AI order the ending
