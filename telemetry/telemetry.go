// Package telemetry records how long the stages of a run take and prints them
// as a tree once the run is over.
//
// Collectors travel through the context, so instrumented code does not need to
// know whether timing is enabled:
//
//	collector := telemetry.NewTimingCollector()
//	ctx = telemetry.WithCollector(ctx, collector)
//
//	timer := telemetry.StartTimer(ctx, "ingest checking")
//	// ... work ...
//	timer.End()
//
//	collector.Report(os.Stderr)
package telemetry

import (
	"context"
	"io"
)

type collectorKey struct{}

type rootTimerKey struct{}

// Collector gathers timers for a run.
type Collector interface {
	// Start begins timing a top-level operation.
	Start(name string) Timer

	// Report writes the collected timings to w.
	Report(w io.Writer)
}

// Timer tracks a single operation.
type Timer interface {
	// End stops the timer.
	End()

	// Child starts a timer nested under this one.
	Child(name string) Timer
}

// WithCollector attaches a collector to ctx.
func WithCollector(ctx context.Context, collector Collector) context.Context {
	return context.WithValue(ctx, collectorKey{}, collector)
}

// FromContext returns the collector attached to ctx, or a collector that
// discards everything.
func FromContext(ctx context.Context) Collector {
	if collector, ok := ctx.Value(collectorKey{}).(Collector); ok {
		return collector
	}
	return noOpCollector{}
}

// WithRootTimer makes timers started through StartTimer nest under timer.
func WithRootTimer(ctx context.Context, timer Timer) context.Context {
	return context.WithValue(ctx, rootTimerKey{}, timer)
}

// StartTimer starts a timer nested under the context's root timer if there is
// one, and a top-level timer on the context's collector otherwise.
func StartTimer(ctx context.Context, name string) Timer {
	if root, ok := ctx.Value(rootTimerKey{}).(Timer); ok {
		return root.Child(name)
	}
	return FromContext(ctx).Start(name)
}
