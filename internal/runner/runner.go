// Package runner drives a single widget run: fetch, present, hand the widget
// to the host and complete.
package runner

import (
	"context"
	"fmt"

	"homewidgets/internal/components/assert"
	"homewidgets/internal/components/telemetry"
	"homewidgets/internal/fetch"
	"homewidgets/internal/widget"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
)

var (
	tracer = otel.Tracer("internal/runner")
	meter  = otel.Meter("internal/runner")
)

var runCounter metric.Int64Counter

func init() {
	var err error
	runCounter, err = meter.Int64Counter(
		"widget_runs",
		metric.WithDescription("The number of widget runs by final state."),
	)
	if err != nil {
		panic(err)
	}
}

const (
	report_run_fetch      = "run.fetch"
	report_run_present    = "run.present"
	report_run_set_widget = "run.set-widget"
)

type State int

const (
	Start State = iota
	Fetching
	Formatting
	Rendered
	ErrorRendered
)

func (s State) String() string {
	switch s {
	case Start:
		return "start"
	case Fetching:
		return "fetching"
	case Formatting:
		return "formatting"
	case Rendered:
		return "rendered"
	case ErrorRendered:
		return "error_rendered"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Job is one kind of widget, T is the type of the records it fetches.
type Job[T any] struct {
	Name string
	// Subject names the fetched data in failure messages, ex. "price data".
	Subject      string
	Fetch        func(ctx context.Context) (T, error)
	Present      func(ctx context.Context, records T) (*widget.Widget, error)
	PresentError func(message string) *widget.Widget
}

// Run executes the job once and returns the state it ended in, which is
// always Rendered or ErrorRendered. host.Complete is called exactly once.
func Run[T any](ctx context.Context, job Job[T], host widget.Host, tel telemetry.API) State {
	assert.NotNil(host)
	assert.NotNil(tel)
	assert.NotEmptyStr(job.Name)
	assert.NotEmptyStr(job.Subject)

	tel = telemetry.NewScopedAPI(job.Name, tel)

	ctx, span := tracer.Start(ctx, fmt.Sprintf("run:%s", job.Name))
	defer span.End()

	defer host.Complete()

	state := Start
	transition := func(next State) {
		tel.ReportDebug("state", state.String(), next.String())
		state = next
	}

	var w *widget.Widget
	transition(Fetching)
	records, err := job.Fetch(ctx)
	if err == nil {
		transition(Formatting)
		w, err = job.Present(ctx, records)
		if err != nil {
			tel.ReportBroken(report_run_present, err)
		}
	} else {
		err = fetch.Wrap(job.Subject, err)
		tel.ReportWarning(report_run_fetch, err, fetch.Classify(err).String())
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "run failed")
		w = job.PresentError(fetch.Message(err))
		transition(ErrorRendered)
	} else {
		transition(Rendered)
	}

	err = host.SetWidget(w)
	if err != nil {
		tel.ReportBroken(report_run_set_widget, err)
	}

	span.SetAttributes(attribute.String("state", state.String()))
	runCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("job", job.Name),
		attribute.String("state", state.String()),
	))
	return state
}
