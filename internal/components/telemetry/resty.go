package telemetry

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/semconv/v1.13.0/httpconv"
	"go.opentelemetry.io/otel/trace"
)

const (
	report_resty_request  = "resty.request"
	report_resty_response = "resty.response"
)

// InstrumentOutput receives a plain text dump of every HTTP exchange.
type InstrumentOutput interface {
	Write(id string, contents string)
}

type restyHooks struct {
	name     string
	tel      API
	tracer   trace.Tracer
	duration metric.Float64Histogram
	output   InstrumentOutput
	counter  *atomic.Uint64
}

// InstrumentResty traces every request of the client, reports it as debug
// and failed requests as warnings. The duration of every exchange is
// recorded on the "http_client_duration" histogram.
//
// tracerName defaults to "resty" when empty, it also prefixes the dump ids.
// output can be nil.
func InstrumentResty(client *resty.Client, tel API, tracerName string, output InstrumentOutput) {
	if tracerName == "" {
		tracerName = "resty"
	}

	duration, err := otel.Meter(tracerName).Float64Histogram(
		"http_client_duration",
		metric.WithUnit("ms"),
		metric.WithDescription("The duration of outgoing http requests."),
	)
	if err != nil {
		tel.ReportBroken(report_resty_request, err)
	}

	h := restyHooks{
		name:     strings.ReplaceAll(tracerName, "/", "_"),
		tel:      tel,
		tracer:   otel.Tracer(tracerName),
		duration: duration,
		output:   output,
		counter:  &atomic.Uint64{},
	}
	client.OnBeforeRequest(h.before)
	client.OnAfterResponse(h.after)
	client.OnError(h.failed)
}

type exchangeKey struct{}

type exchange struct {
	id    uint64
	start time.Time
}

func (h restyHooks) before(_ *resty.Client, req *resty.Request) error {
	ctx, _ := h.tracer.Start(req.Context(), "http "+req.Method)

	ex := exchange{id: h.counter.Add(1), start: time.Now()}
	req.SetContext(context.WithValue(ctx, exchangeKey{}, ex))

	h.tel.ReportDebug(report_resty_request, ex.id, req.Method, req.URL)
	return nil
}

func (h restyHooks) dumpID(ex exchange) string {
	return fmt.Sprintf("%s-%d", h.name, ex.id)
}

func (h restyHooks) record(ctx context.Context, ex exchange, method string, status int) time.Duration {
	elapsed := time.Since(ex.start)
	if h.duration != nil {
		h.duration.Record(ctx, float64(elapsed.Microseconds())/1000, metric.WithAttributes(
			attribute.String("method", method),
			attribute.Int("status", status),
		))
	}
	return elapsed
}

func (h restyHooks) after(_ *resty.Client, res *resty.Response) error {
	ctx := res.Request.Context()
	span := trace.SpanFromContext(ctx)
	defer span.End()

	// RawRequest is only set once the request was sent
	span.SetAttributes(httpconv.ClientRequest(res.Request.RawRequest)...)
	span.SetAttributes(httpconv.ClientResponse(res.RawResponse)...)
	if res.IsError() {
		span.SetStatus(codes.Error, res.Status())
	}

	ex, ok := ctx.Value(exchangeKey{}).(exchange)
	if !ok {
		return nil
	}
	elapsed := h.record(ctx, ex, res.Request.Method, res.StatusCode())
	h.tel.ReportDebug(report_resty_response, ex.id, elapsed.String(), res.Status())

	if h.output != nil {
		h.output.Write(h.dumpID(ex), dumpResponse(res))
	}
	return nil
}

func (h restyHooks) failed(req *resty.Request, err error) {
	ctx := req.Context()
	span := trace.SpanFromContext(ctx)
	defer span.End()

	span.RecordError(err)
	span.SetStatus(codes.Error, "request failed")
	if req.RawRequest != nil {
		span.SetAttributes(httpconv.ClientRequest(req.RawRequest)...)
	}

	ex, ok := ctx.Value(exchangeKey{}).(exchange)
	var elapsed time.Duration
	if ok {
		elapsed = h.record(ctx, ex, req.Method, 0)
	}
	h.tel.ReportWarning(report_resty_response, err, req.Method, req.URL, elapsed.String())

	if h.output != nil && ok {
		h.output.Write(h.dumpID(ex), dumpFailure(req, err))
	}
}

type dump struct {
	strings.Builder
}

func (d *dump) section(title string, lines ...string) {
	if d.Len() > 0 {
		d.WriteString("\n")
	}
	fmt.Fprintf(d, "==== %s ====\n", title)
	for _, line := range lines {
		if line == "" {
			continue
		}
		d.WriteString("\n")
		d.WriteString(line)
		d.WriteString("\n")
	}
}

func headerLines(headers http.Header) string {
	keys := make([]string, 0, len(headers))
	for k := range headers {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	var lines []string
	for _, k := range keys {
		for _, v := range headers[k] {
			lines = append(lines, k+": "+v)
		}
	}
	return strings.Join(lines, "\n")
}

func requestBody(req *http.Request) string {
	if req == nil || req.GetBody == nil || req.Body == nil || req.Body == http.NoBody {
		return ""
	}
	body, err := req.GetBody()
	if err != nil {
		return fmt.Sprintf("<body unavailable: %s>", err)
	}
	// GetBody of a request without a body can hand back nil
	if body == nil {
		return ""
	}
	defer body.Close()
	data, err := io.ReadAll(body)
	if err != nil {
		return fmt.Sprintf("<body unavailable: %s>", err)
	}
	return string(data)
}

func requestSection(d *dump, req *resty.Request) {
	headers := req.Header
	if req.RawRequest != nil {
		headers = req.RawRequest.Header
	}
	d.section(
		"REQUEST",
		req.Method+" "+req.URL,
		headerLines(headers),
		requestBody(req.RawRequest),
	)
}

func dumpResponse(res *resty.Response) string {
	var d dump
	requestSection(&d, res.Request)
	d.section(
		"RESPONSE",
		res.Status(),
		headerLines(res.Header()),
		res.String(),
	)
	return d.String()
}

func dumpFailure(req *resty.Request, err error) string {
	var d dump
	requestSection(&d, req)
	d.section("ERROR", err.Error())
	return d.String()
}
