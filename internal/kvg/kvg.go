// Package kvg fetches live departures of a single stop from the KVG
// passage info service.
package kvg

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"homewidgets/internal/components/assert"
	"homewidgets/internal/components/telemetry"
	"homewidgets/internal/fetch"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("internal/kvg")

const (
	report_client_fetch_departures = "client.fetch-departures"
)

// Subject is what the user is told failed to load.
const Subject = "data"

const DefaultEndpoint = "https://kvg-internetservice-proxy.p.networkteam.com/internetservice/services/passageInfo/stopPassages/stop"

type Departure struct {
	// PatternText is the line label, ex. "11" or "N81".
	PatternText string `json:"patternText"`
	Direction   string `json:"direction"`
	// ActualTime is formatted as "HH:MM".
	ActualTime string `json:"actualTime"`
	// ActualRelativeTime is the number of seconds until departure.
	ActualRelativeTime int    `json:"actualRelativeTime"`
	Status             string `json:"status"`

	PlannedTime string `json:"plannedTime,omitempty"`
	TripID      string `json:"tripId,omitempty"`
	RouteID     string `json:"routeId,omitempty"`
	VehicleID   string `json:"vehicleId,omitempty"`
	MixedTime   string `json:"mixedTime,omitempty"`
	PassageID   string `json:"passageid,omitempty"`
}

type passages struct {
	Actual []Departure `json:"actual"`
}

type ClientOptions struct {
	Endpoint string
	Timeout  time.Duration
	// Output can be nil, if set every exchange is dumped to it.
	Output telemetry.InstrumentOutput
}

type Client struct {
	http     *resty.Client
	endpoint string
	tel      telemetry.API
}

func NewClient(opts ClientOptions, tel telemetry.API) *Client {
	assert.NotNil(tel)
	assert.NotEmptyStr(opts.Endpoint)

	tel = telemetry.NewScopedAPI("kvg", tel)

	httpClient := resty.New()
	if opts.Timeout > 0 {
		httpClient.SetTimeout(opts.Timeout)
	}
	telemetry.InstrumentResty(httpClient, tel, "internal/kvg/http", opts.Output)

	return &Client{
		http:     httpClient,
		endpoint: opts.Endpoint,
		tel:      tel,
	}
}

// FetchDepartures returns the departures of the stop in the order the
// service lists them. Every error it returns is a *fetch.Error.
func (c *Client) FetchDepartures(ctx context.Context, stopID string) ([]Departure, error) {
	ctx, span := tracer.Start(ctx, "client:FetchDepartures")
	defer span.End()
	span.SetAttributes(attribute.String("stop_id", stopID))

	res, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/x-www-form-urlencoded").
		SetFormData(map[string]string{
			"stop": stopID,
		}).
		Post(c.endpoint)
	if err != nil {
		span.SetStatus(codes.Error, "request failed")
		c.tel.ReportWarning(report_client_fetch_departures, err, stopID)
		return nil, fetch.Wrap(Subject, err)
	}
	if res.IsError() {
		err = fmt.Errorf("unexpected status %s", res.Status())
		span.SetStatus(codes.Error, err.Error())
		c.tel.ReportWarning(report_client_fetch_departures, err, stopID)
		return nil, fetch.New(fetch.Failure, Subject, err)
	}

	departures, err := decodePassages(res.Body())
	if err != nil {
		span.SetStatus(codes.Error, "failed to decode response")
		c.tel.ReportWarning(report_client_fetch_departures, err, stopID)
		return nil, err
	}

	c.tel.ReportDebug("fetched departures", stopID, len(departures))
	return departures, nil
}

func decodePassages(body []byte) ([]Departure, error) {
	trimmed := bytes.TrimSpace(body)
	if !json.Valid(trimmed) {
		return nil, fetch.New(fetch.Failure, Subject, fmt.Errorf("response is not json"))
	}
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, fetch.New(fetch.InvalidResponse, Subject, fmt.Errorf("response is not an object"))
	}

	var result passages
	err := json.Unmarshal(trimmed, &result)
	if err != nil {
		return nil, fetch.New(fetch.InvalidResponse, Subject, err)
	}
	if result.Actual == nil {
		return []Departure{}, nil
	}
	return result.Actual, nil
}
