// Package youpickit scrapes the offers for one product from youpickit.de.
package youpickit

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/url"
	"time"

	"homewidgets/internal/components/assert"
	"homewidgets/internal/components/telemetry"
	"homewidgets/internal/fetch"
	"homewidgets/internal/widget"

	"dario.cat/mergo"
	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/time/rate"
)

var tracer = otel.Tracer("internal/youpickit")

const (
	report_client_fetch_prices = "client.fetch-prices"
	report_client_fetch_logo   = "client.fetch-logo"
	report_client_check_robots = "client.check-robots"
)

// Subject is what the user is told failed to load.
const Subject = "price data"

const DefaultProductURL = "https://www.youpickit.de/Produkt/Coca-Cola-Limonade-PET-Flasche-EW-2000/138229/5000112547412"

const acceptHeader = "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8,application/signed-exchange;v=b3;q=0.7"

// Location is the search area youpickit looks for stores in, the coordinates
// use a decimal comma, ex. "54,35".
type Location struct {
	Latitude  string
	Longitude string
	// Perimeter is in kilometers.
	Perimeter string
	Address   string
}

func (l Location) Cookie() string {
	return fmt.Sprintf(
		"CookiesEnabled=1; PersistentCookiesEnabled=1; YpiLocation2=latitude=%s&longitude=%s&perimeter=%s&address=%s;",
		l.Latitude, l.Longitude, l.Perimeter, l.Address,
	)
}

type ClientOptions struct {
	ProductURL string
	Location   Location
	// Logos maps brand names to logo image URLs.
	Logos     map[string]string
	Extractor Extractor
	Timeout   time.Duration

	RespectRobots    bool
	BypassCloudflare bool

	// Output can be nil, if set every exchange is dumped to it.
	Output telemetry.InstrumentOutput
}

type Client struct {
	http       *resty.Client
	productURL *url.URL
	location   Location
	logos      LogoResolver
	extractor  Extractor
	robots     bool

	tel telemetry.API
}

var defaultClientOptions = ClientOptions{
	ProductURL: DefaultProductURL,
	Extractor:  RegexExtractor{},
	Timeout:    30 * time.Second,
}

// NewClient fills the zero fields of opts from the defaults.
func NewClient(opts ClientOptions, tel telemetry.API) (*Client, error) {
	assert.NotNil(tel)

	tel = telemetry.NewScopedAPI("youpickit", tel)

	err := mergo.Merge(&opts, defaultClientOptions)
	if err != nil {
		return nil, fmt.Errorf("apply default options: %w", err)
	}

	productURL, err := url.Parse(opts.ProductURL)
	if err != nil {
		return nil, fmt.Errorf("parse product url: %w", err)
	}
	if productURL.Scheme == "" || productURL.Host == "" {
		return nil, fmt.Errorf("product url %q is not absolute", opts.ProductURL)
	}

	httpClient := resty.New()
	if opts.BypassCloudflare {
		httpClient.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(httpClient.GetClient().Transport)
	}
	if opts.Timeout > 0 {
		httpClient.SetTimeout(opts.Timeout)
	}

	// 2 requests max per second, the page and the logo can go out back to back
	rateLimiter := rate.NewLimiter(2, 2)
	httpClient.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		return rateLimiter.Wait(req.Context())
	})

	telemetry.InstrumentResty(httpClient, tel, "internal/youpickit/http", opts.Output)

	return &Client{
		http:       httpClient,
		productURL: productURL,
		location:   opts.Location,
		logos:      NewLogoResolver(opts.Logos),
		extractor:  opts.Extractor,
		robots:     opts.RespectRobots,
		tel:        tel,
	}, nil
}

// FetchPrices downloads the product page and extracts its offers. Only a
// failed request is an error, a page without offers yields an empty slice.
func (c *Client) FetchPrices(ctx context.Context) ([]PriceEntry, error) {
	ctx, span := tracer.Start(ctx, "client:FetchPrices")
	defer span.End()
	span.SetAttributes(attribute.String("product_url", c.productURL.String()))

	if c.robots {
		err := c.checkRobots(ctx)
		if err != nil {
			span.SetStatus(codes.Error, "robots.txt check failed")
			return nil, err
		}
	}

	res, err := c.http.R().
		SetContext(ctx).
		SetHeader("accept", acceptHeader).
		SetHeader("cache-control", "no-cache").
		SetHeader("cookie", c.location.Cookie()).
		Get(c.productURL.String())
	if err != nil {
		span.SetStatus(codes.Error, "request failed")
		c.tel.ReportWarning(report_client_fetch_prices, err)
		return nil, fetch.Wrap(Subject, err)
	}
	if res.IsError() {
		// the page is still handed to the extractor, an error page has no offers
		c.tel.ReportWarning(report_client_fetch_prices, fmt.Errorf("unexpected status %s", res.Status()))
	}

	entries := c.extractor.Extract(ctx, res.String())
	span.SetAttributes(attribute.Int("entries", len(entries)))
	c.tel.ReportDebug("fetched prices", len(entries))
	return entries, nil
}

// LogoURL returns the logo configured for the brand, if any.
func (c *Client) LogoURL(brand string) (string, bool) {
	return c.logos.Resolve(brand)
}

// FetchLogo downloads the logo of a brand. It returns nil without an error
// when no logo is configured for the brand.
func (c *Client) FetchLogo(ctx context.Context, brand string) (*widget.Image, error) {
	ctx, span := tracer.Start(ctx, "client:FetchLogo")
	defer span.End()

	logoURL, ok := c.LogoURL(brand)
	if !ok {
		return nil, nil
	}
	span.SetAttributes(attribute.String("logo_url", logoURL))

	res, err := c.http.R().
		SetContext(ctx).
		SetHeader("accept", "image/png,image/jpeg,image/gif,image/*;q=0.8").
		Get(logoURL)
	if err != nil {
		span.SetStatus(codes.Error, "request failed")
		c.tel.ReportWarning(report_client_fetch_logo, err, brand)
		return nil, fmt.Errorf("fetch logo of %s: %w", brand, err)
	}
	if res.IsError() {
		err = fmt.Errorf("fetch logo of %s: unexpected status %s", brand, res.Status())
		span.SetStatus(codes.Error, err.Error())
		c.tel.ReportWarning(report_client_fetch_logo, err, brand)
		return nil, err
	}

	body := res.Body()
	config, format, err := image.DecodeConfig(bytes.NewReader(body))
	if err != nil {
		err = fmt.Errorf("decode logo of %s: %w", brand, err)
		span.SetStatus(codes.Error, err.Error())
		c.tel.ReportWarning(report_client_fetch_logo, err, brand)
		return nil, err
	}

	return &widget.Image{
		URL:         logoURL,
		ContentType: "image/" + format,
		Width:       config.Width,
		Height:      config.Height,
		Data:        body,
	}, nil
}
