package youpickit

import (
	"context"
	"fmt"
	"net/url"

	"homewidgets/internal/fetch"

	"github.com/temoto/robotstxt"
)

// robotsAgent is the name the product path is tested against in robots.txt.
const robotsAgent = "homewidgets"

// checkRobots refuses to scrape the product page when the site's robots.txt
// disallows it. A missing robots.txt allows everything.
func (c *Client) checkRobots(ctx context.Context) error {
	robotsURL := url.URL{
		Scheme: c.productURL.Scheme,
		Host:   c.productURL.Host,
		Path:   "/robots.txt",
	}

	res, err := c.http.R().
		SetContext(ctx).
		Get(robotsURL.String())
	if err != nil {
		c.tel.ReportWarning(report_client_check_robots, err)
		return fetch.Wrap(Subject, err)
	}

	data, err := robotstxt.FromStatusAndBytes(res.StatusCode(), res.Body())
	if err != nil {
		c.tel.ReportWarning(report_client_check_robots, err)
		return fetch.New(fetch.Failure, Subject, fmt.Errorf("parse robots.txt: %w", err))
	}

	path := c.productURL.EscapedPath()
	if path == "" {
		path = "/"
	}
	if !data.TestAgent(path, robotsAgent) {
		return fetch.New(fetch.Failure, Subject, fmt.Errorf("%s is disallowed by robots.txt", path))
	}
	return nil
}
