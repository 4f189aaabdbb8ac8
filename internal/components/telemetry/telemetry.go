package telemetry

import (
	"fmt"
)

// API is how components report what happened to them. Components never log
// directly, so tests can swap in a Recorder and assert on the reports.
//
// An id names the component and operation that reported, `<struct>.<method>`
// in lowercase with dashes, ex. `client.fetch-prices`. The package is added by
// wrapping the API in a ScopedAPI, so it is left out of the id. Ids are
// declared as `report_...` constants next to the code that uses them.
type API interface {
	// ReportBroken is for failures that need fixing, a run that could not
	// render or a store that could not be written.
	ReportBroken(id string, params ...any)
	// ReportWarning is for failures the widget recovers from, a service that
	// is down or a logo that could not be loaded.
	ReportWarning(id string, params ...any)
	ReportDebug(msg string, params ...any)
	// ReportCount reports a point in time value, counts are not summed.
	ReportCount(id string, count int64)
}

// ScopedAPI prefixes every id with a namespace, "<namespace>: <id>".
type ScopedAPI struct {
	namespace string
	inner     API
}

func NewScopedAPI(namespace string, inner API) ScopedAPI {
	return ScopedAPI{namespace: namespace, inner: inner}
}

func (s ScopedAPI) scoped(id string) string {
	return fmt.Sprintf("%s: %s", s.namespace, id)
}

func (s ScopedAPI) ReportBroken(id string, params ...any) {
	s.inner.ReportBroken(s.scoped(id), params...)
}

func (s ScopedAPI) ReportWarning(id string, params ...any) {
	s.inner.ReportWarning(s.scoped(id), params...)
}

func (s ScopedAPI) ReportDebug(msg string, params ...any) {
	s.inner.ReportDebug(s.scoped(msg), params...)
}

func (s ScopedAPI) ReportCount(id string, count int64) {
	s.inner.ReportCount(s.scoped(id), count)
}
