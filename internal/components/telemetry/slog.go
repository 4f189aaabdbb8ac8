package telemetry

import (
	"context"
	"fmt"
	"log/slog"
)

// SlogAPI writes reports to a slog logger, the default logger when Logger is nil.
//
// Error params are logged under "err", everything else under "params.<n>".
type SlogAPI struct {
	Logger *slog.Logger
}

func (s SlogAPI) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}

func paramAttrs(attrs []slog.Attr, params []any) []slog.Attr {
	n := 0
	for _, p := range params {
		if err, ok := p.(error); ok && err != nil {
			attrs = append(attrs, slog.String("err", err.Error()))
			continue
		}
		attrs = append(attrs, slog.Any(fmt.Sprintf("params.%d", n), p))
		n++
	}
	return attrs
}

func (s SlogAPI) report(level slog.Level, msg string, attrs []slog.Attr, params []any) {
	s.logger().LogAttrs(context.Background(), level, msg, paramAttrs(attrs, params)...)
}

func (s SlogAPI) ReportBroken(id string, params ...any) {
	s.report(slog.LevelError, "broken", []slog.Attr{slog.String("id", id)}, params)
}

func (s SlogAPI) ReportWarning(id string, params ...any) {
	s.report(slog.LevelWarn, "warning", []slog.Attr{slog.String("id", id)}, params)
}

func (s SlogAPI) ReportDebug(msg string, params ...any) {
	s.report(slog.LevelDebug, msg, nil, params)
}

func (s SlogAPI) ReportCount(id string, count int64) {
	s.logger().LogAttrs(context.Background(), slog.LevelInfo, "count", slog.String("id", id), slog.Int64("n", count))
}
