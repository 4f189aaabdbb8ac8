package globals

import (
	"context"
	"io"

	"homewidgets/internal/components/chrono"
	"homewidgets/internal/components/telemetry"
	"homewidgets/internal/config"
	"homewidgets/internal/widget"
)

type ctxKey struct{}

const (
	FormatText = "text"
	FormatJSON = "json"
)

type Value struct {
	Config config.Config
	Clock  chrono.API
	Tel    telemetry.API
	// Output is nil unless HTTP exchanges should be dumped.
	Output telemetry.InstrumentOutput
	Format string
	Color  bool
	Stdout io.Writer
}

// Host returns the widget host matching the output format.
func (v *Value) Host() widget.Host {
	if v.Format == FormatJSON {
		return widget.NewJSONHost(v.Stdout)
	}
	return widget.NewTextHost(v.Stdout, v.Color)
}

func Set(ctx context.Context, value *Value) context.Context {
	return context.WithValue(ctx, ctxKey{}, value)
}

func Get(ctx context.Context) *Value {
	return ctx.Value(ctxKey{}).(*Value)
}
