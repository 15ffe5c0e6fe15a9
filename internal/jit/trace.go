package jit

import (
	"io"

	"github.com/fatih/color"
)

// tracer writes stage-by-stage diagnostics when enabled.
type tracer struct {
	w     io.Writer
	label *color.Color
}

func newTracer() *tracer {
	return &tracer{label: color.New(color.FgCyan)}
}

func (t *tracer) printf(format string, args ...interface{}) {
	if t.w == nil {
		return
	}
	t.label.Fprintf(t.w, "jit: "+format+"\n", args...)
}

// SetTrace enables compilation tracing on w; pass nil to disable.
func (c *Compiler) SetTrace(w io.Writer) {
	c.trace.w = w
}
