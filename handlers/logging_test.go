package handlers

import (
	"bytes"
	"strings"
	"testing"

	"github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-pipeline"
)

// glogCompatLogger bridges a glog.Logger to the handlers Logger contract.
type glogCompatLogger struct {
	logger glog.Logger
}

func (l glogCompatLogger) Info(msg string, args ...any)  { l.logger.Info(msg, args...) }
func (l glogCompatLogger) Error(msg string, args ...any) { l.logger.Error(msg, args...) }

func TestLoggingMiddlewareWithGlogBackend(t *testing.T) {
	buf := &bytes.Buffer{}
	base := glog.NewLogger(
		glog.WithWriter(buf),
		glog.WithLoggerTypeJSON(),
		glog.WithLevel("trace"),
	)

	b := pipeline.New()
	b.With(Logging("outer", glogCompatLogger{logger: base}))
	b.With(End)

	p, err := b.Assemble()
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if err := p.Invoke(nil); err != nil {
		t.Fatalf("invoke: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "pipeline enter") {
		t.Fatalf("expected enter log, got %q", out)
	}
	if !strings.Contains(out, "pipeline exit") {
		t.Fatalf("expected exit log, got %q", out)
	}
}

func TestLoggingMiddlewareLogsFailures(t *testing.T) {
	logger := &recordingLogger{}
	boom := pipeline.NewError("downstream failed")

	b := pipeline.New()
	b.With(Logging("outer", logger))
	b.With(func(ctx pipeline.Context, next *pipeline.Pipeline) error {
		return boom
	})

	p, err := b.Assemble()
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}

	if got := p.Invoke(nil); got == nil {
		t.Fatal("expected the handler error to propagate")
	}
	if len(logger.errors) != 1 {
		t.Fatalf("expected one error log, got %d", len(logger.errors))
	}
	if len(logger.infos) != 1 {
		t.Fatalf("expected only the enter log, got %d", len(logger.infos))
	}
}

func TestLoggingMiddlewareNilLoggerDelegates(t *testing.T) {
	ran := false

	b := pipeline.New()
	b.With(Logging("outer", nil))
	b.With(func(ctx pipeline.Context, next *pipeline.Pipeline) error {
		ran = true
		return next.Invoke(ctx)
	})

	p, err := b.Assemble()
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if err := p.Invoke(nil); err != nil {
		t.Fatalf("invoke: %v", err)
	}
	if !ran {
		t.Fatal("expected delegation with nil logger")
	}
}
