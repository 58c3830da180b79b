package netmw

import (
	"bytes"
	"net"
	"testing"

	"github.com/goliatone/go-pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type connContext struct {
	conn     net.Conn
	request  bytes.Buffer
	response bytes.Buffer
	ran      bool
}

func (c *connContext) Request() *bytes.Buffer  { return &c.request }
func (c *connContext) Response() *bytes.Buffer { return &c.response }
func (c *connContext) Socket() net.Conn        { return c.conn }

func markRan(ctx pipeline.Context, next *pipeline.Pipeline) error {
	if c, ok := pipeline.As[*connContext](ctx); ok {
		c.ran = true
	}
	return next.Invoke(ctx)
}

func TestSendFlushesResponseBuffer(t *testing.T) {
	local, remote := net.Pipe()
	defer local.Close()
	defer remote.Close()

	b := pipeline.New()
	b.With(Send[*connContext]())
	b.With(markRan)

	p, err := b.Assemble()
	require.NoError(t, err)

	ctx := &connContext{conn: local}
	ctx.response.WriteString("hello")

	done := make(chan error, 1)
	go func() {
		done <- p.Invoke(ctx)
	}()

	got := make([]byte, 5)
	_, err = remote.Read(got)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(got))

	require.NoError(t, <-done)
	assert.Zero(t, ctx.response.Len(), "response buffer must be drained")
	assert.True(t, ctx.ran, "continuation must run after send")
}

func TestSendEmptyBufferStillDelegates(t *testing.T) {
	local, remote := net.Pipe()
	defer local.Close()
	defer remote.Close()

	b := pipeline.New()
	b.With(Send[*connContext]())
	b.With(markRan)

	p, err := b.Assemble()
	require.NoError(t, err)

	ctx := &connContext{conn: local}
	require.NoError(t, p.Invoke(ctx))
	assert.True(t, ctx.ran)
}

func TestReceiveFillsRequestBuffer(t *testing.T) {
	local, remote := net.Pipe()
	defer local.Close()
	defer remote.Close()

	b := pipeline.New()
	b.With(Receive[*connContext]())
	b.With(markRan)

	p, err := b.Assemble()
	require.NoError(t, err)

	go func() {
		remote.Write([]byte("ping"))
	}()

	ctx := &connContext{conn: local}
	require.NoError(t, p.Invoke(ctx))

	assert.Equal(t, "ping", ctx.request.String())
	assert.True(t, ctx.ran, "continuation must run after receive")
}

func TestReceiveClosedConnectionFails(t *testing.T) {
	local, remote := net.Pipe()
	defer local.Close()
	remote.Close()

	b := pipeline.New()
	b.With(Receive[*connContext]())
	b.With(markRan)

	p, err := b.Assemble()
	require.NoError(t, err)

	ctx := &connContext{conn: local}
	require.Error(t, p.Invoke(ctx))
	assert.False(t, ctx.ran, "continuation must not run after a failed read")
}

func TestSendDeclinesOnForeignContext(t *testing.T) {
	b := pipeline.New()
	b.With(Send[*connContext]())
	b.With(markRan)

	p, err := b.Assemble()
	require.NoError(t, err)

	// plain struct lacks the capability set: handler declines, no delegation
	require.NoError(t, p.Invoke(struct{}{}))
}
