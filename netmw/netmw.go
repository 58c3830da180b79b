// Package netmw provides stream-transport middleware for pipeline contexts
// that expose send/receive buffers and a connection. The transport itself is
// owned by the caller; these handlers only define the point in the chain at
// which buffered bytes are flushed or the receive buffer is filled.
//
// There is no datagram (UDP) variant.
package netmw

import (
	"bytes"
	"net"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-pipeline"
)

// readChunkSize bounds a single Receive read.
const readChunkSize = 4096

// Sendable provides access to the buffer of bytes queued for the transport.
type Sendable interface {
	Response() *bytes.Buffer
}

// Receivable provides access to the buffer that collects bytes read from the
// transport.
type Receivable interface {
	Request() *bytes.Buffer
}

// Networkable provides access to the stream connection the send and receive
// middleware work against.
type Networkable interface {
	Socket() net.Conn
}

// SendContext is the capability set required by Send.
type SendContext interface {
	Sendable
	Networkable
}

// ReceiveContext is the capability set required by Receive.
type ReceiveContext interface {
	Receivable
	Networkable
}

// Send returns middleware that writes every buffered response byte to the
// socket, drains the buffer, then calls the next middleware in the chain.
// A context that does not satisfy SendContext leaves the handler as a no-op.
func Send[T SendContext]() pipeline.Middleware {
	return func(ctx pipeline.Context, next *pipeline.Pipeline) error {
		c, ok := pipeline.As[T](ctx)
		if !ok {
			return nil
		}

		buf := c.Response()
		if buf.Len() > 0 {
			if _, err := c.Socket().Write(buf.Bytes()); err != nil {
				return errors.Wrap(err, errors.CategoryExternal, "pipeline network send").
					WithTextCode("NET_SEND")
			}
			buf.Reset()
		}

		return next.Invoke(ctx)
	}
}

// Receive returns middleware that reads from the socket, appending the bytes
// to the request buffer, then calls the next middleware in the chain. A
// single read of up to readChunkSize bytes is performed per traversal.
// A context that does not satisfy ReceiveContext leaves the handler as a
// no-op.
func Receive[T ReceiveContext]() pipeline.Middleware {
	return func(ctx pipeline.Context, next *pipeline.Pipeline) error {
		c, ok := pipeline.As[T](ctx)
		if !ok {
			return nil
		}

		chunk := make([]byte, readChunkSize)
		n, err := c.Socket().Read(chunk)
		if n > 0 {
			c.Request().Write(chunk[:n])
		}
		if err != nil {
			return errors.Wrap(err, errors.CategoryExternal, "pipeline network receive").
				WithTextCode("NET_RECEIVE")
		}

		return next.Invoke(ctx)
	}
}
