package live

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/vango-dev/statebind/pkg/async"
	"github.com/vango-dev/statebind/pkg/host"
)

// conn is one websocket client and its component.
type conn struct {
	id     string
	s      *Server
	ws     *websocket.Conn
	comp   *host.Component
	logger *slog.Logger

	mu     sync.Mutex
	out    chan Frame
	closed bool

	closeOnce sync.Once
}

func newConn(s *Server, ws *websocket.Conn, id string) *conn {
	return &conn{
		id:     id,
		s:      s,
		ws:     ws,
		logger: s.logger.With("conn", id),
		out:    make(chan Frame, s.config.SendQueue),
	}
}

// send queues a frame without blocking. It is safe to call from the loop.
func (c *conn) send(f Frame) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.out <- f:
	default:
		c.logger.Warn("dropping frame", "type", f.Type, "error", errQueueFull)
	}
}

// sendNow writes a frame directly. Only used before the write loop starts.
func (c *conn) sendNow(f Frame) {
	c.ws.SetWriteDeadline(time.Now().Add(c.s.config.WriteTimeout))
	if err := c.ws.WriteJSON(f); err != nil {
		c.logger.Debug("write failed", "error", err)
	}
}

// readLoop decodes requests and dispatches them onto the loop until the
// connection fails.
func (c *conn) readLoop() {
	defer c.close()

	for {
		if c.s.config.ReadTimeout > 0 {
			c.ws.SetReadDeadline(time.Now().Add(c.s.config.ReadTimeout))
		}

		_, msg, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				c.logger.Error("read error", "error", err)
			}
			return
		}

		req, err := decodeRequest(msg)
		if err != nil {
			c.logger.Warn("request decode error", "error", err)
			c.send(Frame{Type: FrameError, Error: "invalid request: " + err.Error()})
			continue
		}
		c.s.loop.Dispatch(func() { c.handle(req) })
	}
}

// handle runs on the loop.
func (c *conn) handle(req Request) {
	ctx := context.Background()

	switch {
	case req.Call != "":
		res, err := c.comp.Call(ctx, req.Call, req.Args...)
		if err != nil {
			c.send(Frame{Type: FrameError, Seq: req.Seq, Error: err.Error()})
			return
		}
		if _, ok := res.(async.Handle); ok {
			// The render frame that follows settlement carries the outcome.
			res = nil
		}
		c.send(Frame{Type: FrameResult, Seq: req.Seq, Result: res})

	case req.Assign != nil:
		if err := c.comp.Assign(ctx, req.Assign.Name, req.Assign.Value); err != nil {
			c.send(Frame{Type: FrameError, Seq: req.Seq, Error: err.Error()})
			return
		}
		c.send(Frame{Type: FrameResult, Seq: req.Seq})

	default:
		c.send(Frame{Type: FrameError, Seq: req.Seq, Error: "request needs call or assign"})
	}
}

// writeLoop drains the send queue until it is closed.
func (c *conn) writeLoop() {
	for f := range c.out {
		data, err := json.Marshal(f)
		if err != nil {
			c.logger.Error("frame encode error", "type", f.Type, "error", err)
			continue
		}
		c.ws.SetWriteDeadline(time.Now().Add(c.s.config.WriteTimeout))
		if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
			c.logger.Debug("write failed", "error", err)
			c.ws.Close()
			return
		}
	}

	c.ws.SetWriteDeadline(time.Now().Add(time.Second))
	c.ws.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	c.ws.Close()
}

// close destroys the component on the loop and stops the write loop.
func (c *conn) close() {
	c.closeOnce.Do(func() {
		if c.comp != nil {
			comp := c.comp
			c.s.loop.Dispatch(comp.Destroy)
		}

		c.mu.Lock()
		c.closed = true
		close(c.out)
		c.mu.Unlock()
	})
}
