// Package relay connects an overlay to its review session on the server.
// The server pushes host lifecycle events and preference changes; the
// overlay answers each with its current status.
package relay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/inamate/inkoverlay/internal/overlay"
	"github.com/inamate/inkoverlay/internal/settings"
	"github.com/inamate/inkoverlay/internal/wire"
)

const (
	writeWait  = 10 * time.Second
	maxMsgSize = 64 * 1024
)

// ReplaceFunc moves the overlay onto newly rendered content. It is called
// for content.replaced frames.
type ReplaceFunc func(ctrl *overlay.Controller)

// Client is the overlay end of a review session connection.
type Client struct {
	conn    *websocket.Conn
	ctrl    *overlay.Controller
	replace ReplaceFunc
	logger  *slog.Logger

	mu        sync.Mutex
	clientID  string
	sessionID string
	lastSeq   int64
}

// Dial opens the connection. url must carry the session path and token.
func Dial(ctx context.Context, url string, ctrl *overlay.Controller, replace ReplaceFunc, logger *slog.Logger) (*Client, error) {
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial relay: %w", err)
	}
	conn.SetReadLimit(maxMsgSize)
	return NewClient(conn, ctrl, replace, logger), nil
}

// NewClient wraps an established connection.
func NewClient(conn *websocket.Conn, ctrl *overlay.Controller, replace ReplaceFunc, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{conn: conn, ctrl: ctrl, replace: replace, logger: logger}
}

// ClientID is the id the server assigned in its welcome frame.
func (c *Client) ClientID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.clientID
}

// Run reads frames until the connection closes or ctx is done. A normal
// closure returns nil.
func (c *Client) Run(ctx context.Context) error {
	for {
		var msg wire.Message
		if err := wsjson.Read(ctx, c.conn, &msg); err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				return nil
			}
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return fmt.Errorf("read relay frame: %w", err)
		}
		if err := c.Handle(ctx, &msg); err != nil {
			c.logger.Warn("relay frame", "type", msg.Type, "error", err)
		}
	}
}

// Handle applies one server frame to the controller.
func (c *Client) Handle(ctx context.Context, msg *wire.Message) error {
	c.mu.Lock()
	if msg.Seq > 0 {
		if msg.Seq <= c.lastSeq {
			c.mu.Unlock()
			c.logger.Debug("stale relay frame", "seq", msg.Seq, "last", c.lastSeq)
			return nil
		}
		c.lastSeq = msg.Seq
	}
	c.mu.Unlock()

	switch msg.Type {
	case wire.TypeWelcome:
		var p wire.WelcomePayload
		if err := msg.Decode(&p); err != nil {
			return err
		}
		c.mu.Lock()
		c.clientID, c.sessionID = p.ClientID, p.SessionID
		c.mu.Unlock()
		c.logger.Debug("relay connected", "client", p.ClientID, "session", p.SessionID)
		return c.ReportStatus(ctx)

	case wire.TypeContentReplaced:
		if c.replace != nil {
			c.replace(c.ctrl)
		} else {
			c.ctrl.ClearAll()
		}
		return c.ReportStatus(ctx)

	case wire.TypeContentResized:
		c.ctrl.OnResize()
		return c.ReportStatus(ctx)

	case wire.TypeSettingsChanged:
		var s settings.Settings
		if err := msg.Decode(&s); err != nil {
			return err
		}
		if err := c.ctrl.ApplySettings(s); err != nil {
			c.logger.Warn("pushed settings corrected", "error", err)
		}
		return c.ReportStatus(ctx)

	case wire.TypeError:
		var p wire.ErrorPayload
		if err := msg.Decode(&p); err != nil {
			return err
		}
		return fmt.Errorf("server: %s", p.Message)

	default:
		return fmt.Errorf("unknown frame type %q", msg.Type)
	}
}

// ReportStatus sends the controller status to the server.
func (c *Client) ReportStatus(ctx context.Context) error {
	msg, err := wire.New(wire.TypeOverlayStatus, c.ctrl.Status())
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, writeWait)
	defer cancel()
	if err := wsjson.Write(ctx, c.conn, msg); err != nil {
		return fmt.Errorf("report status: %w", err)
	}
	return nil
}

// Close closes the connection normally.
func (c *Client) Close() error {
	return c.conn.Close(websocket.StatusNormalClosure, "")
}
