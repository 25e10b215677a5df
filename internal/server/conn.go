// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"github.com/jeranaias/robo-tui/internal/conversation"
	"github.com/jeranaias/robo-tui/internal/geo"
)

const (
	// Time allowed to write a frame to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong from the peer.
	pongWait = 60 * time.Second

	// Send pings with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum frame size accepted from the peer.
	maxFrameSize = 64 * 1024

	sendBuffer = 64
)

// client is one websocket connection and the conversation it owns.
type client struct {
	conn   *websocket.Conn
	ctrl   *conversation.Controller
	slot   *geo.Slot
	send   chan []byte
	ctx    context.Context
	cancel context.CancelFunc
	logger *slog.Logger
}

func (c *client) push(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		c.logger.ErrorContext(c.ctx, "encode frame", "error", err)
		return
	}
	select {
	case c.send <- data:
	case <-c.ctx.Done():
	}
}

// onChange forwards controller changes to the browser.
func (c *client) onChange(ch conversation.Change) {
	switch ch.Kind {
	case conversation.ChangeMessage:
		c.push(MessageFrame{Type: FrameMessage, Message: viewOf(ch.Message)})
	case conversation.ChangeState:
		c.push(StateFrame{Type: FrameState, InFlight: ch.InFlight, Error: ch.Error})
	}
}

func (c *client) readPump() {
	defer func() {
		c.cancel()
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxFrameSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.WarnContext(c.ctx, "websocket read failed", "error", err)
			}
			return
		}

		var frame InboundFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			c.logger.WarnContext(c.ctx, "bad frame", "error", err)
			continue
		}
		c.handleFrame(frame)
	}
}

func (c *client) handleFrame(f InboundFrame) {
	switch f.Type {
	case FrameSubmit:
		// Begin runs on the read loop so submissions are logged in arrival
		// order and at most one request per connection is outstanding.
		turn, ok := c.ctrl.Begin(f.Text)
		if !ok {
			c.logger.DebugContext(c.ctx, "submit ignored", "in_flight", c.ctrl.InFlight())
			return
		}
		go func() {
			reply, err := c.ctrl.Send(c.ctx, turn)
			c.ctrl.Complete(turn, reply, err)
		}()

	case FrameLocation:
		if f.Latitude == nil || f.Longitude == nil {
			c.resolveFailure(geo.ErrInvalidCoordinates)
			return
		}
		coords := geo.Coordinates{Latitude: *f.Latitude, Longitude: *f.Longitude}
		if err := coords.Validate(); err != nil {
			c.resolveFailure(err)
			return
		}
		if c.slot.Resolve(geo.Success(coords)) {
			c.logger.InfoContext(c.ctx, "browser location received")
			c.ctrl.ClearAdvisory()
		}

	case FrameLocationError:
		c.resolveFailure(errors.New(f.Message))

	default:
		c.logger.WarnContext(c.ctx, "unknown frame type", "type", f.Type)
	}
}

func (c *client) resolveFailure(err error) {
	if c.slot.Resolve(geo.Failure(geo.Advisory, err)) {
		c.logger.WarnContext(c.ctx, "browser location unavailable", "error", err)
		c.ctrl.SetAdvisory(geo.Advisory)
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.ctx.Done():
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case data := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				c.cancel()
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.cancel()
				return
			}
		}
	}
}
