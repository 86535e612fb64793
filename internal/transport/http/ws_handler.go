package http

import (
	"context"
	"errors"
	"io"
	stdhttp "net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"

	"github.com/roomrelay/roomrelay-server/internal/config"
	"github.com/roomrelay/roomrelay-server/internal/core"
	"github.com/roomrelay/roomrelay-server/internal/proto"
	"github.com/roomrelay/roomrelay-server/internal/utils"
)

// WSHandler upgrades HTTP connections and bridges them to core.Client.
type WSHandler struct {
	hub *core.Hub
	cfg config.Config
	log *zerolog.Logger
}

// NewWSHandler builds a new WebSocket handler.
func NewWSHandler(hub *core.Hub, cfg config.Config, logger *zerolog.Logger) stdhttp.Handler {
	return &WSHandler{hub: hub, cfg: cfg, log: logger}
}

func (h *WSHandler) ServeHTTP(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	ctx := r.Context()

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("ws accept error")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "internal error")

	client := core.NewClient(utils.NewID())
	h.hub.RegisterClient(client)
	defer h.hub.UnregisterClient(client)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// outbox carries acks and protocol errors that belong to this
	// connection only; writeLoop serializes it with hub events.
	outbox := make(chan proto.Outbound, 16)

	// pending hands expected acknowledgments to a single forwarder, so
	// acks reach the outbox in command order.
	pending := make(chan pendingAck, 16)
	go h.ackLoop(ctx, pending, outbox)

	limiter := newRateLimiter(h.cfg.RateLimitPerMinute)
	limiter.startReset(ctx.Done())

	errCh := make(chan error, 2)
	go func() {
		errCh <- h.readLoop(ctx, conn, client, outbox, pending, limiter)
	}()
	go func() {
		errCh <- h.writeLoop(ctx, conn, client, outbox)
	}()

	err = <-errCh
	cancel() // stop the other goroutine
	<-errCh

	status := websocket.StatusNormalClosure
	reason := "closing"
	if err != nil && !errors.Is(err, context.Canceled) {
		if errors.Is(err, io.EOF) {
			err = nil
		}
		if s := websocket.CloseStatus(err); s != 0 {
			status = s
		}
		if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
			err = nil
		}
		if err != nil {
			if status == websocket.StatusNormalClosure {
				status = websocket.StatusInternalError
			}
			reason = err.Error()
			h.log.Warn().Err(err).Msg("ws connection closed with error")
		}
	}

	conn.Close(status, reason)
}

func (h *WSHandler) readLoop(ctx context.Context, conn *websocket.Conn, client *core.Client, outbox chan<- proto.Outbound, pending chan<- pendingAck, limiter *rateLimiter) error {
	for {
		var inbound proto.Inbound
		if err := wsjson.Read(ctx, conn, &inbound); err != nil {
			return err
		}

		if !limiter.allow() {
			h.send(ctx, outbox, proto.Outbound{
				Type:  proto.OutboundTypeEvent,
				Event: proto.EventNameError,
				Error: &proto.Error{Code: core.ErrCodeRateLimited, Msg: "too many events"},
			})
			continue
		}

		cmd, protoErr, err := inboundToCommand(inbound)
		if err != nil {
			h.log.Warn().Err(err).Str("client_id", client.ID).Msg("failed to map inbound")
			return err
		}
		if protoErr != nil {
			h.send(ctx, outbox, proto.Outbound{
				Type:  proto.OutboundTypeEvent,
				Event: proto.EventNameError,
				Error: protoErr,
			})
			continue
		}

		if needsAck(inbound.Type) {
			reply := make(chan core.Ack, 1)
			cmd.Reply = reply
			client.Commands <- cmd
			select {
			case pending <- pendingAck{inboundType: inbound.Type, reply: reply}:
			case <-ctx.Done():
				return ctx.Err()
			}
			continue
		}
		client.Commands <- cmd
	}
}

func (h *WSHandler) writeLoop(ctx context.Context, conn *websocket.Conn, client *core.Client, outbox <-chan proto.Outbound) error {
	for {
		select {
		case event, ok := <-client.Events:
			if !ok {
				return nil
			}
			if err := wsjson.Write(ctx, conn, outboundFromEvent(event)); err != nil {
				h.log.Error().Err(err).Str("client_id", client.ID).Msg("write ws event")
				return err
			}
		case out := <-outbox:
			if err := wsjson.Write(ctx, conn, out); err != nil {
				h.log.Error().Err(err).Str("client_id", client.ID).Msg("write ws ack")
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

type pendingAck struct {
	inboundType string
	reply       <-chan core.Ack
}

// ackLoop relays the hub's acknowledgments into the connection outbox,
// one at a time in the order the commands were submitted.
func (h *WSHandler) ackLoop(ctx context.Context, pending <-chan pendingAck, outbox chan<- proto.Outbound) {
	for {
		select {
		case p := <-pending:
			select {
			case ack := <-p.reply:
				h.send(ctx, outbox, ackOutbound(p.inboundType, ack))
			case <-ctx.Done():
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

func (h *WSHandler) send(ctx context.Context, outbox chan<- proto.Outbound, out proto.Outbound) {
	select {
	case outbox <- out:
	case <-ctx.Done():
	}
}
