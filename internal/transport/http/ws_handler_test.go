package http

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/roomrelay/roomrelay-server/internal/config"
	"github.com/roomrelay/roomrelay-server/internal/core"
	"github.com/roomrelay/roomrelay-server/internal/proto"
)

func startTestServer(t *testing.T, cfg config.Config) *httptest.Server {
	t.Helper()

	logger := zerolog.Nop()
	hub := core.NewHub(&logger, core.Options{
		RoomCap:      cfg.RoomCap,
		HistoryLimit: cfg.HistoryLimit,
	})

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	server := NewServer(hub, cfg, &logger)
	ts := httptest.NewServer(server.Handler)
	t.Cleanup(ts.Close)

	return ts
}

func dialWS(t *testing.T, ctx context.Context, ts *httptest.Server) *websocket.Conn {
	t.Helper()

	wsURL := strings.Replace(ts.URL, "http", "ws", 1) + "/ws"
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "done") })
	return conn
}

type outboundMsg struct {
	Type  string          `json:"type"`
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
	Error *proto.Error    `json:"error"`
}

func sendInbound(t *testing.T, ctx context.Context, conn *websocket.Conn, typ string, data any) {
	t.Helper()

	payload, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, wsjson.Write(ctx, conn, proto.Inbound{Type: typ, Data: payload}))
}

func readUntil(t *testing.T, ctx context.Context, conn *websocket.Conn, match func(outboundMsg) bool) outboundMsg {
	t.Helper()

	for {
		var out outboundMsg
		require.NoError(t, wsjson.Read(ctx, conn, &out))
		if match(out) {
			return out
		}
	}
}

func byEvent(name string) func(outboundMsg) bool {
	return func(out outboundMsg) bool {
		return out.Type == proto.OutboundTypeEvent && out.Event == name
	}
}

func byAck(name string) func(outboundMsg) bool {
	return func(out outboundMsg) bool {
		return out.Type == proto.OutboundTypeAck && out.Event == name
	}
}

func TestRoomFlowOverWebSocket(t *testing.T) {
	ts := startTestServer(t, config.Default())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	connA := dialWS(t, ctx, ts)
	connB := dialWS(t, ctx, ts)

	sendInbound(t, ctx, connA, proto.InboundTypeSetUsername, proto.SetUsernameData{Username: "alice"})
	readUntil(t, ctx, connA, byEvent(proto.EventNameUserList))
	sendInbound(t, ctx, connB, proto.InboundTypeSetUsername, proto.SetUsernameData{Username: "bob"})
	readUntil(t, ctx, connB, byEvent(proto.EventNameUserList))

	sendInbound(t, ctx, connA, proto.InboundTypeCreateRoom, proto.CreateRoomData{Name: "general"})
	ackMsg := readUntil(t, ctx, connA, byAck(proto.InboundTypeCreateRoom))
	require.Nil(t, ackMsg.Error)

	var created proto.CreateRoomAck
	require.NoError(t, json.Unmarshal(ackMsg.Data, &created))
	require.Equal(t, "general", created.Name)
	require.NotEmpty(t, created.RoomID)

	sendInbound(t, ctx, connA, proto.InboundTypeJoinRoom, proto.JoinRoomData{RoomID: created.RoomID, Username: "alice"})
	readUntil(t, ctx, connA, byEvent(proto.EventNameWelcomeMessage))
	readUntil(t, ctx, connA, byEvent(proto.EventNameJoiningMessage)) // own join broadcast
	readUntil(t, ctx, connA, byEvent(proto.EventNameRoomHistory))

	sendInbound(t, ctx, connB, proto.InboundTypeJoinRoom, proto.JoinRoomData{RoomID: created.RoomID, Username: "bob"})
	readUntil(t, ctx, connB, byEvent(proto.EventNameWelcomeMessage))

	joinMsg := readUntil(t, ctx, connA, byEvent(proto.EventNameJoiningMessage))
	var joining proto.JoiningPayload
	require.NoError(t, json.Unmarshal(joinMsg.Data, &joining))
	require.Equal(t, "bob", joining.Sender)

	sendInbound(t, ctx, connA, proto.InboundTypeSendMessage, proto.SendMessageData{
		RoomID:  created.RoomID,
		Content: "hi",
		Sender:  "alice",
	})
	sendAck := readUntil(t, ctx, connA, byAck(proto.InboundTypeSendMessage))
	var delivered string
	require.NoError(t, json.Unmarshal(sendAck.Data, &delivered))
	require.Equal(t, "Message delivered", delivered)

	for _, conn := range []*websocket.Conn{connA, connB} {
		msg := readUntil(t, ctx, conn, byEvent(proto.EventNameRoomMessage))
		var payload proto.MessagePayload
		require.NoError(t, json.Unmarshal(msg.Data, &payload))
		require.Equal(t, "hi", payload.Content)
		require.Equal(t, "alice", payload.Sender)
	}

	// B disconnects; A sees the departure notice and the updated count.
	connB.Close(websocket.StatusNormalClosure, "bye")

	leaveMsg := readUntil(t, ctx, connA, byEvent(proto.EventNameLeavingMessage))
	var leaving proto.LeavingPayload
	require.NoError(t, json.Unmarshal(leaveMsg.Data, &leaving))
	require.Equal(t, "bob", leaving.Sender)
	require.Equal(t, "has left the room", leaving.Message)

	countMsg := readUntil(t, ctx, connA, byEvent(proto.EventNameRoomMemberCount))
	var count proto.MemberCountPayload
	require.NoError(t, json.Unmarshal(countMsg.Data, &count))
	require.Equal(t, 1, count.Count)
}

func TestDirectMessageOverWebSocket(t *testing.T) {
	ts := startTestServer(t, config.Default())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	connA := dialWS(t, ctx, ts)
	connB := dialWS(t, ctx, ts)

	// B learns its own connection id from its join broadcast.
	sendInbound(t, ctx, connB, proto.InboundTypeJoinRoom, proto.JoinRoomData{RoomID: "lobby", Username: "bob"})
	joinMsg := readUntil(t, ctx, connB, byEvent(proto.EventNameJoiningMessage))
	var joining proto.JoiningPayload
	require.NoError(t, json.Unmarshal(joinMsg.Data, &joining))
	require.NotEmpty(t, joining.UserID)

	sendInbound(t, ctx, connA, proto.InboundTypeSendMessage, proto.SendMessageData{
		RecipientID: joining.UserID,
		Content:     "psst",
		Sender:      "alice",
	})
	readUntil(t, ctx, connA, byAck(proto.InboundTypeSendMessage))

	msg := readUntil(t, ctx, connB, byEvent(proto.EventNamePrivateMessage))
	var payload proto.MessagePayload
	require.NoError(t, json.Unmarshal(msg.Data, &payload))
	require.Equal(t, "psst", payload.Content)
	require.Equal(t, "alice", payload.Sender)
}

func TestLeaveWithoutMembershipOverWebSocket(t *testing.T) {
	ts := startTestServer(t, config.Default())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	conn := dialWS(t, ctx, ts)

	sendInbound(t, ctx, conn, proto.InboundTypeLeaveRoom, proto.RoomIDData{RoomID: "ghost"})
	errMsg := readUntil(t, ctx, conn, byEvent(proto.EventNameError))
	require.NotNil(t, errMsg.Error)
	require.Equal(t, core.ErrCodeNotInRoom, errMsg.Error.Code)
}

func TestRateLimitedConnection(t *testing.T) {
	cfg := config.Default()
	cfg.RateLimitPerMinute = 2
	ts := startTestServer(t, cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	conn := dialWS(t, ctx, ts)

	for i := 0; i < 3; i++ {
		sendInbound(t, ctx, conn, proto.InboundTypeTyping, proto.RoomIDData{RoomID: "general"})
	}

	errMsg := readUntil(t, ctx, conn, byEvent(proto.EventNameError))
	require.NotNil(t, errMsg.Error)
	require.Equal(t, core.ErrCodeRateLimited, errMsg.Error.Code)
}

func TestAcksArriveInCommandOrder(t *testing.T) {
	ts := startTestServer(t, config.Default())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	conn := dialWS(t, ctx, ts)

	// Two acknowledged commands back to back; their acks must come back
	// in submission order even when the hub answers both quickly.
	sendInbound(t, ctx, conn, proto.InboundTypeCreateRoom, proto.CreateRoomData{Name: "first"})
	sendInbound(t, ctx, conn, proto.InboundTypeSendMessage, proto.SendMessageData{
		RecipientID: "ghost",
		Content:     "hello",
		Sender:      "alice",
	})

	isAck := func(out outboundMsg) bool { return out.Type == proto.OutboundTypeAck }
	first := readUntil(t, ctx, conn, isAck)
	require.Equal(t, proto.InboundTypeCreateRoom, first.Event)
	second := readUntil(t, ctx, conn, isAck)
	require.Equal(t, proto.InboundTypeSendMessage, second.Event)
}

func TestUnknownInboundTypeAnswersCallerOnly(t *testing.T) {
	ts := startTestServer(t, config.Default())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	conn := dialWS(t, ctx, ts)

	require.NoError(t, wsjson.Write(ctx, conn, proto.Inbound{Type: "bogus", Data: json.RawMessage(`{}`)}))
	errMsg := readUntil(t, ctx, conn, byEvent(proto.EventNameError))
	require.NotNil(t, errMsg.Error)
	require.Equal(t, "invalid_message", errMsg.Error.Code)
}
