package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/vovakirdan/ctor/internal/multiplayer"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8 << 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Client events.
const (
	evCreateGame           = "createGame"
	evJoinGame             = "joinGame"
	evMakeMove             = "makeMove"
	evEndTurn              = "endTurn"
	evGetAvailableReplaces = "getAvailableReplaces"
	evReconnect            = "reconnect"
	evStartReplay          = "START_REPLAY"
	evPauseReplay          = "PAUSE_REPLAY"
	evResumeReplay         = "RESUME_REPLAY"
	evNextMove             = "NEXT_MOVE"
	evPrevMove             = "PREV_MOVE"
	evGotoMove             = "GOTO_MOVE"
	evSetPlaybackSpeed     = "SET_PLAYBACK_SPEED"
	evEndReplay            = "END_REPLAY"
)

// envelope is the frame format in both directions.
type envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type outbound struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

type gameRequest struct {
	GameID string `json:"gameId"`
}

type createRequest struct {
	PlayerID string `json:"playerId"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
}

type joinRequest struct {
	Code     string `json:"code"`
	PlayerID string `json:"playerId"`
}

type moveRequest struct {
	GameID string                  `json:"gameId"`
	Move   multiplayer.MoveRequest `json:"move"`
}

type reconnectRequest struct {
	Code  string `json:"code"`
	Token string `json:"token"`
}

type gotoRequest struct {
	Move int `json:"move"`
}

type speedRequest struct {
	Speed float64 `json:"speed"`
}

// client is one WebSocket connection. It is a session of the coordinator
// and owns at most one replay.
type client struct {
	srv     *Server
	conn    *websocket.Conn
	session *multiplayer.ChannelSession
	log     *log.Logger

	mu     sync.Mutex
	replay *playback
}

func (s *Server) handleWS(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", "error", err)
		return
	}

	id := multiplayer.NewSessionID()
	cl := &client{
		srv:     s,
		conn:    conn,
		session: multiplayer.NewChannelSession(id, s.opts.EventBuffer),
		log:     s.log.With("session", id),
	}
	s.coord.Sessions().Register(cl.session)
	cl.log.Debug("websocket connected", "remote", conn.RemoteAddr().String())

	go cl.writePump()
	cl.readPump()
}

// readPump decodes client frames until the connection fails, then tears
// the session down.
func (cl *client) readPump() {
	defer cl.close()

	cl.conn.SetReadLimit(maxMessageSize)
	_ = cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	cl.conn.SetPongHandler(func(string) error {
		return cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var env envelope
		if err := cl.conn.ReadJSON(&env); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				cl.log.Debug("websocket read failed", "error", err)
			}
			return
		}
		if err := cl.dispatch(env); err != nil {
			cl.session.Send(multiplayer.NewErrorEvent(err))
		}
	}
}

func (cl *client) close() {
	sid := cl.session.ID()
	cl.endReplay()
	cl.srv.coord.Send(multiplayer.SessionDisconnectedMsg{SessionID: sid})
	cl.srv.coord.Sessions().Unregister(sid)
	cl.session.Close()
	cl.log.Debug("websocket closed")
}

// writePump is the only writer on the connection.
func (cl *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		cl.conn.Close()
	}()

	for {
		select {
		case evt := <-cl.session.Events():
			_ = cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := cl.conn.WriteJSON(outbound{Event: evt.Name(), Data: evt}); err != nil {
				cl.log.Debug("websocket write failed", "error", err)
				return
			}
		case <-ticker.C:
			_ = cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := cl.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-cl.session.Done():
			_ = cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = cl.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

// dispatch routes a client frame. Game requests go through the coordinator
// queue, which reports failures to the session itself.
func (cl *client) dispatch(env envelope) error {
	sid := cl.session.ID()
	coord := cl.srv.coord

	switch env.Event {
	case evCreateGame:
		var req createRequest
		if err := decode(env, &req); err != nil {
			return err
		}
		coord.Send(multiplayer.CreateGameMsg{SessionID: sid, PlayerID: req.PlayerID, Width: req.Width, Height: req.Height})
	case evJoinGame:
		var req joinRequest
		if err := decode(env, &req); err != nil {
			return err
		}
		coord.Send(multiplayer.JoinGameMsg{SessionID: sid, Code: req.Code, PlayerID: req.PlayerID})
	case evMakeMove:
		var req moveRequest
		if err := decode(env, &req); err != nil {
			return err
		}
		coord.Send(multiplayer.MakeMoveMsg{SessionID: sid, GameID: req.GameID, Move: req.Move})
	case evEndTurn:
		var req gameRequest
		if err := decode(env, &req); err != nil {
			return err
		}
		coord.Send(multiplayer.EndTurnMsg{SessionID: sid, GameID: req.GameID})
	case evGetAvailableReplaces:
		var req gameRequest
		if err := decode(env, &req); err != nil {
			return err
		}
		coord.Send(multiplayer.GetAvailableReplacesMsg{SessionID: sid, GameID: req.GameID})
	case evReconnect:
		var req reconnectRequest
		if err := decode(env, &req); err != nil {
			return err
		}
		coord.Send(multiplayer.ReconnectMsg{SessionID: sid, Code: req.Code, Token: req.Token})

	case evStartReplay:
		var req startReplayRequest
		if err := decode(env, &req); err != nil {
			return err
		}
		cl.startReplay(req)
	case evPauseReplay, evResumeReplay, evNextMove, evPrevMove, evGotoMove, evSetPlaybackSpeed:
		cl.controlReplay(env)
	case evEndReplay:
		cl.endReplay()

	default:
		return fmt.Errorf("%w: unknown event %q", multiplayer.ErrInvalidEvent, env.Event)
	}
	return nil
}

func decode(env envelope, v any) error {
	if len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, v); err != nil {
		return fmt.Errorf("%w: %s: %w", multiplayer.ErrInvalidEvent, env.Event, err)
	}
	return nil
}
