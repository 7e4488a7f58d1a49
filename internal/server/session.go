package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/vango-dev/urlquery/internal/errors"
	"github.com/vango-dev/urlquery/pkg/urlquery"
)

const writeTimeout = 10 * time.Second

// SessionManager tracks live WebSocket sessions.
type SessionManager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	metrics  *Metrics
}

// NewSessionManager returns an empty registry reporting to m, which may be
// nil.
func NewSessionManager(m *Metrics) *SessionManager {
	return &SessionManager{
		sessions: make(map[string]*Session),
		metrics:  m,
	}
}

func (sm *SessionManager) add(s *Session) {
	sm.mu.Lock()
	sm.sessions[s.ID] = s
	sm.mu.Unlock()
	sm.metrics.SessionOpened()
}

func (sm *SessionManager) remove(id string) {
	sm.mu.Lock()
	_, ok := sm.sessions[id]
	delete(sm.sessions, id)
	sm.mu.Unlock()
	if ok {
		sm.metrics.SessionClosed()
	}
}

// Get returns the session with id, or nil.
func (sm *SessionManager) Get(id string) *Session {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.sessions[id]
}

// Count returns the number of live sessions.
func (sm *SessionManager) Count() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.sessions)
}

// CloseAll closes every live session.
func (sm *SessionManager) CloseAll() {
	sm.mu.RLock()
	all := make([]*Session, 0, len(sm.sessions))
	for _, s := range sm.sessions {
		all = append(all, s)
	}
	sm.mu.RUnlock()

	for _, s := range all {
		s.Close()
	}
}

// Session is one WebSocket connection and its QueryState.
type Session struct {
	ID string

	conn    *websocket.Conn
	state   *urlquery.QueryState
	server  *Server
	logger  *slog.Logger
	changed bool

	writeMu   sync.Mutex
	closeOnce sync.Once
}

// stateMessage is sent after connecting and after every command.
type stateMessage struct {
	Type    string            `json:"type"`
	Session string            `json:"session"`
	Changed bool              `json:"changed"`
	State   urlquery.Snapshot `json:"state"`
}

// errorMessage reports a failed command.
type errorMessage struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	params, err := urlquery.ParseRawQuery(r.URL.RawQuery)
	if err != nil {
		s.writeError(w, r, errors.MalformedQuery(r.URL.RawQuery, err))
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.metrics.RecordWSError("upgrade")
		s.logger.Warn("websocket upgrade failed", "error", errors.New("Q030").Wrap(err))
		return
	}

	sess := &Session{
		ID:     uuid.NewString(),
		conn:   conn,
		server: s,
	}
	sess.logger = s.logger.With("session_id", sess.ID)
	sess.state = s.newState(r.Context(), params, urlquery.WithOnChange(func(string) {
		sess.changed = true
	}))
	defer sess.state.Close()

	s.sessions.add(sess)
	sess.logger.Debug("session opened", "query", sess.state.QueryString())

	if err := sess.sendState(); err != nil {
		sess.Close()
		return
	}
	sess.readLoop(context.WithoutCancel(r.Context()))
}

// readLoop reads commands until the connection closes.
func (sess *Session) readLoop(ctx context.Context) {
	defer sess.Close()

	ws := sess.server.cfg.WebSocket
	if ws.MaxMessageBytes > 0 {
		sess.conn.SetReadLimit(ws.MaxMessageBytes)
	}
	sess.conn.SetPongHandler(func(string) error {
		if ws.ReadTimeout <= 0 {
			return nil
		}
		return sess.conn.SetReadDeadline(time.Now().Add(ws.ReadTimeout))
	})

	for {
		if ws.ReadTimeout > 0 {
			_ = sess.conn.SetReadDeadline(time.Now().Add(ws.ReadTimeout))
		}
		_, msg, err := sess.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				sess.server.metrics.RecordWSError("read")
				sess.logger.Warn("read error", "error", err)
			}
			return
		}

		var cmd Command
		if err := json.Unmarshal(msg, &cmd); err != nil || cmd.Op == "" {
			if err == nil {
				err = errMissingOp
			}
			sess.server.metrics.RecordWSError("decode")
			if sendErr := sess.sendError(errors.New("Q031").Wrap(err)); sendErr != nil {
				return
			}
			continue
		}

		if err := sess.handle(ctx, cmd); err != nil {
			return
		}
	}
}

// handle applies one command and replies. It returns an error only when
// the reply cannot be written.
func (sess *Session) handle(ctx context.Context, cmd Command) error {
	_, span := sess.server.commandSpan(ctx, sess.ID, cmd.Op)

	sess.changed = false
	err := Apply(sess.state, cmd)
	endSpan(span, err)
	sess.server.metrics.RecordCommand(cmd.Op, err)

	if err != nil {
		sess.logger.Debug("command failed", "op", cmd.Op, "error", err)
		return sess.sendError(err)
	}
	sess.logger.Debug("command applied", "op", cmd.Op, "changed", sess.changed)
	return sess.sendState()
}

func (sess *Session) sendState() error {
	return sess.write(stateMessage{
		Type:    "state",
		Session: sess.ID,
		Changed: sess.changed,
		State:   sess.state.Snapshot(),
	})
}

func (sess *Session) sendError(err error) error {
	qe := errors.FromError(err, "Q031")
	return sess.write(errorMessage{
		Type:    "error",
		Code:    qe.Code,
		Message: qe.Message,
		Detail:  qe.Detail,
	})
}

func (sess *Session) write(v any) error {
	sess.writeMu.Lock()
	defer sess.writeMu.Unlock()

	_ = sess.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := sess.conn.WriteJSON(v); err != nil {
		sess.server.metrics.RecordWSError("write")
		sess.logger.Warn("write error", "error", err)
		return err
	}
	return nil
}

// Close ends the session. It is safe to call more than once.
func (sess *Session) Close() {
	sess.closeOnce.Do(func() {
		sess.writeMu.Lock()
		_ = sess.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		sess.writeMu.Unlock()

		_ = sess.conn.Close()
		sess.server.sessions.remove(sess.ID)
		sess.logger.Debug("session closed")
	})
}
