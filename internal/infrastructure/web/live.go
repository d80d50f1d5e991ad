package web

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"

	"github.com/ersonp/lore-roster/internal/application/handlers"
	"github.com/ersonp/lore-roster/internal/domain/entities"
	"github.com/ersonp/lore-roster/internal/domain/search"
	"github.com/ersonp/lore-roster/internal/domain/services"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// Messages coming from clients.
type clientMessage struct {
	Type string `json:"type"` // "query" or "selection"

	// query
	Query string `json:"query"`

	// selection
	Ignore     string          `json:"ignore"`
	Content    string          `json:"content"`
	Rating     string          `json:"rating"`
	Difficulty json.RawMessage `json:"difficulty"`
	NonTV      *bool           `json:"non_tv"`
	Sort       string          `json:"sort"`
	Limit      int             `json:"limit"`
}

// Messages sent to clients.
type resultsMessage struct {
	Type       string               `json:"type"` // "results"
	Query      string               `json:"query"`
	Version    uint64               `json:"version"`
	Total      int                  `json:"total"`
	Characters []entities.Character `json:"characters"`
}

type errorMessage struct {
	Type    string `json:"type"` // "error"
	Message string `json:"message"`
}

// liveSession is one WebSocket client. It owns its pipeline, so its memo
// survives whatever other clients ask for.
type liveSession struct {
	srv      *Server
	ctx      context.Context
	conn     *websocket.Conn
	pipeline *search.Pipeline
	debounce *search.Debouncer[string]

	// publishMu keeps one derive in flight, so the last message enqueued
	// always reflects the last selection.
	publishMu sync.Mutex

	// mu guards sel, limit, send and closed.
	mu     sync.Mutex
	sel    search.Selection
	limit  int
	send   chan any
	closed bool
}

func (s *Server) serveLive(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	sess := &liveSession{
		srv:      s,
		ctx:      r.Context(),
		conn:     conn,
		pipeline: s.opts.NewPipeline(),
		sel:      search.DefaultSelection(),
		send:     make(chan any, 8),
	}
	sess.debounce = search.NewDebouncer(s.opts.Debounce, sess.commitQuery)

	s.logger.Debug("live client connected", "remote", realIP(r))

	go sess.writePump()
	sess.publish()
	sess.readPump()
}

func (l *liveSession) readPump() {
	defer func() {
		l.debounce.Stop()
		l.close()
		l.conn.Close()
	}()

	l.conn.SetReadLimit(1 << 16)
	_ = l.conn.SetReadDeadline(time.Now().Add(pongWait))
	l.conn.SetPongHandler(func(string) error {
		return l.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg clientMessage
		if err := l.conn.ReadJSON(&msg); err != nil {
			return
		}

		switch msg.Type {
		case "query":
			l.debounce.Push(msg.Query)
		case "selection":
			l.debounce.Flush()
			if err := l.applySelection(msg); err != nil {
				l.enqueue(errorMessage{Type: "error", Message: err.Error()})
				continue
			}
			l.publish()
		default:
			l.enqueue(errorMessage{Type: "error", Message: "unknown message type " + msg.Type})
		}
	}
}

func (l *liveSession) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		l.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-l.send:
			_ = l.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = l.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := l.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = l.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := l.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// commitQuery runs once typing settles.
func (l *liveSession) commitQuery(query string) {
	l.mu.Lock()
	l.sel.Query = query
	l.mu.Unlock()
	l.publish()
}

// applySelection replaces every filter but keeps the committed query.
func (l *liveSession) applySelection(msg clientMessage) error {
	if msg.Limit < 0 {
		return fmt.Errorf("%w: limit must not be negative", services.ErrInvalidInput)
	}
	params := handlers.BrowseParams{
		Ignore:     msg.Ignore,
		Content:    msg.Content,
		Rating:     msg.Rating,
		Difficulty: scalarText(msg.Difficulty),
		Sort:       msg.Sort,
	}
	if msg.NonTV != nil {
		if *msg.NonTV {
			params.IncludeNonTV = "true"
		} else {
			params.IncludeNonTV = "false"
		}
	}

	sel, err := params.Selection()
	if err != nil {
		return err
	}

	l.mu.Lock()
	sel.Query = l.sel.Query
	l.sel = sel
	l.limit = msg.Limit
	l.mu.Unlock()
	return nil
}

func (l *liveSession) publish() {
	l.publishMu.Lock()
	defer l.publishMu.Unlock()

	l.mu.Lock()
	sel, limit := l.sel, l.limit
	l.mu.Unlock()

	res, err := l.srv.roster.HandleDerive(l.ctx, l.pipeline, l.srv.opts.WorldID, sel, limit)
	if err != nil {
		l.srv.logger.Error("live derive failed", "error", err)
		l.enqueue(errorMessage{Type: "error", Message: "failed to load roster"})
		return
	}
	l.enqueue(resultsMessage{
		Type:       "results",
		Query:      sel.Query,
		Version:    res.Version,
		Total:      res.Total,
		Characters: res.Characters,
	})
}

// enqueue drops the message when the client is gone or not keeping up.
func (l *liveSession) enqueue(msg any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	select {
	case l.send <- msg:
	default:
		l.srv.logger.Warn("live client too slow, dropping message")
	}
}

func (l *liveSession) close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.closed {
		l.closed = true
		close(l.send)
	}
}
