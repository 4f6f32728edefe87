package ws

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/ether/revpanel/lib/metadata"
	"github.com/ether/revpanel/lib/panel"
	"github.com/ether/revpanel/lib/resource"
	"github.com/ether/revpanel/lib/utils"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// PanelRequest selects the pair a session shows.
type PanelRequest struct {
	ApplicationName string `json:"applicationName"`
	Revision        string `json:"revision"`
}

// PanelMessage is pushed to the client whenever its panel changes state.
type PanelMessage struct {
	State           string `json:"state"`
	ApplicationName string `json:"applicationName"`
	Revision        string `json:"revision"`
	HTML            string `json:"html"`
	Error           string `json:"error,omitempty"`
}

// PanelSession is one websocket client with its own panel. Only the state of
// the pair most recently requested by the client is ever sent.
type PanelSession struct {
	ID     string
	Hub    *Hub
	Conn   WebSocketConn
	panel  *panel.Panel
	logger *zap.SugaredLogger

	// latest outbound message; older unsent ones are replaced
	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func NewPanelSession(hub *Hub, conn WebSocketConn, fetcher metadata.Fetcher, placement panel.Placement, logger *zap.SugaredLogger) *PanelSession {
	s := &PanelSession{
		ID:     uuid.NewString(),
		Hub:    hub,
		Conn:   conn,
		panel:  panel.New(fetcher, panel.WithPlacement(placement)),
		logger: logger,
		send:   make(chan []byte, 1),
		done:   make(chan struct{}),
	}
	s.panel.Subscribe(s.push)
	return s
}

func (s *PanelSession) push(st panel.State) {
	message := PanelMessage{
		State:           st.Status.String(),
		ApplicationName: st.Input.ApplicationName,
		Revision:        st.Input.Revision,
	}
	if st.Status == resource.Failed {
		message.Error = st.Err.Error()
	}

	var html bytes.Buffer
	if err := s.panel.Render(st).Render(context.Background(), &html); err != nil {
		s.logger.Errorw("error rendering panel", "session", s.ID, "error", err)
		return
	}
	message.HTML = html.String()
	s.enqueue(message)
}

func (s *PanelSession) enqueue(message PanelMessage) {
	payload, err := json.Marshal(message)
	if err != nil {
		s.logger.Errorw("error marshalling panel message", "session", s.ID, "error", err)
		return
	}
	select {
	case <-s.send:
	default:
	}
	select {
	case s.send <- payload:
	case <-s.done:
	}
}

func (s *PanelSession) refresh(applicationName string) {
	if s.panel.State().Input.ApplicationName == applicationName {
		s.panel.Reload()
	}
}

func (s *PanelSession) handleRequest(message []byte) {
	var request PanelRequest
	if err := json.Unmarshal(message, &request); err != nil {
		s.logger.Debugw("error unmarshalling panel request", "session", s.ID, "error", err)
		s.enqueue(PanelMessage{State: resource.Failed.String(), Error: "invalid request"})
		return
	}
	if err := utils.CheckValidApplicationName(request.ApplicationName); err != nil {
		s.enqueue(PanelMessage{State: resource.Failed.String(), ApplicationName: request.ApplicationName, Revision: request.Revision, Error: err.Error()})
		return
	}
	if err := utils.CheckValidRev(request.Revision); err != nil {
		s.enqueue(PanelMessage{State: resource.Failed.String(), ApplicationName: request.ApplicationName, Revision: request.Revision, Error: err.Error()})
		return
	}
	s.panel.SetInput(request.ApplicationName, request.Revision)
}

// readPump handles the requests of the client until the connection closes.
func (s *PanelSession) readPump() {
	s.Conn.SetReadLimit(maxMessageSize)
	_ = s.Conn.SetReadDeadline(time.Now().Add(pongWait))
	s.Conn.SetPongHandler(func(string) error {
		return s.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		_, message, err := s.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				s.logger.Warnw("panel socket closed unexpectedly", "session", s.ID, "error", err)
			}
			return
		}
		s.handleRequest(bytes.TrimSpace(message))
	}
}

// writePump writes queued messages and keeps the connection alive.
func (s *PanelSession) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			_ = s.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = s.Conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case payload := <-s.send:
			_ = s.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.Conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				s.logger.Debugw("error writing panel message", "session", s.ID, "error", err)
				return
			}
		case <-ticker.C:
			_ = s.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Run serves the session until the client goes away.
func (s *PanelSession) Run() {
	s.Hub.register(s)

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		s.writePump()
	}()
	s.readPump()
	s.Close()
	<-writerDone
}

func (s *PanelSession) Close() {
	s.closeOnce.Do(s.shutdown)
}

func (s *PanelSession) shutdown() {
	s.Hub.unregister(s)
	s.panel.Close()
	close(s.done)
	_ = s.Conn.Close()
}

// ServePanelWs upgrades the request and serves a panel session on it.
func ServePanelWs(hub *Hub, w http.ResponseWriter, r *http.Request, fetcher metadata.Fetcher, placement panel.Placement, logger *zap.SugaredLogger) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warnw("error upgrading panel socket", "error", err)
		return
	}
	session := NewPanelSession(hub, NewWebSocketWrapper(conn), fetcher, placement, logger)
	logger.Debugw("panel session opened", "session", session.ID, "remote", r.RemoteAddr)
	session.Run()
	logger.Debugw("panel session closed", "session", session.ID)
}
