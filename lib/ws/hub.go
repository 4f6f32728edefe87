package ws

import "sync"

// Hub keeps track of the open panel sessions and fans out refresh requests
// when the metadata of an application changes.
type Hub struct {
	Sessions        map[*PanelSession]bool
	SessionsRWMutex sync.RWMutex

	// Register requests from new sessions.
	Register chan *PanelSession

	// Unregister requests from closing sessions.
	Unregister chan *PanelSession

	// Refresh carries application names whose metadata changed.
	Refresh chan string

	done chan struct{}
	once sync.Once
}

func NewHub() *Hub {
	return &Hub{
		Sessions:   make(map[*PanelSession]bool),
		Register:   make(chan *PanelSession),
		Unregister: make(chan *PanelSession),
		Refresh:    make(chan string, 16),
		done:       make(chan struct{}),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case <-h.done:
			return
		case session := <-h.Register:
			if session == nil {
				continue
			}
			h.SessionsRWMutex.Lock()
			h.Sessions[session] = true
			h.SessionsRWMutex.Unlock()
		case session := <-h.Unregister:
			if session == nil {
				continue
			}
			h.SessionsRWMutex.Lock()
			delete(h.Sessions, session)
			h.SessionsRWMutex.Unlock()
		case applicationName := <-h.Refresh:
			h.SessionsRWMutex.RLock()
			for session := range h.Sessions {
				session.refresh(applicationName)
			}
			h.SessionsRWMutex.RUnlock()
		}
	}
}

// Stop ends Run. Registered sessions are left to close on their own.
func (h *Hub) Stop() {
	h.once.Do(func() {
		close(h.done)
	})
}

func (h *Hub) register(session *PanelSession) {
	select {
	case h.Register <- session:
	case <-h.done:
	}
}

func (h *Hub) unregister(session *PanelSession) {
	select {
	case h.Unregister <- session:
	case <-h.done:
	}
}

// RefreshApplication asks every session showing applicationName to look its
// revision up again.
func (h *Hub) RefreshApplication(applicationName string) {
	select {
	case h.Refresh <- applicationName:
	case <-h.done:
	}
}

func (h *Hub) ActiveSessions() int {
	h.SessionsRWMutex.RLock()
	defer h.SessionsRWMutex.RUnlock()
	return len(h.Sessions)
}
