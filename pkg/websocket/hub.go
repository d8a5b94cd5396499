package websocket

import (
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Session - одно живое подключение клиента (вкладка, устройство).
type Session interface {
	ID() string
	Push(Envelope) error
}

type sessionEntry struct {
	identity    Identity
	connectedAt time.Time
}

// Hub - реестр подключений. Единственный владелец своих карт, доступ только
// через методы ниже.
type Hub struct {
	mu        sync.RWMutex
	byName    map[string]map[Session]struct{}
	anonymous map[Session]struct{}
	sessions  map[Session]sessionEntry
	logger    *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		byName:    make(map[string]map[Session]struct{}),
		anonymous: make(map[Session]struct{}),
		sessions:  make(map[Session]sessionEntry),
		logger:    logger,
	}
}

// Connect регистрирует сессию. Повторный Connect той же сессии переносит ее
// на новую identity.
func (h *Hub) Connect(id Identity, s Session) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, exists := h.sessions[s]; exists {
		h.removeLocked(s)
	}

	h.sessions[s] = sessionEntry{identity: id, connectedAt: time.Now()}
	if name, ok := id.Name(); ok {
		set, exists := h.byName[name]
		if !exists {
			set = make(map[Session]struct{})
			h.byName[name] = set
		}
		set[s] = struct{}{}
	} else {
		h.anonymous[s] = struct{}{}
	}

	h.logger.Info("Клиент зарегистрирован",
		zap.String("identity", id.String()),
		zap.String("session", s.ID()),
	)
}

// Disconnect удаляет сессию. Запись identity удаляется, когда у нее не
// осталось сессий.
func (h *Hub) Disconnect(s Session) (Identity, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	entry, ok := h.sessions[s]
	if !ok {
		return Anonymous(), false
	}
	h.removeLocked(s)

	h.logger.Info("Клиент отсоединен",
		zap.String("identity", entry.identity.String()),
		zap.String("session", s.ID()),
		zap.Duration("duration", time.Since(entry.connectedAt)),
	)
	return entry.identity, true
}

func (h *Hub) removeLocked(s Session) {
	entry := h.sessions[s]
	delete(h.sessions, s)

	name, known := entry.identity.Name()
	if !known {
		delete(h.anonymous, s)
		return
	}
	if set, ok := h.byName[name]; ok {
		delete(set, s)
		if len(set) == 0 {
			delete(h.byName, name)
		}
	}
}

// SessionsOf возвращает снимок сессий пользователя. Анонимные сессии сюда
// попасть не могут.
func (h *Hub) SessionsOf(name string) []Session {
	h.mu.RLock()
	defer h.mu.RUnlock()

	set := h.byName[name]
	if len(set) == 0 {
		return nil
	}
	out := make([]Session, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// IsConnected - есть ли у пользователя хотя бы одна сессия.
func (h *Hub) IsConnected(name string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.byName[name]
	return ok
}

// Count возвращает число известных пользователей и общее число сессий.
func (h *Hub) Count() (identities int, sessions int) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.byName), len(h.sessions)
}
