package session

import (
	"context"
	"sync"
	"time"
)

// Manager guarda as sessões ativas em memória, uma por usuário.
// Sessões abandonadas expiram por TTL; expirar não persiste nada.
type Manager struct {
	mu     sync.Mutex
	byUser map[string]*Session
	ttl    time.Duration
}

func NewManager(ttl time.Duration) *Manager {
	return &Manager{byUser: make(map[string]*Session), ttl: ttl}
}

// Put registra a sessão do usuário, substituindo qualquer sessão
// anterior (a antiga é simplesmente abandonada).
func (m *Manager) Put(s *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byUser[s.UserID] = s
}

// Get devolve a sessão ativa do usuário, se existir e não expirou.
func (m *Manager) Get(userID string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.byUser[userID]
	if !ok {
		return nil, false
	}
	if time.Since(s.UpdatedAt) > m.ttl {
		delete(m.byUser, userID)
		return nil, false
	}
	return s, true
}

// Delete remove a sessão do usuário.
func (m *Manager) Delete(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.byUser, userID)
}

// Sweep remove sessões expiradas periodicamente até o contexto encerrar.
func (m *Manager) Sweep(ctx context.Context, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			m.mu.Lock()
			for userID, s := range m.byUser {
				if time.Since(s.UpdatedAt) > m.ttl {
					delete(m.byUser, userID)
				}
			}
			m.mu.Unlock()
		}
	}
}
