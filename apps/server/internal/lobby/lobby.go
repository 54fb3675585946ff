// Package lobby tracks the active run of every connected account. A
// player gets at most one live session; starting a new run replaces the
// finished one.
package lobby

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"blackjack-lite/apps/server/internal/ledger"
	"blackjack-lite/apps/server/internal/session"
	"blackjack-lite/blackjack"
)

type Lobby struct {
	mu       sync.RWMutex
	sessions map[uint64]*session.Session // userID -> active session

	data   *blackjack.GameData
	ledger ledger.Service
	log    *logrus.Logger
	tick   time.Duration
}

func New(data *blackjack.GameData, ledgerService ledger.Service, logger *logrus.Logger, tick time.Duration) *Lobby {
	return &Lobby{
		sessions: make(map[uint64]*session.Session),
		data:     data,
		ledger:   ledgerService,
		log:      logger,
		tick:     tick,
	}
}

// StartRun creates a fresh session for the user, closing any previous
// one. The run id is returned so the client can correlate ledger rows.
func (l *Lobby) StartRun(userID uint64, username string, class blackjack.Class, seed int64, sendFn func([]byte)) (*session.Session, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if prev, exists := l.sessions[userID]; exists {
		prev.Close()
		delete(l.sessions, userID)
	}

	runID := "run_" + uuid.NewString()
	s, err := session.New(session.Config{
		UserID:   userID,
		Username: username,
		RunID:    runID,
		Class:    class,
		Seed:     seed,
		Tick:     l.tick,
	}, l.data, sendFn, l.ledger, l.log)
	if err != nil {
		return nil, err
	}
	l.sessions[userID] = s
	return s, nil
}

// Session returns the user's active session, if any.
func (l *Lobby) Session(userID uint64) *session.Session {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.sessions[userID]
}

// Drop closes and forgets the user's session.
func (l *Lobby) Drop(userID uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if s, exists := l.sessions[userID]; exists {
		s.Close()
		delete(l.sessions, userID)
	}
}

// Close stops every active session.
func (l *Lobby) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for userID, s := range l.sessions {
		s.Close()
		delete(l.sessions, userID)
	}
}

// ActiveCount reports the number of live sessions.
func (l *Lobby) ActiveCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.sessions)
}
