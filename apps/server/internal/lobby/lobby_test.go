package lobby

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"blackjack-lite/apps/server/internal/ledger"
	"blackjack-lite/blackjack"
	"blackjack-lite/blackjack/encounter"
	"blackjack-lite/trinket"
)

func newTestLobby() *Lobby {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	data := &blackjack.GameData{
		Registry: trinket.NewRegistry(),
		Events:   encounter.NewPool(),
		Enemies:  map[string]*blackjack.EnemyTemplate{},
	}
	return New(data, ledger.NewMemoryService(), logger, time.Hour)
}

func TestStartRunReplacesPreviousSession(t *testing.T) {
	l := newTestLobby()
	defer l.Close()

	first, err := l.StartRun(7, "tester", blackjack.ClassDegenerate, 1, nil)
	if err != nil {
		t.Fatalf("start run: %v", err)
	}
	second, err := l.StartRun(7, "tester", blackjack.ClassDegenerate, 2, nil)
	if err != nil {
		t.Fatalf("second start run: %v", err)
	}
	if first.RunID == second.RunID {
		t.Fatalf("expected distinct run ids")
	}
	if l.Session(7) != second {
		t.Fatalf("expected second session to be active")
	}
	if l.ActiveCount() != 1 {
		t.Fatalf("expected one active session, got %d", l.ActiveCount())
	}
}

func TestDropForgetsSession(t *testing.T) {
	l := newTestLobby()
	defer l.Close()

	if _, err := l.StartRun(7, "tester", blackjack.ClassDegenerate, 1, nil); err != nil {
		t.Fatalf("start run: %v", err)
	}
	l.Drop(7)
	if l.Session(7) != nil {
		t.Fatalf("expected session to be forgotten")
	}
	l.Drop(7) // no-op on missing session
}
