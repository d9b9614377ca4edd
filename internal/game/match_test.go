package game

import (
	"context"
	"testing"

	"emittr/engine/internal/engine"

	"github.com/pkg/errors"
)

func newBot(t *testing.T, player engine.Player, difficulty int, seed int64) *Bot {
	t.Helper()
	b, err := NewBot(player, difficulty, engine.WithSeed(seed))
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func TestMatchPlaysToCompletion(t *testing.T) {
	for seed := int64(0); seed < 4; seed++ {
		finished := 0
		m, err := NewMatch(
			newBot(t, engine.PlayerOne, 1, seed),
			newBot(t, engine.PlayerTwo, 2, seed+100),
			func(MatchResult) { finished++ },
		)
		if err != nil {
			t.Fatal(err)
		}
		res, err := m.Play(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		if finished != 1 {
			t.Fatalf("onFinish called %d times", finished)
		}
		if res.Plies < 7 || res.Plies > Rows*Columns {
			t.Fatalf("match lasted %d plies", res.Plies)
		}
		rack, err := res.Board.Rack()
		if err != nil {
			t.Fatal(err)
		}
		if res.IsDraw {
			if !res.Board.Full() || rack.Winner() != engine.Empty {
				t.Fatalf("draw on a board that is not a draw:\n%s", res.Board)
			}
		} else if rack.Winner() != res.Winner {
			t.Fatalf("reported winner %v, board winner %v:\n%s", res.Winner, rack.Winner(), res.Board)
		}
		if res.Difficulties != [2]int{1, 2} || res.EndedAt.Before(res.StartedAt) {
			t.Fatalf("bad result %+v", res)
		}
		if _, err := m.Step(context.Background()); !errors.Is(err, ErrGameFinished) {
			t.Fatalf("step after finish: %v", err)
		}
	}
}

func TestNewMatchRejectsSwappedBots(t *testing.T) {
	_, err := NewMatch(newBot(t, engine.PlayerTwo, 0, 1), newBot(t, engine.PlayerOne, 0, 2), nil)
	if !errors.Is(err, ErrInvalidTurn) {
		t.Fatalf("got %v", err)
	}
}

func TestBotRejectsInvalidPlayer(t *testing.T) {
	if _, err := NewBot(engine.Empty, 1); !errors.Is(err, engine.ErrInvalidPlayer) {
		t.Fatalf("got %v", err)
	}
}
