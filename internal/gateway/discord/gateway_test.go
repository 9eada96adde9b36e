package discord

import (
	"testing"

	"github.com/bwmarrin/discordgo"
)

func TestNewSessionConfiguration(t *testing.T) {
	t.Parallel()

	gw, err := New("test-token")
	if err != nil {
		t.Fatalf("new gateway: %v", err)
	}

	// Inline dispatch keeps same-user events in arrival order; a handler
	// goroutine per event would let two messages from one user race through
	// the moderation pipeline.
	if !gw.session.SyncEvents {
		t.Fatalf("session must dispatch events synchronously")
	}
	if gw.session.Identify.Intents != discordgo.IntentsAll {
		t.Fatalf("unexpected intents: %v", gw.session.Identify.Intents)
	}
	if gw.session.State.MaxMessageCount != 1000 {
		t.Fatalf("unexpected state cache size: %d", gw.session.State.MaxMessageCount)
	}
}
