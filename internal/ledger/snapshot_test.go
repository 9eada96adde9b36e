package ledger

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/qubitbot/qubit/internal/errs"
)

func TestSnapshotRoundTrip(t *testing.T) {
	t.Parallel()

	snap := NewSnapshotter(t.TempDir())
	in := map[string][]Offense{
		"42": {{Time: "2024-05-01 12:00:00 UTC", Content: "x", Channel: "general", Link: "l"}},
	}
	if err := snap.Save("offenses.json", in); err != nil {
		t.Fatalf("save: %v", err)
	}

	out := map[string][]Offense{}
	if err := snap.Load("offenses.json", &out); err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(out) != 1 || len(out["42"]) != 1 || out["42"][0] != in["42"][0] {
		t.Fatalf("round trip mismatch: %+v", out)
	}
}

func TestSnapshotMissingFileIsEmpty(t *testing.T) {
	t.Parallel()

	snap := NewSnapshotter(t.TempDir())
	out := map[string][]Offense{}
	if err := snap.Load("offenses.json", &out); err != nil {
		t.Fatalf("missing file must not error: %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("missing file must load empty, got %+v", out)
	}
}

func TestSnapshotCorruptFileFails(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "offenses.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}

	snap := NewSnapshotter(dir)
	out := map[string][]Offense{}
	err := snap.Load("offenses.json", &out)
	if !errors.Is(err, errs.ErrCorruptSnapshot) {
		t.Fatalf("corrupt file must fail with ErrCorruptSnapshot, got %v", err)
	}
}

func TestSnapshotLeavesNoTempFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	snap := NewSnapshotter(dir)
	if err := snap.Save("userdata.json", map[string]*Stats{"42": {Points: 1, XP: 2, Level: 3}}); err != nil {
		t.Fatalf("save: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".tmp") {
			t.Fatalf("temp file left behind: %s", entry.Name())
		}
	}
	if len(entries) != 1 {
		t.Fatalf("expected exactly the snapshot file, got %d entries", len(entries))
	}
}

func TestSnapshotUsesIndentedStringKeys(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	snap := NewSnapshotter(dir)
	if err := snap.Save("userdata.json", map[string]*Stats{"42": {Points: 7, XP: 30, Level: 1}}); err != nil {
		t.Fatalf("save: %v", err)
	}

	raw, err := os.ReadFile(filepath.Join(dir, "userdata.json"))
	if err != nil {
		t.Fatalf("read snapshot: %v", err)
	}
	content := string(raw)
	for _, fragment := range []string{`"42"`, `"points": 7`, `"xp": 30`, `"level": 1`, "\n    "} {
		if !strings.Contains(content, fragment) {
			t.Fatalf("snapshot %q lacks fragment %q", content, fragment)
		}
	}
}

func TestPrefixStoreFallbackAndOverride(t *testing.T) {
	t.Parallel()

	snap := NewSnapshotter(t.TempDir())
	prefixes, err := NewPrefixStore(snap, "!")
	if err != nil {
		t.Fatalf("new prefix store: %v", err)
	}

	if got := prefixes.Get("guild-1"); got != "!" {
		t.Fatalf("fallback prefix = %q, want %q", got, "!")
	}
	prefixes.Set("guild-1", "?")
	if got := prefixes.Get("guild-1"); got != "?" {
		t.Fatalf("override prefix = %q, want %q", got, "?")
	}

	reloaded, err := NewPrefixStore(snap, "!")
	if err != nil {
		t.Fatalf("reload prefix store: %v", err)
	}
	if got := reloaded.Get("guild-1"); got != "?" {
		t.Fatalf("reloaded prefix = %q, want %q", got, "?")
	}
}
