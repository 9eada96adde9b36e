package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultPolicyMatchesShippedConstants(t *testing.T) {
	t.Parallel()

	policy := DefaultPolicy()

	if policy.Thresholds != (Thresholds{Warn: 1, Mute: 4, Kick: 3, Ban: 5}) {
		t.Fatalf("unexpected default thresholds: %+v", policy.Thresholds)
	}
	if policy.Mute.Duration.Unwrap() != 5*time.Minute || policy.Mute.Role != "Muted" {
		t.Fatalf("unexpected default mute policy: %+v", policy.Mute)
	}
	if policy.Spam.Threshold != 5 || policy.Spam.Interval.Unwrap() != 10*time.Second {
		t.Fatalf("unexpected default spam policy: %+v", policy.Spam)
	}
	if policy.Leveling.XPPerMessage != 5 || policy.Leveling.Base != 100 || policy.Leveling.Multiplier != 1.5 {
		t.Fatalf("unexpected default leveling policy: %+v", policy.Leveling)
	}
	if policy.DefaultPrefix != "!" || policy.MemberRole != "Member" {
		t.Fatalf("unexpected default prefix/member role: %q %q", policy.DefaultPrefix, policy.MemberRole)
	}
	if policy.ReactionRoles["👍"] != "Member" {
		t.Fatalf("unexpected default reaction roles: %+v", policy.ReactionRoles)
	}
}

func TestLoadPolicyEmptyPathYieldsDefaults(t *testing.T) {
	t.Parallel()

	policy, err := LoadPolicy("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if policy.Thresholds.Ban != 5 {
		t.Fatalf("defaults not applied: %+v", policy.Thresholds)
	}
}

func TestLoadPolicyFileOverridesDefaults(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "policy.yml")
	raw := `
banned_terms:
  - egg
log_channel_id: "1429033263699071057"
thresholds:
  warn: 2
  mute: 6
  kick: 4
  ban: 8
mute:
  duration: 10m
  role: Silenced
spam:
  threshold: 3
  interval: 5s
leveling:
  xp_per_message: 10
  base: 200
  multiplier: 2.0
`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write policy: %v", err)
	}

	policy, err := LoadPolicy(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if policy.Thresholds != (Thresholds{Warn: 2, Mute: 6, Kick: 4, Ban: 8}) {
		t.Fatalf("thresholds not overridden: %+v", policy.Thresholds)
	}
	if policy.Mute.Duration.Unwrap() != 10*time.Minute || policy.Mute.Role != "Silenced" {
		t.Fatalf("mute policy not overridden: %+v", policy.Mute)
	}
	if policy.Spam.Interval.Unwrap() != 5*time.Second {
		t.Fatalf("spam interval not overridden: %+v", policy.Spam)
	}
	if len(policy.BannedTerms) != 1 || policy.BannedTerms[0] != "egg" {
		t.Fatalf("banned terms not overridden: %+v", policy.BannedTerms)
	}
	// Untouched sections keep their defaults.
	if policy.DefaultPrefix != "!" {
		t.Fatalf("default prefix lost: %q", policy.DefaultPrefix)
	}
}

func TestLoadPolicyMalformedFileFails(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "policy.yml")
	if err := os.WriteFile(path, []byte("thresholds: [not, a, map]"), 0o644); err != nil {
		t.Fatalf("write policy: %v", err)
	}
	if _, err := LoadPolicy(path); err == nil {
		t.Fatalf("malformed policy must fail loudly")
	}
}

func TestLoadPolicyUnknownKeyFails(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "policy.yml")
	if err := os.WriteFile(path, []byte("no_such_option: true"), 0o644); err != nil {
		t.Fatalf("write policy: %v", err)
	}
	if _, err := LoadPolicy(path); err == nil {
		t.Fatalf("unknown policy key must fail loudly")
	}
}

func TestLoadPolicyBadDurationFails(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "policy.yml")
	if err := os.WriteFile(path, []byte("mute:\n  duration: soon\n"), 0o644); err != nil {
		t.Fatalf("write policy: %v", err)
	}
	if _, err := LoadPolicy(path); err == nil {
		t.Fatalf("unparseable duration must fail loudly")
	}
}
