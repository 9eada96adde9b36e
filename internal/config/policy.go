package config

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

type (
	// Policy is the per-deployment moderation and gamification surface,
	// loaded from a YAML file. Zero-valued sections fall back to defaults.
	Policy struct {
		BannedTerms      []string          `yaml:"banned_terms"`
		LogChannelID     string            `yaml:"log_channel_id"`
		WarningChannelID string            `yaml:"warning_channel_id"`
		Thresholds       Thresholds        `yaml:"thresholds"`
		Mute             MutePolicy        `yaml:"mute"`
		Spam             SpamPolicy        `yaml:"spam"`
		Leveling         LevelingPolicy    `yaml:"leveling"`
		DefaultPrefix    string            `yaml:"default_prefix"`
		MemberRole       string            `yaml:"member_role"`
		WelcomeMessages  map[string]string `yaml:"welcome_messages"`
		ReactionRoles    map[string]string `yaml:"reaction_roles"`
	}

	// Thresholds are exact-match offense counts, not "at least" marks. A
	// count that skips one fires nothing for it.
	Thresholds struct {
		Warn int `yaml:"warn"`
		Mute int `yaml:"mute"`
		Kick int `yaml:"kick"`
		Ban  int `yaml:"ban"`
	}

	MutePolicy struct {
		Duration Duration `yaml:"duration"`
		Role     string   `yaml:"role"`
	}

	SpamPolicy struct {
		Threshold int      `yaml:"threshold"`
		Interval  Duration `yaml:"interval"`
	}

	LevelingPolicy struct {
		XPPerMessage int     `yaml:"xp_per_message"`
		Base         int     `yaml:"base"`
		Multiplier   float64 `yaml:"multiplier"`
	}

	// Duration unmarshals "5m" style YAML strings.
	Duration time.Duration
)

func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw string
	if err := unmarshal(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return errors.WithMessage(err, "parse duration")
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Unwrap() time.Duration {
	return time.Duration(d)
}

func DefaultPolicy() *Policy {
	return &Policy{
		BannedTerms: []string{},
		Thresholds:  Thresholds{Warn: 1, Mute: 4, Kick: 3, Ban: 5},
		Mute:        MutePolicy{Duration: Duration(5 * time.Minute), Role: "Muted"},
		Spam:        SpamPolicy{Threshold: 5, Interval: Duration(10 * time.Second)},
		Leveling:    LevelingPolicy{XPPerMessage: 5, Base: 100, Multiplier: 1.5},

		DefaultPrefix: "!",
		MemberRole:    "Member",
		ReactionRoles: map[string]string{
			"👍": "Member",
			"🎮": "Gamer",
			"🎨": "Artist",
		},
	}
}

// LoadPolicy reads the policy file over the defaults. An empty path yields
// the defaults; an unreadable or malformed file is a startup validation
// failure and must abort the process.
func LoadPolicy(path string) (*Policy, error) {
	policy := DefaultPolicy()
	if path == "" {
		return policy, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithMessage(err, "read policy file")
	}
	if err := yaml.UnmarshalStrict(raw, policy); err != nil {
		return nil, errors.WithMessage(err, "unmarshal policy file")
	}
	if policy.DefaultPrefix == "" {
		policy.DefaultPrefix = "!"
	}
	return policy, nil
}
