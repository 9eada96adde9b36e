package bot

import "time"

type (
	// MessageEvent is a gateway-agnostic inbound message. UserID is the
	// platform-unique numeric ID; channel and message refs stay opaque
	// strings.
	MessageEvent struct {
		MessageID   string
		GuildID     string
		ChannelID   string
		ChannelName string
		UserID      int64
		UserName    string
		Mention     string
		Content     string
		Link        string
		Timestamp   time.Time
		Bot         bool
	}

	JoinEvent struct {
		GuildID         string
		GuildName       string
		SystemChannelID string
		UserID          int64
		Mention         string
		Bot             bool
	}

	ReactionEvent struct {
		GuildID   string
		ChannelID string
		UserID    int64
		Mention   string
		Emoji     string
		Added     bool
		Bot       bool
	}

	EditEvent struct {
		GuildID     string
		ChannelID   string
		ChannelName string
		UserID      int64
		Mention     string
		Before      string
		After       string
		Bot         bool
	}
)
