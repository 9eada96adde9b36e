package gateway

import (
	"context"
	"io"
	"time"
)

type (
	// Actuator is the platform-level moderation surface. The core never
	// touches the wire protocol; everything it does to the outside world
	// goes through here.
	Actuator interface {
		DeleteMessage(ctx context.Context, channelID, messageID string) error
		Send(ctx context.Context, channelID, text string) error
		SendFile(ctx context.Context, channelID, text, filename string, contents io.Reader) error
		Kick(ctx context.Context, guildID string, userID int64, reason string) error
		Ban(ctx context.Context, guildID string, userID int64, reason string) error
		AddRole(ctx context.Context, guildID string, userID int64, roleName string) error
		RemoveRole(ctx context.Context, guildID string, userID int64, roleName string) error
	}

	// Inspector is the read-only side of the platform, used by commands.
	Inspector interface {
		ChannelName(ctx context.Context, channelID string) string
		MemberInfo(ctx context.Context, guildID string, userID int64) (*Member, error)
		GuildInfo(ctx context.Context, guildID string) (*Guild, error)
		AvatarURL(ctx context.Context, guildID string, userID int64) (string, error)
		CanModerate(ctx context.Context, channelID string, userID int64) bool
		PurgeMessages(ctx context.Context, channelID string, limit int) ([]PurgedMessage, error)
	}

	Member struct {
		ID       int64
		Name     string
		Mention  string
		JoinedAt time.Time
		Roles    []string
	}

	Guild struct {
		ID          string
		Name        string
		MemberCount int
		CreatedAt   time.Time
	}

	PurgedMessage struct {
		Time     time.Time
		Author   string
		AuthorID int64
		Content  string
	}
)
