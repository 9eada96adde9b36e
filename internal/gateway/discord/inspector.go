package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"
	"github.com/pkg/errors"

	"github.com/qubitbot/qubit/internal/gateway"
)

func (g *Gateway) ChannelName(_ context.Context, channelID string) string {
	return g.channelName(channelID)
}

func (g *Gateway) MemberInfo(ctx context.Context, guildID string, userID int64) (*gateway.Member, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	member, err := g.session.GuildMember(guildID, formatID(userID))
	if err != nil {
		return nil, errors.WithMessage(err, "cant fetch member")
	}

	roles := make([]string, 0, len(member.Roles))
	for _, roleID := range member.Roles {
		if role, err := g.session.State.Role(guildID, roleID); err == nil && role.Name != "@everyone" {
			roles = append(roles, role.Name)
		}
	}
	name := member.User.Username
	if member.Nick != "" {
		name = member.Nick
	}
	return &gateway.Member{
		ID:       userID,
		Name:     name,
		Mention:  member.User.Mention(),
		JoinedAt: member.JoinedAt,
		Roles:    roles,
	}, nil
}

func (g *Gateway) GuildInfo(ctx context.Context, guildID string) (*gateway.Guild, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	var guild *discordgo.Guild
	guild, err := g.session.State.Guild(guildID)
	if err != nil {
		guild, err = g.session.Guild(guildID)
		if err != nil {
			return nil, errors.WithMessage(err, "cant fetch guild")
		}
	}
	return &gateway.Guild{
		ID:          guild.ID,
		Name:        guild.Name,
		MemberCount: guild.MemberCount,
		CreatedAt:   snowflakeTime(guild.ID),
	}, nil
}

func (g *Gateway) AvatarURL(ctx context.Context, _ string, userID int64) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}
	user, err := g.session.User(formatID(userID))
	if err != nil {
		return "", errors.WithMessage(err, "cant fetch user")
	}
	return user.AvatarURL(""), nil
}

func (g *Gateway) CanModerate(_ context.Context, channelID string, userID int64) bool {
	perms, err := g.session.UserChannelPermissions(formatID(userID), channelID)
	if err != nil {
		g.logger.WithError(err).WithField("user_id", userID).Debug("cant resolve permissions")
		return false
	}
	return perms&discordgo.PermissionManageMessages != 0 || perms&discordgo.PermissionAdministrator != 0
}

// PurgeMessages bulk-deletes up to limit recent messages and returns their
// audit payload for the transcript.
func (g *Gateway) PurgeMessages(ctx context.Context, channelID string, limit int) ([]gateway.PurgedMessage, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	messages, err := g.session.ChannelMessages(channelID, limit, "", "", "")
	if err != nil {
		return nil, errors.WithMessage(err, "cant fetch messages")
	}
	if len(messages) == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(messages))
	purged := make([]gateway.PurgedMessage, 0, len(messages))
	for _, msg := range messages {
		ids = append(ids, msg.ID)
		author := ""
		var authorID int64
		if msg.Author != nil {
			author = msg.Author.Username
			authorID = parseID(msg.Author.ID)
		}
		purged = append(purged, gateway.PurgedMessage{
			Time:     msg.Timestamp,
			Author:   author,
			AuthorID: authorID,
			Content:  msg.Content,
		})
	}
	if err := g.session.ChannelMessagesBulkDelete(channelID, ids); err != nil {
		return nil, errors.WithMessage(err, "cant bulk delete")
	}
	return purged, nil
}
