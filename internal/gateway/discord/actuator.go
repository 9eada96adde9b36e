package discord

import (
	"context"
	"io"

	"github.com/bwmarrin/discordgo"
	"github.com/iamwavecut/tool"
	"github.com/pkg/errors"

	"github.com/qubitbot/qubit/internal/errs"
)

func (g *Gateway) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return errors.WithMessage(g.session.ChannelMessageDelete(channelID, messageID), "cant delete message")
	}
}

func (g *Gateway) Send(ctx context.Context, channelID, text string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return tool.Err(g.session.ChannelMessageSend(channelID, text))
	}
}

func (g *Gateway) SendFile(ctx context.Context, channelID, text, filename string, contents io.Reader) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return tool.Err(g.session.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
			Content: text,
			Files:   []*discordgo.File{{Name: filename, Reader: contents}},
		}))
	}
}

func (g *Gateway) Kick(ctx context.Context, guildID string, userID int64, reason string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return errors.WithMessage(g.session.GuildMemberDeleteWithReason(guildID, formatID(userID), reason), "cant kick")
	}
}

func (g *Gateway) Ban(ctx context.Context, guildID string, userID int64, reason string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return errors.WithMessage(g.session.GuildBanCreateWithReason(guildID, formatID(userID), reason, 0), "cant ban")
	}
}

func (g *Gateway) AddRole(ctx context.Context, guildID string, userID int64, roleName string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		roleID, err := g.roleID(guildID, roleName)
		if err != nil {
			return err
		}
		return errors.WithMessage(g.session.GuildMemberRoleAdd(guildID, formatID(userID), roleID), "cant add role")
	}
}

func (g *Gateway) RemoveRole(ctx context.Context, guildID string, userID int64, roleName string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		roleID, err := g.roleID(guildID, roleName)
		if err != nil {
			return err
		}
		return errors.WithMessage(g.session.GuildMemberRoleRemove(guildID, formatID(userID), roleID), "cant remove role")
	}
}

func (g *Gateway) roleID(guildID, roleName string) (string, error) {
	if guild, err := g.session.State.Guild(guildID); err == nil {
		for _, role := range guild.Roles {
			if role.Name == roleName {
				return role.ID, nil
			}
		}
	}
	roles, err := g.session.GuildRoles(guildID)
	if err != nil {
		return "", errors.WithMessage(err, "cant fetch roles")
	}
	for _, role := range roles {
		if role.Name == roleName {
			return role.ID, nil
		}
	}
	return "", errors.WithMessagef(errs.ErrNotFound, "role %q", roleName)
}
