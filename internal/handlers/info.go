package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/iamwavecut/tool"
	"github.com/pkg/errors"
)

func (r *Router) ping(ctx context.Context, req *Request) error {
	return r.reply(ctx, req, "Pong!")
}

func (r *Router) userinfo(ctx context.Context, req *Request) error {
	userID, _, _ := r.targetUser(req)
	member, err := r.s.GetInspector().MemberInfo(ctx, req.Ev.GuildID, userID)
	if err != nil {
		return errors.WithMessage(err, "fetch member")
	}
	msg := tool.ExecTemplate(
		"**User Info:**\nName: {{ .name }}\nID: {{ .id }}\nJoined: {{ .joined }}\nRoles: {{ .roles }}",
		map[string]any{
			"name":   member.Name,
			"id":     member.ID,
			"joined": member.JoinedAt.Format("2006-01-02 15:04:05"),
			"roles":  strings.Join(member.Roles, ", "),
		})
	return r.reply(ctx, req, msg)
}

func (r *Router) serverinfo(ctx context.Context, req *Request) error {
	guild, err := r.s.GetInspector().GuildInfo(ctx, req.Ev.GuildID)
	if err != nil {
		return errors.WithMessage(err, "fetch guild")
	}
	msg := tool.ExecTemplate(
		"**Server Info:**\nName: {{ .name }}\nID: {{ .id }}\nMembers: {{ .members }}\nCreated: {{ .created }}",
		map[string]any{
			"name":    guild.Name,
			"id":      guild.ID,
			"members": guild.MemberCount,
			"created": guild.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	return r.reply(ctx, req, msg)
}

func (r *Router) avatar(ctx context.Context, req *Request) error {
	userID, mention, _ := r.targetUser(req)
	url, err := r.s.GetInspector().AvatarURL(ctx, req.Ev.GuildID, userID)
	if err != nil {
		return errors.WithMessage(err, "fetch avatar")
	}
	return r.reply(ctx, req, fmt.Sprintf("%s's avatar: %s", mention, url))
}

func (r *Router) help(ctx context.Context, req *Request) error {
	msg := "**Mega Bot Help**\n\n" +
		"📌 **Moderation Commands:**\n" +
		"`!purge <number>` - Delete messages (mod)\n" +
		"`!offenses [@user]` - Show offenses\n" +
		"`!offenses_detail @user` - Show detailed offenses (mod)\n" +
		"`!reset_offenses @user` - Reset offenses (mod)\n" +
		"`!top_offenders [limit]` - Show top offenders (mod)\n\n" +
		"🎲 **Fun Commands:**\n" +
		"`!roll [sides]` - Roll a dice\n" +
		"`!coinflip` - Flip a coin\n" +
		"`!eightball <question>` - Ask the magic 8-ball\n\n" +
		"💰 **Economy & Leveling:**\n" +
		"`!points [@user]` - Show points\n" +
		"`!level [@user]` - Show level and XP\n" +
		"`!leaderboard [limit]` - Top levels\n" +
		"`!remindme <seconds> <message>` - Set a reminder\n\n" +
		"ℹ️ **Info Commands:**\n" +
		"`!userinfo [@user]` - Show user info\n" +
		"`!serverinfo` - Show server info\n" +
		"`!avatar [@user]` - Show avatar\n" +
		"`!ping` - Pong!"
	return r.reply(ctx, req, msg)
}
