package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
)

func (r *Router) points(ctx context.Context, req *Request) error {
	userID, mention, _ := r.targetUser(req)
	stats := r.s.GetLevels().Stats(userID)
	return r.reply(ctx, req, fmt.Sprintf("%s has %d points.", mention, stats.Points))
}

func (r *Router) level(ctx context.Context, req *Request) error {
	userID, mention, _ := r.targetUser(req)
	stats := r.s.GetLevels().Stats(userID)
	next := r.s.GetLevels().Threshold(stats.Level)
	return r.reply(ctx, req, fmt.Sprintf("%s is **Level %d** with **%d/%d XP**.", mention, stats.Level, stats.XP, next))
}

func (r *Router) leaderboard(ctx context.Context, req *Request) error {
	limit := 10
	if len(req.Args) > 0 {
		if parsed, err := strconv.Atoi(req.Args[0]); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	entries := r.s.GetLevels().Leaderboard(limit)
	if len(entries) == 0 {
		return r.reply(ctx, req, "No users have leveled up yet.")
	}

	var sb strings.Builder
	sb.WriteString("**Top Levels:**\n")
	for _, entry := range entries {
		sb.WriteString(fmt.Sprintf("%s: Level %d (%d XP)\n", mentionForID(entry.UserID), entry.Level, entry.XP))
	}
	return r.reply(ctx, req, sb.String())
}

func (r *Router) remindme(ctx context.Context, req *Request) error {
	if len(req.Args) < 2 {
		return r.reply(ctx, req, "Usage: remindme <seconds> <message>")
	}
	seconds, err := strconv.Atoi(req.Args[0])
	if err != nil || seconds < 1 {
		return r.reply(ctx, req, "Usage: remindme <seconds> <message>")
	}
	message := strings.TrimSpace(strings.TrimPrefix(req.ArgText, req.Args[0]))

	ev := req.Ev
	r.s.GetScheduler().Schedule(time.Duration(seconds)*time.Second, func(taskCtx context.Context) {
		if err := r.s.GetActuator().Send(taskCtx, ev.ChannelID, fmt.Sprintf("💡 %s, reminder: %s", ev.Mention, message)); err != nil {
			r.logger.WithError(err).Warn("cant deliver reminder")
		}
	})
	return r.reply(ctx, req, fmt.Sprintf("⏰ %s, I will remind you in %d seconds.", ev.Mention, seconds))
}
