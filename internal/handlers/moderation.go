package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

func (r *Router) purge(ctx context.Context, req *Request) error {
	if len(req.Args) < 1 {
		return r.reply(ctx, req, "Usage: purge <number>")
	}
	amount, err := strconv.Atoi(req.Args[0])
	if err != nil || amount < 1 {
		return r.reply(ctx, req, "Usage: purge <number>")
	}

	purged, err := r.s.GetInspector().PurgeMessages(ctx, req.Ev.ChannelID, amount)
	if err != nil {
		return errors.WithMessage(err, "purge messages")
	}

	policy := r.s.GetPolicy()
	if len(purged) > 0 && policy.LogChannelID != "" {
		lines := make([]string, 0, len(purged))
		for _, msg := range purged {
			lines = append(lines, fmt.Sprintf("[%s UTC] %s (%d): %s",
				msg.Time.UTC().Format("2006-01-02 15:04:05"), msg.Author, msg.AuthorID, msg.Content))
		}
		filename := fmt.Sprintf("purge_%s_%s.txt", req.Ev.ChannelID, time.Now().UTC().Format("20060102150405"))
		transcript := strings.NewReader(strings.Join(lines, "\n"))
		caption := fmt.Sprintf("🗑️ %d messages deleted in #%s:", len(purged), req.Ev.ChannelName)
		if err := r.s.GetActuator().SendFile(ctx, policy.LogChannelID, caption, filename, transcript); err != nil {
			r.logger.WithError(err).Error("cant upload purge transcript")
		}
	}

	return r.reply(ctx, req, fmt.Sprintf("🗑️ Deleted %d messages.", len(purged)))
}

func (r *Router) offenses(ctx context.Context, req *Request) error {
	userID, mention, _ := r.targetUser(req)
	count := r.s.GetOffenses().Count(userID)
	return r.reply(ctx, req, fmt.Sprintf("%s has %d recorded offense(s).", mention, count))
}

func (r *Router) offensesDetail(ctx context.Context, req *Request) error {
	userID, mention, explicit := r.targetUser(req)
	if !explicit {
		return r.reply(ctx, req, "Usage: offenses_detail @user")
	}
	offenses := r.s.GetOffenses().List(userID)
	if len(offenses) == 0 {
		return r.reply(ctx, req, fmt.Sprintf("%s has no recorded offenses.", mention))
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("**Offenses for %s:**\n", mention))
	for i, offense := range offenses {
		sb.WriteString(fmt.Sprintf("%d. [%s] #%s: %s (%s)\n",
			i+1, offense.Time, offense.Channel, offense.Content, offense.Link))
	}
	return r.reply(ctx, req, sb.String())
}

func (r *Router) resetOffenses(ctx context.Context, req *Request) error {
	userID, mention, explicit := r.targetUser(req)
	if !explicit {
		return r.reply(ctx, req, "Usage: reset_offenses @user")
	}
	r.s.GetOffenses().Reset(userID)
	return r.reply(ctx, req, fmt.Sprintf("✅ Offense history for %s has been reset.", mention))
}

func (r *Router) topOffenders(ctx context.Context, req *Request) error {
	limit := 10
	if len(req.Args) > 0 {
		if parsed, err := strconv.Atoi(req.Args[0]); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	ranks := r.s.GetOffenses().TopOffenders(limit)
	if len(ranks) == 0 {
		return r.reply(ctx, req, "No offenses recorded.")
	}

	var sb strings.Builder
	sb.WriteString("**Top Offenders:**\n")
	for _, rank := range ranks {
		sb.WriteString(fmt.Sprintf("%s: %d offense(s)\n", mentionForID(rank.UserID), rank.Count))
	}
	return r.reply(ctx, req, sb.String())
}

func (r *Router) setPrefix(ctx context.Context, req *Request) error {
	if len(req.Args) != 1 || req.Args[0] == "" {
		return r.reply(ctx, req, "Usage: setprefix <prefix>")
	}
	r.s.GetPrefixes().Set(req.Ev.GuildID, req.Args[0])
	return r.reply(ctx, req, fmt.Sprintf("✅ Command prefix set to `%s`.", req.Args[0]))
}
