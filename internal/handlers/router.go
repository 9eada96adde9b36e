package handlers

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/qubitbot/qubit/internal/bot"
	"github.com/qubitbot/qubit/internal/errs"
)

type (
	// Request is one parsed command invocation.
	Request struct {
		Ev      bot.MessageEvent
		Args    []string
		ArgText string
	}

	CommandFunc func(ctx context.Context, req *Request) error

	command struct {
		fn      CommandFunc
		modOnly bool
	}

	// Router owns the prefix-command surface. It runs after the
	// moderation pipeline, for every non-spam message.
	Router struct {
		s        bot.Service
		commands map[string]command
		logger   *log.Entry
	}
)

var mentionPattern = regexp.MustCompile(`^<@!?(\d+)>$`)

func NewRouter(s bot.Service) *Router {
	r := &Router{
		s:        s,
		commands: map[string]command{},
		logger:   log.WithField("context", "command_router"),
	}

	r.register("ping", r.ping, false)
	r.register("help", r.help, false)
	r.register("userinfo", r.userinfo, false)
	r.register("serverinfo", r.serverinfo, false)
	r.register("avatar", r.avatar, false)

	r.register("roll", r.roll, false)
	r.register("coinflip", r.coinflip, false)
	r.register("eightball", r.eightball, false)

	r.register("points", r.points, false)
	r.register("level", r.level, false)
	r.register("leaderboard", r.leaderboard, false)
	r.register("remindme", r.remindme, false)

	r.register("purge", r.purge, true)
	r.register("offenses", r.offenses, false)
	r.register("offenses_detail", r.offensesDetail, true)
	r.register("reset_offenses", r.resetOffenses, true)
	r.register("top_offenders", r.topOffenders, true)
	r.register("setprefix", r.setPrefix, true)

	return r
}

func (r *Router) register(name string, fn CommandFunc, modOnly bool) {
	r.commands[name] = command{fn: fn, modOnly: modOnly}
}

// Dispatch parses and runs a command if the message carries the guild's
// prefix. Unknown commands are ignored silently.
func (r *Router) Dispatch(ctx context.Context, ev bot.MessageEvent) error {
	prefix := r.s.GetPrefixes().Get(ev.GuildID)
	if !strings.HasPrefix(ev.Content, prefix) {
		return nil
	}
	body := strings.TrimPrefix(ev.Content, prefix)
	fields := strings.Fields(body)
	if len(fields) == 0 {
		return nil
	}
	name := strings.ToLower(fields[0])
	cmd, ok := r.commands[name]
	if !ok {
		r.logger.WithError(errs.ErrUnknownCommand).WithField("command", name).Trace("ignoring")
		return nil
	}

	if cmd.modOnly && !r.s.GetInspector().CanModerate(ctx, ev.ChannelID, ev.UserID) {
		r.logger.WithError(errs.ErrNoPrivileges).WithFields(log.Fields{
			"command": name,
			"user_id": ev.UserID,
		}).Info("command refused")
		if err := r.s.GetActuator().Send(ctx, ev.ChannelID, "🚫 You need moderator permissions to use this command."); err != nil {
			r.logger.WithError(err).Warn("cant send permission refusal")
		}
		return nil
	}

	req := &Request{
		Ev:      ev,
		Args:    fields[1:],
		ArgText: strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(body), fields[0])),
	}
	if err := cmd.fn(ctx, req); err != nil {
		r.logger.WithError(err).WithFields(log.Fields{
			"command": name,
			"user_id": ev.UserID,
		}).Error("command failed")
	}
	return nil
}

func (r *Router) reply(ctx context.Context, req *Request, text string) error {
	return r.s.GetActuator().Send(ctx, req.Ev.ChannelID, text)
}

// targetUser resolves an optional "@user" first argument, falling back to
// the invoker. Raw numeric IDs are accepted too.
func (r *Router) targetUser(req *Request) (userID int64, mention string, explicit bool) {
	if len(req.Args) == 0 {
		return req.Ev.UserID, req.Ev.Mention, false
	}
	if m := mentionPattern.FindStringSubmatch(req.Args[0]); m != nil {
		id, err := strconv.ParseInt(m[1], 10, 64)
		if err == nil {
			return id, mentionForID(id), true
		}
	}
	if id, err := strconv.ParseInt(req.Args[0], 10, 64); err == nil {
		return id, mentionForID(id), true
	}
	return req.Ev.UserID, req.Ev.Mention, false
}

func mentionForID(userID int64) string {
	return "<@" + strconv.FormatInt(userID, 10) + ">"
}
