package moderation

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/qubitbot/qubit/internal/config"
	"github.com/qubitbot/qubit/internal/gateway"
	"github.com/qubitbot/qubit/internal/observability"
)

type Action int

const (
	ActionNone Action = iota
	ActionWarn
	ActionMute
	ActionKick
	ActionBan
)

func (a Action) String() string {
	switch a {
	case ActionWarn:
		return "warn"
	case ActionMute:
		return "mute"
	case ActionKick:
		return "kick"
	case ActionBan:
		return "ban"
	default:
		return "none"
	}
}

// Decide maps an offense count to the action that fires at exactly that
// count. Thresholds are exact-match: a count that jumps past one executes
// nothing for it retroactively. Should two thresholds collide on the same
// value, the harsher action wins (ban > kick > mute > warn).
func Decide(count int, t config.Thresholds) Action {
	switch count {
	case t.Ban:
		return ActionBan
	case t.Kick:
		return ActionKick
	case t.Mute:
		return ActionMute
	case t.Warn:
		return ActionWarn
	}
	return ActionNone
}

type (
	// Deferrer schedules a continuation without blocking the caller.
	Deferrer interface {
		Schedule(delay time.Duration, fn func(ctx context.Context)) string
	}

	// Target identifies the user an escalation acts upon.
	Target struct {
		GuildID   string
		ChannelID string
		UserID    int64
		Mention   string
	}

	// Engine executes escalation decisions through the platform actuator.
	// Actuator failures are reported to the moderation log channel and
	// never propagate; one user's failed punishment must not stall the
	// dispatcher.
	Engine struct {
		actuator   gateway.Actuator
		deferrer   Deferrer
		thresholds config.Thresholds
		mute       config.MutePolicy
		logChannel string
		logger     *log.Entry
	}
)

func NewEngine(actuator gateway.Actuator, deferrer Deferrer, policy *config.Policy) *Engine {
	return &Engine{
		actuator:   actuator,
		deferrer:   deferrer,
		thresholds: policy.Thresholds,
		mute:       policy.Mute,
		logChannel: policy.LogChannelID,
		logger:     log.WithField("context", "escalation"),
	}
}

// Apply decides and executes the action for the given offense count.
func (e *Engine) Apply(ctx context.Context, target Target, count int) {
	action := Decide(count, e.thresholds)
	if action == ActionNone {
		return
	}
	observability.RecordAction(action.String())

	var err error
	switch action {
	case ActionWarn:
		e.reportToLog(ctx, fmt.Sprintf("⚠️ %s has been **warned** automatically.", target.Mention))
	case ActionMute:
		err = e.muteUser(ctx, target)
	case ActionKick:
		if err = e.actuator.Kick(ctx, target.GuildID, target.UserID, fmt.Sprintf("Reached %d offenses.", e.thresholds.Kick)); err == nil {
			e.reportToLog(ctx, fmt.Sprintf("⚠️ %s has been **kicked** automatically.", target.Mention))
		}
	case ActionBan:
		if err = e.actuator.Ban(ctx, target.GuildID, target.UserID, fmt.Sprintf("Reached %d offenses.", e.thresholds.Ban)); err == nil {
			e.reportToLog(ctx, fmt.Sprintf("⛔ %s has been **banned** automatically.", target.Mention))
		}
	}
	if err != nil {
		e.logger.WithError(err).WithFields(log.Fields{
			"user_id": target.UserID,
			"action":  action.String(),
		}).Error("auto-moderation action failed")
		e.reportToLog(ctx, fmt.Sprintf("❌ Failed auto-moderation action on %s: %v", target.Mention, err))
	}
}

// muteUser assigns the mute role now and schedules its removal after the
// configured duration. The removal is unconditional: it fires even if the
// user collects further punishment in the interim.
func (e *Engine) muteUser(ctx context.Context, target Target) error {
	if err := e.actuator.AddRole(ctx, target.GuildID, target.UserID, e.mute.Role); err != nil {
		return err
	}
	e.reportToLog(ctx, fmt.Sprintf("🔇 %s has been **muted** for %d minutes.", target.Mention, int(e.mute.Duration.Unwrap().Minutes())))

	e.deferrer.Schedule(e.mute.Duration.Unwrap(), func(taskCtx context.Context) {
		if err := e.actuator.RemoveRole(taskCtx, target.GuildID, target.UserID, e.mute.Role); err != nil {
			e.logger.WithError(err).WithField("user_id", target.UserID).Error("cant lift mute")
			e.reportToLog(taskCtx, fmt.Sprintf("❌ Failed auto-moderation action on %s: %v", target.Mention, err))
			return
		}
		e.reportToLog(taskCtx, fmt.Sprintf("✅ %s has been **unmuted** after mute duration.", target.Mention))
	})
	return nil
}

func (e *Engine) reportToLog(ctx context.Context, text string) {
	if e.logChannel == "" {
		return
	}
	if err := e.actuator.Send(ctx, e.logChannel, text); err != nil {
		e.logger.WithError(err).Error("cant post to moderation log channel")
	}
}
