package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/iamwavecut/tool"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/qubitbot/qubit/internal/moderation"
	"github.com/qubitbot/qubit/internal/observability"
)

// CommandRouter gets every non-spam message after moderation ran its course.
type CommandRouter interface {
	Dispatch(ctx context.Context, ev MessageEvent) error
}

// Dispatcher is the single entry point for gateway events. All per-user
// ledger mutations happen on this path, one event at a time, which keeps the
// monotonicity invariants without per-ledger coordination beyond their own
// mutexes. Errors inside one event never abort processing of the next.
type Dispatcher struct {
	s          Service
	classifier *moderation.Classifier
	window     *moderation.Window
	engine     *moderation.Engine
	router     CommandRouter
	logger     *log.Entry
}

func NewDispatcher(s Service, classifier *moderation.Classifier, window *moderation.Window, engine *moderation.Engine) *Dispatcher {
	return &Dispatcher{
		s:          s,
		classifier: classifier,
		window:     window,
		engine:     engine,
		logger:     log.WithField("context", "dispatcher"),
	}
}

// SetRouter wires command handling in after construction; the router needs
// the service, which needs the dispatcher's collaborators first.
func (d *Dispatcher) SetRouter(router CommandRouter) {
	d.router = router
}

const violationReport = "🚨 **Message Deleted**\n" +
	"**Author:** {{ .mention }} ({{ .user_id }})\n" +
	"**Channel:** #{{ .channel }}\n" +
	"**Time:** {{ .time }}\n" +
	"**Content:** {{ .content }}\n" +
	"[Jump to message]({{ .link }})\n" +
	"**Total Offenses:** {{ .count }}"

// ProcessMessage runs the moderation pipeline: anti-spam short-circuit, XP
// award, content classification, offense recording, escalation, then command
// routing.
func (d *Dispatcher) ProcessMessage(ctx context.Context, ev MessageEvent) error {
	if ev.Bot {
		return nil
	}
	observability.RecordEvent("message")
	ctx, span := otel.Tracer("dispatcher").Start(ctx, "process-message")
	defer span.End()
	done := observability.StartMessageProcessing()
	defer done("completed")

	now := ev.Timestamp
	if now.IsZero() {
		now = time.Now()
	}
	actuator := d.s.GetActuator()
	policy := d.s.GetPolicy()

	if d.window.Observe(ev.UserID, now) {
		observability.RecordSpam()
		observability.Logger.Warn("spam message detected",
			zap.Int64("user_id", ev.UserID),
			zap.String("channel", ev.ChannelName),
		)
		if err := actuator.Send(ctx, ev.ChannelID, fmt.Sprintf("%s, please stop spamming!", ev.Mention)); err != nil {
			d.logger.WithError(err).Warn("cant send spam warning")
		}
		if err := actuator.DeleteMessage(ctx, ev.ChannelID, ev.MessageID); err != nil {
			d.logger.WithError(err).Warn("cant delete spam message")
		}
		// Spamming messages earn nothing and run nothing further.
		return nil
	}

	leveledUp, newLevel := d.s.GetLevels().Award(ev.UserID, 1, policy.Leveling.XPPerMessage)
	if leveledUp {
		if err := actuator.Send(ctx, ev.ChannelID, fmt.Sprintf("🎉 %s has leveled up to **Level %d**!", ev.Mention, newLevel)); err != nil {
			d.logger.WithError(err).Warn("cant announce level up")
		}
	}

	if d.classifier.Flags(ev.Content) {
		d.handleViolation(ctx, ev, now)
	}

	if d.router != nil {
		if err := d.router.Dispatch(ctx, ev); err != nil {
			return errors.WithMessage(err, "command dispatch")
		}
	}
	return nil
}

func (d *Dispatcher) handleViolation(ctx context.Context, ev MessageEvent, now time.Time) {
	actuator := d.s.GetActuator()
	policy := d.s.GetPolicy()

	if err := actuator.DeleteMessage(ctx, ev.ChannelID, ev.MessageID); err != nil {
		d.logger.WithError(err).WithField("message_id", ev.MessageID).Error("cant delete violating message")
	}
	count := d.s.GetOffenses().Record(ev.UserID, ev.Content, ev.ChannelName, ev.Link)
	observability.Logger.Warn("prohibited content detected",
		zap.Int64("user_id", ev.UserID),
		zap.String("channel", ev.ChannelName),
		zap.Int("offense_count", count),
	)

	if policy.LogChannelID != "" {
		report := tool.ExecTemplate(violationReport, map[string]any{
			"mention": ev.Mention,
			"user_id": ev.UserID,
			"channel": ev.ChannelName,
			"time":    now.UTC().Format("2006-01-02 15:04:05") + " UTC",
			"content": ev.Content,
			"link":    ev.Link,
			"count":   count,
		})
		if err := actuator.Send(ctx, policy.LogChannelID, report); err != nil {
			d.logger.WithError(err).Error("cant post violation report")
		}
	}

	if policy.WarningChannelID != "" {
		warning := fmt.Sprintf("%s, your message was deleted for prohibited content. This is offense #%d.", ev.Mention, count)
		if err := actuator.Send(ctx, policy.WarningChannelID, warning); err != nil {
			d.logger.WithError(err).Error("cant post user warning")
		}
	}

	d.engine.Apply(ctx, moderation.Target{
		GuildID:   ev.GuildID,
		ChannelID: ev.ChannelID,
		UserID:    ev.UserID,
		Mention:   ev.Mention,
	}, count)
}

// ProcessJoin greets the newcomer and hands out the default member role.
func (d *Dispatcher) ProcessJoin(ctx context.Context, ev JoinEvent) error {
	if ev.Bot {
		return nil
	}
	observability.RecordEvent("join")

	policy := d.s.GetPolicy()
	actuator := d.s.GetActuator()

	if ev.SystemChannelID != "" {
		greeting := fmt.Sprintf("👋 Welcome %s to %s!", ev.Mention, ev.GuildName)
		if template, ok := policy.WelcomeMessages[ev.GuildID]; ok && template != "" {
			greeting = strings.ReplaceAll(template, "{user}", ev.Mention)
		}
		if err := actuator.Send(ctx, ev.SystemChannelID, greeting); err != nil {
			d.logger.WithError(err).Warn("cant send welcome message")
		}
	}

	if policy.MemberRole != "" {
		if err := actuator.AddRole(ctx, ev.GuildID, ev.UserID, policy.MemberRole); err != nil {
			d.logger.WithError(err).WithField("user_id", ev.UserID).Warn("cant assign member role")
		}
	}
	return nil
}

// ProcessReaction maps configured emojis to roles, adding on react and
// removing on unreact.
func (d *Dispatcher) ProcessReaction(ctx context.Context, ev ReactionEvent) error {
	if ev.Bot {
		return nil
	}
	observability.RecordEvent("reaction")

	roleName, ok := d.s.GetPolicy().ReactionRoles[ev.Emoji]
	if !ok {
		return nil
	}
	actuator := d.s.GetActuator()

	if !ev.Added {
		return errors.WithMessage(actuator.RemoveRole(ctx, ev.GuildID, ev.UserID, roleName), "remove reaction role")
	}
	if err := actuator.AddRole(ctx, ev.GuildID, ev.UserID, roleName); err != nil {
		return errors.WithMessage(err, "add reaction role")
	}
	if err := actuator.Send(ctx, ev.ChannelID, fmt.Sprintf("%s got the role **%s**!", ev.Mention, roleName)); err != nil {
		d.logger.WithError(err).Warn("cant announce reaction role")
	}
	return nil
}

// ProcessEdit reports content edits to the moderation log channel.
func (d *Dispatcher) ProcessEdit(ctx context.Context, ev EditEvent) error {
	if ev.Bot || ev.Before == ev.After {
		return nil
	}
	observability.RecordEvent("edit")

	policy := d.s.GetPolicy()
	if policy.LogChannelID == "" {
		return nil
	}
	report := tool.ExecTemplate(
		"✏️ **Message Edited**\n**Author:** {{ .mention }}\n**Channel:** #{{ .channel }}\n**Before:** {{ .before }}\n**After:** {{ .after }}",
		map[string]any{
			"mention": ev.Mention,
			"channel": ev.ChannelName,
			"before":  ev.Before,
			"after":   ev.After,
		})
	return errors.WithMessage(d.s.GetActuator().Send(ctx, policy.LogChannelID, report), "report edit")
}
