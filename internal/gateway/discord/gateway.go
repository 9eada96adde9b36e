package discord

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/qubitbot/qubit/internal/bot"
	"github.com/qubitbot/qubit/internal/infra"
)

// Gateway adapts a discordgo session to the core's Actuator and Inspector
// interfaces and feeds session events into the dispatcher. It is the only
// package that knows the wire platform is Discord.
type Gateway struct {
	session    *discordgo.Session
	dispatcher *bot.Dispatcher
	logger     *log.Entry

	mu         sync.Mutex
	runtimeCtx context.Context
	cancel     context.CancelFunc
}

func New(token string) (*Gateway, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, errors.WithMessage(err, "create session")
	}
	session.Identify.Intents = discordgo.IntentsAll
	session.State.MaxMessageCount = 1000
	// Handlers run inline on the event pump so events for the same user are
	// dispatched in arrival order. Nothing in the handlers blocks; timed
	// waits go through the scheduler.
	session.SyncEvents = true

	return &Gateway{
		session: session,
		logger:  log.WithField("context", "discord_gateway"),
	}, nil
}

// AttachDispatcher registers the session event handlers. Must be called
// before Start.
func (g *Gateway) AttachDispatcher(dispatcher *bot.Dispatcher) {
	g.dispatcher = dispatcher
	g.session.AddHandler(g.onMessageCreate)
	g.session.AddHandler(g.onMessageUpdate)
	g.session.AddHandler(g.onGuildMemberAdd)
	g.session.AddHandler(g.onReactionAdd)
	g.session.AddHandler(g.onReactionRemove)
	g.session.AddHandler(func(_ *discordgo.Session, r *discordgo.Ready) {
		g.logger.WithField("bot_user", r.User.Username).Info("logged in")
	})
}

func (g *Gateway) Start(ctx context.Context) error {
	g.mu.Lock()
	g.runtimeCtx, g.cancel = context.WithCancel(ctx)
	g.mu.Unlock()
	return errors.WithMessage(g.session.Open(), "open session")
}

func (g *Gateway) Stop(_ context.Context) error {
	g.mu.Lock()
	if g.cancel != nil {
		g.cancel()
	}
	g.mu.Unlock()
	return errors.WithMessage(g.session.Close(), "close session")
}

func (g *Gateway) ctx() context.Context {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.runtimeCtx != nil {
		return g.runtimeCtx
	}
	return context.Background()
}

func (g *Gateway) onMessageCreate(_ *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil {
		return
	}
	// A panicking handler must not take the session event pump with it.
	infra.GoRecoverable(0, "on_message_create", func() {
		ev := bot.MessageEvent{
			MessageID:   m.ID,
			GuildID:     m.GuildID,
			ChannelID:   m.ChannelID,
			ChannelName: g.channelName(m.ChannelID),
			UserID:      parseID(m.Author.ID),
			UserName:    m.Author.Username,
			Mention:     m.Author.Mention(),
			Content:     m.Content,
			Link:        messageLink(m.GuildID, m.ChannelID, m.ID),
			Timestamp:   m.Timestamp,
			Bot:         m.Author.Bot,
		}
		if err := g.dispatcher.ProcessMessage(g.ctx(), ev); err != nil {
			g.logger.WithError(err).Error("cant process message")
		}
	})
}

func (g *Gateway) onMessageUpdate(_ *discordgo.Session, m *discordgo.MessageUpdate) {
	if m.Author == nil {
		return
	}
	infra.GoRecoverable(0, "on_message_update", func() {
		before := ""
		if m.BeforeUpdate != nil {
			before = m.BeforeUpdate.Content
		}
		ev := bot.EditEvent{
			GuildID:     m.GuildID,
			ChannelID:   m.ChannelID,
			ChannelName: g.channelName(m.ChannelID),
			UserID:      parseID(m.Author.ID),
			Mention:     m.Author.Mention(),
			Before:      before,
			After:       m.Content,
			Bot:         m.Author.Bot,
		}
		if err := g.dispatcher.ProcessEdit(g.ctx(), ev); err != nil {
			g.logger.WithError(err).Error("cant process edit")
		}
	})
}

func (g *Gateway) onGuildMemberAdd(_ *discordgo.Session, m *discordgo.GuildMemberAdd) {
	if m.User == nil {
		return
	}
	infra.GoRecoverable(0, "on_guild_member_add", func() {
		guildName, systemChannelID := g.guildMeta(m.GuildID)
		ev := bot.JoinEvent{
			GuildID:         m.GuildID,
			GuildName:       guildName,
			SystemChannelID: systemChannelID,
			UserID:          parseID(m.User.ID),
			Mention:         m.User.Mention(),
			Bot:             m.User.Bot,
		}
		if err := g.dispatcher.ProcessJoin(g.ctx(), ev); err != nil {
			g.logger.WithError(err).Error("cant process join")
		}
	})
}

func (g *Gateway) onReactionAdd(s *discordgo.Session, m *discordgo.MessageReactionAdd) {
	g.handleReaction(s, m.MessageReaction, true)
}

func (g *Gateway) onReactionRemove(s *discordgo.Session, m *discordgo.MessageReactionRemove) {
	g.handleReaction(s, m.MessageReaction, false)
}

func (g *Gateway) handleReaction(_ *discordgo.Session, reaction *discordgo.MessageReaction, added bool) {
	if reaction == nil || reaction.GuildID == "" {
		return
	}
	infra.GoRecoverable(0, "on_reaction", func() {
		ev := bot.ReactionEvent{
			GuildID:   reaction.GuildID,
			ChannelID: reaction.ChannelID,
			UserID:    parseID(reaction.UserID),
			Mention:   "<@" + reaction.UserID + ">",
			Emoji:     reaction.Emoji.Name,
			Added:     added,
			Bot:       g.isBot(reaction.GuildID, reaction.UserID),
		}
		if err := g.dispatcher.ProcessReaction(g.ctx(), ev); err != nil {
			g.logger.WithError(err).Error("cant process reaction")
		}
	})
}

func (g *Gateway) channelName(channelID string) string {
	if channel, err := g.session.State.Channel(channelID); err == nil {
		return channel.Name
	}
	channel, err := g.session.Channel(channelID)
	if err != nil {
		g.logger.WithError(err).WithField("channel_id", channelID).Debug("cant resolve channel name")
		return ""
	}
	return channel.Name
}

func (g *Gateway) guildMeta(guildID string) (name, systemChannelID string) {
	if guild, err := g.session.State.Guild(guildID); err == nil {
		return guild.Name, guild.SystemChannelID
	}
	guild, err := g.session.Guild(guildID)
	if err != nil {
		g.logger.WithError(err).WithField("guild_id", guildID).Debug("cant resolve guild")
		return "", ""
	}
	return guild.Name, guild.SystemChannelID
}

func (g *Gateway) isBot(guildID, userID string) bool {
	if member, err := g.session.State.Member(guildID, userID); err == nil && member.User != nil {
		return member.User.Bot
	}
	member, err := g.session.GuildMember(guildID, userID)
	if err != nil || member.User == nil {
		return false
	}
	return member.User.Bot
}

func parseID(id string) int64 {
	parsed, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return 0
	}
	return parsed
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func messageLink(guildID, channelID, messageID string) string {
	return "https://discord.com/channels/" + guildID + "/" + channelID + "/" + messageID
}

func snowflakeTime(id string) time.Time {
	ts, err := discordgo.SnowflakeTimestamp(id)
	if err != nil {
		return time.Time{}
	}
	return ts
}
