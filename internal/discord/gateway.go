// Package discord is the transport glue: it parses guild messages into
// invocations, runs the dispatcher, and renders replies. No counter
// logic lives here.
package discord

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/bwmarrin/snowflake"
	"github.com/ovenlight/orderboard/internal/command"
	"github.com/ovenlight/orderboard/internal/config"
	"github.com/ovenlight/orderboard/internal/present"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const dispatchTimeout = 10 * time.Second

type Params struct {
	fx.In

	Cfg        config.Config
	Log        *zap.Logger
	Dispatcher *command.Dispatcher
}

type Gateway struct {
	session    *discordgo.Session
	dispatcher *command.Dispatcher
	prefix     string
	log        *zap.Logger
}

func New(p Params) (*Gateway, error) {
	if p.Cfg.BotToken == "" {
		return nil, errors.New("BOT_TOKEN is required")
	}

	session, err := discordgo.New("Bot " + p.Cfg.BotToken)
	if err != nil {
		return nil, err
	}
	session.Identify.Intents = discordgo.IntentGuilds |
		discordgo.IntentGuildMessages |
		discordgo.IntentGuildMembers |
		discordgo.IntentMessageContent
	session.StateEnabled = true

	g := &Gateway{
		session:    session,
		dispatcher: p.Dispatcher,
		prefix:     p.Cfg.CommandPrefix,
		log:        p.Log.Named("discord.gateway"),
	}
	session.AddHandler(g.onReady)
	session.AddHandler(g.onMessageCreate)
	return g, nil
}

func (g *Gateway) Open() error {
	return g.session.Open()
}

func (g *Gateway) Close() error {
	return g.session.Close()
}

func (g *Gateway) onReady(s *discordgo.Session, r *discordgo.Ready) {
	g.log.Info("gateway ready",
		zap.String("user", r.User.String()),
		zap.Int("guilds", len(r.Guilds)),
	)
}

func (g *Gateway) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}
	if !strings.HasPrefix(m.Content, g.prefix) {
		return
	}
	fields := strings.Fields(strings.TrimPrefix(m.Content, g.prefix))
	if len(fields) == 0 {
		return
	}

	inv := g.buildInvocation(s, m, fields)

	ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
	defer cancel()

	res, err := g.dispatcher.Dispatch(ctx, inv)
	if err != nil {
		g.log.Error("dispatch failed",
			zap.String("command", inv.Command),
			zap.String("guild_id", m.GuildID),
			zap.Error(err),
		)
		g.reply(m, present.RenderFailure())
		return
	}
	if res.Kind == command.KindUnknownCommand {
		return
	}
	g.reply(m, present.Render(g.prefix, res))
}

func (g *Gateway) buildInvocation(s *discordgo.Session, m *discordgo.MessageCreate, fields []string) command.Invocation {
	inv := command.Invocation{
		Command:    strings.ToLower(fields[0]),
		CallerName: callerDisplayName(m),
	}
	if id, err := snowflake.ParseString(m.GuildID); err == nil {
		inv.CommunityID = id
	}
	if id, err := snowflake.ParseString(m.Author.ID); err == nil {
		inv.CallerID = id
	}
	inv.CallerRoles = g.roleNames(s, m)

	for _, token := range fields[1:] {
		if id, ok := parseMention(token); ok {
			inv.Args = append(inv.Args, command.MemberArg(id, g.memberDisplayName(s, m.GuildID, id)))
			continue
		}
		inv.Args = append(inv.Args, command.TextArg(token))
	}
	return inv
}

// roleNames maps the author's role IDs to names via guild state.
func (g *Gateway) roleNames(s *discordgo.Session, m *discordgo.MessageCreate) []string {
	if m.Member == nil || m.GuildID == "" {
		return nil
	}
	guild, err := s.State.Guild(m.GuildID)
	if err != nil || guild == nil {
		return nil
	}
	byID := make(map[string]string, len(guild.Roles))
	for _, role := range guild.Roles {
		byID[role.ID] = role.Name
	}
	names := make([]string, 0, len(m.Member.Roles))
	for _, roleID := range m.Member.Roles {
		if name, ok := byID[roleID]; ok {
			names = append(names, name)
		}
	}
	return names
}

func (g *Gateway) memberDisplayName(s *discordgo.Session, guildID string, id snowflake.ID) string {
	member, err := s.State.Member(guildID, id.String())
	if err != nil || member == nil {
		member, err = s.GuildMember(guildID, id.String())
		if err != nil || member == nil {
			return "Unknown"
		}
	}
	return memberName(member)
}

func (g *Gateway) reply(m *discordgo.MessageCreate, msg present.Message) {
	if msg.Content == "" && msg.Embed == nil {
		return
	}
	send := &discordgo.MessageSend{
		Content:   msg.Content,
		Reference: m.Reference(),
		AllowedMentions: &discordgo.MessageAllowedMentions{
			RepliedUser: false,
		},
	}
	if msg.Embed != nil {
		send.Embeds = []*discordgo.MessageEmbed{{
			Title:       msg.Embed.Title,
			Description: msg.Embed.Description,
		}}
	}
	if _, err := g.session.ChannelMessageSendComplex(m.ChannelID, send); err != nil {
		g.log.Warn("reply failed",
			zap.String("channel_id", m.ChannelID),
			zap.Error(err),
		)
	}
}

// parseMention extracts the member ID from <@123> / <@!123> tokens.
func parseMention(token string) (snowflake.ID, bool) {
	if !strings.HasPrefix(token, "<@") || !strings.HasSuffix(token, ">") {
		return 0, false
	}
	raw := strings.TrimSuffix(strings.TrimPrefix(token, "<@"), ">")
	raw = strings.TrimPrefix(raw, "!")
	id, err := snowflake.ParseString(raw)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

func callerDisplayName(m *discordgo.MessageCreate) string {
	if m.Member != nil && m.Member.Nick != "" {
		return m.Member.Nick
	}
	return userName(m.Author)
}

func memberName(member *discordgo.Member) string {
	if member.Nick != "" {
		return member.Nick
	}
	return userName(member.User)
}

func userName(user *discordgo.User) string {
	if user == nil {
		return "Unknown"
	}
	if user.GlobalName != "" {
		return user.GlobalName
	}
	return user.Username
}

func registerHooks(lc fx.Lifecycle, g *Gateway, log *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			if err := g.Open(); err != nil {
				return err
			}
			log.Info("discord session opened")
			return nil
		},
		OnStop: func(context.Context) error {
			return g.Close()
		},
	})
}

var Module = fx.Module("discord.gateway",
	fx.Provide(New),
	fx.Invoke(registerHooks),
)
