package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/bwmarrin/discordgo"
)

// memberPageSize is the maximum page size Discord allows for member listing.
const memberPageSize = 1000

// Discord implements Session on top of a discordgo gateway connection.
// Listing methods read discordgo's state cache; fetch and write operations
// go through the REST API with the caller's context attached.
type Discord struct {
	s *discordgo.Session
}

// Dial creates a Discord session for the given bot token. The session is
// configured but not connected; call Open to establish the gateway
// connection.
func Dial(token string) (*Discord, error) {
	if token == "" {
		return nil, errors.New("gateway: empty bot token")
	}
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("gateway: create session: %w", err)
	}
	s.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildMessages |
		discordgo.IntentMessageContent
	s.StateEnabled = true
	return &Discord{s: s}, nil
}

// Open connects to the gateway and blocks until the session is ready or
// ctx is done.
func (d *Discord) Open(ctx context.Context) error {
	ready := make(chan struct{})
	d.s.AddHandlerOnce(func(_ *discordgo.Session, _ *discordgo.Ready) {
		close(ready)
	})
	if err := d.s.Open(); err != nil {
		return fmt.Errorf("gateway: open: %w", err)
	}
	select {
	case <-ready:
		return nil
	case <-ctx.Done():
		d.s.Close()
		return ctx.Err()
	}
}

// Close tears down the gateway connection.
func (d *Discord) Close() error {
	return d.s.Close()
}

// Me returns the bot's own account name, for startup logging.
func (d *Discord) Me() string {
	if u := d.s.State.User; u != nil {
		return u.Username
	}
	return ""
}

func (d *Discord) Servers() []Server {
	guilds := d.s.State.Guilds
	out := make([]Server, 0, len(guilds))
	for _, g := range guilds {
		out = append(out, Server{ID: g.ID, Name: g.Name, MemberCount: g.MemberCount})
	}
	return out
}

func (d *Discord) Channels(serverID string) ([]Channel, error) {
	g, err := d.s.State.Guild(serverID)
	if err == nil && len(g.Channels) > 0 {
		out := make([]Channel, 0, len(g.Channels))
		for _, ch := range g.Channels {
			out = append(out, d.toChannel(ch))
		}
		return out, nil
	}
	chans, err := d.s.GuildChannels(serverID)
	if err != nil {
		return nil, mapRESTError(fmt.Sprintf("list channels of server %s", serverID), err)
	}
	out := make([]Channel, 0, len(chans))
	for _, ch := range chans {
		out = append(out, d.toChannel(ch))
	}
	return out, nil
}

func (d *Discord) AllChannels() []Channel {
	var out []Channel
	for _, g := range d.s.State.Guilds {
		for _, ch := range g.Channels {
			out = append(out, d.toChannel(ch))
		}
	}
	return out
}

func (d *Discord) Members(serverID string) ([]Member, error) {
	if g, err := d.s.State.Guild(serverID); err == nil && len(g.Members) > 0 {
		out := make([]Member, 0, len(g.Members))
		for _, m := range g.Members {
			out = append(out, toMember(m))
		}
		return out, nil
	}

	// State chunking has not filled this guild; page through the REST API.
	var out []Member
	after := ""
	for {
		page, err := d.s.GuildMembers(serverID, after, memberPageSize)
		if err != nil {
			return nil, mapRESTError(fmt.Sprintf("list members of server %s", serverID), err)
		}
		for _, m := range page {
			out = append(out, toMember(m))
		}
		if len(page) < memberPageSize {
			return out, nil
		}
		after = page[len(page)-1].User.ID
	}
}

func (d *Discord) FetchUser(ctx context.Context, id string) (User, error) {
	u, err := d.s.User(id, discordgo.WithContext(ctx))
	if err != nil {
		return User{}, mapRESTError("fetch user "+id, err)
	}
	return User{ID: u.ID, Handle: u.Username, DisplayName: u.GlobalName}, nil
}

func (d *Discord) FetchChannel(ctx context.Context, id string) (Channel, error) {
	if ch, err := d.s.State.Channel(id); err == nil {
		return d.toChannel(ch), nil
	}
	ch, err := d.s.Channel(id, discordgo.WithContext(ctx))
	if err != nil {
		return Channel{}, mapRESTError("fetch channel "+id, err)
	}
	return d.toChannel(ch), nil
}

func (d *Discord) FetchMessage(ctx context.Context, channelID, messageID string) (Message, error) {
	m, err := d.s.ChannelMessage(channelID, messageID, discordgo.WithContext(ctx))
	if err != nil {
		return Message{}, mapRESTError("fetch message "+messageID, err)
	}
	return toMessage(m), nil
}

// historyPageSize is the maximum page size Discord allows for message
// history.
const historyPageSize = 100

func (d *Discord) History(ctx context.Context, channelID string, limit int) ([]Message, error) {
	out := make([]Message, 0, limit)
	before := ""
	for len(out) < limit {
		page := limit - len(out)
		if page > historyPageSize {
			page = historyPageSize
		}
		msgs, err := d.s.ChannelMessages(channelID, page, before, "", "", discordgo.WithContext(ctx))
		if err != nil {
			return nil, mapRESTError("read history of channel "+channelID, err)
		}
		for _, m := range msgs {
			out = append(out, toMessage(m))
		}
		if len(msgs) < page {
			break
		}
		before = msgs[len(msgs)-1].ID
	}
	return out, nil
}

func (d *Discord) SendMessage(ctx context.Context, channelID, content string) (Message, error) {
	m, err := d.s.ChannelMessageSend(channelID, content, discordgo.WithContext(ctx))
	if err != nil {
		return Message{}, mapRESTError("send to channel "+channelID, err)
	}
	return toMessage(m), nil
}

func (d *Discord) SendDirectMessage(ctx context.Context, userID, content string) (Message, error) {
	ch, err := d.s.UserChannelCreate(userID, discordgo.WithContext(ctx))
	if err != nil {
		return Message{}, mapRESTError("open DM with user "+userID, err)
	}
	m, err := d.s.ChannelMessageSend(ch.ID, content, discordgo.WithContext(ctx))
	if err != nil {
		return Message{}, mapRESTError("send DM to user "+userID, err)
	}
	return toMessage(m), nil
}

func (d *Discord) EditMessage(ctx context.Context, channelID, messageID, content string) error {
	_, err := d.s.ChannelMessageEdit(channelID, messageID, content, discordgo.WithContext(ctx))
	if err != nil {
		return mapRESTError("edit message "+messageID, err)
	}
	return nil
}

func (d *Discord) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	if err := d.s.ChannelMessageDelete(channelID, messageID, discordgo.WithContext(ctx)); err != nil {
		return mapRESTError("delete message "+messageID, err)
	}
	return nil
}

func (d *Discord) AddReaction(ctx context.Context, channelID, messageID, emoji string) error {
	if err := d.s.MessageReactionAdd(channelID, messageID, emoji, discordgo.WithContext(ctx)); err != nil {
		return mapRESTError("add reaction to message "+messageID, err)
	}
	return nil
}

func (d *Discord) toChannel(ch *discordgo.Channel) Channel {
	out := Channel{
		ID:       ch.ID,
		Name:     ch.Name,
		Kind:     channelKind(ch.Type),
		Topic:    ch.Topic,
		ServerID: ch.GuildID,
	}
	if g, err := d.s.State.Guild(ch.GuildID); err == nil {
		out.ServerName = g.Name
	}
	return out
}

func channelKind(t discordgo.ChannelType) ChannelKind {
	switch t {
	case discordgo.ChannelTypeGuildText:
		return ChannelText
	case discordgo.ChannelTypeGuildVoice, discordgo.ChannelTypeGuildStageVoice:
		return ChannelVoice
	case discordgo.ChannelTypeGuildForum:
		return ChannelForum
	default:
		return ChannelOther
	}
}

func toMember(m *discordgo.Member) Member {
	out := Member{}
	if m.User != nil {
		out.ID = m.User.ID
		out.Handle = m.User.Username
		out.DisplayName = m.User.GlobalName
	}
	return out
}

func toMessage(m *discordgo.Message) Message {
	out := Message{
		ID:        m.ID,
		ChannelID: m.ChannelID,
		Content:   m.Content,
		Timestamp: m.Timestamp,
	}
	if m.Author != nil {
		out.AuthorHandle = m.Author.Username
	}
	return out
}

// mapRESTError wraps a discordgo error, converting HTTP 404 into
// ErrNotFound so callers can distinguish absence from transient failure.
func mapRESTError(op string, err error) error {
	var re *discordgo.RESTError
	if errors.As(err, &re) && re.Response != nil && re.Response.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return fmt.Errorf("%s: %w", op, err)
}
