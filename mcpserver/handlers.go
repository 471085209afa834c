package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/jonwraymond/discordmcp"
	"github.com/jonwraymond/discordmcp/gateway"
)

// Limits for the history-reading tools.
const (
	defaultReadLimit   = 50
	maxReadLimit       = 100
	defaultSearchLimit = 100
	maxSearchLimit     = 500
)

type sendMessageArgs struct {
	Message string `json:"message"`
	Target  string `json:"target"`
}

type editMessageArgs struct {
	MessageID string `json:"message_id"`
	Message   string `json:"message,omitempty"`
}

type readMessagesArgs struct {
	Channel string `json:"channel"`
	Limit   int    `json:"limit,omitempty"`
}

type listServersArgs struct{}

type listChannelsArgs struct {
	Server string `json:"server"`
}

type searchMessagesArgs struct {
	Channel string `json:"channel"`
	Query   string `json:"query"`
	Limit   int    `json:"limit,omitempty"`
}

type addReactionArgs struct {
	MessageID string `json:"message_id"`
	Emoji     string `json:"emoji"`
}

// resolveTargetChannel parses a possibly scoped channel reference and
// resolves it to a text channel.
func (s *Server) resolveTargetChannel(ctx context.Context, raw string) (gateway.Channel, error) {
	spec := discordmcp.ParseTarget(raw)
	var scope *gateway.Server
	if spec.Scoped() {
		srv, err := s.resolver.ResolveServer(spec.Scope)
		if err != nil {
			return gateway.Channel{}, err
		}
		scope = &srv
	}
	return s.resolver.ResolveChannel(ctx, spec.Ref, scope)
}

func (s *Server) sendMessage(ctx context.Context, in sendMessageArgs) (string, error) {
	if strings.TrimSpace(in.Target) == "" {
		return "", &discordmcp.ValidationError{Input: in.Target, Reason: "a target channel or user is required"}
	}

	spec := discordmcp.ParseTarget(in.Target)
	var scope *gateway.Server
	if spec.Scoped() {
		srv, err := s.resolver.ResolveServer(spec.Scope)
		if err != nil {
			return "", err
		}
		scope = &srv
	}

	ch, chErr := s.resolver.ResolveChannel(ctx, spec.Ref, scope)
	if chErr == nil {
		owner := gateway.Server{ID: ch.ServerID, Name: ch.ServerName}
		content := s.transcoder.Encode(ctx, in.Message, &owner)
		sent, err := s.session.SendMessage(ctx, ch.ID, content)
		if err != nil {
			return "", &discordmcp.RemoteError{Op: "send to #" + ch.Name, Err: err}
		}
		return fmt.Sprintf("Message sent to #%s in %s (message ID: %s)", ch.Name, ch.ServerName, sent.ID), nil
	}

	// An ambiguous channel name is not evidence the target is a user, and
	// neither is a transient failure; only NotFound falls through to DM.
	if !errors.Is(chErr, discordmcp.ErrNotFound) {
		return "", chErr
	}

	user, userErr := s.resolver.ResolveUser(ctx, spec.Ref)
	if userErr == nil {
		content := s.transcoder.Encode(ctx, in.Message, nil)
		sent, err := s.session.SendDirectMessage(ctx, user.ID, content)
		if err != nil {
			return "", &discordmcp.RemoteError{Op: "send DM to " + user.Handle, Err: err}
		}
		return fmt.Sprintf("DM sent to %s (message ID: %s)", user.Handle, sent.ID), nil
	}

	return "", fmt.Errorf("could not find a channel or user matching '%s'.\n\nChannel lookup failed: %v\n\nUser lookup failed: %v",
		in.Target, chErr, userErr)
}

func (s *Server) editMessage(ctx context.Context, in editMessageArgs) (string, error) {
	if !discordmcp.IsSnowflake(in.MessageID) {
		return "", &discordmcp.ValidationError{
			Input:  in.MessageID,
			Reason: "message IDs must be 17-20 digit numbers",
		}
	}

	msg, ch, err := s.findMessage(ctx, in.MessageID)
	if err != nil {
		return "", err
	}

	// Blank content means delete, per the tool contract.
	if strings.TrimSpace(in.Message) == "" {
		if err := s.session.DeleteMessage(ctx, ch.ID, msg.ID); err != nil {
			return "", &discordmcp.RemoteError{Op: "delete message " + msg.ID, Err: err}
		}
		return fmt.Sprintf("Message %s deleted from #%s", msg.ID, ch.Name), nil
	}

	owner := gateway.Server{ID: ch.ServerID, Name: ch.ServerName}
	content := s.transcoder.Encode(ctx, in.Message, &owner)
	if err := s.session.EditMessage(ctx, ch.ID, msg.ID, content); err != nil {
		return "", &discordmcp.RemoteError{Op: "edit message " + msg.ID, Err: err}
	}
	return fmt.Sprintf("Message %s edited in #%s", msg.ID, ch.Name), nil
}

func (s *Server) readMessages(ctx context.Context, in readMessagesArgs) (string, error) {
	limit := clampLimit(in.Limit, defaultReadLimit, maxReadLimit)

	ch, err := s.resolveTargetChannel(ctx, in.Channel)
	if err != nil {
		return "", err
	}

	msgs, err := s.session.History(ctx, ch.ID, limit)
	if err != nil {
		return "", &discordmcp.RemoteError{Op: "read history of #" + ch.Name, Err: err}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Channel: #%s (ID: %s)\n", ch.Name, ch.ID)
	fmt.Fprintf(&b, "Type: %s\n", ch.Kind)
	if ch.Topic != "" {
		fmt.Fprintf(&b, "Topic: %s\n", ch.Topic)
	}
	fmt.Fprintf(&b, "Server: %s\n\n", ch.ServerName)
	b.WriteString(strings.Repeat("=", 50) + "\n\n")
	b.WriteString(strings.Join(s.formatHistory(ctx, msgs), "\n"))
	return b.String(), nil
}

func (s *Server) listServers(_ context.Context, _ listServersArgs) (string, error) {
	servers := s.session.Servers()
	var b strings.Builder
	fmt.Fprintf(&b, "Connected to %d servers:\n\n", len(servers))
	for _, srv := range servers {
		fmt.Fprintf(&b, "• %s\n  ID: %s\n  Members: %d\n\n", srv.Name, srv.ID, srv.MemberCount)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func (s *Server) listChannels(ctx context.Context, in listChannelsArgs) (string, error) {
	srv, err := s.resolver.ResolveServer(in.Server)
	if err != nil {
		return "", err
	}

	channels, err := s.session.Channels(srv.ID)
	if err != nil {
		return "", &discordmcp.RemoteError{Op: "list channels of " + srv.Name, Err: err}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Channels in %s:\n\n", srv.Name)
	for _, ch := range channels {
		switch ch.Kind {
		case gateway.ChannelText:
			fmt.Fprintf(&b, "  • #%s (text) - ID: %s\n", ch.Name, ch.ID)
		case gateway.ChannelVoice:
			fmt.Fprintf(&b, "  • %s (voice) - ID: %s\n", ch.Name, ch.ID)
		case gateway.ChannelForum:
			fmt.Fprintf(&b, "  • %s (forum) - ID: %s\n", ch.Name, ch.ID)
		}
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func (s *Server) searchMessages(ctx context.Context, in searchMessagesArgs) (string, error) {
	if in.Query == "" {
		return "", &discordmcp.ValidationError{Input: in.Query, Reason: "a search query is required"}
	}
	limit := clampLimit(in.Limit, defaultSearchLimit, maxSearchLimit)

	ch, err := s.resolveTargetChannel(ctx, in.Channel)
	if err != nil {
		return "", err
	}

	msgs, err := s.session.History(ctx, ch.ID, limit)
	if err != nil {
		return "", &discordmcp.RemoteError{Op: "read history of #" + ch.Name, Err: err}
	}

	query := strings.ToLower(in.Query)
	var hits []gateway.Message
	for _, m := range msgs {
		if strings.Contains(strings.ToLower(m.Content), query) {
			hits = append(hits, m)
		}
	}

	if len(hits) == 0 {
		return fmt.Sprintf("No messages found containing '%s' in #%s", in.Query, ch.Name), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d messages containing '%s' in #%s:\n\n", len(hits), in.Query, ch.Name)
	b.WriteString(strings.Join(s.formatHistory(ctx, hits), "\n"))
	return b.String(), nil
}

func (s *Server) addReaction(ctx context.Context, in addReactionArgs) (string, error) {
	if !discordmcp.IsSnowflake(in.MessageID) {
		return "", &discordmcp.ValidationError{
			Input:  in.MessageID,
			Reason: "message IDs must be 17-20 digit numbers",
		}
	}

	msg, ch, err := s.findMessage(ctx, in.MessageID)
	if err != nil {
		return "", err
	}

	if err := s.session.AddReaction(ctx, ch.ID, msg.ID, in.Emoji); err != nil {
		return "", &discordmcp.RemoteError{
			Op:  fmt.Sprintf("add reaction '%s' (the emoji may be invalid or the bot may lack permission to react)", in.Emoji),
			Err: err,
		}
	}
	return fmt.Sprintf("Added reaction %s to message %s in #%s", in.Emoji, msg.ID, ch.Name), nil
}

// findMessage locates a message by ID with a linear scan over every text
// channel of every visible server, stopping at the first hit. Both
// edit_message and add_reaction share this scan.
func (s *Server) findMessage(ctx context.Context, messageID string) (gateway.Message, gateway.Channel, error) {
	for _, srv := range s.session.Servers() {
		channels, err := s.session.Channels(srv.ID)
		if err != nil {
			continue
		}
		for _, ch := range channels {
			if ch.Kind != gateway.ChannelText {
				continue
			}
			msg, err := s.session.FetchMessage(ctx, ch.ID, messageID)
			if err == nil {
				return msg, ch, nil
			}
		}
	}
	return gateway.Message{}, gateway.Channel{}, &discordmcp.NotFoundError{
		Kind:  discordmcp.KindMessage,
		Input: messageID,
		Hint:  "The message may have been deleted, or the bot doesn't have access to the channel containing it.",
	}
}

// formatHistory renders messages oldest-first with humanized mentions.
// History arrives newest-first from the gateway, so the rendered lines are
// reversed.
func (s *Server) formatHistory(ctx context.Context, msgs []gateway.Message) []string {
	lines := make([]string, 0, len(msgs))
	for _, m := range msgs {
		content := s.transcoder.Humanize(ctx, m.Content)
		lines = append(lines, fmt.Sprintf("[%s] %s: %s\n  (ID: %s)\n",
			m.Timestamp.Format("2006-01-02 15:04:05"), m.AuthorHandle, content, m.ID))
	}
	slices.Reverse(lines)
	return lines
}

// clampLimit applies the default for unset limits and the tool's maximum
// for oversized ones.
func clampLimit(limit, def, max int) int {
	if limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}
