package discordmcp

import (
	"context"
	"fmt"

	"github.com/jonwraymond/discordmcp/gateway"
)

// stubSession is an in-memory gateway.Session with call counters, used to
// observe caching behavior and to drive the transcoder without a network.
type stubSession struct {
	servers  []gateway.Server
	channels map[string][]gateway.Channel // serverID -> channels
	members  map[string][]gateway.Member  // serverID -> members
	users    map[string]gateway.User      // userID -> user
	history  map[string][]gateway.Message // channelID -> messages, newest first

	allChannelsCalls int
	channelsCalls    int
	fetchUserCalls   int
	membersCalls     int
}

func (s *stubSession) Servers() []gateway.Server { return s.servers }

func (s *stubSession) Channels(serverID string) ([]gateway.Channel, error) {
	s.channelsCalls++
	chans, ok := s.channels[serverID]
	if !ok {
		return nil, fmt.Errorf("list channels of server %s: %w", serverID, gateway.ErrNotFound)
	}
	return chans, nil
}

func (s *stubSession) AllChannels() []gateway.Channel {
	s.allChannelsCalls++
	var out []gateway.Channel
	for _, srv := range s.servers {
		out = append(out, s.channels[srv.ID]...)
	}
	return out
}

func (s *stubSession) Members(serverID string) ([]gateway.Member, error) {
	s.membersCalls++
	return s.members[serverID], nil
}

func (s *stubSession) FetchUser(_ context.Context, id string) (gateway.User, error) {
	s.fetchUserCalls++
	u, ok := s.users[id]
	if !ok {
		return gateway.User{}, fmt.Errorf("fetch user %s: %w", id, gateway.ErrNotFound)
	}
	return u, nil
}

func (s *stubSession) FetchChannel(_ context.Context, id string) (gateway.Channel, error) {
	for _, chans := range s.channels {
		for _, ch := range chans {
			if ch.ID == id {
				return ch, nil
			}
		}
	}
	return gateway.Channel{}, fmt.Errorf("fetch channel %s: %w", id, gateway.ErrNotFound)
}

func (s *stubSession) FetchMessage(_ context.Context, channelID, messageID string) (gateway.Message, error) {
	for _, m := range s.history[channelID] {
		if m.ID == messageID {
			return m, nil
		}
	}
	return gateway.Message{}, fmt.Errorf("fetch message %s: %w", messageID, gateway.ErrNotFound)
}

func (s *stubSession) History(_ context.Context, channelID string, limit int) ([]gateway.Message, error) {
	msgs := s.history[channelID]
	if len(msgs) > limit {
		msgs = msgs[:limit]
	}
	return msgs, nil
}

func (s *stubSession) SendMessage(_ context.Context, channelID, content string) (gateway.Message, error) {
	return gateway.Message{ID: "900000000000000001", ChannelID: channelID, Content: content}, nil
}

func (s *stubSession) SendDirectMessage(_ context.Context, userID, content string) (gateway.Message, error) {
	return gateway.Message{ID: "900000000000000002", Content: content}, nil
}

func (s *stubSession) EditMessage(context.Context, string, string, string) error { return nil }

func (s *stubSession) DeleteMessage(context.Context, string, string) error { return nil }

func (s *stubSession) AddReaction(context.Context, string, string, string) error { return nil }

// twoServerSession builds a session with a channel name collision across
// servers: #general exists in both Alpha and Beta, #random only in Alpha.
func twoServerSession() *stubSession {
	return &stubSession{
		servers: []gateway.Server{
			{ID: "100000000000000001", Name: "Alpha", MemberCount: 10},
			{ID: "100000000000000002", Name: "Beta", MemberCount: 20},
		},
		channels: map[string][]gateway.Channel{
			"100000000000000001": {
				{ID: "200000000000000001", Name: "general", Kind: gateway.ChannelText, ServerID: "100000000000000001", ServerName: "Alpha"},
				{ID: "200000000000000002", Name: "random", Kind: gateway.ChannelText, ServerID: "100000000000000001", ServerName: "Alpha"},
				{ID: "200000000000000003", Name: "lounge", Kind: gateway.ChannelVoice, ServerID: "100000000000000001", ServerName: "Alpha"},
			},
			"100000000000000002": {
				{ID: "200000000000000004", Name: "general", Kind: gateway.ChannelText, ServerID: "100000000000000002", ServerName: "Beta"},
			},
		},
		members: map[string][]gateway.Member{
			"100000000000000001": {
				{ID: "111111111111111111", Handle: "alice", DisplayName: "Alice"},
				{ID: "111111111111111112", Handle: "bob"},
			},
			"100000000000000002": {
				{ID: "111111111111111113", Handle: "carol", DisplayName: "Carol C"},
			},
		},
		users: map[string]gateway.User{
			"111111111111111111": {ID: "111111111111111111", Handle: "alice", DisplayName: "Alice"},
			"111111111111111112": {ID: "111111111111111112", Handle: "bob"},
			"111111111111111113": {ID: "111111111111111113", Handle: "carol", DisplayName: "Carol C"},
		},
		history: map[string][]gateway.Message{},
	}
}
