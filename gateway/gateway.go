// Package gateway defines the read-only session snapshot and messaging
// operations the resolution engine and MCP tools consume, plus the
// discordgo-backed implementation that maintains the live connection.
//
// The Session interface is the seam between the engine and Discord: the
// engine treats the session's live data as ground truth and never caches
// anything the session can answer authoritatively. Tests swap in stub
// sessions; production wires in Discord via Dial.
package gateway

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by fetch operations when the platform reports
// that no entity with the given ID exists (or the bot cannot see it).
// Use errors.Is() to distinguish it from transient errors.
var ErrNotFound = errors.New("entity not found")

// ChannelKind tags a channel with its messaging capability.
type ChannelKind string

const (
	ChannelText  ChannelKind = "text"
	ChannelVoice ChannelKind = "voice"
	ChannelForum ChannelKind = "forum"
	ChannelOther ChannelKind = "other"
)

// Server is a guild the bot can see.
type Server struct {
	ID          string
	Name        string
	MemberCount int
}

// Channel is a single channel within a server. ServerName is carried
// alongside ServerID so disambiguation messages can name the owning
// server without another lookup.
type Channel struct {
	ID         string
	Name       string
	Kind       ChannelKind
	Topic      string
	ServerID   string
	ServerName string
}

// Member is a user as seen through a server's member list.
type Member struct {
	ID          string
	Handle      string // unique account name
	DisplayName string // optional global display name
}

// User is a directly fetched user.
type User struct {
	ID          string
	Handle      string
	DisplayName string
}

// Message is a single channel or DM message.
type Message struct {
	ID           string
	ChannelID    string
	AuthorHandle string
	Content      string
	Timestamp    time.Time
}

// Session exposes the live gateway state and the messaging operations the
// tools need. Listing methods read the session cache and do not block on
// the network; Fetch*, History and the send/edit/delete/react operations
// may perform a network round trip and honor ctx.
type Session interface {
	// Servers returns every server visible to the session.
	Servers() []Server

	// Channels returns the channels of one server.
	Channels(serverID string) ([]Channel, error)

	// AllChannels returns every channel across all visible servers.
	AllChannels() []Channel

	// Members returns the member list of one server.
	Members(serverID string) ([]Member, error)

	// FetchUser fetches a user by ID. Returns ErrNotFound if the platform
	// reports no such user.
	FetchUser(ctx context.Context, id string) (User, error)

	// FetchChannel fetches a channel by ID. Returns ErrNotFound if the
	// platform reports no such channel.
	FetchChannel(ctx context.Context, id string) (Channel, error)

	// FetchMessage fetches a single message from a channel. Returns
	// ErrNotFound if the message does not exist in that channel or the
	// bot cannot read it.
	FetchMessage(ctx context.Context, channelID, messageID string) (Message, error)

	// History returns up to limit messages from a channel, newest first.
	History(ctx context.Context, channelID string, limit int) ([]Message, error)

	// SendMessage posts content to a channel.
	SendMessage(ctx context.Context, channelID, content string) (Message, error)

	// SendDirectMessage opens (or reuses) a DM channel with a user and
	// posts content to it.
	SendDirectMessage(ctx context.Context, userID, content string) (Message, error)

	// EditMessage replaces the content of an existing message.
	EditMessage(ctx context.Context, channelID, messageID, content string) error

	// DeleteMessage removes a message.
	DeleteMessage(ctx context.Context, channelID, messageID string) error

	// AddReaction adds an emoji reaction to a message. The platform may
	// reject invalid emoji tokens or missing permissions.
	AddReaction(ctx context.Context, channelID, messageID, emoji string) error
}
