package discordmcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/jonwraymond/discordmcp/gateway"
)

// Resolver maps user-supplied names, @mentions and snowflake IDs to
// concrete gateway handles. Resolution always prefers exact, low-ambiguity
// paths (ID over unique name) and only escalates to asking the caller for
// more specificity when genuinely ambiguous — it never guesses.
//
// The resolver holds a ResolutionCache of successful name lookups; the
// gateway session remains ground truth and every cache hit is re-validated
// against it before use.
type Resolver struct {
	session gateway.Session
	cache   *ResolutionCache
}

// NewResolver creates a resolver over the given session with an empty
// cache.
func NewResolver(session gateway.Session) *Resolver {
	return &Resolver{session: session, cache: NewResolutionCache()}
}

// ResolveServer converts a server name or ID to a live server handle.
func (r *Resolver) ResolveServer(input string) (gateway.Server, error) {
	servers := r.session.Servers()

	if IsSnowflake(input) {
		for _, s := range servers {
			if s.ID == input {
				return s, nil
			}
		}
		return gateway.Server{}, &NotFoundError{
			Kind:  KindServer,
			Input: input,
			Hint:  "No server with this ID exists.",
		}
	}

	if id, ok := r.cache.Get(KindServer, ScopeGlobal, input); ok {
		for _, s := range servers {
			if s.ID == id {
				return s, nil
			}
		}
		r.cache.Drop(KindServer, ScopeGlobal, input)
	}

	for _, s := range servers {
		if strings.EqualFold(s.Name, input) {
			r.cache.Put(KindServer, ScopeGlobal, input, s.ID)
			return s, nil
		}
	}

	var b strings.Builder
	b.WriteString("Available servers:\n")
	for _, s := range servers {
		fmt.Fprintf(&b, "  • %s\n", s.Name)
	}
	b.WriteString("Use the exact server name, or the list_servers tool to see all servers with IDs.")
	return gateway.Server{}, &NotFoundError{Kind: KindServer, Input: input, Hint: b.String()}
}

// ResolveChannel converts a channel name or ID to a live text channel
// handle. When scope is non-nil the search is confined to that server;
// otherwise every visible server's channels are candidates and an exact
// name shared by several servers is reported as ambiguous rather than
// guessed at.
func (r *Resolver) ResolveChannel(ctx context.Context, input string, scope *gateway.Server) (gateway.Channel, error) {
	if IsSnowflake(input) {
		ch, err := r.session.FetchChannel(ctx, input)
		if errors.Is(err, gateway.ErrNotFound) {
			return gateway.Channel{}, &NotFoundError{
				Kind:  KindChannel,
				Input: input,
				Hint:  "No channel with this ID exists.",
			}
		}
		if err != nil {
			return gateway.Channel{}, &RemoteError{Op: "fetch channel " + input, Err: err}
		}
		if ch.Kind != gateway.ChannelText {
			return gateway.Channel{}, &NotFoundError{
				Kind:  KindChannel,
				Input: input,
				Hint:  fmt.Sprintf("The ID is valid but refers to a %s channel, not a text channel.", ch.Kind),
			}
		}
		return ch, nil
	}

	scopeKey := ScopeGlobal
	if scope != nil {
		scopeKey = scope.ID
	}

	if id, ok := r.cache.Get(KindChannel, scopeKey, input); ok {
		ch, err := r.session.FetchChannel(ctx, id)
		if err == nil && ch.Kind == gateway.ChannelText {
			return ch, nil
		}
		r.cache.Drop(KindChannel, scopeKey, input)
	}

	var pool []gateway.Channel
	if scope != nil {
		channels, err := r.session.Channels(scope.ID)
		if err != nil {
			return gateway.Channel{}, &RemoteError{Op: "list channels of " + scope.Name, Err: err}
		}
		pool = channels
	} else {
		pool = r.session.AllChannels()
	}

	var matches []gateway.Channel
	for _, ch := range pool {
		if ch.Kind == gateway.ChannelText && strings.EqualFold(ch.Name, input) {
			matches = append(matches, ch)
		}
	}

	switch len(matches) {
	case 0:
		return gateway.Channel{}, &NotFoundError{
			Kind:  KindChannel,
			Input: input,
			Hint:  channelNotFoundHint(input, scope, pool),
		}
	case 1:
		r.cache.Put(KindChannel, scopeKey, input, matches[0].ID)
		return matches[0], nil
	default:
		if scope == nil {
			candidates := make([]string, len(matches))
			for i, ch := range matches {
				candidates[i] = fmt.Sprintf("%s → #%s", ch.ServerName, ch.Name)
			}
			return gateway.Channel{}, &AmbiguousError{
				Kind:       KindChannel,
				Input:      input,
				Candidates: candidates,
				Resupply:   fmt.Sprintf("the format 'ServerName/%s' or the channel ID", input),
			}
		}
		// Channel names are unique within one server; two matches under a
		// scope means our view of the session is inconsistent.
		return gateway.Channel{}, fmt.Errorf(
			"internal error: server '%s' has multiple channels named '%s'", scope.Name, input)
	}
}

// channelNotFoundHint builds the remediation text for a failed channel name
// lookup, appending up to MaxSuggestions near-miss names from the searched
// pool.
func channelNotFoundHint(input string, scope *gateway.Server, pool []gateway.Channel) string {
	var b strings.Builder
	if scope != nil {
		fmt.Fprintf(&b, "Server '%s' has no text channel with this name. Use the list_channels tool to see available channels.", scope.Name)
	} else {
		fmt.Fprintf(&b, "No text channel with this name in any visible server. Try 'ServerName/%s' or use the list_channels tool.", input)
	}

	names := make([]string, 0, len(pool))
	seen := make(map[string]bool, len(pool))
	for _, ch := range pool {
		if ch.Kind == gateway.ChannelText && !seen[ch.Name] {
			seen[ch.Name] = true
			names = append(names, ch.Name)
		}
	}
	ranked := fuzzy.Find(input, names)
	if len(ranked) > 0 {
		b.WriteString(" Closest names:")
		for i, m := range ranked {
			if i == MaxSuggestions {
				break
			}
			fmt.Fprintf(&b, " #%s", m.Str)
		}
		b.WriteString(".")
	}
	return b.String()
}

// ResolveUser converts a username, display name, @mention or ID to a user
// handle. The ID path fetches directly from the platform; the name path
// scans every member of every visible server, first match wins.
func (r *Resolver) ResolveUser(ctx context.Context, input string) (gateway.User, error) {
	name := strings.TrimPrefix(input, "@")

	if IsSnowflake(name) {
		u, err := r.session.FetchUser(ctx, name)
		if errors.Is(err, gateway.ErrNotFound) {
			return gateway.User{}, &NotFoundError{
				Kind:  KindUser,
				Input: name,
				Hint:  "No user with this ID exists.",
			}
		}
		if err != nil {
			return gateway.User{}, &RemoteError{Op: "fetch user " + name, Err: err}
		}
		return u, nil
	}

	if id, ok := r.cache.Get(KindUser, ScopeGlobal, name); ok {
		u, err := r.session.FetchUser(ctx, id)
		if err == nil {
			return u, nil
		}
		r.cache.Drop(KindUser, ScopeGlobal, name)
	}

	for _, s := range r.session.Servers() {
		members, err := r.session.Members(s.ID)
		if err != nil {
			// A guild whose member list cannot be read is skipped, not
			// fatal: the user may be visible through another server.
			continue
		}
		for _, m := range members {
			if strings.EqualFold(m.Handle, name) ||
				(m.DisplayName != "" && strings.EqualFold(m.DisplayName, name)) {
				r.cache.Put(KindUser, ScopeGlobal, name, m.ID)
				return gateway.User{ID: m.ID, Handle: m.Handle, DisplayName: m.DisplayName}, nil
			}
		}
	}

	return gateway.User{}, &NotFoundError{
		Kind:  KindUser,
		Input: input,
		Hint:  "Make sure the username is spelled correctly or use the user's ID instead.",
	}
}
