package discordmcp

import (
	"context"
	"regexp"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/jonwraymond/discordmcp/gateway"
)

// humanizeFetchLimit bounds concurrent user fetches during a Humanize pass
// so a mention-heavy message cannot flood the platform API.
const humanizeFetchLimit = 4

var (
	// Discord's inline user mention markup: <@id> or the nickname
	// variant <@!id>. Both carry the same embedded ID.
	mentionPattern = regexp.MustCompile(`<@!?([0-9]+)>`)

	// A sigil-marked mention candidate: @ followed by word/dot characters.
	sigilPattern = regexp.MustCompile(`@([A-Za-z0-9_.]+)`)

	// Maximal digit runs, checked against snowflake bounds and isolation
	// rules before being treated as bare-ID mention candidates.
	digitRunPattern = regexp.MustCompile(`[0-9]+`)
)

// Transcoder rewrites message text between Discord's machine-readable
// mention markup and human-readable form. Both directions degrade per span:
// a failed fetch or resolution never aborts the whole pass, only that span
// falls back to its unchanged or placeholder form. Neither operation can
// fail as a whole.
type Transcoder struct {
	session  gateway.Session
	resolver *Resolver
}

// NewTranscoder creates a transcoder sharing the given resolver's cache.
// A nil resolver gets a fresh one over the same session.
func NewTranscoder(session gateway.Session, resolver *Resolver) *Transcoder {
	if resolver == nil {
		resolver = NewResolver(session)
	}
	return &Transcoder{session: session, resolver: resolver}
}

// Humanize rewrites <@id> and <@!id> spans to @name so message history is
// readable by a human or language model. Users that cannot be fetched are
// rendered as @[id], keeping the ID visible. The text is processed in one
// left-to-right pass; replacement text never re-triggers matching.
//
// Per-span fetches are independent of each other, so they run concurrently;
// substitution is ordered by original span position, not completion order.
func (t *Transcoder) Humanize(ctx context.Context, text string) string {
	spans := mentionPattern.FindAllStringSubmatchIndex(text, -1)
	if len(spans) == 0 {
		return text
	}

	replacements := make([]string, len(spans))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(humanizeFetchLimit)
	for i, span := range spans {
		id := text[span[2]:span[3]]
		g.Go(func() error {
			u, err := t.session.FetchUser(gctx, id)
			if err != nil {
				replacements[i] = "@[" + id + "]"
				return nil
			}
			replacements[i] = "@" + displayName(u)
			return nil
		})
	}
	// Goroutines record fallbacks instead of failing, so Wait cannot
	// return an error.
	g.Wait()

	var b strings.Builder
	b.Grow(len(text))
	last := 0
	for i, span := range spans {
		b.WriteString(text[last:span[0]])
		b.WriteString(replacements[i])
		last = span[1]
	}
	b.WriteString(text[last:])
	return b.String()
}

// Encode rewrites human-authored mentions into Discord's <@id> markup so
// outgoing messages actually notify and link the right users. Two passes:
//
//  1. Sigil pass: every @name candidate is resolved to an ID. A name that
//     is already a snowflake is rewritten directly. Unresolvable names are
//     left as plain text — one bad mention never fails the message.
//  2. Bare-ID pass over the result: isolated 17-20 digit runs are probed as
//     user IDs and rewritten only when the fetch succeeds. Digit runs of
//     other lengths, or runs adjacent to mention markup or word characters,
//     are never touched, so unrelated numbers survive unchanged.
//
// When scope is non-nil, members of that server are preferred when a handle
// appears in several servers.
func (t *Transcoder) Encode(ctx context.Context, text string, scope *gateway.Server) string {
	text = t.encodeSigils(ctx, text, scope)
	return t.encodeBareIDs(ctx, text)
}

func (t *Transcoder) encodeSigils(ctx context.Context, text string, scope *gateway.Server) string {
	spans := sigilPattern.FindAllStringSubmatchIndex(text, -1)
	if len(spans) == 0 {
		return text
	}

	var b strings.Builder
	b.Grow(len(text))
	last := 0
	for _, span := range spans {
		b.WriteString(text[last:span[0]])
		last = span[1]

		original := text[span[0]:span[1]]
		name := text[span[2]:span[3]]

		// Already inside <@id> markup; leave the span alone.
		if span[0] > 0 && text[span[0]-1] == '<' {
			b.WriteString(original)
			continue
		}
		if IsSnowflake(name) {
			b.WriteString("<@" + name + ">")
			continue
		}
		if u, err := t.lookupUser(ctx, name, scope); err == nil {
			b.WriteString("<@" + u.ID + ">")
			continue
		}
		b.WriteString(original)
	}
	b.WriteString(text[last:])
	return b.String()
}

func (t *Transcoder) encodeBareIDs(ctx context.Context, text string) string {
	runs := digitRunPattern.FindAllStringIndex(text, -1)
	if len(runs) == 0 {
		return text
	}

	var b strings.Builder
	b.Grow(len(text))
	last := 0
	for _, run := range runs {
		start, end := run[0], run[1]
		b.WriteString(text[last:start])
		last = end

		digits := text[start:end]
		if !IsSnowflake(digits) || !isolatedRun(text, start, end) {
			b.WriteString(digits)
			continue
		}
		if _, err := t.session.FetchUser(ctx, digits); err != nil {
			// Leave as-is on any doubt: this pass is a best-effort
			// heuristic and must never mis-fire on unrelated numbers.
			b.WriteString(digits)
			continue
		}
		b.WriteString("<@" + digits + ">")
	}
	b.WriteString(text[last:])
	return b.String()
}

// lookupUser resolves a mention name, checking the scoped server's member
// list before falling back to the resolver's global search.
func (t *Transcoder) lookupUser(ctx context.Context, name string, scope *gateway.Server) (gateway.User, error) {
	if scope != nil {
		if members, err := t.session.Members(scope.ID); err == nil {
			for _, m := range members {
				if strings.EqualFold(m.Handle, name) ||
					(m.DisplayName != "" && strings.EqualFold(m.DisplayName, name)) {
					return gateway.User{ID: m.ID, Handle: m.Handle, DisplayName: m.DisplayName}, nil
				}
			}
		}
	}
	return t.resolver.ResolveUser(ctx, name)
}

// isolatedRun reports whether the digit run at [start, end) is standalone:
// not preceded by mention markup openers or word characters, not followed
// by a markup closer or word characters. The run is maximal, so adjacent
// bytes are never digits.
func isolatedRun(text string, start, end int) bool {
	if start > 0 {
		c := text[start-1]
		if c == '<' || c == '@' || isWordByte(c) {
			return false
		}
	}
	if end < len(text) {
		c := text[end]
		if c == '>' || isWordByte(c) {
			return false
		}
	}
	return true
}

func isWordByte(c byte) bool {
	return c == '_' ||
		('a' <= c && c <= 'z') ||
		('A' <= c && c <= 'Z') ||
		('0' <= c && c <= '9')
}

// displayName prefers a user's display name over the account handle.
func displayName(u gateway.User) string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Handle
}
