// Package discordmcp implements the name resolution and mention
// transcoding engine behind a Discord MCP server: it turns ambiguous,
// human-supplied target strings (names, partial names, @mentions, raw IDs)
// into exactly one server, channel or user handle, and rewrites message
// text between Discord's inline mention markup and human-readable form.
// Tool registration and transport live in the mcpserver package; the live
// Discord connection lives in the gateway package.
//
// # Target Resolution
//
// ParseTarget splits "ServerName/channel" into a server scope and a
// reference; a string that is itself a snowflake ID is never split. The
// Resolver then maps the reference to a live handle:
//
//   - ID inputs resolve directly against the session and fail with a
//     not-found report when absent (for channels, an ID that exists but is
//     not a text channel gets a distinct reason).
//   - Name inputs match case-insensitively and exactly. A channel name
//     present in several servers with no scope supplied is reported as
//     ambiguous, itemizing each owning server and the exact syntax to
//     resupply — the resolver never guesses.
//
// Successful name lookups are cached per entity kind for the lifetime of
// the process. Entries are advisory: every hit is re-validated against the
// live session and dropped when stale. The session remains ground truth.
//
// # Mention Transcoding
//
// Transcoder.Humanize rewrites <@id> and <@!id> spans to @name for display
// to a human or language model, falling back to @[id] when the user cannot
// be fetched. Transcoder.Encode works the other way for outgoing messages:
// a sigil pass rewrites @name candidates to <@id>, then a bare-ID pass
// probes isolated 17-20 digit runs as user IDs and rewrites only the ones
// the platform confirms. Unresolvable spans are left untouched; a
// transcoding failure on one span never aborts the pass.
//
// # Error Handling
//
// Resolution failures carry actionable text for an autonomous caller and
// match one of four kinds via errors.Is():
//   - ErrValidation: input rejected before any lookup
//   - ErrNotFound: entity absent or inaccessible, with a remediation hint
//   - ErrAmbiguous: multiple equally valid matches, all enumerated
//   - ErrRemote: the platform rejected an action; its error text is kept
//
// # Thread Safety
//
// Resolver and Transcoder are stateless apart from the ResolutionCache,
// which is safe for concurrent use from overlapping tool calls.
package discordmcp
