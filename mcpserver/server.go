// Package mcpserver registers the Discord messaging tools with an MCP
// server and dispatches tool calls to the resolution engine and the
// gateway session. It supports the stdio transport (the default for MCP
// servers launched as subprocesses) and streamable HTTP.
package mcpserver

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/jonwraymond/discordmcp"
	"github.com/jonwraymond/discordmcp/gateway"
)

// ServerName identifies this MCP server to clients.
const ServerName = "discord-mcp"

// Server wires the seven Discord tools into an MCP server.
type Server struct {
	session    gateway.Session
	resolver   *discordmcp.Resolver
	transcoder *discordmcp.Transcoder
	server     *mcp.Server
	log        *slog.Logger
}

// New creates the MCP server over the given gateway session and registers
// all tools. A nil logger discards logs.
func New(session gateway.Session, version string, log *slog.Logger) *Server {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	resolver := discordmcp.NewResolver(session)
	s := &Server{
		session:    session,
		resolver:   resolver,
		transcoder: discordmcp.NewTranscoder(session, resolver),
		log:        log,
	}
	s.server = mcp.NewServer(&mcp.Implementation{
		Name:    ServerName,
		Version: version,
	}, nil)
	s.registerTools()
	return s
}

// Run serves MCP over stdio until ctx is done or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	s.log.Info("mcp server starting", "transport", "stdio")
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// RunHTTP serves MCP over streamable HTTP on addr until ctx is done.
func (s *Server) RunHTTP(ctx context.Context, addr string) error {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	handler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.server
	}, nil)
	r.Handle("/mcp", handler)
	r.Handle("/", handler)

	srv := &http.Server{Addr: addr, Handler: r}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.log.Info("mcp server starting", "transport", "http", "addr", addr)

	select {
	case <-ctx.Done():
		srv.Shutdown(context.Background())
		return ctx.Err()
	case err := <-errc:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("mcpserver: serve http: %w", err)
		}
		return nil
	}
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name: "send_message",
		Description: "Send a message to a Discord channel or user DM. Target can be a " +
			"channel name, channel ID, username, or user ID. For ambiguous channel " +
			"names (like 'general'), use 'ServerName/channel' format.",
		InputSchema: schemaFor[sendMessageArgs](func(sch *jsonschema.Schema) {
			describe(sch, "message", "The message content to send")
			describe(sch, "target", "Channel name/ID or username/ID. Examples: 'general', "+
				"'MyServer/general', '@username', or snowflake IDs. Use 'ServerName/channel' "+
				"for ambiguous channels.")
		}),
	}, handle(s, "send_message", s.sendMessage))

	mcp.AddTool(s.server, &mcp.Tool{
		Name: "edit_message",
		Description: "Edit or delete a message. If message is empty/blank, the message " +
			"will be deleted. Message ID must be exact.",
		InputSchema: schemaFor[editMessageArgs](func(sch *jsonschema.Schema) {
			describe(sch, "message_id", "The ID of the message to edit/delete")
			describe(sch, "message", "New message content. Leave empty to delete the message.")
		}),
	}, handle(s, "edit_message", s.editMessage))

	mcp.AddTool(s.server, &mcp.Tool{
		Name: "read_messages",
		Description: "Read recent messages from a channel. Returns channel info and " +
			"message history, oldest first. Channel can be name or ID. For ambiguous " +
			"names, use 'ServerName/channel' format.",
		InputSchema: schemaFor[readMessagesArgs](func(sch *jsonschema.Schema) {
			describe(sch, "channel", "Channel name or ID. Examples: 'general', "+
				"'MyServer/general', or snowflake ID.")
			describe(sch, "limit", "Maximum number of messages to retrieve (default: 50, max: 100)")
			defaultValue(sch, "limit", "50")
		}),
	}, handle(s, "read_messages", s.readMessages))

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_servers",
		Description: "List all Discord servers the bot has access to.",
		InputSchema: schemaFor[listServersArgs](nil),
	}, handle(s, "list_servers", s.listServers))

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_channels",
		Description: "List all channels in a specific server. Server can be name or ID.",
		InputSchema: schemaFor[listChannelsArgs](func(sch *jsonschema.Schema) {
			describe(sch, "server", "Server name or ID")
		}),
	}, handle(s, "list_channels", s.listChannels))

	mcp.AddTool(s.server, &mcp.Tool{
		Name: "search_messages",
		Description: "Search for messages containing specific text in a channel. " +
			"Channel can be name or ID. For ambiguous names, use 'ServerName/channel' format.",
		InputSchema: schemaFor[searchMessagesArgs](func(sch *jsonschema.Schema) {
			describe(sch, "channel", "Channel name or ID")
			describe(sch, "query", "Search query text")
			describe(sch, "limit", "Maximum number of messages to search through (default: 100, max: 500)")
			defaultValue(sch, "limit", "100")
		}),
	}, handle(s, "search_messages", s.searchMessages))

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "add_reaction",
		Description: "Add a reaction emoji to a message. Message ID must be exact.",
		InputSchema: schemaFor[addReactionArgs](func(sch *jsonschema.Schema) {
			describe(sch, "message_id", "The ID of the message to react to")
			describe(sch, "emoji", "Emoji to react with (Unicode emoji or custom emoji name)")
		}),
	}, handle(s, "add_reaction", s.addReaction))
}

// schemaFor infers the JSON schema for a tool's argument struct and applies
// property-level customizations.
func schemaFor[T any](customize func(*jsonschema.Schema)) *jsonschema.Schema {
	sch, err := jsonschema.For[T](nil)
	if err != nil {
		panic(fmt.Sprintf("mcpserver: derive schema: %v", err))
	}
	if customize != nil {
		customize(sch)
	}
	return sch
}

func describe(sch *jsonschema.Schema, property, text string) {
	if p, ok := sch.Properties[property]; ok {
		p.Description = text
	}
}

func defaultValue(sch *jsonschema.Schema, property, raw string) {
	if p, ok := sch.Properties[property]; ok {
		p.Default = []byte(raw)
	}
}

// handle adapts a text-returning tool function to the SDK handler shape.
// Any failure — including a panic — degrades to a plain text response so
// the MCP session stays alive across individual tool-call failures.
func handle[In any](s *Server, name string, fn func(context.Context, In) (string, error)) mcp.ToolHandlerFor[In, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, in In) (res *mcp.CallToolResult, _ any, _ error) {
		defer func() {
			if r := recover(); r != nil {
				s.log.Error("tool call panicked", "tool", name, "panic", r)
				res = textResult(fmt.Sprintf("ERROR: internal failure in %s: %v", name, r))
			}
		}()
		text, err := fn(ctx, in)
		if err != nil {
			s.log.Warn("tool call failed", "tool", name, "error", err)
			return textResult("ERROR: " + err.Error()), nil, nil
		}
		return textResult(text), nil, nil
	}
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}
