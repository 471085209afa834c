// Command discordmcp runs the Discord MCP server: it connects a bot to the
// Discord gateway and exposes messaging tools over MCP stdio (or HTTP with
// --http). Logs go to stderr so stdout stays clean for the stdio transport.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/jonwraymond/discordmcp/gateway"
	"github.com/jonwraymond/discordmcp/mcpserver"
)

const version = "1.0.0"

func main() {
	var (
		configPath = pflag.String("config", "", "path to a yaml config file")
		httpAddr   = pflag.String("http", "", "serve MCP over HTTP on this address instead of stdio")
		logLevel   = pflag.String("log-level", "", "log level: debug, info, warn or error")
	)
	pflag.Parse()

	if err := run(*configPath, *httpAddr, *logLevel); err != nil {
		fmt.Fprintln(os.Stderr, "discordmcp:", err)
		os.Exit(1)
	}
}

func run(configPath, httpAddr, logLevel string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if httpAddr != "" {
		cfg.HTTPAddr = httpAddr
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if cfg.Token == "" {
		return errors.New("no bot token: set DISCORD_BOT_TOKEN (or DISCORD_TOKEN), or the token config key")
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLevel(cfg.LogLevel),
	}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	session, err := gateway.Dial(cfg.Token)
	if err != nil {
		return err
	}
	if err := session.Open(ctx); err != nil {
		return fmt.Errorf("connect to discord: %w", err)
	}
	defer session.Close()
	logger.Info("discord gateway ready", "bot", session.Me(), "servers", len(session.Servers()))

	srv := mcpserver.New(session, version, logger)
	if cfg.HTTPAddr != "" {
		err = srv.RunHTTP(ctx, cfg.HTTPAddr)
	} else {
		err = srv.Run(ctx)
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
