package main

import (
	"context"
	"flag"
	"log"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"tagit/internal/adapters/backend"
	"tagit/internal/adapters/filesystem"
	mcpadapter "tagit/internal/adapters/mcp"
	"tagit/internal/application"
	"tagit/internal/config"
	"tagit/internal/logging"
)

func main() {
	configFlag := flag.String("config", "", "config file (default $XDG_CONFIG_HOME/tagit/config.yaml)")
	rootFlag := flag.String("root", "", "workspace root (default $TAGIT_ROOT or the working directory)")
	flag.Parse()

	cfg, err := config.Load(*configFlag)
	if err != nil {
		log.Fatalf("tagit-mcp: %v", err)
	}
	if *rootFlag != "" {
		if cfg.Root, err = config.ExpandPath(*rootFlag); err != nil {
			log.Fatalf("tagit-mcp: %v", err)
		}
	}

	// stdout carries the protocol
	logger, err := logging.NewForTUI(cfg.Log)
	if err != nil {
		log.Fatalf("tagit-mcp: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()
	storage, err := backend.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("tagit-mcp: failed to open %s storage: %v", cfg.Backend, err)
	}
	defer storage.Close()

	store := application.NewTagStore(storage, application.WithLogger(logger))
	ws, err := filesystem.NewWorkspace(cfg.Root, cfg.Ignore)
	if err != nil {
		log.Fatalf("tagit-mcp: %v", err)
	}

	mcpServer := server.NewMCPServer(
		"tagit-mcp",
		"0.1.0",
		server.WithToolCapabilities(true),
	)

	mcpServer.AddTool(
		mcp.NewTool("ping",
			mcp.WithDescription("Health check, returns pong"),
		),
		func(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return mcp.NewToolResultText("pong"), nil
		},
	)

	mcpadapter.RegisterReadTools(mcpServer, store, ws)
	mcpadapter.RegisterWriteTools(mcpServer, store, ws, filesystem.Exists)

	logger.Info("serving", zap.String("root", ws.Root()), zap.String("backend", cfg.Backend))
	if err := server.ServeStdio(mcpServer); err != nil {
		logger.Error("serve", zap.Error(err))
		log.Fatalf("tagit-mcp: %v", err)
	}
}
