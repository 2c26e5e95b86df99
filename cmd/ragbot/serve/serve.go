// Package servecmder provides the serve command: the HTTP API in front of
// the rebuild pipeline.
package servecmder

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jskoiz/llama3-chatbot-with-rag/api"
	"github.com/jskoiz/llama3-chatbot-with-rag/api/mcp"
	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/config"
	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/logger"
	pipelineutils "github.com/jskoiz/llama3-chatbot-with-rag/pkg/pipeline/utils"
	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/watch"
)

type ServeCommander struct {
	debug             bool
	configDir         string
	logFile           string
	logLevel          string
	watchSupplemental bool
	noMCP             bool

	cfg    *config.Config
	logger *slog.Logger
}

const serveLongDesc string = `Run the ragbot API server.

On start the index is built from the Intercom articles and the supplemental
store, retrying with backoff until it succeeds or the attempts run out. The
server answers queries as soon as it is listening; until the first build
succeeds every answer reports that the vector store is unavailable.

Endpoints:
  POST /intercom              {"body": "<question>"} -> {"response", "time_taken"}
  POST /rebuild_vectorstore   rebuild the index
  GET  /stats                 query and rebuild counters
  GET  /snapshot              download the fetched articles (info.json)
  GET  /supplemental          list supplemental Q&A
  POST /supplemental          {"question", "answer"}
  GET  /search                ?query=<text>&top_k=<n>
  /mcp                        MCP tools: ask, search

Examples:
  ragbot serve
  ragbot serve --llm-provider openai --llm-model gpt-4o-mini
  ragbot serve --vector-store-provider qdrant --vector-store-target localhost:6334
  ragbot serve --watch-supplemental --log-file logs/bot.log`

const serveShortDesc string = "Run the ragbot API server"

func NewServeCmd() *cobra.Command {
	cmder := &ServeCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")
			cfg, err := config.LoadForCommand(cmd, cmder.configDir, config.ServeFlags)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			if cmd.Flags().Changed("watch-supplemental") {
				cfg.Rebuild.WatchSupplemental = cmder.watchSupplemental
			}
			cmder.cfg = cfg
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}
			return cmder.run(cmd.Context())
		},
	}

	config.AddFlags(cmd, config.Registry, config.ServeFlags)
	cmd.Flags().StringVar(&cmder.logFile, "log-file", "", "Also write JSON logs to this file")
	cmd.Flags().StringVar(&cmder.logLevel, "log-level", "", "Minimum log level: debug, info, warn or error (overrides --debug)")
	cmd.Flags().BoolVar(&cmder.watchSupplemental, "watch-supplemental", false, "Rebuild when the supplemental store changes on disk")
	cmd.Flags().BoolVar(&cmder.noMCP, "no-mcp", false, "Do not mount the MCP server at /mcp")

	return cmd
}

func (c *ServeCommander) run(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}

	log, closeLog, err := c.newLogger()
	if err != nil {
		return err
	}
	defer closeLog()
	c.logger = log

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stack, err := pipelineutils.NewStack(ctx, c.cfg, c.logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := stack.Close(); err != nil {
			c.logger.Warn("error during shutdown", "error", err)
		}
	}()

	var mcpServer *mcp.Server
	if !c.noMCP {
		mcpServer, err = mcp.NewServer(mcp.Config{
			Answerer: stack.Answerer,
			Searcher: stack.Holder,
			Logger:   c.logger,
		})
		if err != nil {
			return fmt.Errorf("creating MCP server: %w", err)
		}
	}

	apiServer, err := api.NewServer(api.Config{
		ListenAddr: c.cfg.API.Listen,
		Answerer:   stack.Answerer,
		Rebuilder:  stack.Coordinator,
		Store:      stack.Store,
		Searcher:   stack.Holder,
		Stats:      stack.Stats,
		MCPServer:  mcpServer,
	}, c.logger)
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}

	errChan := make(chan error, 2)

	go func() {
		if err := apiServer.Run(); err != nil {
			errChan <- fmt.Errorf("API server error: %w", err)
		}
	}()

	go func() {
		result := stack.Coordinator.Startup(ctx, pipelineutils.RetryPolicy(c.cfg))
		if !result.OK() {
			c.logger.Error("initial index build failed, serving without an index until the next rebuild", "error", result.Err)
		}
	}()

	if c.cfg.Rebuild.WatchSupplemental {
		w, err := watch.New(c.cfg.Storage.SupplementalPath, stack.Coordinator, c.logger)
		if err != nil {
			return fmt.Errorf("creating supplemental watcher: %w", err)
		}
		go func() {
			if err := w.Run(ctx); err != nil {
				errChan <- err
			}
		}()
	}

	select {
	case err := <-errChan:
		_ = apiServer.Shutdown()
		return err
	case <-ctx.Done():
		c.logger.Info("received signal, shutting down")
		return apiServer.Shutdown()
	}
}

// newLogger logs pretty to stdout and, with --log-file, JSON to the file.
func (c *ServeCommander) newLogger() (*slog.Logger, func(), error) {
	level := logger.WithDebug(c.debug)
	if c.logLevel != "" {
		l, err := logger.ParseLevel(c.logLevel)
		if err != nil {
			return nil, nil, err
		}
		level = logger.WithLevel(l)
	}

	console := logger.New(level, logger.WithPretty(true), logger.WithComponent("ragbot"))
	if c.logFile == "" {
		return console, func() {}, nil
	}

	if err := os.MkdirAll(filepath.Dir(c.logFile), 0o755); err != nil {
		return nil, nil, fmt.Errorf("creating log directory: %w", err)
	}
	f, err := os.OpenFile(c.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}

	file := logger.New(level, logger.WithJSON(true), logger.WithWriter(f), logger.WithComponent("serve"))
	return logger.Multi(console, file), func() { _ = f.Close() }, nil
}
