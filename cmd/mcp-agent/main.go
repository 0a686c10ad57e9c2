// SPDX-License-Identifier: AGPL-3.0-only
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jolks/mcp-agent/internal/agent"
	"github.com/jolks/mcp-agent/internal/config"
	"github.com/jolks/mcp-agent/internal/logging"
	"github.com/jolks/mcp-agent/internal/model"
	"github.com/jolks/mcp-agent/internal/session"
	"github.com/jolks/mcp-agent/internal/singleton"
	"github.com/jolks/mcp-agent/internal/store"
)

var (
	serverScript    = flag.String("server", "", "Path to the MCP server script (.py or .js)")
	serverURL       = flag.String("server-url", "", "SSE endpoint of an already-running MCP server")
	aiProvider      = flag.String("ai-provider", "", "AI provider: gemini, openai or anthropic (default: gemini)")
	aiModel         = flag.String("ai-model", "", "Model to use for queries (default: gemini-2.0-flash)")
	aiBaseURL       = flag.String("ai-base-url", "", "Custom base URL for OpenAI-compatible endpoints (e.g. Ollama, vLLM, Groq)")
	aiMaxIterations = flag.Int("ai-max-iterations", 0, "Maximum model invocations per query (default: 20)")
	systemPrompt    = flag.String("system-prompt", "", "Optional system instruction for the model")
	logLevel        = flag.String("log-level", "", "Logging level: debug, info, warn, error, fatal")
	logFile         = flag.String("log-file", "", "Log file path (default: stderr)")
	dbPath          = flag.String("db-path", "", "Path to SQLite database for exchange history (default: ~/.mcp-agent/history.db)")
	noHistory       = flag.Bool("no-history", false, "Disable exchange history")
	version         = flag.Bool("version", false, "Show version information and exit")
)

func main() {
	flag.Parse()

	// Load configuration
	cfg := loadConfig()

	// Show version and exit if requested
	if *version {
		log.Printf("%s version %s", cfg.Client.Name, cfg.Client.Version)
		os.Exit(0)
	}

	logger, err := setupLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	logging.SetDefaultLogger(logger)

	// Create a context that will be cancelled on interrupt signal
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-signalCh
		logger.Infof("Received termination signal, shutting down...")
		cancel()
	}()

	app, err := createApp(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("Failed to start: %v", err)
	}
	defer app.Close()

	if err := app.ChatLoop(ctx); err != nil && ctx.Err() == nil {
		logger.Errorf("Chat loop ended with error: %v", err)
	}
}

// loadConfig loads configuration from defaults, environment and command line flags
func loadConfig() *config.Config {
	// Start with defaults
	cfg := config.DefaultConfig()

	// Override with environment variables
	config.FromEnv(cfg)

	// Override with command-line flags
	applyCommandLineFlagsToConfig(cfg)

	// Validate the configuration
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	return cfg
}

// applyCommandLineFlagsToConfig applies command line flags to the configuration
func applyCommandLineFlagsToConfig(cfg *config.Config) {
	if *serverScript != "" {
		cfg.MCP.ServerScript = *serverScript
	} else if flag.NArg() > 0 {
		// Positional form: mcp-agent <path_to_server_script>
		cfg.MCP.ServerScript = flag.Arg(0)
	}
	if *serverURL != "" {
		cfg.MCP.URL = *serverURL
	}
	if *aiProvider != "" {
		cfg.AI.Provider = *aiProvider
	}
	if *aiModel != "" {
		cfg.AI.Model = *aiModel
	}
	if *aiBaseURL != "" {
		cfg.AI.BaseURL = *aiBaseURL
	}
	if *aiMaxIterations > 0 {
		cfg.AI.MaxToolIterations = *aiMaxIterations
	}
	if *systemPrompt != "" {
		cfg.AI.SystemPrompt = *systemPrompt
	}
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}
	if *logFile != "" {
		cfg.Logging.FilePath = *logFile
	}
	if *dbPath != "" {
		cfg.Store.DBPath = *dbPath
	}
	if *noHistory {
		cfg.Store.Enabled = false
	}
}

// setupLogger builds the logger. Logs go to stderr (or a file) so stdout
// stays clean for the chat itself.
func setupLogger(cfg *config.Config) (*logging.Logger, error) {
	level := logging.ParseLevel(cfg.Logging.Level)
	if cfg.Logging.FilePath != "" {
		return logging.FileLogger(cfg.Logging.FilePath, level)
	}
	return logging.New(logging.Options{Level: level}), nil
}

// App wires the session, the store and the executor for one process lifetime
type App struct {
	cfg      *config.Config
	logger   *logging.Logger
	lock     *singleton.Lock
	store    model.ExchangeStore
	session  *session.Session
	executor *agent.Executor
}

// createApp acquires all resources in order: history lock, store, provider,
// session. On failure everything acquired so far is released before returning.
func createApp(ctx context.Context, cfg *config.Config, logger *logging.Logger) (*App, error) {
	app := &App{cfg: cfg, logger: logger}

	if cfg.Store.Enabled {
		lock, acquired, err := singleton.TryAcquire(cfg.Store.DBPath)
		if err != nil {
			return nil, err
		}
		if !acquired {
			logger.Warnf("Another instance holds the history database, continuing without history")
		} else {
			app.lock = lock
			exStore, err := store.NewSQLiteStore(cfg.Store.DBPath)
			if err != nil {
				app.Close()
				return nil, fmt.Errorf("create exchange store: %w", err)
			}
			app.store = exStore
		}
	}

	provider, err := agent.NewChatProvider(ctx, cfg)
	if err != nil {
		app.Close()
		return nil, err
	}

	sess, err := session.Open(ctx, cfg, logger)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.session = sess

	// Confirm the connection and show what the server offers.
	tools, err := sess.ListTools(ctx)
	if err != nil {
		app.Close()
		return nil, err
	}
	names := make([]string, len(tools))
	for i, t := range tools {
		names[i] = t.Name
	}
	fmt.Printf("\nConnected to server with tools: %s\n", strings.Join(names, ", "))

	ag := agent.NewAgent(provider, sess, cfg, logger)
	app.executor = agent.NewExecutor(ag, cfg, app.store, logger)
	return app, nil
}

// ChatLoop runs the interactive query loop until EOF, "quit" or cancellation
func (a *App) ChatLoop(ctx context.Context) error {
	fmt.Println("\nMCP Agent Started!")
	fmt.Println("Type your queries or 'quit' to exit.")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		if ctx.Err() != nil {
			return nil
		}
		fmt.Print("\nQuery: ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		query := strings.TrimSpace(scanner.Text())
		if query == "" {
			continue
		}
		if strings.EqualFold(query, "quit") {
			return nil
		}

		answer, err := a.executor.Answer(ctx, query)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			fmt.Printf("\nError: %v\n", err)
			continue
		}
		fmt.Println("\n" + answer)
	}
}

// Close releases resources in reverse acquisition order. Safe to call after
// a partial createApp and safe to call twice.
func (a *App) Close() {
	if a.session != nil {
		if err := a.session.Close(); err != nil {
			a.logger.Errorf("Error closing MCP session: %v", err)
		}
		a.session = nil
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Errorf("Error closing exchange store: %v", err)
		}
		a.store = nil
	}
	if a.lock != nil {
		if err := a.lock.Release(); err != nil {
			a.logger.Errorf("Error releasing history lock: %v", err)
		}
		a.lock = nil
	}
}
