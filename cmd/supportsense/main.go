package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/sshroot23cs/SupportSenseAI/internal/agent"
	"github.com/sshroot23cs/SupportSenseAI/internal/config"
	"github.com/sshroot23cs/SupportSenseAI/internal/escalation"
	"github.com/sshroot23cs/SupportSenseAI/internal/intent"
	"github.com/sshroot23cs/SupportSenseAI/internal/knowledge"
	"github.com/sshroot23cs/SupportSenseAI/internal/metrics"
	"github.com/sshroot23cs/SupportSenseAI/internal/provider"
	"github.com/sshroot23cs/SupportSenseAI/internal/rag"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	version    = "0.1.0"
	logger     *slog.Logger
	configPath string // overridable via --config flag
)

func main() {
	// .env is optional; real env vars always win.
	_ = godotenv.Load()

	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	root := &cobra.Command{
		Use:   "supportsense",
		Short: "SupportSense: customer-support chat agent",
		Long:  "SupportSense answers customer questions from a knowledge base and escalates to human agents when it cannot answer confidently.",
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config.json (default: ~/.supportsense/config.json)")

	root.AddCommand(initCmd())
	root.AddCommand(askCmd())
	root.AddCommand(chatCmd())
	root.AddCommand(faqCmd())
	root.AddCommand(statusCmd())
	root.AddCommand(doctorCmd())
	root.AddCommand(ticketsCmd())
	root.AddCommand(configCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// resolveConfigPath returns the config path from --config flag or default.
func resolveConfigPath() string {
	if configPath != "" {
		return configPath
	}
	return config.DefaultConfigPath()
}

func loadConfig() *config.Config {
	cfgPath := resolveConfigPath()
	cfg, err := config.Load(cfgPath)
	if err != nil {
		logger.Warn("config not found, using defaults", "path", cfgPath, "err", err)
		return config.Defaults()
	}
	applyLogLevel(cfg.General.LogLevel)
	return cfg
}

func applyLogLevel(level string) {
	var l slog.Level
	switch level {
	case "debug":
		l = slog.LevelDebug
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l}))
}

// buildAgent wires the full pipeline from config. The returned cleanup
// closes the ticket store.
func buildAgent(cfg *config.Config) (*agent.Agent, func(), error) {
	kb := knowledge.NewStore(cfg.Knowledge.Path, logger)

	intents, err := intent.LoadFromDirectory(cfg.Intents.Dir, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("load intents: %w", err)
	}
	classifier := intent.NewClassifier(intents, logger)

	rules := make([]intent.CategoryRule, len(cfg.Categories))
	for i, c := range cfg.Categories {
		rules[i] = intent.CategoryRule{Name: c.Name, Keywords: c.Keywords}
	}
	categories := intent.NewCategoryDetector(rules)

	store, err := escalation.NewSQLiteStore(cfg.Escalation.DBPath, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("open ticket store: %w", err)
	}

	esc := escalation.NewHandler(escalation.HandlerConfig{
		Store:               store,
		TriggerWords:        cfg.Escalation.TriggerWords,
		HighPriorityWords:   cfg.Escalation.HighPriorityWords,
		MediumPriorityWords: cfg.Escalation.MediumPriorityWords,
		Logger:              logger,
	})

	factory := provider.NewFactory(cfg, logger)
	prov, err := factory.DefaultProvider()
	if err != nil {
		store.Close()
		return nil, nil, fmt.Errorf("default provider: %w", err)
	}
	if err := prov.Healthy(context.Background()); err != nil {
		logger.Warn("provider may not be available", "provider", prov.Name(), "err", err)
	}

	engine := rag.NewEngine(rag.EngineConfig{
		Knowledge:  kb,
		Intents:    classifier,
		Categories: categories,
		Provider:   prov,
		TopK:       cfg.Retrieval.TopK,
		Threshold:  cfg.Retrieval.ConfidenceThreshold,
		Responses:  cfg.Responses,
		Logger:     logger,
	})

	a := agent.New(agent.Config{
		Knowledge:  kb,
		Engine:     engine,
		Escalation: esc,
		Provider:   prov,
		Guidance:   cfg.Responses.Guidance,
		Apology:    cfg.Responses.SystemError,
		Logger:     logger,
	})
	return a, func() { store.Close() }, nil
}

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize config and data directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgDir := config.DefaultConfigDir()
			cfgPath := config.DefaultConfigPath()
			if err := os.MkdirAll(cfgDir, 0o755); err != nil {
				return err
			}
			cfg := config.Defaults()
			if err := config.Save(cfgPath, cfg); err != nil {
				return err
			}
			if err := os.MkdirAll(cfg.General.DataDir, 0o755); err != nil {
				return err
			}

			// Seed the knowledge base file so users have something to edit.
			kb := knowledge.NewStore(cfg.Knowledge.Path, logger)
			if err := kb.Save(); err != nil {
				return err
			}

			logger.Info("initialized", "config", cfgPath, "data", cfg.General.DataDir)
			return nil
		},
	}
}

func askCmd() *cobra.Command {
	var userID string
	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask a single question",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			a, cleanup, err := buildAgent(cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			sessions := agent.NewSessionManager()
			sessionID := sessions.Start(userID)

			env := a.ProcessMessage(cmd.Context(), strings.Join(args, " "), userID, sessionID)
			printEnvelope(env.Response, env.Escalated, env.EscalationID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&userID, "user", "u", "", "user id attached to tickets")
	return cmd
}

func chatCmd() *cobra.Command {
	var userID string
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat session",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			a, cleanup, err := buildAgent(cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			sessions := agent.NewSessionManager()
			sessionID := sessions.Start(userID)

			fmt.Println(cfg.Responses.Welcome)
			fmt.Println("Type 'exit' to quit.")
			fmt.Println()

			scanner := bufio.NewScanner(os.Stdin)
			for {
				fmt.Print("> ")
				if !scanner.Scan() {
					break
				}
				line := strings.TrimSpace(scanner.Text())
				if line == "exit" || line == "quit" {
					break
				}

				env := a.ProcessMessage(ctx, line, userID, sessionID)
				sessions.Record(sessionID, env.Escalated)
				printEnvelope(env.Response, env.Escalated, env.EscalationID)

				if ctx.Err() != nil {
					break
				}
			}

			if s, ok := sessions.Get(sessionID); ok {
				logger.Info("session ended", "session", s.ID, "messages", s.Messages, "escalated", s.Escalated)
			}
			logger.Debug("session metrics", "exposition", metrics.Collector.Render())
			return scanner.Err()
		},
	}
	cmd.Flags().StringVarP(&userID, "user", "u", "", "user id attached to tickets")
	return cmd
}

func printEnvelope(response string, escalated bool, ticketID string) {
	fmt.Println(response)
	if escalated && ticketID != "" {
		fmt.Printf("(escalated, ticket %s)\n", ticketID)
	}
	fmt.Println()
}

func faqCmd() *cobra.Command {
	var category string
	cmd := &cobra.Command{
		Use:   "faq",
		Short: "List frequently asked questions from the knowledge base",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			a, cleanup, err := buildAgent(cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			entries := a.FAQ(category)
			if len(entries) == 0 {
				fmt.Println("No FAQ entries found.")
				return nil
			}
			for i, e := range entries {
				fmt.Printf("%d. [%s] %s\n", i+1, e.Category, e.Question)
				fmt.Printf("   %s\n\n", e.Answer)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "filter by category")
	return cmd
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show system status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			a, cleanup, err := buildAgent(cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			st := a.Status(cmd.Context())
			data, _ := json.MarshalIndent(st, "", "  ")
			fmt.Println(string(data))
			return nil
		},
	}
}

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "View and modify configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "get [path]",
		Short: "Get a config value (e.g. retrieval.confidenceThreshold)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(resolveConfigPath())
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			val, err := config.GetByPath(cfg, args[0])
			if err != nil {
				return err
			}
			data, _ := json.MarshalIndent(val, "", "  ")
			fmt.Println(string(data))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set [path] [value]",
		Short: "Set a config value (e.g. retrieval.topK 5)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath := resolveConfigPath()
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := config.SetByPath(cfg, args[0], args[1]); err != nil {
				return fmt.Errorf("set value: %w", err)
			}
			if err := config.Validate(cfg); err != nil {
				return err
			}
			if err := config.Save(cfgPath, cfg); err != nil {
				return fmt.Errorf("save config: %w", err)
			}
			logger.Info("config updated", "path", args[0], "value", args[1], "file", cfgPath)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List all config paths with current values",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(resolveConfigPath())
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			data, _ := json.MarshalIndent(config.ListPaths(config.Sanitize(cfg)), "", "  ")
			fmt.Println(string(data))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the full config with secrets masked",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(resolveConfigPath())
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			data, _ := json.MarshalIndent(config.Sanitize(cfg), "", "  ")
			fmt.Println(string(data))
			return nil
		},
	})

	return cmd
}
