package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sshroot23cs/SupportSenseAI/internal/config"
	"github.com/sshroot23cs/SupportSenseAI/internal/knowledge"
	"github.com/sshroot23cs/SupportSenseAI/internal/provider"

	"github.com/spf13/cobra"
	_ "modernc.org/sqlite"
)

func doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Run diagnostic checks on your SupportSense installation",
		Long: `Verifies that the configuration, LLM provider, knowledge base, and
ticket database are correctly set up. Reports pass/fail for each check.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath := resolveConfigPath()
			fmt.Printf("SupportSense Doctor v%s\n", version)
			fmt.Printf("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n\n")

			passed := 0
			failed := 0
			warned := 0

			// 1. Config file exists
			if _, err := os.Stat(cfgPath); err != nil {
				printFail("Config file", fmt.Sprintf("not found at %s", cfgPath))
				failed++
				fmt.Printf("\nRun 'supportsense init' to create a default configuration.\n")
				return nil
			}
			printPass("Config file", cfgPath)
			passed++

			// 2. Config loads and validates
			cfg, err := config.Load(cfgPath)
			if err != nil {
				printFail("Config validation", err.Error())
				failed++
				fmt.Printf("\n%d passed, %d failed\n", passed, failed)
				return nil
			}
			printPass("Config validation", "valid")
			passed++

			// 3. Knowledge base
			kb := knowledge.NewStore(cfg.Knowledge.Path, logger)
			if _, err := os.Stat(cfg.Knowledge.Path); err != nil {
				printWarn("Knowledge base", fmt.Sprintf("file missing at %s, using built-in samples (%d documents)", cfg.Knowledge.Path, kb.Count()))
				warned++
			} else {
				printPass("Knowledge base", fmt.Sprintf("%d documents", kb.Count()))
				passed++
			}

			// 4. Ticket database writable
			if err := checkDatabase(cfg.Escalation.DBPath); err != nil {
				printFail("Ticket database", err.Error())
				failed++
			} else {
				printPass("Ticket database", cfg.Escalation.DBPath)
				passed++
			}

			// 5. Providers configured
			enabledCount := 0
			for name, pc := range cfg.Providers {
				if !pc.Enabled {
					continue
				}
				enabledCount++
				if pc.APIKey == "" && pc.APIBase == "" {
					printWarn("Provider: "+name, "enabled but no API key/base configured")
					warned++
				} else {
					printPass("Provider: "+name, "configured")
					passed++
				}
			}
			if enabledCount == 0 {
				printFail("Providers", "no providers enabled")
				failed++
			}

			// 6. Default provider reachable
			factory := provider.NewFactory(cfg, logger)
			if prov, err := factory.DefaultProvider(); err != nil {
				printFail("Default provider", err.Error())
				failed++
			} else if err := prov.Healthy(cmd.Context()); err != nil {
				printWarn("Default provider", fmt.Sprintf("%s not reachable: %v", prov.Name(), err))
				warned++
			} else {
				printPass("Default provider", fmt.Sprintf("%s (%s)", prov.Name(), prov.Model()))
				passed++
			}

			// 7. Log file writable
			if cfg.General.LogFile != "" {
				if err := os.MkdirAll(filepath.Dir(cfg.General.LogFile), 0o755); err != nil {
					printWarn("Log file", fmt.Sprintf("cannot create log directory: %v", err))
					warned++
				} else {
					printPass("Log file", cfg.General.LogFile)
					passed++
				}
			}

			fmt.Printf("\n━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
			fmt.Printf("Results: %d passed, %d warnings, %d failed\n", passed, warned, failed)
			if failed > 0 {
				fmt.Printf("\nPlease fix the failed checks before running SupportSense.\n")
				return fmt.Errorf("%d check(s) failed", failed)
			}
			if warned > 0 {
				fmt.Printf("\nSupportSense should work but consider fixing the warnings.\n")
			} else {
				fmt.Printf("\nAll checks passed! SupportSense is ready to run.\n")
			}
			return nil
		},
	}
}

func checkDatabase(dbPath string) error {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return fmt.Errorf("cannot create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return fmt.Errorf("cannot open: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("cannot ping: %w", err)
	}

	if _, err := db.ExecContext(ctx, "CREATE TABLE IF NOT EXISTS _doctor_test (id INTEGER PRIMARY KEY)"); err != nil {
		return fmt.Errorf("not writable: %w", err)
	}
	db.ExecContext(ctx, "DROP TABLE IF EXISTS _doctor_test")

	return nil
}

func printPass(check, detail string) {
	fmt.Printf("  [PASS] %-20s %s\n", check, detail)
}

func printFail(check, detail string) {
	fmt.Printf("  [FAIL] %-20s %s\n", check, detail)
}

func printWarn(check, detail string) {
	fmt.Printf("  [WARN] %-20s %s\n", check, detail)
}
