package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/sai290404/Kochi-Metro/internal/config"
	"github.com/sai290404/Kochi-Metro/internal/server"
	"github.com/sai290404/Kochi-Metro/pkg/clients/gmailclient"
	"github.com/sai290404/Kochi-Metro/pkg/core/services"
	"github.com/sai290404/Kochi-Metro/pkg/core/simulation"
	"github.com/sai290404/Kochi-Metro/pkg/db"
	"github.com/sai290404/Kochi-Metro/pkg/ingest"
	"github.com/sai290404/Kochi-Metro/pkg/postgres"
	"github.com/sai290404/Kochi-Metro/pkg/utils/logging"
)

// App holds the application dependencies
type App struct {
	cfg    *config.Config
	engine *services.Engine
	store  db.PlanStore
	logger *zap.Logger
	ctx    context.Context
}

var (
	env        string
	configPath string
	app        *App
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "induction",
		Short: "Kochi Metro induction CLI - plan nightly trainset assignments",
		Long:  `A CLI tool for computing, simulating and serving nightly trainset induction plans.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app != nil && app.logger != nil {
				app.logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&env, "env", "e", "dev", "Environment name used for log files")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to induction_config.yaml (default: search cwd and home)")

	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(optimizeCmd())
	rootCmd.AddCommand(simulateCmd())
	rootCmd.AddCommand(summaryCmd())
	rootCmd.AddCommand(alertsCmd())
	rootCmd.AddCommand(notifyCmd())
	rootCmd.AddCommand(serveCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// initApp sets up logger, config, store and the induction engine
func initApp() error {
	var err error
	app = &App{
		ctx: context.Background(),
	}

	app.logger, err = logging.InitLogger(env)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	app.logger.Info("Starting application", zap.String("environment", env))

	if configPath != "" {
		app.cfg, err = config.LoadFromPath(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
	} else {
		app.cfg, err = config.Load()
		if err != nil {
			app.logger.Warn("No config file found, using defaults", zap.Error(err))
			app.cfg = config.Default()
		}
	}
	app.logger.Debug("Configuration loaded successfully")

	if app.cfg.Database.ConnString != "" {
		app.logger.Info("Connecting to database")
		pg, err := postgres.NewDB(app.ctx, app.cfg.Database.ConnString)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := pg.RunMigrations(app.ctx); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		app.store = pg
		app.logger.Info("Database initialized successfully")
	}

	app.engine = services.NewEngine(app.logger, app.store)
	return nil
}

// refreshFleet loads a fleet snapshot into the engine: generated mock
// data, until real depot feeds are wired up.
func refreshFleet(seed int64) error {
	snap, err := ingest.GenerateSnapshot(ingest.GeneratorConfig{
		FleetSize:           app.cfg.FleetSize,
		Now:                 time.Now(),
		Seed:                seed,
		CleaningRule:        app.cfg.CleaningRule,
		CleaningBayCapacity: app.cfg.CleaningBayCapacity,
	})
	if err != nil {
		return fmt.Errorf("failed to generate fleet data: %w", err)
	}
	return app.engine.Refresh(snap)
}

func serviceDate() time.Time {
	return time.Now().AddDate(0, 0, 1)
}

// Command definitions

func seedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Generate a mock fleet snapshot and print what it contains",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			seed, _ := cmd.Flags().GetInt64("seed")

			if err := refreshFleet(seed); err != nil {
				return err
			}

			snap, err := app.engine.Snapshot()
			if err != nil {
				return err
			}

			fmt.Printf("Generated fleet snapshot %s (seed %d):\n", snap.Version[:8], seed)
			fmt.Printf("  trainsets:            %d\n", len(snap.Trainsets))
			fmt.Printf("  fitness certificates: %d\n", len(snap.Certificates))
			fmt.Printf("  job cards:            %d\n", len(snap.JobCards))
			fmt.Printf("  branding contracts:   %d\n", len(snap.Branding))
			fmt.Printf("  stabling bays:        %d\n", len(snap.Stabling))
			return nil
		},
	}

	cmd.Flags().Int64("seed", time.Now().UnixNano(), "Seed for the mock fleet generator")

	return cmd
}

func optimizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "optimize",
		Short: "Compute the induction plan for the next service day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			seed, _ := cmd.Flags().GetInt64("seed")
			target, _ := cmd.Flags().GetInt("target")
			dryRun, _ := cmd.Flags().GetBool("dry-run")

			if err := refreshFleet(seed); err != nil {
				return err
			}

			runCfg := services.RunConfigFrom(app.cfg, serviceDate())
			if cmd.Flags().Changed("target") {
				runCfg.TargetServiceCount = target
			}

			var plan *services.PlanResult
			var err error
			if dryRun {
				// Computes the same plan without committing or
				// persisting it.
				plan, err = app.engine.Simulate(app.ctx, runCfg, simulation.Overrides{})
			} else {
				plan, err = app.engine.Optimize(app.ctx, runCfg)
			}
			if err != nil {
				return err
			}

			printPlan(plan)
			return nil
		},
	}

	cmd.Flags().Int64("seed", time.Now().UnixNano(), "Seed for the mock fleet generator")
	cmd.Flags().IntP("target", "k", 0, "Override the target service count")
	cmd.Flags().Bool("dry-run", false, "Compute the plan without committing or persisting it")

	return cmd
}

func simulateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate <scenario_file>",
		Short: "Run what-if scenarios from a YAML file against the current fleet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			seed, _ := cmd.Flags().GetInt64("seed")

			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read scenario file: %w", err)
			}

			var scenarios []simulation.Scenario
			if err := yaml.Unmarshal(data, &scenarios); err != nil {
				return fmt.Errorf("failed to parse scenario file: %w", err)
			}

			if err := refreshFleet(seed); err != nil {
				return err
			}

			results, err := app.engine.SimulateScenarios(app.ctx,
				services.RunConfigFrom(app.cfg, serviceDate()), scenarios)
			if err != nil {
				return err
			}

			for _, r := range results {
				fmt.Printf("\n=== Scenario: %s ===\n", r.Name)
				printPlan(r.Plan)
			}
			return nil
		},
	}

	cmd.Flags().Int64("seed", time.Now().UnixNano(), "Seed for the mock fleet generator")

	return cmd
}

func summaryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show the fleet summary with current scores and issues",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			seed, _ := cmd.Flags().GetInt64("seed")

			if err := refreshFleet(seed); err != nil {
				return err
			}

			summary, err := app.engine.FleetSummary(services.RunConfigFrom(app.cfg, serviceDate()))
			if err != nil {
				return err
			}

			fmt.Printf("\nFleet summary (%d trainsets, snapshot %s):\n\n",
				len(summary.Trainsets), summary.SnapshotVersion[:8])
			for _, ts := range summary.Trainsets {
				marker := " "
				if !ts.Feasible {
					marker = "!"
				}
				fmt.Printf("%s %s  %-11s  readiness %5.1f  branding %5.1f  urgency %5.1f",
					marker, ts.TrainsetID, ts.Role, ts.Readiness, ts.Branding, ts.Urgency)
				if len(ts.Issues) > 0 {
					fmt.Printf("  [%s]", strings.Join(ts.Issues, "; "))
				}
				fmt.Println()
			}
			fmt.Printf("\nExpired certificates: %d, open job cards: %d, branding contracts: %d\n",
				summary.CertExpired, summary.OpenJobCards, summary.BrandingActive)
			return nil
		},
	}

	cmd.Flags().Int64("seed", time.Now().UnixNano(), "Seed for the mock fleet generator")

	return cmd
}

func alertsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "alerts",
		Short: "Compute a plan and print its alerts, most severe first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			seed, _ := cmd.Flags().GetInt64("seed")

			if err := refreshFleet(seed); err != nil {
				return err
			}

			if _, err := app.engine.Optimize(app.ctx, services.RunConfigFrom(app.cfg, serviceDate())); err != nil {
				return err
			}

			alerts := app.engine.Alerts()
			if len(alerts) == 0 {
				fmt.Println("No alerts.")
				return nil
			}
			for _, alert := range alerts {
				fmt.Println(alert)
			}
			return nil
		},
	}

	cmd.Flags().Int64("seed", time.Now().UnixNano(), "Seed for the mock fleet generator")

	return cmd
}

func notifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notify",
		Short: "Compute a plan and email the summary to depot supervisors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			seed, _ := cmd.Flags().GetInt64("seed")

			if len(app.cfg.Gmail.Recipients) == 0 {
				return fmt.Errorf("no gmail recipients configured")
			}

			oauthCfg, err := config.LoadOAuthClient()
			if err != nil {
				return fmt.Errorf("failed to load OAuth client config: %w", err)
			}

			gmail, err := gmailclient.NewClient(app.ctx, oauthCfg)
			if err != nil {
				return fmt.Errorf("failed to create gmail client: %w", err)
			}

			if err := refreshFleet(seed); err != nil {
				return err
			}

			plan, err := app.engine.Optimize(app.ctx, services.RunConfigFrom(app.cfg, serviceDate()))
			if err != nil {
				return err
			}

			subject := fmt.Sprintf("Induction plan for %s: %d service / %d standby / %d maintenance",
				plan.Config.ServiceDate.Format("2006-01-02"),
				plan.Summary.Service, plan.Summary.Standby, plan.Summary.Maintenance)
			body := planEmailBody(plan)

			for _, recipient := range app.cfg.Gmail.Recipients {
				if err := gmail.SendEmail(recipient, subject, body); err != nil {
					app.logger.Error("Failed to send email",
						zap.String("recipient", recipient), zap.Error(err))
					continue
				}
				app.logger.Info("Plan summary sent", zap.String("recipient", recipient))
			}
			return nil
		},
	}

	cmd.Flags().Int64("seed", time.Now().UnixNano(), "Seed for the mock fleet generator")

	return cmd
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			seed, _ := cmd.Flags().GetInt64("seed")

			if err := refreshFleet(seed); err != nil {
				return err
			}

			srv := server.New(app.engine, app.cfg, app.logger)
			return srv.Run()
		},
	}

	cmd.Flags().Int64("seed", time.Now().UnixNano(), "Seed for the mock fleet generator")

	return cmd
}
