// Command kanshi monitors a configured set of web pages for content changes
// and dispatches notifications when a change is detected.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/raysh454/kanshi/internal/config"
	"github.com/raysh454/kanshi/internal/interfaces"
	"github.com/raysh454/kanshi/internal/logging"
	"github.com/raysh454/kanshi/internal/monitor"
	"github.com/raysh454/kanshi/internal/notify"
	"github.com/raysh454/kanshi/internal/scheduler"
	"github.com/raysh454/kanshi/internal/server"
	"github.com/raysh454/kanshi/internal/store"
	"github.com/raysh454/kanshi/internal/webclient"
)

var (
	cfgPath string
	verbose bool
)

func main() {
	root := &cobra.Command{
		Use:           "kanshi",
		Short:         "Track changes to websites",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&cfgPath, "config", "c", "config.yaml", "path to configuration file")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(runCmd(), checkCmd(), targetsCmd(), historyCmd(), initCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// app bundles everything the commands need after config load.
type app struct {
	cfg      *config.Config
	logger   interfaces.Logger
	detector *monitor.Detector
	notifier *notify.Manager
	wc       *webclient.NetHTTPClient
}

func newApp() (*app, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}

	level := cfg.Settings.LogLevel
	if verbose {
		level = "debug"
	}
	logger := logging.New(logging.Config{Level: level, Console: true}, os.Stderr)

	st, err := store.New(cfg.Settings.DataDir)
	if err != nil {
		return nil, err
	}

	wc, err := webclient.NewNetHTTPClient(0, logger, nil)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:      cfg,
		logger:   logger,
		detector: monitor.NewDetector(st, wc, logger),
		notifier: notify.NewManager(logger),
		wc:       wc,
	}

	a.notifier.Add(notify.NewConsoleNotifier(os.Stdout, true))
	if cfg.Settings.WebhookURL != "" {
		a.notifier.Add(notify.NewWebhookNotifier(cfg.Settings.WebhookURL, notify.KindAuto, wc))
	}
	if cfg.Settings.Email != nil {
		a.notifier.Add(notify.NewEmailNotifier(*cfg.Settings.Email))
	}

	return a, nil
}

func (a *app) close() {
	a.wc.Close()
}

func (a *app) scheduler() *scheduler.Scheduler {
	interval := time.Duration(a.cfg.Settings.CheckInterval) * time.Second
	return scheduler.New(a.detector, a.notifier, a.cfg.Targets, interval, a.logger)
}

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run continuous monitoring",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if addr := a.cfg.Settings.ListenAddr; addr != "" {
				srv := server.New(a.cfg, a.detector, a.logger)
				defer srv.Close()
				a.notifier.Add(srv.Hub())

				httpSrv := srv.HTTPServer()
				go func() {
					a.logger.Info("status API listening", interfaces.Field{Key: "addr", Value: addr})
					if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
						a.logger.Error("status API failed", interfaces.Field{Key: "error", Value: err.Error()})
					}
				}()
				defer httpSrv.Shutdown(context.Background())
			}

			a.logger.Info("monitoring started",
				interfaces.Field{Key: "targets", Value: len(a.cfg.Targets)},
				interfaces.Field{Key: "interval", Value: a.cfg.Settings.CheckInterval},
				interfaces.Field{Key: "data_dir", Value: a.cfg.Settings.DataDir})

			return a.scheduler().Run(ctx)
		},
	}
}

func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Run a single check of all targets and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			a.scheduler().RunOnce(cmd.Context())
			fmt.Println("Check complete.")
			return nil
		},
	}
}

func targetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "targets",
		Short: "List configured targets and their status",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			for i, t := range a.cfg.Targets {
				sum, err := a.detector.Status(t.Name)
				if err != nil {
					return err
				}

				interval := t.Interval
				if interval <= 0 {
					interval = a.cfg.Settings.CheckInterval
				}

				fmt.Printf("\n%d. %s\n", i+1, t.Name)
				fmt.Printf("   URL: %s\n", t.URL)
				fmt.Printf("   Mode: %s\n", t.Mode)
				fmt.Printf("   Interval: %ds\n", interval)
				fmt.Printf("   Has snapshot: %v\n", sum.HasSnapshot)
				fmt.Printf("   Total changes: %d\n", sum.TotalChanges)
				if sum.LastCheck != "" {
					fmt.Printf("   Last check: %s\n", sum.LastCheck)
				}
			}
			fmt.Println()
			return nil
		},
	}
}

func historyCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history <target>",
		Short: "Show change history for a target",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			t := a.cfg.FindTarget(args[0])
			if t == nil {
				return fmt.Errorf("target %q not found", args[0])
			}

			events, err := a.detector.History(t.Name)
			if err != nil {
				return err
			}
			if len(events) == 0 {
				fmt.Println("No history available.")
				return nil
			}
			if limit > 0 && limit < len(events) {
				events = events[len(events)-limit:]
			}

			fmt.Printf("\nChange history for %s:\n", t.Name)
			for _, ev := range events {
				switch ev.Kind {
				case store.EventInitialSnapshot:
					fmt.Printf("  [%s] Initial snapshot created\n", ev.Timestamp)
				case store.EventChangeDetected:
					fmt.Printf("  [%s] CHANGE - %d lines modified\n", ev.Timestamp, ev.DiffLines)
				default:
					fmt.Printf("  [%s] %s\n", ev.Timestamp, ev.Kind)
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum events to show")
	return cmd
}

func initCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a sample configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(cfgPath); err == nil && !force {
				return fmt.Errorf("config file already exists: %s (use --force to overwrite)", cfgPath)
			}
			if err := config.WriteSample(cfgPath); err != nil {
				return err
			}
			fmt.Println("Sample configuration created:", cfgPath)
			fmt.Println("Edit this file to add your targets and run again.")
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")
	return cmd
}
