package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/zulandar/tickora/internal/config"
	"github.com/zulandar/tickora/internal/dashboard"
	"github.com/zulandar/tickora/internal/history"
	"github.com/zulandar/tickora/internal/notify"
	"github.com/zulandar/tickora/internal/notify/discord"
	"github.com/zulandar/tickora/internal/notify/slack"
	"github.com/zulandar/tickora/internal/standup"
	"go.uber.org/zap"
)

func newServeCmd() *cobra.Command {
	var (
		configPath string
		port       int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the JSON API and scheduled jobs",
		Long: `Serves the Tickora JSON API. Metrics snapshots and standup digests run on
the cron schedules of the history section; digests are posted to every
configured chat platform.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(configPath, func(e *env) error {
				if cmd.Flags().Changed("port") {
					e.cfg.Server.Port = port
				}
				return runServe(cmd, e)
			})
		},
	}

	configFlag(cmd, &configPath)
	cmd.Flags().IntVarP(&port, "port", "p", 8080, "port to listen on (overrides server.port)")
	return cmd
}

func runServe(cmd *cobra.Command, e *env) error {
	columns, err := e.cfg.BoardColumns()
	if err != nil {
		return err
	}
	limits, err := e.cfg.WIPLimits()
	if err != nil {
		return err
	}
	notifier, err := buildNotifier(e.cfg.Notify, e.logger)
	if err != nil {
		return err
	}

	recorder := history.NewRecorder(e.db, e.store, nil, e.logger)
	log := standup.NewLog(e.db)
	processor := standup.NewProcessor(e.store, standup.Options{Log: log, Logger: e.logger})

	sched := history.NewScheduler(e.logger)
	if err := sched.Add("snapshot", e.cfg.History.SnapshotSchedule, func(ctx context.Context) error {
		_, err := recorder.RecordActive(ctx)
		return err
	}); err != nil {
		return err
	}
	if notifier != nil {
		job := &history.DigestJob{Source: e.store, Processor: processor, Log: log, Notifier: notifier, Logger: e.logger}
		if err := sched.Add("digest", e.cfg.History.DigestSchedule, func(ctx context.Context) error {
			_, err := job.Run(ctx)
			return err
		}); err != nil {
			return err
		}
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case sig := <-sigCh:
			fmt.Fprintf(cmd.OutOrStdout(), "\nReceived %s, shutting down...\n", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	schedDone := make(chan error, 1)
	go func() { schedDone <- sched.Run(ctx) }()

	err = dashboard.Start(ctx, dashboard.StartOpts{
		Store:      e.store,
		Recorder:   recorder,
		Processor:  processor,
		StandupLog: log,
		Columns:    columns,
		WIPLimits:  limits,
		Port:       e.cfg.Server.Port,
		Out:        cmd.OutOrStdout(),
		Logger:     e.logger,
	})
	cancel()
	if schedErr := <-schedDone; err == nil {
		err = schedErr
	}
	return err
}

// buildNotifier returns a notifier for every enabled chat platform, or nil
// when none is configured.
func buildNotifier(cfg config.NotifyConfig, logger *zap.Logger) (notify.Notifier, error) {
	var multi notify.Multi
	if cfg.Slack.Enabled() {
		n, err := slack.New(slack.Opts{BotToken: cfg.Slack.BotToken, ChannelID: cfg.Slack.Channel, Logger: logger})
		if err != nil {
			return nil, err
		}
		multi = append(multi, n)
	}
	if cfg.Discord.Enabled() {
		n, err := discord.New(discord.Opts{BotToken: cfg.Discord.BotToken, ChannelID: cfg.Discord.Channel, Logger: logger})
		if err != nil {
			return nil, err
		}
		multi = append(multi, n)
	}
	if len(multi) == 0 {
		return nil, nil
	}
	return multi, nil
}
