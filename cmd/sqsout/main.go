package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/tilteng/logstash-output-sqs/internal/cliconfig"
	"github.com/tilteng/logstash-output-sqs/pkg/log"
	"github.com/tilteng/logstash-output-sqs/pkg/sqsout"
	"github.com/tilteng/logstash-output-sqs/plugins/configwatcher"
)

const helpDescription = `
Read newline-delimited, pre-serialized records from stdin and ship them
to an SQS queue in batches. A batch is flushed when it reaches
batch-size records, when its byte total crosses batch-bytesize, or when
batch-timeout elapses, whichever comes first. Delivery is best-effort:
a batch whose send fails is logged and dropped.

Configure via flags, SQSOUT_* environment variables, or a TOML config
file (default $HOME/.sqsout/config.toml); flags win over environment,
environment wins over file.
`

var exampleUsage = strings.TrimSpace(`
  tail -F events.json | sqsout --queue https://sqs.us-east-1.amazonaws.com/123456789/events
  sqsout --config /etc/sqsout/config.toml --watch-config < events.json
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	cfg := cliconfig.DefaultConfig()
	var (
		cfgPath         string
		deprecatedBatch bool
	)

	root := &cobra.Command{
		Use:     "sqsout",
		Short:   "Batch records from stdin into composite SQS messages",
		Long:    strings.TrimSpace(helpDescription),
		Example: exampleUsage,
		Version: fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			cfgFile := cfgPath
			if cfgFile == "" {
				cfgFile = cliconfig.DefaultConfigPath()
			}

			// Build set of explicitly set flags; they beat file and env.
			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

			if cfgFile != "" && cliconfig.FileExists(cfgFile) {
				fc, err := cliconfig.LoadFileConfig(cfgFile)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				if err := cliconfig.ApplyFileConfig(&cfg, fc, changed); err != nil {
					return err
				}
			}

			if err := cliconfig.ApplyEnvConfig(&cfg, changed); err != nil {
				return err
			}

			if changed["batch"] {
				b := deprecatedBatch
				cfg.Batch = &b
			}

			logger := log.NewZerologAdapterWithLogger(cliconfig.Logger())
			cfg.ApplyDeprecated(logger)

			out, err := sqsout.New(cfg.ToOutput(), sqsout.WithLogger(logger))
			if err != nil {
				return err
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			if err := out.Start(ctx); err != nil {
				return err
			}

			if cfg.WatchConfig && cfgFile != "" {
				w := configwatcher.New(cfgFile, cfg, out, logger, configwatcher.DefaultConfig())
				go w.Run(ctx)
			}

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

			lines := make(chan string)
			go func() {
				defer close(lines)
				sc := bufio.NewScanner(os.Stdin)
				sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
				for sc.Scan() {
					if line := sc.Text(); line != "" {
						lines <- line
					}
				}
				if err := sc.Err(); err != nil {
					logger.Error("stdin read failed", log.Err(err))
				}
			}()

		loop:
			for {
				select {
				case sig := <-sigCh:
					logger.Info("signal received, shutting down", log.String("signal", sig.String()))
					break loop
				case line, ok := <-lines:
					if !ok {
						break loop
					}
					if err := out.Submit(line); err != nil {
						return err
					}
				}
			}

			return out.Close()
		},
	}

	root.Flags().StringVar(&cfg.Queue, "queue", cfg.Queue, "destination SQS queue URL")
	root.Flags().IntVar(&cfg.BatchSize, "batch-size", cfg.BatchSize, "records per batch before flushing")
	root.Flags().IntVar(&cfg.BatchTimeout, "batch-timeout", cfg.BatchTimeout, "seconds between time-triggered flushes")
	root.Flags().IntVar(&cfg.BatchBytesize, "batch-bytesize", cfg.BatchBytesize, "pending bytes before a forced flush")
	root.Flags().DurationVar(&cfg.HTTPTimeout, "http-timeout", cfg.HTTPTimeout, "timeout for each send")
	root.Flags().BoolVar(&cfg.WatchConfig, "watch-config", cfg.WatchConfig, "reload batch thresholds when the config file changes")
	root.Flags().StringVar(&cfgPath, "config", "", "path to TOML config file")

	root.Flags().BoolVar(&deprecatedBatch, "batch", false, "")
	root.Flags().IntVar(&cfg.BatchEvents, "batch-events", 0, "")
	_ = root.Flags().MarkDeprecated("batch", "batching is always enabled")
	_ = root.Flags().MarkDeprecated("batch-events", "use --batch-size instead")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
