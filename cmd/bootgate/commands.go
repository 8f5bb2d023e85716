package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/bootgate/bootgate/internal/config"
	"github.com/bootgate/bootgate/internal/gate"
	"github.com/bootgate/bootgate/internal/probe"
	"github.com/bootgate/bootgate/internal/sequencer"
)

// version is set via -ldflags at build time.
var version = "dev"

// GlobalFlags holds the persistent flags shared by all commands.
type GlobalFlags struct {
	ConfigPath  string
	Interval    time.Duration
	MaxAttempts int
	LogLevel    string
	LogFile     string
	NoColor     bool
}

func buildRoot() *cobra.Command {
	flags := &GlobalFlags{}
	root := &cobra.Command{
		Use:   "bootgate [flags] -- command [args...]",
		Short: "Gate a container's entrypoint on database readiness and bootstrap stages",
		Long: "bootgate waits for the database dependency, runs the ordered bootstrap\n" +
			"stages (reset, migrate, ensure-admin, seed, collect-assets), then replaces\n" +
			"itself with the supplied command. Without a command it stops after the\n" +
			"stages (bootstrap-only mode).",
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSequence(cmd, flags, args)
		},
	}
	// Stop flag parsing at the first positional so the supervised command's
	// own flags survive without requiring "--".
	root.Flags().SetInterspersed(false)

	pf := root.PersistentFlags()
	pf.StringVarP(&flags.ConfigPath, "config", "c", "", "path to TOML config file")
	pf.DurationVar(&flags.Interval, "interval", gate.DefaultInterval, "sleep between readiness probes")
	pf.IntVar(&flags.MaxAttempts, "max-attempts", 0, "readiness probe ceiling (0 = poll forever)")
	pf.StringVar(&flags.LogLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.StringVar(&flags.LogFile, "log-file", "", "optional rotated log file")
	pf.BoolVar(&flags.NoColor, "no-color", false, "disable colorized log output")

	root.AddCommand(newWaitCmd(flags))
	root.AddCommand(newVersionCmd())
	return root
}

func newWaitCmd(flags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "wait",
		Short: "Run only the readiness gate and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, closer, err := setup(cmd, flags)
			if err != nil {
				return err
			}
			defer closeIf(closer)
			prober, err := probe.New(cfg.DB.ProbeSettings())
			if err != nil {
				return err
			}
			g := gate.Gate{
				Prober:      prober,
				Interval:    cfg.Gate.Interval,
				MaxAttempts: cfg.Gate.MaxAttempts,
				Logger:      log,
			}
			return g.Wait(cmd.Context())
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the bootgate version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Println("bootgate " + version)
		},
	}
}

func runSequence(cmd *cobra.Command, flags *GlobalFlags, args []string) error {
	cfg, log, closer, err := setup(cmd, flags)
	if err != nil {
		return err
	}
	defer closeIf(closer)
	seq, err := sequencer.New(cfg, log)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return seq.Run(ctx, args)
}

// setup loads the configuration, applies explicit flag overrides, and builds
// the logger.
func setup(cmd *cobra.Command, flags *GlobalFlags) (*config.Config, *slog.Logger, io.Closer, error) {
	cfg, err := config.Load(flags.ConfigPath)
	if err != nil {
		return nil, nil, nil, err
	}
	if cmd.Flags().Changed("interval") {
		cfg.Gate.Interval = flags.Interval
	}
	if cmd.Flags().Changed("max-attempts") {
		cfg.Gate.MaxAttempts = flags.MaxAttempts
	}
	if flags.LogLevel != "" {
		cfg.Log.Level = flags.LogLevel
	}
	if flags.LogFile != "" {
		cfg.Log.File = flags.LogFile
	}
	if flags.NoColor {
		cfg.Log.NoColor = true
	}
	log, closer, err := cfg.Log.New()
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, log, closer, nil
}

func closeIf(c io.Closer) {
	if c != nil {
		_ = c.Close()
	}
}
