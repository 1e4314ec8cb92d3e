package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/inovacc/reposync/internal/application"
	"github.com/inovacc/reposync/internal/config"
	"github.com/inovacc/reposync/internal/core"
	"github.com/inovacc/reposync/internal/logging"
	"github.com/inovacc/reposync/internal/osprofile"
	"github.com/inovacc/reposync/internal/report"
	"github.com/inovacc/reposync/internal/repolist"
)

const defaultListFile = "repositories.txt"

// NewRootCmd builds the command tree. Each call returns an independent
// command so tests never share flag state.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   application.AppName + " [list-file]",
		Short: "Clone and update a list of git repositories",
		Long: `Reposync reads a newline-delimited list of repository URLs and clones
each one under a configured clone root, updating repositories that are
already checked out. Entries are processed one at a time, in file order.

List format:
  <url> [custom-directory]
Blank lines and lines starting with # are skipped. Accepted URL schemes:
http, https, git, ssh, and the scp-like shorthand (git@host:path).

On the first run with no list file, a sample list is created for editing.
A missing configuration file likewise produces a commented .example
template beside the expected path.

Examples:
  reposync                          # process ./repositories.txt
  reposync team-repos.txt           # explicit list file
  reposync --dry-run                # plan only, touch nothing
  reposync -r 3 -v 4                # three clone attempts, debug output
  reposync -q                       # errors only on the terminal`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       application.Version,
		RunE:          runRoot,
	}

	rootCmd.Flags().BoolP("dry-run", "d", false, "Plan without cloning, updating, or deleting anything")
	rootCmd.Flags().IntP("retries", "r", 0, "Clone attempts per repository (overrides MAX_RETRIES)")
	rootCmd.Flags().StringP("log", "l", "", "Log directory (overrides LOG_DIR)")
	rootCmd.Flags().IntP("verbose", "v", 0, "Terminal verbosity 0-4 (overrides VERBOSITY)")
	rootCmd.Flags().BoolP("quiet", "q", false, "Equivalent to --verbose 0")
	rootCmd.Flags().StringP("config", "c", "", "Configuration file path")

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		_, _ = fmt.Fprintln(os.Stderr, cmd.UsageString())
		return err
	})

	return rootCmd
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runRoot(cmd *cobra.Command, args []string) error {
	profile := osprofile.Detect()

	configPath, _ := cmd.Flags().GetString("config")
	if configPath == "" {
		configPath = defaultConfigPath()
	}

	// The logger's own directory is an option, so configuration loads
	// first and its warnings are replayed once logging is up.
	var pending []string

	collect := func(format string, a ...any) {
		pending = append(pending, fmt.Sprintf(format, a...))
	}

	cfg, err := config.Load(configPath, profile, collect)
	if err != nil {
		return err
	}

	applyOverrides(cmd.Flags(), &cfg)

	logger, err := logging.New(logging.Options{
		Dir:       cfg.LogDir,
		Verbosity: cfg.Verbosity,
		MaxSizeMB: cfg.MaxLogSizeMB,
		MaxFiles:  cfg.MaxLogFiles,
	})
	if err != nil {
		return fmt.Errorf("logging initialization failed: %w", err)
	}
	defer func() { _ = logger.Close() }()

	for _, warning := range pending {
		logger.Warnf("%s", warning)
	}

	listPath := defaultListFile
	if len(args) > 0 {
		listPath = args[0]
	}

	entries, err := repolist.Parse(listPath, logger.Warnf)
	if err != nil {
		if errors.Is(err, repolist.ErrListNotFound) {
			if werr := repolist.WriteSample(listPath); werr != nil {
				logger.Errorf("could not write sample repository list %s: %v", listPath, werr)
			} else {
				logger.Warnf("no repository list at %s; a sample was created, edit it and rerun", listPath)
			}
		}

		logger.Errorf("cannot proceed: %v", err)

		return err
	}

	dryRun, _ := cmd.Flags().GetBool("dry-run")
	if dryRun {
		logger.Infof("dry run: no filesystem or network changes will be made")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	plan := core.BuildPlan(entries, cfg.CloneDir)

	logger.Infof("processing %d repositories under %s", len(plan.Entries), cfg.CloneDir)

	runner := core.NewRunner(cfg, logger, core.NewConfirmer(cfg.Verbosity), dryRun)
	rc := runner.Run(ctx, plan)

	if rc.Interrupted {
		logger.Warnf("run interrupted before completion")
	}

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), report.Render(rc, cfg, profile))

	if rc.Failed() {
		_, failed, _ := rc.Counts()
		return fmt.Errorf("%d of %d repositories failed", failed, len(rc.Outcomes))
	}

	return nil
}

func defaultConfigPath() string {
	appDir, err := application.GetApplicationDirectory()
	if err != nil {
		return application.AppName + ".conf"
	}

	return filepath.Join(appDir, application.AppName+".conf")
}

// applyOverrides layers command-line flags over the file-resolved
// configuration. Flags win; --quiet wins over --verbose.
func applyOverrides(flags *pflag.FlagSet, cfg *config.Config) {
	if flags.Changed("retries") {
		if n, _ := flags.GetInt("retries"); n >= 1 {
			cfg.MaxRetries = n
		}
	}

	if flags.Changed("log") {
		if dir, _ := flags.GetString("log"); dir != "" {
			cfg.LogDir = dir
		}
	}

	if flags.Changed("verbose") {
		v, _ := flags.GetInt("verbose")

		if v < 0 {
			v = 0
		}

		if v > 4 {
			v = 4
		}

		cfg.Verbosity = v
	}

	if quiet, _ := flags.GetBool("quiet"); quiet {
		cfg.Verbosity = 0
	}
}
