// Package cli is the command-line boundary of livraria: cobra commands for
// one-shot use and the numbered interactive menu.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/xiebiao/livraria/internal/application/catalog"
	"github.com/xiebiao/livraria/internal/infrastructure/config"
	"github.com/xiebiao/livraria/pkg/logger"
	"github.com/xiebiao/livraria/pkg/metrics"
)

// Services are the collaborators a command needs, assembled once flags and
// configuration are known.
type Services struct {
	Catalog *catalog.Catalog
	Metrics *metrics.Recorder
}

// Builder assembles Services (the Wire injector in cmd/livraria).
type Builder func(cfg *config.Config, log zerolog.Logger) (*Services, error)

// Options configure an App.
type Options struct {
	Version string
	Stdin   io.Reader
	Stdout  io.Writer
	Stderr  io.Writer
	Build   Builder
}

// App holds the state shared by every command of one process run.
type App struct {
	version string
	out     io.Writer
	errOut  io.Writer
	prompt  *Prompter
	build   Builder

	// interactive is true when stdin is a terminal; the menu only pauses then
	interactive bool

	flags struct {
		configFile string
		baseDir    string
		logLevel   string
		verbose    bool
	}

	cfg      *config.Config
	log      zerolog.Logger
	closeLog func() error
	svc      *Services
	money    *MoneyFormatter
}

// NewApp creates the application.
func NewApp(opts Options) *App {
	a := &App{
		version:  opts.Version,
		out:      opts.Stdout,
		errOut:   opts.Stderr,
		prompt:   NewPrompter(opts.Stdin, opts.Stdout),
		build:    opts.Build,
		log:      zerolog.Nop(),
		closeLog: func() error { return nil },
	}
	if f, ok := opts.Stdin.(*os.File); ok {
		a.interactive = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return a
}

// Execute runs the command line in args.
func (a *App) Execute(ctx context.Context, args []string) error {
	root := a.createRootCommand()
	root.SetArgs(args)
	root.SetOut(a.out)
	root.SetErr(a.errOut)

	err := root.ExecuteContext(ctx)
	a.finish()
	return err
}

func (a *App) createRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:     "livraria",
		Short:   "Bookstore catalog manager",
		Version: a.version,
		Long: `livraria manages a bookstore catalog stored in a local SQLite file.

Run without a command to open the interactive menu. Every change is preceded
by an automatic backup (the newest five are kept), and the catalog can be
exchanged with other tools as CSV through the exports directory.`,
		PersistentPreRunE: a.setupCommand,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runMenu(cmd.Context())
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddGroup(
		&cobra.Group{ID: "catalog", Title: "Catalog Commands:"},
		&cobra.Group{ID: "files", Title: "File Commands:"},
	)

	root.PersistentFlags().StringVar(&a.flags.configFile, "config", "", "config file (default ./config/livraria.yaml or ./livraria.yaml)")
	root.PersistentFlags().StringVar(&a.flags.baseDir, "base-dir", "", "directory holding data/, backups/ and exports/")
	root.PersistentFlags().StringVar(&a.flags.logLevel, "log-level", "", "log level: debug, info, warn, error")
	root.PersistentFlags().BoolVarP(&a.flags.verbose, "verbose", "v", false, "verbose output (shortcut for --log-level=debug)")

	root.SetVersionTemplate("livraria {{.Version}}\n")

	a.registerCommands(root)
	return root
}

// setupCommand loads configuration, builds the logger and the services.
// The logger is also stored in the command context for the menu and actions.
func (a *App) setupCommand(cmd *cobra.Command, _ []string) error {
	// 1. configuration, flags win over file and environment
	cfg, err := config.Load(a.flags.configFile)
	if err != nil {
		return err
	}
	if a.flags.baseDir != "" {
		cfg.App.BaseDir = a.flags.baseDir
	}

	// 2. logger
	logCfg := logger.DefaultConfig()
	logCfg.Level = cfg.Log.Level
	logCfg.Format = cfg.Log.Format
	logCfg.Output = cfg.Log.Output
	logCfg.AddCaller = cfg.Log.EnableCaller
	if a.flags.logLevel != "" {
		logCfg.Level = a.flags.logLevel
	}
	if a.flags.verbose {
		logCfg.Level = "debug"
	}
	log, closeLog, err := logger.New(logCfg)
	if err != nil {
		return err
	}
	a.log, a.closeLog = log, closeLog
	cmd.SetContext(logger.WithContext(cmd.Context(), log))

	// 3. services
	svc, err := a.build(cfg, log)
	if err != nil {
		return err
	}
	a.cfg, a.svc = cfg, svc
	a.money = NewMoneyFormatter(cfg.Display.Locale, cfg.Display.CurrencySymbol)

	a.log.Debug().Str("base_dir", cfg.App.BaseDir).Msg("livraria ready")
	return nil
}

// finish writes the metrics textfile when configured and releases the log file.
func (a *App) finish() {
	a.prompt.Close()
	if a.svc != nil && a.cfg.Metrics.Textfile != "" {
		if err := a.svc.Metrics.WriteTextfile(a.cfg.Metrics.Textfile); err != nil {
			a.log.Warn().Err(err).Str("file", a.cfg.Metrics.Textfile).Msg("write metrics textfile")
		}
	}
	if err := a.closeLog(); err != nil {
		fmt.Fprintln(a.errOut, "close log:", err)
	}
}

func (a *App) catalog() *catalog.Catalog {
	return a.svc.Catalog
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}
