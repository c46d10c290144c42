// Package main is the entry point for codemate.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dshills/codemate/internal/app"
	"github.com/dshills/codemate/internal/config"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, msg := app.UserMessage(err)
		fmt.Fprintln(os.Stderr, msg)
		os.Exit(1)
	}
}

// options are the global flags.
type options struct {
	configPath string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "codemate [file]",
		Short: "Terminal editor with AI code completion",
		Long: `codemate opens a file in a small terminal editor and completes code with
an AI model. Suggestions are shown in place and only kept after you accept
them. Every accepted suggestion can be undone, redone and revealed from the
AI history panel.

Keys:
  Alt+C   complete code before the cursor
  Alt+A   ask for code with a chat request
  Alt+U   undo the last AI update
  Alt+R   redo the last undone AI update
  Alt+H   show the AI history panel
  Alt+X   run a command (complete, chat, undo, redo, reveal N, history, save, quit)
  Ctrl+S  save
  Ctrl+Q  quit`,
		Version:       version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			return runEditor(cmd.Context(), opts, path)
		},
	}
	cmd.SetVersionTemplate("codemate {{.Version}}\n")

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "config file (default "+config.DefaultPath()+")")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override log.level (debug, info, warn, error)")

	cmd.AddCommand(
		newCompleteCmd(opts),
		newConfigCmd(opts),
		newVersionCmd(),
	)
	return cmd
}

func (o *options) path() string {
	if o.configPath != "" {
		return o.configPath
	}
	return config.DefaultPath()
}

// loadLogger reads the config and creates the logger it describes.
func (o *options) loadLogger() (*config.Config, *app.Logger, error) {
	cfg, err := config.Load(o.path())
	if err != nil {
		return nil, nil, err
	}
	lc := app.LoggerConfigFrom(cfg)
	if o.logLevel != "" {
		level, err := config.ParseLevel(o.logLevel)
		if err != nil {
			return nil, nil, err
		}
		lc.Level = level
	}
	return cfg, app.NewLogger(lc), nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "codemate %s\n", version)
			fmt.Fprintf(out, "Commit: %s\n", commit)
			fmt.Fprintf(out, "Built: %s\n", date)
		},
	}
}
