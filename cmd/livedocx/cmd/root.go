package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/zeptools/gw-livedocx/apis/livedocx"
	"github.com/zeptools/gw-livedocx/archive"
	"github.com/zeptools/gw-livedocx/conf"
)

const AppRootEnv = "LIVEDOCX_APP_ROOT"

var (
	appRoot string
	verbose bool

	core *conf.Core
)

var rootCmd = &cobra.Command{
	Use:   "livedocx",
	Short: "LiveDocx mail-merge client and render gateway",
	Long: `livedocx talks to the LiveDocx SOAP mail-merge service.

Configuration is read from <app-root>/config:
  .core.json            app name, listen address, logging, gateway auth
  .livedocx.{json,toml,yaml}
                        service url, credentials (pw or pw_enc), timeout
  .kv-databases.json    optional redis document archive
  .sql-databases.json   optional template event ledger (pgsql, mysql)`,
	SilenceUsage:      true,
	PersistentPreRunE: initCore,
}

// Execute runs the CLI and releases core resources afterwards
func Execute() error {
	defer func() {
		if core != nil {
			core.RootCancel()
			core.ResourceCleanUp()
		}
	}()
	err := rootCmd.Execute()
	if err != nil {
		printError(err)
	}
	return err
}

func init() {
	defaultRoot := os.Getenv(AppRootEnv)
	if defaultRoot == "" {
		defaultRoot = "."
	}
	rootCmd.PersistentFlags().StringVar(&appRoot, "app-root", defaultRoot, "directory holding config/ (env "+AppRootEnv+")")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.SilenceErrors = true
}

func initCore(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	c := &conf.Core{}
	if err := c.BaseInit(appRoot, ctx, cancel); err != nil {
		cancel()
		return err
	}
	if verbose {
		logger, err := conf.NewLogger("debug", true)
		if err != nil {
			cancel()
			return err
		}
		c.Logger = logger
		zap.ReplaceGlobals(logger.Desugar())
	}
	core = c
	return nil
}

func printError(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
}

// withSession loads the service config and runs fn in a logged-in session
func withSession(fn func(ctx context.Context, c *livedocx.Client) error) error {
	if err := core.PrepareLiveDocx(); err != nil {
		return err
	}
	return core.LiveDocxSession(core.RootCtx, fn)
}

// recordEvent writes to the ledger when one is configured
func recordEvent(e archive.Event) {
	if core.TemplateLedger == nil {
		return
	}
	if err := core.TemplateLedger.Record(core.RootCtx, e); err != nil {
		core.Logger.Warnw("template event not recorded", "template", e.Template, "action", e.Action, "error", err)
	}
}
