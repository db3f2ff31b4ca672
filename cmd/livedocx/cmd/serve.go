package cmd

import (
	"context"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/zeptools/gw-livedocx/apis/livedocx"
	"github.com/zeptools/gw-livedocx/gateway"
	"github.com/zeptools/gw-livedocx/routing"
	"github.com/zeptools/gw-livedocx/servers"
	"github.com/zeptools/gw-livedocx/throttle"
)

const DefaultListen = "127.0.0.1:8090"

var (
	serveListen     string
	serveTrustProxy bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP render gateway",
	Long: `Serves the /v1 render API. Every request gets its own service session.
Bearer auth is on when gateway.jwt_secret is set in .core.json.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveListen, "listen", "", "listen address (default: listen in .core.json or "+DefaultListen+")")
	serveCmd.Flags().BoolVar(&serveTrustProxy, "trust-proxy", false, "take client IPs from X-Forwarded-For for logs and throttling")
}

func runServe(cmd *cobra.Command, args []string) error {
	if err := core.PrepareLiveDocx(); err != nil {
		return err
	}
	if err := core.PrepareOptionalDatabases(); err != nil {
		return err
	}
	addr := serveListen
	if addr == "" {
		addr = core.Listen
	}
	if addr == "" {
		addr = DefaultListen
	}

	gw := &gateway.Gateway{
		Session: func(ctx context.Context, fn func(ctx context.Context, c *livedocx.Client) error) error {
			return core.LiveDocxSession(ctx, fn)
		},
		Archive:    core.DocumentArchive,
		Ledger:     core.TemplateLedger,
		ArchiveAll: core.Gateway.ArchiveDocs,
		TrustProxy: serveTrustProxy,
		Logger:     core.Logger.Named("gateway"),
	}
	if core.Gateway.MaxBodyMB > 0 {
		gw.MaxBodyBytes = core.Gateway.MaxBodyMB << 20
	}
	if rate := core.Gateway.RenderRate; rate != nil {
		if err := rate.Validate(); err != nil {
			return err
		}
		store := throttle.NewBucketStore[string](core.Logger.Named("throttle"))
		store.SetBucketGroup(gateway.RenderThrottleGroup, rate)
		// an idle bucket older than this is full again anyway
		idle := max(10*time.Minute, rate.Period*time.Duration(rate.Burst))
		go store.RunCleanup(core.RootCtx, time.Minute, idle)
		gw.Throttle = store
	}
	var auth routing.HandlerWrapper
	if core.Gateway.JWTSecret != "" {
		auth = &routing.BearerAuthWrapper{
			Secret: []byte(core.Gateway.JWTSecret),
			Issuer: core.Gateway.Issuer,
			Logger: core.Logger.Named("auth"),
		}
	} else {
		core.Logger.Warn("gateway.jwt_secret is empty. /v1 is served without authentication")
	}

	server := &http.Server{
		Addr:              addr,
		Handler:           gw.Handler(auth),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return servers.RunWithGracefulShutdown(core.RootCtx, server, core.Logger.Named("server"), nil, core.ShutdownTimeoutDuration())
}
