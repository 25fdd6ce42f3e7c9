package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/brizzai/swagger-token/internal/auth/providers"
	"github.com/brizzai/swagger-token/internal/backend"
	"github.com/brizzai/swagger-token/internal/browser"
	"github.com/brizzai/swagger-token/internal/callback"
	"github.com/brizzai/swagger-token/internal/config"
	"github.com/brizzai/swagger-token/internal/flow"
	"github.com/brizzai/swagger-token/internal/logger"
	"github.com/brizzai/swagger-token/internal/output"
	"github.com/brizzai/swagger-token/internal/requester"
)

func main() {
	Execute()
}

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "swagger-token",
	Short: "Get a backend service token for Swagger UI through social login",
	Long: `swagger-token opens the provider login page, catches the authorization code on a
local redirect listener, exchanges it for a provider access token and logs into the
backend with it. The service token it prints is ready to paste into Swagger UI.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runLogin,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	// Place version check in PreRun to ensure flags are parsed first
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		versionFlag, _ := cmd.Flags().GetBool("version")
		if versionFlag {
			pterm.Info.Println(config.GetVersionInfo())
			os.Exit(0)
		}
	}

	// runLogin reports its own failures
	if err := rootCmd.Execute(); err != nil {
		var runErr *flow.Error
		if !errors.As(err, &runErr) {
			pterm.Error.Println(err)
		}
		os.Exit(1)
	}
}

func init() {
	config.InitFlags(rootCmd.Flags())
	rootCmd.PersistentFlags().BoolP("version", "v", false, "Show version information")
}

func runLogin(cmd *cobra.Command, args []string) error {
	defer func() {
		if r := recover(); r != nil {
			pterm.Error.Printf("\nCaught panic: %v\n", r)
			pterm.Error.Printf("%s\n", debug.Stack())
			os.Exit(2)
		}
	}()

	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return err
	}
	if err := logger.InitLogger(&cfg.Logging); err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return redeem(ctx, cfg)
}

// redeem wires the application for cfg and performs a single run
func redeem(ctx context.Context, cfg *config.Config, opts ...fx.Option) error {
	var (
		f       *flow.Flow
		printer *output.Printer
	)
	app := newApp(cfg, append(opts, fx.Populate(&f, &printer))...)
	if err := app.Err(); err != nil {
		return err
	}

	res, err := f.Run(ctx)
	if err != nil {
		printer.PrintError(err)
		return err
	}
	return printer.PrintResult(res)
}

func newApp(cfg *config.Config, opts ...fx.Option) *fx.App {
	return fx.New(
		fx.WithLogger(func() fxevent.Logger {
			return &fxevent.ZapLogger{Logger: logger.GetLogger()}
		}),
		fx.Supply(cfg),
		config.Module,
		requester.Module,
		providers.Module,
		backend.Module,
		callback.Module,
		browser.Module,
		output.Module,
		flow.Module,
		fx.Options(opts...),
	)
}
