// Package app wires configuration, logging, providers and menus into the
// cobra root command.
package app

import (
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"finterm/internal/analysis/indicators"
	"finterm/internal/cli"
	"finterm/internal/config"
	"finterm/internal/logging"
	"finterm/internal/menu"
	"finterm/internal/models"
	"finterm/internal/providers"
	"finterm/internal/store"
)

// Version information
const (
	Version   = "0.1.0"
	BuildDate = "2026-08-24"
)

// NewRootCmd creates the root command. Running it without a subcommand
// loads the optional TICKER argument and enters the interactive main menu.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "finterm [TICKER]",
		Short: "finterm - terminal financial research",
		Long: `finterm is an interactive terminal for financial research.

It loads a ticker's OHLCV history and drops into a menu-driven session with
technical analysis, social sentiment, SEC filings and crypto data commands.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runInteractive,
	}

	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/finterm)")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging on the console")
	rootCmd.PersistentFlags().Bool("no-color", false, "disable colored output")
	rootCmd.Flags().StringP("start", "s", "", "history start date (YYYY-MM-DD)")
	rootCmd.Flags().StringP("interval", "i", string(models.IntervalDaily), "candle interval")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

// loadConfig reads the config honoring the --config flag.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	dir, _ := cmd.Flags().GetString("config")
	return config.Load(dir)
}

func runInteractive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	debug, _ := cmd.Flags().GetBool("debug")
	logCfg := logging.DefaultLogConfig()
	logCfg.Level = cfg.Logging.Level
	logCfg.Console = cfg.Logging.Console || debug
	logger := logging.NewLoggerWithConfig(logCfg)
	if debug {
		logging.SetDebugLevel()
		logger = logger.Level(zerolog.DebugLevel)
	}

	noColor, _ := cmd.Flags().GetBool("no-color")
	out := cli.NewOutput(cmd.OutOrStdout(), cfg.Terminal.ColorEnabled && !noColor)

	deps := buildDeps(cfg, out, logger)
	if deps.Cache != nil {
		defer deps.Cache.Close()
		cutoff := time.Now().Add(-7 * 24 * time.Hour)
		if err := deps.Cache.Purge(cmd.Context(), cutoff); err != nil {
			logger.Warn().Err(err).Msg("Failed to purge stale cache rows")
		}
	}

	session := &menu.Session{}
	main, err := menu.NewMain(deps, session, cmd.InOrStdin())
	if err != nil {
		return err
	}

	out.Bold("finterm v%s", Version)
	out.Dim("Type help for commands, quit to exit.")

	// A TICKER argument preloads the session before the loop starts.
	if len(args) == 1 {
		loadArgs := []string{strings.ToUpper(args[0])}
		if start, _ := cmd.Flags().GetString("start"); start != "" {
			loadArgs = append(loadArgs, "--start", start)
		}
		if interval, _ := cmd.Flags().GetString("interval"); interval != "" {
			loadArgs = append(loadArgs, "--interval", interval)
		}
		main.Dispatch("load " + strings.Join(loadArgs, " "))
	}

	sig := main.Run()
	logger.Info().Str("signal", sig.String()).Msg("Session ended")
	return nil
}

// buildDeps constructs the provider set and indicator engine behind the menus.
func buildDeps(cfg *config.Config, out *cli.Output, logger zerolog.Logger) menu.Deps {
	client := providers.NewClient(cfg.Providers.Timeout, cfg.Providers.UserAgent, logger)

	var cache store.CandleStore
	if cfg.Cache.Enabled {
		s, err := store.NewSQLiteStore(cfg.Cache.Path)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to open candle cache, continuing without it")
		} else {
			cache = s
		}
	}

	return menu.Deps{
		Out:    out,
		Logger: logger,
		Cfg:    cfg,
		Cache:  cache,

		Yahoo:       providers.NewYahoo(client),
		Finviz:      providers.NewFinviz(client),
		FinBrain:    providers.NewFinBrain(client, cfg.Providers.FinBrainKey),
		TradingView: providers.NewTradingView(client),
		Finnhub:     providers.NewFinnhub(client, cfg.Providers.FinnhubKey),
		CoinGecko:   providers.NewCoinGecko(client),
		EthGas:      providers.NewEthGas(client),
		WFees:       providers.NewWithdrawalFees(client),
		MarketWatch: providers.NewMarketWatch(client),
		StockTwits:  providers.NewStockTwits(client),

		Engine: indicators.NewEngine(runtime.NumCPU()),
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			out := cli.NewOutput(cmd.OutOrStdout(), false)
			out.Printf("finterm v%s\n", Version)
			out.Dim("Build date: %s", BuildDate)
		},
	}
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "View and validate application configuration.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			out := cli.NewOutput(cmd.OutOrStdout(), false)
			showConfig(out, cfg)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration directory path",
		Run: func(cmd *cobra.Command, args []string) {
			out := cli.NewOutput(cmd.OutOrStdout(), false)
			out.Println(config.DefaultConfigDir())
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration files",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			out := cli.NewOutput(cmd.OutOrStdout(), false)
			if err := cfg.Validate(); err != nil {
				out.Error("Configuration validation failed: %v", err)
				return err
			}
			out.Success("Configuration is valid")
			return nil
		},
	})

	return cmd
}

func showConfig(out *cli.Output, cfg *config.Config) {
	out.Bold("Terminal")
	out.Printf("  Color:           %v\n", cfg.Terminal.ColorEnabled)
	out.Printf("  Charts:          %v\n", cfg.Terminal.Charts)
	out.Printf("  Flair:           %s\n", cfg.Terminal.Flair)
	out.Println()

	out.Bold("Providers")
	out.Printf("  Timeout:         %s\n", cfg.Providers.Timeout)
	out.Printf("  Finnhub key:     %s\n", maskKey(cfg.Providers.FinnhubKey))
	out.Printf("  FinBrain key:    %s\n", maskKey(cfg.Providers.FinBrainKey))
	out.Println()

	out.Bold("Cache")
	out.Printf("  Enabled:         %v\n", cfg.Cache.Enabled)
	out.Printf("  Path:            %s\n", cfg.Cache.Path)
	out.Printf("  TTL:             %s\n", cfg.Cache.TTL)
	out.Println()

	out.Bold("Export")
	out.Printf("  Directory:       %s\n", cfg.Export.Dir)
	out.Printf("  Default format:  %s\n", displayFormat(cfg.Export.DefaultFormat))
	out.Println()

	out.Bold("Logging")
	out.Printf("  Level:           %s\n", cfg.Logging.Level)
	out.Printf("  Console:         %v\n", cfg.Logging.Console)
}

func maskKey(key string) string {
	if key == "" {
		return "(not set)"
	}
	if len(key) <= 4 {
		return "****"
	}
	return strings.Repeat("*", len(key)-4) + key[len(key)-4:]
}

func displayFormat(f string) string {
	if f == "" {
		return "(none)"
	}
	return f
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
