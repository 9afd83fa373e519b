package cli

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/strmfi/vestd/internal/config"
)

var (
	// Global flags
	configFile string
	debug      bool
	verbose    bool
	quiet      bool

	// cfg is the loaded configuration, populated by initConfig and
	// consumed by subcommands via loadedConfig().
	cfg *config.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "vestd",
	Short: "vestd - token vesting and timelock escrow daemon",
	Long: `vestd is a daemon that creates, settles and cancels token-vesting
escrow contracts on a vesting schedule. It exposes a JSON-RPC 2.0 API for
submitting instructions (create, withdraw, topup, transfer_recipient,
cancel) and a gRPC health-check surface for orchestration.

This is a native Go implementation following Go conventions and idioms,
not a translation of any other vesting-protocol program.`,
	Version: "0.1.0-dev",
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&configFile, "conf", "", "configuration file path")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable normally suppressed debug logging")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress output to console after startup")
}

// initConfig loads configuration from defaults, an optional file, and
// VESTD_-prefixed environment variables, in that order. Subcommands
// read the result via loadedConfig().
func initConfig() {
	paths := config.DefaultConfigPaths()
	if configFile != "" {
		paths.Main = configFile
	}

	loaded, err := config.LoadConfig(paths)
	if err != nil {
		log.Fatalf("vestd: loading configuration: %v", err)
	}
	cfg = loaded
}

// loadedConfig returns the configuration initConfig populated,
// building it on the fly if a subcommand runs outside cobra's normal
// OnInitialize hook (e.g. from a test harness).
func loadedConfig() *config.Config {
	if cfg == nil {
		initConfig()
	}
	return cfg
}
