package cmd

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	cfgPath string
	verbose bool

	opts Options
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "docpack",
	Short: "docpack - binary document frames",
	Long: `docpack packs JSON documents into checksummed binary frames and
reads them back, either materialized or as zero-copy views.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		initLogger()
		var err error
		opts, err = loadOptions(cfgPath)
		if err != nil {
			return err
		}
		log.Debug().
			Int("scratch_capacity", opts.ScratchCapacity).
			Bool("compress", opts.Compress).
			Int("level", opts.Level).
			Msg("options resolved")
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func initLogger() {
	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}
	logger := zerolog.New(output).With().Timestamp().Str("app", "docpack").Logger()
	if !verbose {
		logger = logger.Level(zerolog.InfoLevel)
	}
	log.Logger = logger
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "Path to a TOML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}
