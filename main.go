// Command collabboard hosts, mirrors and renders shared whiteboards.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"CollabBoard/internal/config"
	"CollabBoard/internal/logging"
)

var (
	flagConfPath string
	flagLogLevel string

	conf = config.NewConfig()
)

var rootCmd = &cobra.Command{
	Use:           "collabboard",
	Short:         "Shared whiteboard for the local network",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig(cmd)
	},
}

// loadConfig resolves the config: file, then environment, then flags.
func loadConfig(cmd *cobra.Command) error {
	if flagConfPath != "" {
		parsed, err := config.NewConfigFromFile(flagConfPath)
		if err != nil {
			return err
		}
		conf = parsed
	}
	if err := conf.ApplyEnv(); err != nil {
		return err
	}
	if cmd.Flags().Changed("log-level") {
		conf.LogLevel = flagLogLevel
	}
	if err := conf.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if err := logging.SetLogLevel(conf.LogLevel); err != nil {
		return err
	}

	cmd.SetContext(logging.IntoContext(cmd.Context(), logging.New(cmd.Name())))
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVarP(
		&flagConfPath,
		"config",
		"c",
		"",
		"Config path",
	)
	rootCmd.PersistentFlags().StringVarP(
		&flagLogLevel,
		"log-level",
		"l",
		config.DefaultLogLevel,
		"Log level: debug, info, warn, error, panic, fatal",
	)

	rootCmd.AddCommand(newHostCmd())
	rootCmd.AddCommand(newMirrorCmd())
	rootCmd.AddCommand(newRenderCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "collabboard:", err)
		os.Exit(1)
	}
}
