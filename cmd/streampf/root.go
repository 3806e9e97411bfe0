package main

import (
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "streampf",
	Short: "streampf simulates a stream prefetcher attached to a cache.",
	Long: `streampf simulates a stream prefetcher attached to a cache ` +
		`controller. Flags can also be set with STREAMPF_* environment ` +
		`variables, which are loaded from a .env file if one exists.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := loadEnvFile(envFile); err != nil {
			return err
		}

		return applyEnv(cmd.Flags())
	},
}

var envFile string

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env",
		"The file to load environment variables from.")
}

// Execute adds all child commands to the root command and runs the one
// selected by the arguments.
func Execute() error {
	return rootCmd.Execute()
}
