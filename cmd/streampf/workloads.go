package main

import (
	"fmt"

	"github.com/sarchlab/streampf/workload"
	"github.com/spf13/cobra"
)

var workloadsCmd = &cobra.Command{
	Use:   "workloads",
	Short: "List the built-in workloads",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		for _, name := range workload.Names() {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
	},
}

func init() {
	rootCmd.AddCommand(workloadsCmd)
}
