package main

import (
	"context"
	"fmt"
	"io"

	"github.com/sarchlab/streampf/datarecording"
	"github.com/spf13/cobra"
)

type prefetchStatRow struct {
	Prefetcher string
	Name       string
	Value      uint64
}

type cacheStatRow struct {
	Component string
	Name      string
	Value     uint64
}

var reportCmd = &cobra.Command{
	Use:   "report [database file]",
	Short: "Print the statistics recorded in a database",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return printRecordedReport(cmd.Context(), args[0], cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
}

func printRecordedReport(
	ctx context.Context,
	dbFile string,
	out io.Writer,
) error {
	reader, err := datarecording.NewReader(dbFile)
	if err != nil {
		return err
	}
	defer reader.Close()

	reader.MapTable("exec_info", datarecording.ExecInfo{})
	reader.MapTable("cache_stats", cacheStatRow{})
	reader.MapTable("prefetch_stats", prefetchStatRow{})

	execInfo, _, err := reader.Query(ctx, "exec_info", datarecording.QueryParams{})
	if err != nil {
		return err
	}

	for _, r := range execInfo {
		info := r.(*datarecording.ExecInfo)
		fmt.Fprintf(out, "%s: %s\n", info.Property, info.Value)
	}

	cacheStats, _, err := reader.Query(ctx, "cache_stats",
		datarecording.QueryParams{OrderBy: "rowid"})
	if err != nil {
		return err
	}

	for _, r := range cacheStats {
		row := r.(*cacheStatRow)
		fmt.Fprintf(out, "%s %-36s %d\n", row.Component, row.Name, row.Value)
	}

	// Runs without a prefetcher do not have the table.
	pfStats, _, err := reader.Query(ctx, "prefetch_stats",
		datarecording.QueryParams{OrderBy: "rowid"})
	if err != nil {
		return nil
	}

	for _, r := range pfStats {
		row := r.(*prefetchStatRow)
		fmt.Fprintf(out, "%s %-36s %d\n", row.Prefetcher, row.Name, row.Value)
	}

	return nil
}
