package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/recwars/internal/storage"
)

var (
	flagPingsLimit int
	flagPingsStats bool
	flagPingsPrune time.Duration
)

var pingsCmd = &cobra.Command{
	Use:   "pings",
	Short: "Show telemetry received by the directory",
	Long: `Display the newest telemetry pings recorded by 'recwars serve', or the
number of sessions per map with --stats.

Examples:
  recwars pings
  recwars pings --limit 50
  recwars pings --stats
  recwars pings --prune 720h`,
	RunE: runPings,
}

func init() {
	pingsCmd.Flags().IntVar(&flagPingsLimit, "limit", 20, "How many pings to show")
	pingsCmd.Flags().BoolVar(&flagPingsStats, "stats", false, "Show sessions per map")
	pingsCmd.Flags().DurationVar(&flagPingsPrune, "prune", 0, "Delete pings older than this first")
}

func runPings(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	store, err := storage.Open(flagDBPath)
	if err != nil {
		return fmt.Errorf("opening directory database: %w", err)
	}
	defer store.Close()

	if flagPingsPrune > 0 {
		n, err := store.Prune(ctx, time.Now().Add(-flagPingsPrune))
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Pruned %d pings.\n\n", n)
	}

	if flagPingsStats {
		stats, err := store.Stats(ctx)
		if err != nil {
			return err
		}
		if len(stats) == 0 {
			fmt.Fprintln(out, "No pings recorded yet.")
			return nil
		}
		fmt.Fprintf(out, "  %-8s  %-16s  %s\n", "Sessions", "Last seen", "Map")
		fmt.Fprintf(out, "  %-8s  %-16s  %s\n", "--------", "---------", "---")
		for _, m := range stats {
			fmt.Fprintf(out, "  %-8d  %-16s  %s\n", m.Sessions, m.LastSeen.Format("2006-01-02 15:04"), m.Map)
		}
		return nil
	}

	pings, err := store.RecentPings(ctx, flagPingsLimit)
	if err != nil {
		return err
	}
	if len(pings) == 0 {
		fmt.Fprintln(out, "No pings recorded yet.")
		return nil
	}

	fmt.Fprintf(out, "  %-16s  %-12s  %-8s  %-15s  %s\n", "Date", "Client", "Balance", "Remote", "Map")
	fmt.Fprintf(out, "  %-16s  %-12s  %-8s  %-15s  %s\n", "----", "------", "-------", "------", "---")
	for _, p := range pings {
		fmt.Fprintf(out, "  %-16s  %-12s  %-8s  %-15s  %s\n",
			p.CreatedAt.Format("2006-01-02 15:04"), p.Client, p.Balance, p.Remote, p.Map)
	}
	return nil
}
