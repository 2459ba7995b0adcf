package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/recwars/internal/bootstrap"
)

var mapsCmd = &cobra.Command{
	Use:   "maps",
	Short: "List the curated maps",
	Long: `Shows the maps a random pick chooses from. Any other map on the asset
server can still be played with --map.`,
	Run: runMaps,
}

func runMaps(cmd *cobra.Command, _ []string) {
	out := cmd.OutOrStdout()
	maps := bootstrap.Maps()

	// Calculate column widths
	maxNameLen := 4 // "Name" header
	for _, m := range maps {
		maxNameLen = max(maxNameLen, len(m))
	}

	fmt.Fprintf(out, "  %-*s  %s\n", maxNameLen, "Name", "Path")
	fmt.Fprintf(out, "  %-*s  %s\n", maxNameLen, "----", "----")
	for _, m := range maps {
		fmt.Fprintf(out, "  %-*s  %s\n", maxNameLen, m, bootstrap.MapPath(m))
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Run 'recwars play --map <name>' to play one.")
}
