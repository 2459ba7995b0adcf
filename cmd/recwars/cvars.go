package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/recwars/internal/bootstrap"
	"github.com/vovakirdan/recwars/internal/config"
)

var (
	flagCvarsBalance string
	flagCvarsYAML    bool
)

var cvarsCmd = &cobra.Command{
	Use:   "cvars [name ...]",
	Short: "Show runtime settings",
	Long: `Show cvars as a session would start with them: the balance profile, then
the cvars file, in that order.

With names only those cvars are printed, one value per line.

Examples:
  recwars cvars
  recwars cvars --balance recwar g_railgun_speed
  recwars cvars --yaml > ~/.recwars/cvars.yaml`,
	RunE: runCvars,
}

func init() {
	cvarsCmd.Flags().StringVar(&flagCvarsBalance, "balance", "", "Balance profile: recwars, recwar")
	cvarsCmd.Flags().BoolVar(&flagCvarsYAML, "yaml", false, "Print as a cvars YAML file")
}

func runCvars(cmd *cobra.Command, args []string) error {
	settings, err := bootstrap.Request{Balance: flagCvarsBalance}.Resolve(flagCvarsFile)
	if err != nil {
		return err
	}
	for _, w := range settings.Warnings {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", w)
	}
	c := settings.Cvars
	out := cmd.OutOrStdout()

	if flagCvarsYAML {
		data, err := config.Marshal(c)
		if err != nil {
			return err
		}
		_, err = out.Write(data)
		return err
	}

	if len(args) == 0 {
		printCvars(out, &c)
		return nil
	}
	for _, name := range args {
		v, err := c.Get(name)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, v)
	}
	return nil
}

// printCvars writes every cvar as a table sorted by name.
func printCvars(w io.Writer, c *config.Cvars) {
	fields := config.Fields()

	// Calculate column widths
	maxNameLen := len("NAME")
	for _, f := range fields {
		maxNameLen = max(maxNameLen, len(f.Name))
	}

	fmt.Fprintf(w, "%-*s  %-5s  %s\n", maxNameLen, "NAME", "KIND", "VALUE")
	for _, f := range fields {
		d := f.Describe(c)
		value := d.Current.String()
		if len(d.Choices) > 0 {
			value += "  (" + strings.Join(d.Choices, ", ") + ")"
		}
		fmt.Fprintf(w, "%-*s  %-5s  %s\n", maxNameLen, d.Name, d.Kind, value)
	}
}
