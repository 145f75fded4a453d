package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kilianp07/dronedispatch/core/facility"
)

var layoutCmd = &cobra.Command{
	Use:   "layout",
	Short: "Print the facility graph",
	RunE:  runLayout,
}

func init() {
	rootCmd.AddCommand(layoutCmd)
}

func runLayout(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	g, err := facility.FromLayout(cfg.Facility)
	if err != nil {
		return fmt.Errorf("facility: %w", err)
	}
	return printLayout(cmd.OutOrStdout(), g)
}

func printLayout(out io.Writer, g *facility.Graph) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tX\tY\tFLOOR\tCHARGING")
	for _, l := range g.Locations() {
		fmt.Fprintf(w, "%d\t%s\t%.1f\t%.1f\t%d\t%t\n", l.ID, l.Name, l.Pos.X, l.Pos.Y, l.Floor, l.Charging)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "FROM\tTO\tWEIGHT_M")
	for _, p := range g.Pathways() {
		fmt.Fprintf(w, "%d\t%d\t%.1f\n", p.From, p.To, p.Weight)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	b := g.Bounds()
	fmt.Fprintf(out, "\nbounds: (%.1f, %.1f) - (%.1f, %.1f)\n", b.MinX, b.MinY, b.MaxX, b.MaxY)
	return nil
}
