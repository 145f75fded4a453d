package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/dronedispatch/app"
	"github.com/kilianp07/dronedispatch/core/dispatch"
	eco "github.com/kilianp07/dronedispatch/core/metrics/eco"
	"github.com/kilianp07/dronedispatch/jobs/ecokpi"
	"github.com/kilianp07/dronedispatch/pkg/export"
	"github.com/kilianp07/dronedispatch/qa/scenarios"
)

var (
	simDuration time.Duration
	simTick     time.Duration
	simScenario string
	simExport   string
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run the demo request script on a simulated clock and print statistics",
	RunE:  runSimulate,
}

func init() {
	simulateCmd.Flags().DurationVar(&simDuration, "duration", 5*time.Minute, "simulated time span")
	simulateCmd.Flags().DurationVar(&simTick, "tick", time.Second, "simulated clock step")
	simulateCmd.Flags().StringVar(&simScenario, "scenario", "", "scenario YAML file replacing the demo script")
	simulateCmd.Flags().StringVar(&simExport, "export", "", "write the requests to a .csv or .json file")
	rootCmd.AddCommand(simulateCmd)
}

func runSimulate(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	start := time.Now().UTC().Truncate(time.Second)
	sim := app.DefaultSimulation(start)
	sim.Duration = simDuration
	sim.Tick = simTick
	if simScenario != "" {
		sc, err := scenarios.Load(simScenario)
		if err != nil {
			return fmt.Errorf("load scenario: %w", err)
		}
		sc.Apply(cfg)
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("scenario fleet: %w", err)
		}
		sim = sc.Simulation(start)
	}
	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = svc.Close() }()

	rep, err := svc.Simulate(ctx, sim)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if err := printReport(out, rep); err != nil {
		return err
	}
	if err := printEco(out, rep, cfg.Energy.EmissionFactor); err != nil {
		return err
	}
	if simExport != "" {
		return exportRequests(simExport, rep)
	}
	return nil
}

func exportRequests(path string, rep app.Report) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return export.WriteJSON(f, rep.Requests)
	case ".csv":
		return export.WriteCSV(f, rep.Requests)
	default:
		return fmt.Errorf("unsupported export format: %s", path)
	}
}

// printEco lists the daily ecological KPIs per drone.
func printEco(out io.Writer, rep app.Report, factor float64) error {
	store := eco.NewMemoryStore()
	n, err := ecokpi.Backfill(store, rep.Requests)
	if err != nil || n == 0 {
		return err
	}
	drones := map[string]bool{}
	var first, last time.Time
	for _, r := range rep.Requests {
		if r.Outcome == nil {
			continue
		}
		drones[r.DroneID] = true
		if first.IsZero() || r.CompletedAt.Before(first) {
			first = r.CompletedAt
		}
		if r.CompletedAt.After(last) {
			last = r.CompletedAt
		}
	}
	ids := make([]string, 0, len(drones))
	for id := range drones {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "\nDRONE\tDAY\tDELIVERIES\tSAVED_KWH\tRATIO\tCO2_KG")
	for _, id := range ids {
		recs, err := store.Query(id, first, last)
		if err != nil {
			return err
		}
		for _, r := range recs {
			fmt.Fprintf(w, "%s\t%s\t%d\t%.4f\t%.1f\t%.4f\n", id, r.Date.Format("2006-01-02"), r.Deliveries,
				r.SavedKWh(), r.EnergyRatio(), r.CO2Avoided(factor))
		}
	}
	return w.Flush()
}

func printReport(out io.Writer, rep app.Report) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "REQUEST\tREQUESTER\tPRIORITY\tSTATUS\tDRONE\tDISTANCE_M\tSAVED_KWH")
	for _, r := range rep.Requests {
		dist, saved := "-", "-"
		if r.Outcome != nil {
			dist = fmt.Sprintf("%.1f", r.Outcome.DistanceM)
			saved = fmt.Sprintf("%.4f", r.Outcome.SavedKWh)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n", shortID(r.ID), r.Requester, r.Priority, r.Status, r.DroneID, dist, saved)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(out, "\nsimulated %s, %d rejected\n", rep.Elapsed, rep.Rejected)
	printStats(out, rep.Stats)
	return nil
}

func printStats(out io.Writer, s dispatch.Stats) {
	fmt.Fprintf(out, "completed: %d  pending: %d  interceptions: %d\n", s.Completed, s.Pending, s.Interceptions)
	fmt.Fprintf(out, "routes: %d planned, %d fallback, avg efficiency %.3f\n", s.PlannedRoutes, s.FallbackRoutes, s.AvgPathEfficiency)
	fmt.Fprintf(out, "energy saved: %.4f kWh total, %.4f kWh avg; CO2 saved %.4f kg over %.1f m\n",
		s.TotalSavedKWh, s.AvgSavedKWh, s.TotalCO2SavedKg, s.TotalDistanceM)
	for _, group := range []struct {
		name string
		m    map[string]int
	}{
		{"requests by status", s.RequestsByStatus},
		{"requests by priority", s.RequestsByPriority},
		{"drones by status", s.DronesByStatus},
		{"drones by class", s.DronesByClass},
	} {
		fmt.Fprintf(out, "%s:", group.name)
		keys := make([]string, 0, len(group.m))
		for k := range group.m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(out, " %s=%d", k, group.m[k])
		}
		fmt.Fprintln(out)
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

