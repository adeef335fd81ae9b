package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/jointsim/internal/config"
	"github.com/san-kum/jointsim/internal/log"
	"github.com/san-kum/jointsim/internal/optim"
	"github.com/san-kum/jointsim/internal/scene"
	"github.com/san-kum/jointsim/internal/storage"
	"github.com/san-kum/jointsim/internal/viz"
)

var (
	dataDir  string
	logLevel string
	dt       float64
	duration float64
	fps      int
	joints   string
	pairName string
	kpGrid   string
	kiGrid   string
	kdGrid   string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "jointsim",
		Short: "joint synchronization simulation lab",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".jointsim", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	runCmd := &cobra.Command{
		Use:   "run [scene.yaml]",
		Short: "run a scene and save the result",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runScene,
	}
	runCmd.Flags().Float64Var(&dt, "dt", 0, "override step size")
	runCmd.Flags().Float64Var(&duration, "time", 0, "override duration")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a saved run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&joints, "joints", "", "comma-separated joints to plot (default all)")

	liveCmd := &cobra.Command{
		Use:   "live [scene.yaml]",
		Short: "run a scene with live visualization",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	liveCmd.Flags().IntVar(&fps, "fps", 30, "frame rate")
	liveCmd.Flags().StringVar(&joints, "joints", "", "comma-separated joints to trace (default all)")

	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "write the default scene file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "scene.yaml"
			if len(args) == 1 {
				path = args[0]
			}
			if err := config.Save(path, config.Default()); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", path)
			return nil
		},
	}

	tuneCmd := &cobra.Command{
		Use:   "tune [scene.yaml]",
		Short: "grid-search PID gains for a mimic pair",
		Args:  cobra.MaximumNArgs(1),
		RunE:  tuneGains,
	}
	tuneCmd.Flags().StringVar(&pairName, "pair", "", "pair to tune as driver->follower (default first pair)")
	tuneCmd.Flags().StringVar(&kpGrid, "kp", "5,10,20,40,80", "comma-separated kp candidates")
	tuneCmd.Flags().StringVar(&kiGrid, "ki", "0,0.1,1,5", "comma-separated ki candidates")
	tuneCmd.Flags().StringVar(&kdGrid, "kd", "0,0.1,0.5", "comma-separated kd candidates")

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, liveCmd, initCmd, tuneCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadScene(args []string) (*config.Config, error) {
	if len(args) == 0 {
		return config.Default(), nil
	}
	return config.Load(args[0])
}

func runScene(cmd *cobra.Command, args []string) error {
	log.Init(logLevel)

	cfg, err := loadScene(args)
	if err != nil {
		return err
	}
	if dt > 0 {
		cfg.World.Dt = dt
	}
	if duration > 0 {
		cfg.World.Duration = duration
	}

	s, err := scene.Build(cfg)
	if err != nil {
		return err
	}

	result, err := s.Run(context.Background())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PAIR\tTRACKING RMS\tTRACKING MAX\tCONTROL EFFORT")
	pairs := make([]string, 0, len(result.Metrics))
	for name := range result.Metrics {
		pairs = append(pairs, name)
	}
	sort.Strings(pairs)
	for _, name := range pairs {
		m := result.Metrics[name]
		fmt.Fprintf(w, "%s\t%.6f\t%.6f\t%.6f\n",
			name, m["tracking_rms"], m["tracking_max"], m["control_effort"])
	}
	w.Flush()

	store := storage.New(dataDir)
	if err := store.Init(); err != nil {
		return err
	}
	runID, err := store.Save(cfg.Name, cfg.World.Dt, cfg.World.Duration, cfg.World.Integrator, result)
	if err != nil {
		return err
	}
	fmt.Printf("\nsaved run: %s\n", runID)

	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	store := storage.New(dataDir)
	runs, err := store.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RUN ID\tSCENE\tSTEPS\tDT\tINTEGRATOR\tTIMESTAMP")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%.4g\t%s\t%s\n",
			r.ID, r.Scene, r.Steps, r.Dt, r.Integrator, r.Timestamp.Format("2006-01-02 15:04:05"))
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	store := storage.New(dataDir)

	_, positions, err := store.LoadPositions(args[0])
	if err != nil {
		return err
	}

	names := selectJoints(positions)
	if len(names) == 0 {
		return fmt.Errorf("no matching joints in run %s", args[0])
	}

	series := make([][]float64, 0, len(names))
	for _, name := range names {
		series = append(series, decimate(positions[name], 400))
	}

	graph := asciigraph.PlotMany(series,
		asciigraph.Height(20),
		asciigraph.Width(90),
		asciigraph.SeriesLegends(names...),
		asciigraph.Caption(fmt.Sprintf("joint positions: %s", args[0])),
	)
	fmt.Println(graph)
	return nil
}

func selectJoints(positions map[string][]float64) []string {
	if joints != "" {
		var names []string
		for _, name := range strings.Split(joints, ",") {
			name = strings.TrimSpace(name)
			if _, ok := positions[name]; ok {
				names = append(names, name)
			}
		}
		return names
	}

	names := make([]string, 0, len(positions))
	for name := range positions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// decimate downsamples a series so terminal plots stay readable.
func decimate(data []float64, maxPoints int) []float64 {
	if len(data) <= maxPoints {
		return data
	}
	stride := len(data) / maxPoints
	out := make([]float64, 0, maxPoints)
	for i := 0; i < len(data); i += stride {
		out = append(out, data[i])
	}
	return out
}

func tuneGains(cmd *cobra.Command, args []string) error {
	log.Init(logLevel)

	cfg, err := loadScene(args)
	if err != nil {
		return err
	}
	if len(cfg.Mimics) == 0 {
		return fmt.Errorf("scene defines no mimic pairs")
	}

	pairIdx := 0
	if pairName != "" {
		pairIdx = -1
		for i, mc := range cfg.Mimics {
			if fmt.Sprintf("%s->%s", mc.Driver, mc.Follower) == pairName {
				pairIdx = i
				break
			}
		}
		if pairIdx < 0 {
			return fmt.Errorf("no mimic pair named %s", pairName)
		}
	}
	target := fmt.Sprintf("%s->%s", cfg.Mimics[pairIdx].Driver, cfg.Mimics[pairIdx].Follower)

	kps, err := parseGrid(kpGrid)
	if err != nil {
		return fmt.Errorf("bad kp grid: %w", err)
	}
	kis, err := parseGrid(kiGrid)
	if err != nil {
		return fmt.Errorf("bad ki grid: %w", err)
	}
	kds, err := parseGrid(kdGrid)
	if err != nil {
		return fmt.Errorf("bad kd grid: %w", err)
	}

	iClamp := config.DefaultIClamp
	if pid := cfg.Mimics[pairIdx].Pid; pid != nil {
		iClamp = pid.IClamp
	}

	search := optim.NewGridSearch(
		[]string{"kp", "ki", "kd"},
		[][]float64{kps, kis, kds},
	)

	best, cost, err := search.Search(context.Background(), func(params map[string]float64) (float64, error) {
		candidate, err := cfg.Clone()
		if err != nil {
			return 0, err
		}
		candidate.Mimics[pairIdx].Pid = &config.PidConfig{
			Kp:     params["kp"],
			Ki:     params["ki"],
			Kd:     params["kd"],
			IClamp: iClamp,
		}

		s, err := scene.Build(candidate)
		if err != nil {
			return 0, err
		}
		result, err := s.Run(context.Background())
		if err != nil {
			return 0, err
		}

		m, ok := result.Metrics[target]
		if !ok {
			return 0, fmt.Errorf("pair %s did not attach", target)
		}
		return m["tracking_rms"], nil
	})
	if err != nil {
		return err
	}
	if best == nil {
		return fmt.Errorf("no stable candidate found for %s", target)
	}

	fmt.Printf("best gains for %s: kp=%g ki=%g kd=%g (i_clamp=%g)\n",
		target, best["kp"], best["ki"], best["kd"], iClamp)
	fmt.Printf("tracking rms: %.6f\n", cost)
	return nil
}

func parseGrid(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func runLive(cmd *cobra.Command, args []string) error {
	log.Init(logLevel)

	cfg, err := loadScene(args)
	if err != nil {
		return err
	}

	s, err := scene.Build(cfg)
	if err != nil {
		return err
	}

	var names []string
	if joints != "" {
		for _, name := range strings.Split(joints, ",") {
			names = append(names, strings.TrimSpace(name))
		}
	} else {
		for _, j := range s.World.Model().Joints() {
			names = append(names, j.Name())
		}
	}

	return viz.RunLive(s, names, fps)
}
