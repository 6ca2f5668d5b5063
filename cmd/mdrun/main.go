package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/mdlab-go/mdrun/internal/config"
	"github.com/mdlab-go/mdrun/internal/diagnostics"
	"github.com/mdlab-go/mdrun/internal/eval"
	"github.com/mdlab-go/mdrun/internal/storage"
	"github.com/mdlab-go/mdrun/internal/tui"
	"github.com/mdlab-go/mdrun/internal/viz"
)

var (
	dataDir    string
	configFile string
	preset     string

	structurePath  string
	modelPath      string
	potentialName  string
	trajectoryPath string
	integratorName string
	tempK          float64
	timestepFs     float64
	coupling       float64
	totalSteps     int
	diagInterval   int
	trajInterval   int
	seed           int64

	evalConfigFile  string
	evalCommand     string
	continueOnError bool
	includeTrain    bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "mdrun",
		Short: "molecular dynamics driver for machine-learned potentials",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".mdrun", "data directory")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run an MD simulation",
		RunE:  runSimulation,
	}
	addRunFlags(runCmd)

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run an MD simulation with a live terminal view",
		RunE:  runLive,
	}
	addRunFlags(liveCmd)

	evalCmd := &cobra.Command{
		Use:   "eval [sizes...]",
		Short: "batch-evaluate potential models by training-set size",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runEval,
	}
	evalCmd.Flags().StringVar(&evalConfigFile, "config", "", "eval config file (yaml)")
	evalCmd.Flags().StringVar(&evalCommand, "command", "", "external evaluation command")
	evalCmd.Flags().BoolVar(&continueOnError, "continue-on-error", false, "keep evaluating after a failure")
	evalCmd.Flags().BoolVar(&includeTrain, "include-train", false, "also evaluate the training set")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored run's energy series",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a stored run as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available run presets",
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range config.ListPresets() {
				fmt.Println(name)
			}
		},
	}

	rootCmd.AddCommand(runCmd, liveCmd, evalCmd, listCmd, plotCmd, exportCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addRunFlags(cmd *cobra.Command) {
	def := config.Default()
	cmd.Flags().StringVar(&configFile, "config", "", "run config file (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use a named preset")
	cmd.Flags().StringVar(&structurePath, "structure", "", "input structure file (xyz)")
	cmd.Flags().StringVar(&modelPath, "model", "", "potential model artifact")
	cmd.Flags().StringVar(&potentialName, "potential", def.Potential, "potential backend")
	cmd.Flags().StringVar(&trajectoryPath, "trajectory", def.Trajectory, "trajectory output path")
	cmd.Flags().StringVar(&integratorName, "integrator", def.Integrator, "integrator/thermostat")
	cmd.Flags().Float64Var(&tempK, "temp", def.InitialTempK, "initial temperature (K)")
	cmd.Flags().Float64Var(&timestepFs, "dt", def.TimestepFs, "timestep (fs)")
	cmd.Flags().Float64Var(&coupling, "coupling", def.ThermostatCoupling, "thermostat coupling")
	cmd.Flags().IntVar(&totalSteps, "steps", def.TotalSteps, "total steps")
	cmd.Flags().IntVar(&diagInterval, "diag-every", def.DiagnosticsInterval, "steps between diagnostics")
	cmd.Flags().IntVar(&trajInterval, "traj-every", def.TrajectoryInterval, "steps between trajectory records")
	cmd.Flags().Int64Var(&seed, "seed", def.Seed, "random seed")
}

// buildConfig resolves preset, config file and flags, in that
// precedence order (flags win).
func buildConfig(cmd *cobra.Command) (*config.RunConfig, error) {
	cfg := config.Default()

	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		cfg = p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	set := func(flag string, apply func()) {
		if cmd.Flags().Changed(flag) {
			apply()
		}
	}
	set("structure", func() { cfg.Structure = structurePath })
	set("model", func() { cfg.Model = modelPath })
	set("potential", func() { cfg.Potential = potentialName })
	set("trajectory", func() { cfg.Trajectory = trajectoryPath })
	set("integrator", func() { cfg.Integrator = integratorName })
	set("temp", func() { cfg.InitialTempK = tempK })
	set("dt", func() { cfg.TimestepFs = timestepFs })
	set("coupling", func() { cfg.ThermostatCoupling = coupling })
	set("steps", func() { cfg.TotalSteps = totalSteps })
	set("diag-every", func() { cfg.DiagnosticsInterval = diagInterval })
	set("traj-every", func() { cfg.TrajectoryInterval = trajInterval })
	set("seed", func() { cfg.Seed = seed })

	return cfg, cfg.Validate()
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	fmt.Printf("running %s for %d steps at %g K...\n", cfg.Potential, cfg.TotalSteps, cfg.InitialTempK)

	outcome, err := executeRun(context.Background(), cfg, os.Stdout, nil)
	if outcome.RunID != "" {
		fmt.Printf("run id: %s\n", outcome.RunID)
	}
	if err != nil {
		return err
	}
	fmt.Printf("completed %d steps in %v\n", outcome.FinalStep, outcome.Wall)
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	title := fmt.Sprintf("mdrun live: %s, %d steps at %g K", cfg.Potential, cfg.TotalSteps, cfg.InitialTempK)
	p := tea.NewProgram(tui.NewModel(title, cfg.TotalSteps))

	// the run must outlive the view only until stop: quitting the view
	// cancels the driver, and stop waits for the deferred trajectory
	// close and storage save before the process exits
	bg := startBackground(context.Background(), func(ctx context.Context) error {
		sink := func(s diagnostics.Sample) { p.Send(tui.SampleMsg(s)) }
		_, err := executeRun(ctx, cfg, nopWriter{}, sink)
		p.Send(tui.DoneMsg{Err: err})
		return err
	})

	if _, err := p.Run(); err != nil {
		bg.stop()
		return err
	}
	if err := bg.stop(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

type nopWriter struct{}

func (nopWriter) Write(p []byte) (int, error) { return len(p), nil }

func runEval(cmd *cobra.Command, args []string) error {
	sizes, err := eval.ParseSizes(args)
	if err != nil {
		return err
	}

	cfg := config.DefaultEval()
	if evalConfigFile != "" {
		cfg, err = config.LoadEval(evalConfigFile)
		if err != nil {
			return fmt.Errorf("failed to load eval config: %w", err)
		}
	}
	if cmd.Flags().Changed("command") {
		cfg.Command = evalCommand
	}
	if cmd.Flags().Changed("continue-on-error") {
		cfg.ContinueOnError = continueOnError
	}
	if cmd.Flags().Changed("include-train") {
		cfg.IncludeTrainingSet = includeTrain
	}

	ev := &eval.Command{Binary: cfg.Command, Stdout: os.Stdout, Stderr: os.Stderr}
	results, err := eval.Run(context.Background(), cfg, sizes, ev)

	for _, r := range results {
		status := "ok"
		if r.Err != nil {
			status = "failed: " + r.Err.Error()
		}
		fmt.Printf("size %d (%s) -> %s: %s\n", r.Job.Size, r.Job.Kind, r.Job.Output, status)
	}
	return err
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPOTENTIAL\tTIME\tSTEPS\tDT\tTEMP\tINTEG\tSTATE")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.2ffs\t%.0fK\t%s\t%s\n",
			run.ID,
			run.Potential,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.TotalSteps,
			run.TimestepFs,
			run.InitialTempK,
			run.Integrator,
			run.State,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	samples, err := st.LoadSeries(args[0])
	if err != nil {
		return err
	}
	return viz.PlotRun(os.Stdout, args[0], samples)
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	return st.ExportJSON(os.Stdout, args[0])
}
