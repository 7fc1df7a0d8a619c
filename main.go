package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/ini.v1"

	"grainsim/calculator"
	"grainsim/crop"
	"grainsim/model"
	"grainsim/report"
	"grainsim/risk"
	"grainsim/server"
	"grainsim/silo"
)

var (
	configPath string
	cropsPath  string

	cfgFile  *ini.File
	registry *crop.Registry

	input   = model.DefaultSimulationInput()
	seed    uint64
	csvPath string
	pngPath string
	asJSON  bool
	addr    string
)

var rootCmd = &cobra.Command{
	Use:   "grainsim",
	Short: "Grain silo hotspot spoilage simulator",
	Long: `grainsim simulates heat and moisture transport through a vertical
grain column with a biological hotspot, accumulates dry-matter loss
and turns the peak loss into a spoilage risk distribution.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup()
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one simulation and write the report",
	RunE: func(cmd *cobra.Command, args []string) error {
		calc, err := newCalculator()
		if err != nil {
			return err
		}
		rep, err := calc.Simulate(input, newEstimator(cmd))
		if err != nil {
			return err
		}
		if asJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(rep)
		}
		fmt.Fprint(cmd.OutOrStdout(), report.Summary(rep))
		if csvPath != "" {
			if err := report.SaveCSV(csvPath, rep.Simulation.Field); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Report saved as %s\n", csvPath)
		}
		if pngPath != "" {
			if err := report.SavePNG(pngPath, rep); err != nil {
				return err
			}
		}
		return nil
	},
}

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Run the same conditions for every registered crop",
	RunE: func(cmd *cobra.Command, args []string) error {
		calc, err := newCalculator()
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "CROP\tPEAK DML\tMEAN RISK\t95% CI\tSTATUS")
		for _, c := range calc.CompareCrops(input, newEstimator(cmd)) {
			if c.Err != nil {
				fmt.Fprintf(w, "%s\t-\t-\t-\t%v\n", c.Crop, c.Err)
				continue
			}
			r := c.Report.Risk
			fmt.Fprintf(w, "%s\t%.4g\t%.2f\t[%.2f, %.2f]\t%s\n",
				c.Crop, c.Report.Simulation.PeakSpoilage, r.Mean, r.Low, r.High, report.Status(r.Level))
		}
		return w.Flush()
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the websocket and HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		calc, err := newCalculator()
		if err != nil {
			return err
		}
		cfg := server.LoadConfig(cfgFile)
		if cmd.Flags().Changed("addr") {
			cfg.Addr = addr
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return server.NewServer(cfg, calc, newEstimator(cmd)).Serve(ctx)
	},
}

var cropsCmd = &cobra.Command{
	Use:   "crops",
	Short: "List the crop registry",
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tRHO\tCP\tK\tDM\tFACTOR")
		for _, name := range registry.Names() {
			p, _ := registry.Lookup(name)
			fmt.Fprintf(w, "%s\t%g\t%g\t%g\t%g\t%g\n",
				p.Name, p.Density, p.SpecificHeat, p.ThermalConductivity, p.MoistureDiffusivity, p.SpoilageFactor)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "conf/config.ini", "ini configuration file")
	rootCmd.PersistentFlags().StringVar(&cropsPath, "crops", "", "crop registry file (.ini or .toml), built-in crops when empty")
	rootCmd.PersistentFlags().Uint64Var(&seed, "seed", 0, "random seed for risk sampling, overrides [risk] Seed")

	for _, cmd := range []*cobra.Command{runCmd, compareCmd} {
		flags := cmd.Flags()
		flags.Float64Var(&input.Days, "days", input.Days, "simulated duration in days")
		flags.Float64Var(&input.BaseTemperature, "base-temp", input.BaseTemperature, "bulk and ambient temperature (°C)")
		flags.Float64Var(&input.HotspotTemperature, "hotspot-temp", input.HotspotTemperature, "initial hotspot temperature (°C)")
		flags.Float64Var(&input.BaseMoisture, "moisture", input.BaseMoisture, "initial moisture content (%)")
		flags.Float64Var(&input.WallThickness, "wall", input.WallThickness, "silo wall thickness (m)")
	}
	runCmd.Flags().StringVar(&input.Crop, "crop", input.Crop, "crop name")
	runCmd.Flags().StringVar(&csvPath, "csv", "grain_report.csv", "CSV report path, empty to skip")
	runCmd.Flags().StringVar(&pngPath, "png", "", "PNG plot path, empty to skip")
	runCmd.Flags().BoolVar(&asJSON, "json", false, "print the full report as JSON")
	serveCmd.Flags().StringVar(&addr, "addr", ":9000", "listen address, overrides [server] Addr")

	rootCmd.AddCommand(runCmd, compareCmd, serveCmd, cropsCmd)
}

// 读取配置、设置日志、加载作物注册表
func setup() error {
	var err error
	cfgFile, err = calculator.LoadIniFile(configPath)
	if err != nil {
		return err
	}
	if err := setupLog(cfgFile.Section("log")); err != nil {
		return err
	}
	if cropsPath == "" {
		registry = crop.Default()
		return nil
	}
	registry, err = crop.LoadFile(cropsPath)
	return err
}

func setupLog(section *ini.Section) error {
	level, err := log.ParseLevel(section.Key("Level").MustString("info"))
	if err != nil {
		return err
	}
	log.SetLevel(level)
	switch section.Key("Format").MustString("text") {
	case "json":
		log.SetFormatter(&log.JSONFormatter{})
	default:
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	log.SetOutput(os.Stderr)
	return nil
}

func newCalculator() (*calculator.Calculator, error) {
	return calculator.NewCalculator(registry, calculator.LoadConfig(cfgFile), silo.LoadConfig(cfgFile))
}

func newEstimator(cmd *cobra.Command) *risk.Estimator {
	cfg := risk.LoadConfig(cfgFile)
	if cmd.Flags().Changed("seed") {
		cfg.Seed = seed
	}
	return risk.NewEstimator(cfg)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
