package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/san-kum/predlab/internal/analysis"
	"github.com/san-kum/predlab/internal/config"
	"github.com/san-kum/predlab/internal/export"
	"github.com/san-kum/predlab/internal/predict"
	"github.com/san-kum/predlab/internal/tui"
	"github.com/san-kum/predlab/internal/viz"
)

var (
	configFile string
	preset     string
	point      string
	logParams  bool
	verbose    bool
	// inline model flags
	exprs    []string
	pidsFlag string
	p0Flag   string
	// spectrum flags
	svgPath string
	plotTol bool
	// export flags
	outPath string
	what    string
)

// main registers commands and flags and executes the root command. It
// exits the process with status 1 if command execution returns an error.
func main() {
	rootCmd := &cobra.Command{
		Use:   "predlab",
		Short: "prediction function lab",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, pred, err := buildModel()
			if err != nil {
				return err
			}
			return tui.Run(cfg.Name, pred, cfg.SpectrumPoints(pred))
		},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "model config file (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "use preset model")
	rootCmd.PersistentFlags().StringVar(&point, "p", "", "parameter vector, comma separated (default p0)")
	rootCmd.PersistentFlags().BoolVar(&logParams, "log-params", false, "reparametrize to log parameters")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "log internals to stderr")
	rootCmd.PersistentFlags().StringArrayVar(&exprs, "expr", nil, "inline model expression (repeatable, overrides config)")
	rootCmd.PersistentFlags().StringVar(&pidsFlag, "pids", "", "parameter names for inline expressions, comma separated")
	rootCmd.PersistentFlags().StringVar(&p0Flag, "p0", "", "default parameter vector for inline expressions, comma separated")

	evalCmd := &cobra.Command{
		Use:   "eval",
		Short: "evaluate the model and its error bars",
		RunE:  evalModel,
	}

	sigmaCmd := &cobra.Command{
		Use:   "sigma",
		Short: "print error bars for each output",
		RunE:  sigmaModel,
	}

	jacCmd := &cobra.Command{
		Use:   "jacobian",
		Short: "print the sensitivity matrix",
		RunE:  printJacobian,
	}

	spectrumCmd := &cobra.Command{
		Use:   "spectrum",
		Short: "singular value spectrum diagnostics",
		RunE:  spectrumModel,
	}
	spectrumCmd.Flags().StringVar(&svgPath, "svg", "", "write spectrum plot to SVG file")
	spectrumCmd.Flags().BoolVar(&plotTol, "tol", true, "mark the numerical-zero threshold")

	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "export evaluation table or spectra as JSON",
		RunE:  exportModel,
	}
	exportCmd.Flags().StringVar(&outPath, "out", "", "output file (default stdout)")
	exportCmd.Flags().StringVar(&what, "what", "table", "payload: table or spectra")

	tuiCmd := &cobra.Command{
		Use:   "tui",
		Short: "interactive spectrum browser",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, pred, err := buildModel()
			if err != nil {
				return err
			}
			return tui.Run(cfg.Name, pred, cfg.SpectrumPoints(pred))
		},
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list preset models",
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range config.ListPresets() {
				fmt.Println(name)
			}
		},
	}

	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "write a starter config file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.DefaultConfig()
			if preset != "" {
				cfg = config.GetPreset(preset)
				if cfg == nil {
					return fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
				}
			}
			return config.Save(args[0], cfg)
		},
	}

	rootCmd.AddCommand(evalCmd, sigmaCmd, jacCmd, spectrumCmd, exportCmd, tuiCmd, presetsCmd, initCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// resolveConfig picks the model definition: preset, then config file,
// then the built-in default.
func resolveConfig() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	if len(exprs) > 0 {
		inline, err := inlineConfig()
		if err != nil {
			return nil, err
		}
		cfg = inline
	}
	if logParams {
		cfg.LogParams = true
	}
	return cfg, nil
}

// inlineConfig builds a model from the --expr/--pids/--p0 flags.
func inlineConfig() (*config.Config, error) {
	if pidsFlag == "" {
		return nil, fmt.Errorf("--expr requires --pids")
	}
	cfg := &config.Config{
		Name:  "inline",
		Exprs: exprs,
		PIDs:  splitIDs(pidsFlag),
	}
	if p0Flag != "" {
		parts := strings.Split(p0Flag, ",")
		cfg.P0 = make([]float64, len(parts))
		for i, part := range parts {
			v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
			if err != nil {
				return nil, fmt.Errorf("bad p0 value %q: %w", part, err)
			}
			cfg.P0[i] = v
		}
	}
	return cfg, nil
}

func splitIDs(s string) []string {
	parts := strings.Split(s, ",")
	ids := make([]string, len(parts))
	for i, part := range parts {
		ids[i] = strings.TrimSpace(part)
	}
	return ids
}

func buildModel() (*config.Config, *predict.Prediction, error) {
	if verbose {
		l, err := zap.NewProduction()
		if err != nil {
			return nil, nil, err
		}
		predict.SetLogger(l)
	}
	cfg, err := resolveConfig()
	if err != nil {
		return nil, nil, err
	}
	pred, err := cfg.Build()
	if err != nil {
		return nil, nil, err
	}
	return cfg, pred, nil
}

// parsePoint parses the --p flag; nil means evaluate at p0.
func parsePoint() ([]float64, error) {
	if point == "" {
		return nil, nil
	}
	parts := strings.Split(point, ",")
	p := make([]float64, len(parts))
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, fmt.Errorf("bad parameter value %q: %w", part, err)
		}
		p[i] = v
	}
	return p, nil
}

func evalModel(cmd *cobra.Command, args []string) error {
	cfg, pred, err := buildModel()
	if err != nil {
		return err
	}
	p, err := parsePoint()
	if err != nil {
		return err
	}
	errModel, err := cfg.ErrorModel()
	if err != nil {
		return err
	}
	rows, err := pred.Table(p, errModel)
	if err != nil {
		return err
	}

	fmt.Printf("model: %s (%s, %d parameters)\n\n", cfg.Name, pred.Kind(), pred.PDim())
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "OUTPUT\tVALUE\tSIGMA")
	for _, r := range rows {
		fmt.Fprintf(w, "%s\t%.6g\t%.6g\n", r.YID, r.Y, r.Sigma)
	}
	return w.Flush()
}

func sigmaModel(cmd *cobra.Command, args []string) error {
	cfg, pred, err := buildModel()
	if err != nil {
		return err
	}
	p, err := parsePoint()
	if err != nil {
		return err
	}
	errModel, err := cfg.ErrorModel()
	if err != nil {
		return err
	}
	sig, err := pred.Sigma(p, errModel)
	if err != nil {
		return err
	}

	fmt.Printf("model: %s (%s error model)\n\n", cfg.Name, errModel.Kind)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "OUTPUT\tSIGMA")
	for i := 0; i < sig.Len(); i++ {
		fmt.Fprintf(w, "%s\t%.6g\n", sig.ID(i), sig.At(i))
	}
	return w.Flush()
}

func printJacobian(cmd *cobra.Command, args []string) error {
	cfg, pred, err := buildModel()
	if err != nil {
		return err
	}
	p, err := parsePoint()
	if err != nil {
		return err
	}
	jac, err := pred.Jacobian(p)
	if err != nil {
		return err
	}

	fmt.Printf("model: %s\n\n", cfg.Name)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "\t%s\n", strings.Join(pred.PIDs(), "\t"))
	for i, yid := range pred.YIDs() {
		fmt.Fprintf(w, "%s", yid)
		for j := range pred.PIDs() {
			fmt.Fprintf(w, "\t%.6g", jac.At(i, j))
		}
		fmt.Fprintln(w)
	}
	return w.Flush()
}

func spectrumModel(cmd *cobra.Command, args []string) error {
	cfg, pred, err := buildModel()
	if err != nil {
		return err
	}
	points := cfg.SpectrumPoints(pred)
	if p, err := parsePoint(); err != nil {
		return err
	} else if p != nil {
		points = [][]float64{p}
	}

	spectra := make([][]float64, len(points))
	for i, p := range points {
		spectra[i], err = pred.Spectrum(p)
		if err != nil {
			return err
		}
	}

	fmt.Printf("model: %s (%dx%d sensitivity matrix)\n\n", cfg.Name, pred.YDim(), pred.PDim())
	for i, sigmas := range spectra {
		fmt.Println(viz.SpectrumGraph(sigmas, pred.YDim(), pred.PDim()))
		if len(points) > 1 {
			fmt.Printf("point %d: %v\n\n", i, points[i])
		}
	}

	if svgPath != "" {
		title := fmt.Sprintf("%s singular value spectra", cfg.Name)
		if err := export.SpectrumSVG(svgPath, spectra, pred.YDim(), pred.PDim(), title, plotTol); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", svgPath)
	}
	return nil
}

func exportModel(cmd *cobra.Command, args []string) error {
	cfg, pred, err := buildModel()
	if err != nil {
		return err
	}
	p, err := parsePoint()
	if err != nil {
		return err
	}

	var payload any
	switch what {
	case "table":
		errModel, err := cfg.ErrorModel()
		if err != nil {
			return err
		}
		rows, err := pred.Table(p, errModel)
		if err != nil {
			return err
		}
		pv := p
		if pv == nil {
			pv = pred.P0().Values()
		}
		payload = export.Table(cfg.Name, pred.PIDs(), pv, rows, errModel)
	case "spectra":
		points := cfg.SpectrumPoints(pred)
		if p != nil {
			points = [][]float64{p}
		}
		data := export.SpectraData{Model: cfg.Name, Points: points}
		for _, pt := range points {
			sigmas, err := pred.Spectrum(pt)
			if err != nil {
				return err
			}
			data.Spectra = append(data.Spectra, sigmas)
			data.Ranks = append(data.Ranks, analysis.NumericalRank(sigmas, pred.YDim(), pred.PDim()))
		}
		payload = data
	default:
		return fmt.Errorf("unknown payload: %s (want table or spectra)", what)
	}

	if outPath != "" {
		return export.WriteJSONFile(outPath, payload)
	}
	return export.WriteJSON(os.Stdout, payload)
}
