package config

// Presets are ready-made model definitions.
var Presets = map[string]*Config{
	"michaelis": {
		Name:  "michaelis",
		Exprs: []string{"V*x/(K+x)"},
		PIDs:  []string{"V", "K"},
		UIDs:  []string{"x"},
		Us:    [][]float64{{1}, {2}, {3}},
		P0:    []float64{1, 1},
		Error: ErrorConfig{Kind: "constant", Sigma0: 1},
	},
	"exponentials": {
		Name: "exponentials",
		Exprs: []string{
			"exp(-p1*1) + exp(-p2*1)",
			"exp(-p1*2) + exp(-p2*2)",
			"exp(-p1*1) - exp(-p2*1)",
		},
		PIDs:  []string{"p1", "p2"},
		P0:    []float64{1, 2},
		Error: ErrorConfig{Kind: "mixed", Sigma0: 0.1, CV: 0.1},
	},
	"chain": {
		Name: "chain",
		Exprs: []string{
			"(k1f*C1 - k1r*X1) - (k2f*X1 - k2r*X2)",
			"(k2f*X1 - k2r*X2) - (k3f*X2 - k3r*C2)",
		},
		PIDs:   []string{"k1f", "k1r", "k2f", "k2r", "k3f", "k3r"},
		UIDs:   []string{"X1", "X2"},
		Us:     [][]float64{{1, 1}, {1, 2}, {1, 3}, {2, 1}, {2, 2}, {2, 3}, {3, 1}, {3, 2}, {3, 3}},
		Consts: map[string]float64{"C1": 2, "C2": 1},
		Error:  ErrorConfig{Kind: "cv", CV: 0.1},
	},
}

// GetPreset returns a named preset, or nil.
func GetPreset(name string) *Config {
	return Presets[name]
}

// ListPresets returns the available preset names.
func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	return names
}
