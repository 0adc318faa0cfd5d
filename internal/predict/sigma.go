package predict

import (
	"fmt"

	"github.com/san-kum/predlab/internal/series"
)

// ErrorModelKind selects a heuristic error-bar model.
type ErrorModelKind int

const (
	// ConstantSigma assigns every output the same error bar (unweighted
	// least squares when sigma is 1).
	ConstantSigma ErrorModelKind = iota
	// CVSigma scales each output by a coefficient of variation.
	CVSigma
	// MixedSigma takes the elementwise max of the constant and cv models.
	MixedSigma
)

func (k ErrorModelKind) String() string {
	switch k {
	case ConstantSigma:
		return "constant"
	case CVSigma:
		return "cv"
	case MixedSigma:
		return "mixed"
	}
	return fmt.Sprintf("ErrorModelKind(%d)", int(k))
}

// ParseErrorModelKind maps a config string to a kind.
func ParseErrorModelKind(s string) (ErrorModelKind, error) {
	switch s {
	case "constant", "":
		return ConstantSigma, nil
	case "cv":
		return CVSigma, nil
	case "mixed":
		return MixedSigma, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownErrorModel, s)
}

// ErrorModel configures error-bar computation.
type ErrorModel struct {
	Kind   ErrorModelKind
	Sigma0 float64 // constant sigma; default 1
	CV     float64 // coefficient of variation; default 0.1
}

// DefaultErrorModel is a constant error bar of 1.
func DefaultErrorModel() ErrorModel {
	return ErrorModel{Kind: ConstantSigma, Sigma0: 1, CV: 0.1}
}

func (m ErrorModel) normalized() ErrorModel {
	if m.Sigma0 == 0 {
		m.Sigma0 = 1
	}
	if m.CV == 0 {
		m.CV = 0.1
	}
	return m
}

// Sigma computes heuristic error bars for the outputs at p under the
// given model. A nil p uses the default parameter vector.
func (pr *Prediction) Sigma(p []float64, m ErrorModel) (series.Series, error) {
	y, err := pr.Eval(p)
	if err != nil {
		return series.Series{}, err
	}
	m = m.normalized()
	switch m.Kind {
	case ConstantSigma:
		return series.Constant(pr.yids, m.Sigma0), nil
	case CVSigma:
		return y.Scale(m.CV), nil
	case MixedSigma:
		return y.Scale(m.CV).Max(series.Constant(pr.yids, m.Sigma0)), nil
	}
	return series.Series{}, fmt.Errorf("%w: %v", ErrUnknownErrorModel, m.Kind)
}

// Row is one output line of a data table: predicted value plus error bar.
type Row struct {
	YID   string
	Y     float64
	Sigma float64
}

// Table evaluates the prediction and its error bars at p, one row per
// output.
func (pr *Prediction) Table(p []float64, m ErrorModel) ([]Row, error) {
	y, err := pr.Eval(p)
	if err != nil {
		return nil, err
	}
	sig, err := pr.Sigma(p, m)
	if err != nil {
		return nil, err
	}
	rows := make([]Row, y.Len())
	for i := range rows {
		rows[i] = Row{YID: y.ID(i), Y: y.At(i), Sigma: sig.At(i)}
	}
	return rows, nil
}
