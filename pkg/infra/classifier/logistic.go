package classifier

import (
	"math"
)

// LogisticConfig configures the binary L2-regularised logistic regression.
type LogisticConfig struct {
	C            float64 `json:"c" mapstructure:"c"`
	LearningRate float64 `json:"learning_rate" mapstructure:"learning_rate"`
	MaxIter      int     `json:"max_iter" mapstructure:"max_iter"`
	Tolerance    float64 `json:"tolerance" mapstructure:"tolerance"`
}

func DefaultLogisticConfig() LogisticConfig {
	return LogisticConfig{
		C:            1,
		LearningRate: 0.5,
		MaxIter:      500,
		Tolerance:    1e-6,
	}
}

// Logistic holds the learned weights. The intercept is not penalised.
type Logistic struct {
	Config    LogisticConfig `json:"config"`
	Weights   []float64      `json:"weights"`
	Intercept float64        `json:"intercept"`
}

func NewLogistic(cfg LogisticConfig) *Logistic {
	return &Logistic{Config: cfg}
}

// Fit runs full-batch gradient descent on the mean log-loss plus
// ||w||^2 / (2*C*n). y must hold 0 or 1.
func (l *Logistic) Fit(x [][]feature, y []float64, dims int) {
	n := float64(len(x))
	l.Weights = make([]float64, dims)
	l.Intercept = 0

	reg := 0.0
	if l.Config.C > 0 {
		reg = 1 / (l.Config.C * n)
	}
	grad := make([]float64, dims)
	for iter := 0; iter < l.Config.MaxIter; iter++ {
		for j := range grad {
			grad[j] = reg * l.Weights[j]
		}
		var gradB float64
		for i, row := range x {
			diff := (sigmoid(l.margin(row)) - y[i]) / n
			for _, f := range row {
				grad[f.Index] += diff * f.Value
			}
			gradB += diff
		}

		var step float64
		for j := range l.Weights {
			d := l.Config.LearningRate * grad[j]
			l.Weights[j] -= d
			step = math.Max(step, math.Abs(d))
		}
		d := l.Config.LearningRate * gradB
		l.Intercept -= d
		step = math.Max(step, math.Abs(d))
		if step < l.Config.Tolerance {
			return
		}
	}
}

func (l *Logistic) margin(row []feature) float64 {
	z := l.Intercept
	for _, f := range row {
		if f.Index < len(l.Weights) {
			z += l.Weights[f.Index] * f.Value
		}
	}
	return z
}

// Probability returns P(class 1 | row).
func (l *Logistic) Probability(row []feature) float64 {
	return sigmoid(l.margin(row))
}

func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}
