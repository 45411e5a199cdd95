package monitoring

import "github.com/NeuralTrust/DisasterGate/pkg/domain/model"

// Scores are binary classification metrics with LabelDisaster as the
// positive class. Undefined ratios are reported as 0.
type Scores struct {
	Accuracy  float64
	Precision float64
	Recall    float64
	F1        float64
}

func score(targets, predictions []model.Label) Scores {
	var tp, fp, fn, correct int
	n := len(targets)
	if len(predictions) < n {
		n = len(predictions)
	}
	for i := 0; i < n; i++ {
		actual := targets[i] == model.LabelDisaster
		predicted := predictions[i] == model.LabelDisaster
		switch {
		case actual && predicted:
			tp++
		case !actual && predicted:
			fp++
		case actual && !predicted:
			fn++
		}
		if targets[i] == predictions[i] {
			correct++
		}
	}
	var s Scores
	if n > 0 {
		s.Accuracy = float64(correct) / float64(n)
	}
	if tp+fp > 0 {
		s.Precision = float64(tp) / float64(tp+fp)
	}
	if tp+fn > 0 {
		s.Recall = float64(tp) / float64(tp+fn)
	}
	if s.Precision+s.Recall > 0 {
		s.F1 = 2 * s.Precision * s.Recall / (s.Precision + s.Recall)
	}
	return s
}
