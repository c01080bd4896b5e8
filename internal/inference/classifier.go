package inference

import "context"

// Result is one model verdict: the predicted label plus the per-label
// probability distribution.
type Result struct {
	Prediction    string             `json:"prediction"`
	Probabilities map[string]float64 `json:"probabilities"`
}

// Classifier scores batches of feature vectors. Results are positional: the
// i-th result belongs to the i-th input row.
type Classifier interface {
	Classify(ctx context.Context, inputs [][]float64, topK int) ([]Result, error)
}
