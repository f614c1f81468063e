package emotion

import (
	"github.com/chewxy/math32"
	"github.com/pkg/errors"
	"gorgonia.org/tensor"
)

// probabilityTolerance is how far a score vector may sum away from 1 and still be
// treated as probabilities.
const probabilityTolerance = 1e-3

// Summarize converts raw model scores to per-class percentages and picks the dominant class.
//
// Score vectors that are already a probability distribution are used as-is; anything
// else is treated as logits and passed through a softmax.
//
// Arguments:
//   - scores: One score per entry of Labels.
//
// Returns:
//   - map[string]float32: Percent per class, summing to 100.
//   - string: The dominant class.
//   - error: An error if the score count does not match Labels.
func Summarize(scores []float32) (map[string]float32, string, error) {
	if len(scores) != len(Labels) {
		return nil, "", errors.Errorf("expected %d emotion scores, got %d", len(Labels), len(scores))
	}

	probs := scores
	if !isDistribution(scores) {
		probs = Softmax(scores)
	}

	idx, err := Argmax(probs)
	if err != nil {
		return nil, "", err
	}

	percent := make(map[string]float32, len(Labels))
	for i, label := range Labels {
		percent[label] = probs[i] * 100
	}

	return percent, Labels[idx], nil
}

// Softmax returns exp(x_i) / sum(exp(x)) computed with the max subtracted for stability.
func Softmax(x []float32) []float32 {
	if len(x) == 0 {
		return nil
	}
	maxVal := x[0]
	for _, v := range x[1:] {
		maxVal = math32.Max(maxVal, v)
	}

	out := make([]float32, len(x))
	var sum float32
	for i, v := range x {
		out[i] = math32.Exp(v - maxVal)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}

// Argmax returns the index of the largest value; ties resolve to the lowest index.
func Argmax(x []float32) (int, error) {
	if len(x) == 0 {
		return 0, errors.New("argmax of empty scores")
	}

	backing := append([]float32(nil), x...)
	t := tensor.New(tensor.WithShape(len(backing)), tensor.WithBacking(backing))
	res, err := t.Argmax(0)
	if err != nil {
		return 0, errors.Wrap(err, "argmax")
	}

	switch v := res.Data().(type) {
	case int:
		return v, nil
	case []int:
		if len(v) > 0 {
			return v[0], nil
		}
	}
	return 0, errors.Errorf("unexpected argmax result %v", res.Data())
}

func isDistribution(x []float32) bool {
	var sum float32
	for _, v := range x {
		if v < 0 || v > 1 || math32.IsNaN(v) {
			return false
		}
		sum += v
	}
	return math32.Abs(sum-1) <= probabilityTolerance
}
