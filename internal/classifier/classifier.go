package classifier

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"github.com/sbilibin2017/gw-leaf-classifier/internal/logger"
)

// Model runs a forward pass over a preprocessed tensor and returns one logit per label.
type Model interface {
	Run(input []float32) ([]float32, error)
	Close() error
}

// Loader builds the Model. It is called at most once per successful load.
type Loader func() (Model, error)

type handle struct {
	model Model
}

// Classifier turns image bytes into a label and a confidence.
// The model is loaded on first use and shared by all callers.
type Classifier struct {
	load   Loader
	mu     sync.Mutex
	handle atomic.Pointer[handle]
}

// New creates a Classifier that loads its model lazily with load.
func New(load Loader) *Classifier {
	return &Classifier{load: load}
}

// Warmup loads the model now instead of on the first Classify call.
func (c *Classifier) Warmup(ctx context.Context) error {
	_, err := c.model()
	return err
}

// Classify decodes data, runs the model and returns the arg-max label with its
// softmax probability. Undecodable input fails with ErrInvalidImage.
func (c *Classifier) Classify(ctx context.Context, data []byte) (string, float64, error) {
	input, err := Preprocess(data)
	if err != nil {
		return "", 0, err
	}

	m, err := c.model()
	if err != nil {
		return "", 0, err
	}

	logits, err := m.Run(input)
	if err != nil {
		return "", 0, err
	}
	if len(logits) != len(Labels) {
		return "", 0, fmt.Errorf("model returned %d logits, want %d", len(logits), len(Labels))
	}

	probs, err := Softmax(logits)
	if err != nil {
		return "", 0, err
	}

	best := ArgMax(probs)
	return Labels[best], probs[best], nil
}

// Close releases the model if it was loaded.
func (c *Classifier) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	h := c.handle.Swap(nil)
	if h == nil {
		return nil
	}
	return h.model.Close()
}

func (c *Classifier) model() (Model, error) {
	if h := c.handle.Load(); h != nil {
		return h.model, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if h := c.handle.Load(); h != nil {
		return h.model, nil
	}

	m, err := c.load()
	if err != nil {
		logger.Log.Errorw("failed to load model", "error", err)
		return nil, fmt.Errorf("load model: %w", err)
	}
	c.handle.Store(&handle{model: m})
	logger.Log.Infow("model loaded", "labels", len(Labels))

	return m, nil
}

// Softmax converts logits to probabilities. It rejects non-finite logits.
func Softmax(logits []float32) ([]float64, error) {
	if len(logits) == 0 {
		return nil, errors.New("softmax of empty logits")
	}

	maxLogit := math.Inf(-1)
	for _, l := range logits {
		v := float64(l)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("non-finite logit %v", l)
		}
		maxLogit = math.Max(maxLogit, v)
	}

	probs := make([]float64, len(logits))
	var sum float64
	for i, l := range logits {
		probs[i] = math.Exp(float64(l) - maxLogit)
		sum += probs[i]
	}
	for i := range probs {
		probs[i] /= sum
	}

	return probs, nil
}

// ArgMax returns the index of the largest value, the first one on ties.
func ArgMax(values []float64) int {
	best := 0
	for i, v := range values {
		if v > values[best] {
			best = i
		}
	}
	return best
}
