package lookup

import "context"

// Model is a generative knowledge source that answers a single prompt
type Model interface {
	// Generate returns the raw textual reply for the prompt
	Generate(ctx context.Context, prompt string) (string, error)
}

type unavailableModel struct{}

// UnavailableModel returns a model that fails every query with ErrModelUnavailable.
// It lets callers run without credentials while keeping manual rate entry
func UnavailableModel() Model {
	return unavailableModel{}
}

func (unavailableModel) Generate(_ context.Context, _ string) (string, error) {
	return "", ErrModelUnavailable
}
