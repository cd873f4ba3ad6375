package mock

import "context"

type GenerateDelegate func(context.Context, string) (string, error)

type Model struct {
	GenerateFn GenerateDelegate
}

func (m *Model) Generate(ctx context.Context, prompt string) (string, error) {
	if m.GenerateFn != nil {
		return m.GenerateFn(ctx, prompt)
	}

	return "", nil
}
