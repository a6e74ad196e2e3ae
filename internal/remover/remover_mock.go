package remover

import "context"

// MOCK VENDOR-CLIENT

type mockVendor struct {
	removeFn func(ctx context.Context, image []byte) ([]byte, error)
}

func (m *mockVendor) RemoveBackground(ctx context.Context, image []byte) ([]byte, error) {
	return m.removeFn(ctx, image)
}
