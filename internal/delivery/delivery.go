package delivery

import "context"

// Delivery is an entry point driven by the application lifecycle
type Delivery interface {
	Serve(ctx context.Context) error
}
