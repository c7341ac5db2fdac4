package ports

import "context"

// CounterStore issues the next value of a named, durable sequence
// counter. The increment is atomic: concurrent callers for one name
// observe pairwise distinct, consecutive values, and a failed call
// issues nothing. The counter is created on first use, seeded with
// initialValue, which becomes the first issued value.
type CounterStore interface {
	NextValue(ctx context.Context, name, initialValue string) (string, error)
}
