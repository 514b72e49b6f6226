package interfaces

import "context"

// VhostController is the control-plane surface of the vhost registry.
// Every operation resynchronizes from the durable record before acting, per
// the refresh-mutate-publish sequence.
type VhostController interface {
	// List returns all vhost entries sorted by name.
	List(ctx context.Context) []VhostEntry

	// Get returns the entry for name, or ErrNotFound.
	Get(ctx context.Context, name string) (VhostEntry, error)

	// Create registers name -> cid. Returns ErrNameReserved or ErrInvalidCID
	// on validation failure; other errors mean the write was not made durable.
	Create(ctx context.Context, name, cid string) error

	// Update re-points an existing vhost. Returns ErrNotFound when the name
	// is not registered.
	Update(ctx context.Context, name, cid string) error

	// Delete removes a vhost binding, or returns ErrNotFound.
	Delete(ctx context.Context, name string) error
}
