package core

import "context"

// Store is an opened record store; closing it releases the underlying connection(s).
type Store interface {
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
