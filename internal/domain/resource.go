package domain

import "context"

// Record is a server-owned entity identified by a server-assigned id.
type Record interface {
	RecordID() int64
}

// Input is a client-built payload checked before it leaves the process.
type Input interface {
	Validate() error
}

// ResourceClient is the port for a remote CRUD collection.
type ResourceClient[T Record, In Input] interface {
	List(ctx context.Context) ([]T, error)
	Get(ctx context.Context, id int64) (T, error)
	Create(ctx context.Context, in In) (T, error)
	Update(ctx context.Context, id int64, patch In) (T, error)
	Delete(ctx context.Context, id int64) error
}
