package app

import (
	"context"
	"log"
	"sync"

	"fieldsync/internal/domain"
)

// Collection mirrors a remote CRUD resource locally. Reads fail soft: a
// failed FetchAll empties the mirror and is only logged. Writes fail loud:
// the error is returned so the caller can show it or retry.
type Collection[T domain.Record, In domain.Input] struct {
	name   string
	client domain.ResourceClient[T, In]

	mu      sync.Mutex
	items   []T
	loading bool
	lastErr error

	observers notifier
}

// NewCollection creates an empty mirror of the resource behind client. name
// is used in log lines.
func NewCollection[T domain.Record, In domain.Input](name string, client domain.ResourceClient[T, In]) *Collection[T, In] {
	return &Collection[T, In]{name: name, client: client}
}

// FetchAll replaces the local mirror with the server's collection.
func (c *Collection[T, In]) FetchAll(ctx context.Context) {
	c.begin()
	defer c.end()

	items, err := c.client.List(ctx)
	if err != nil {
		log.Printf("%s: fetch failed: %v", c.name, err)
		c.mu.Lock()
		c.items = nil
		c.lastErr = err
		c.mu.Unlock()
		return
	}

	deduped := dedupe(items)
	c.mu.Lock()
	c.items = deduped
	c.lastErr = nil
	c.mu.Unlock()
}

// Create sends in to the backend and appends the record it returns.
func (c *Collection[T, In]) Create(ctx context.Context, in In) (T, error) {
	var zero T
	if err := in.Validate(); err != nil {
		return zero, err
	}

	c.begin()
	defer c.end()

	rec, err := c.client.Create(ctx, in)
	if err != nil {
		log.Printf("%s: create failed: %v", c.name, err)
		return zero, err
	}
	if rec.RecordID() == 0 {
		return zero, errMissingID("create")
	}

	c.mu.Lock()
	if i := indexOf(c.items, rec.RecordID()); i >= 0 {
		c.items[i] = rec
	} else {
		c.items = append(c.items, rec)
	}
	c.mu.Unlock()
	return rec, nil
}

// Update sends patch for id and replaces the matching local record with the
// server's version. A record that is not mirrored locally is not inserted.
func (c *Collection[T, In]) Update(ctx context.Context, id int64, patch In) (T, error) {
	var zero T
	if err := patch.Validate(); err != nil {
		return zero, err
	}

	c.begin()
	defer c.end()

	rec, err := c.client.Update(ctx, id, patch)
	if err != nil {
		log.Printf("%s: update %d failed: %v", c.name, id, err)
		return zero, err
	}
	if rec.RecordID() == 0 {
		return zero, errMissingID("update")
	}

	c.mu.Lock()
	if i := indexOf(c.items, id); i >= 0 {
		c.items[i] = rec
	}
	c.mu.Unlock()
	return rec, nil
}

// Delete removes id remotely and then locally.
func (c *Collection[T, In]) Delete(ctx context.Context, id int64) error {
	c.begin()
	defer c.end()

	if err := c.client.Delete(ctx, id); err != nil {
		log.Printf("%s: delete %d failed: %v", c.name, id, err)
		return err
	}

	c.mu.Lock()
	kept := c.items[:0:0]
	for _, it := range c.items {
		if it.RecordID() != id {
			kept = append(kept, it)
		}
	}
	c.items = kept
	c.mu.Unlock()
	return nil
}

// Items returns a copy of the mirrored records.
func (c *Collection[T, In]) Items() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

// Find returns the mirrored record with the given id.
func (c *Collection[T, In]) Find(id int64) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := indexOf(c.items, id); i >= 0 {
		return c.items[i], true
	}
	var zero T
	return zero, false
}

// Loading reports whether an operation is in flight. With concurrent calls
// it may read false before all of them settle.
func (c *Collection[T, In]) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// LastError returns the error of the most recent failed FetchAll, or nil
// once a fetch succeeds.
func (c *Collection[T, In]) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Subscribe registers fn to be called whenever the mirror or the loading
// flag changes.
func (c *Collection[T, In]) Subscribe(fn func()) (unsubscribe func()) {
	return c.observers.subscribe(fn)
}

func (c *Collection[T, In]) begin() {
	c.mu.Lock()
	c.loading = true
	c.mu.Unlock()
	c.observers.notify()
}

func (c *Collection[T, In]) end() {
	c.mu.Lock()
	c.loading = false
	c.mu.Unlock()
	c.observers.notify()
}

func indexOf[T domain.Record](items []T, id int64) int {
	for i, it := range items {
		if it.RecordID() == id {
			return i
		}
	}
	return -1
}

// dedupe keeps the last occurrence of each id at the position of its first.
func dedupe[T domain.Record](items []T) []T {
	out := make([]T, 0, len(items))
	pos := make(map[int64]int, len(items))
	for _, it := range items {
		if i, ok := pos[it.RecordID()]; ok {
			out[i] = it
			continue
		}
		pos[it.RecordID()] = len(out)
		out = append(out, it)
	}
	return out
}

// IncidentStore mirrors the incidents resource.
type IncidentStore = Collection[domain.Incident, domain.IncidentInput]

// NewIncidentStore creates the incidents mirror.
func NewIncidentStore(client domain.ResourceClient[domain.Incident, domain.IncidentInput]) *IncidentStore {
	return NewCollection("incidents", client)
}

// UserStore mirrors the users resource.
type UserStore = Collection[domain.UserAccount, domain.UserInput]

// NewUserStore creates the users mirror.
func NewUserStore(client domain.ResourceClient[domain.UserAccount, domain.UserInput]) *UserStore {
	return NewCollection("users", client)
}

// errMissingID reports a success response that carried no server-assigned id.
func errMissingID(op string) error {
	return &domain.Error{Kind: domain.KindServiceUnavailable, Op: op, Detail: "response has no id"}
}
