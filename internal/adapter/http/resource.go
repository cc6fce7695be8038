package adapthttp

import (
	"context"
	"net/http"

	"fieldsync/internal/domain"
)

// ResourceClient speaks the backend's CRUD convention for one collection:
// GET/POST on the collection path, GET/PUT/DELETE on path/{id}.
type ResourceClient[T domain.Record, In domain.Input] struct {
	gw   *Gateway
	path string
}

// NewResourceClient returns a client for the collection at path.
func NewResourceClient[T domain.Record, In domain.Input](gw *Gateway, path string) *ResourceClient[T, In] {
	return &ResourceClient[T, In]{gw: gw, path: path}
}

// NewIncidentClient returns the client for /incidents.
func NewIncidentClient(gw *Gateway) *ResourceClient[domain.Incident, domain.IncidentInput] {
	return NewResourceClient[domain.Incident, domain.IncidentInput](gw, "/incidents")
}

// NewUserClient returns the client for /users.
func NewUserClient(gw *Gateway) *ResourceClient[domain.UserAccount, domain.UserInput] {
	return NewResourceClient[domain.UserAccount, domain.UserInput](gw, "/users")
}

var (
	_ domain.ResourceClient[domain.Incident, domain.IncidentInput] = (*ResourceClient[domain.Incident, domain.IncidentInput])(nil)
	_ domain.ResourceClient[domain.UserAccount, domain.UserInput]  = (*ResourceClient[domain.UserAccount, domain.UserInput])(nil)
)

func (c *ResourceClient[T, In]) List(ctx context.Context) ([]T, error) {
	var out []T
	if err := c.gw.Do(ctx, http.MethodGet, c.path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ResourceClient[T, In]) Get(ctx context.Context, id int64) (T, error) {
	var out T
	err := c.gw.Do(ctx, http.MethodGet, idPath(c.path, id), nil, &out)
	return out, err
}

func (c *ResourceClient[T, In]) Create(ctx context.Context, in In) (T, error) {
	var out T
	err := c.gw.Do(ctx, http.MethodPost, c.path, in, &out)
	return out, err
}

func (c *ResourceClient[T, In]) Update(ctx context.Context, id int64, patch In) (T, error) {
	var out T
	err := c.gw.Do(ctx, http.MethodPut, idPath(c.path, id), patch, &out)
	return out, err
}

func (c *ResourceClient[T, In]) Delete(ctx context.Context, id int64) error {
	return c.gw.Do(ctx, http.MethodDelete, idPath(c.path, id), nil, nil)
}
