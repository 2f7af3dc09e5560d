package catalog

import (
	"context"
	"errors"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/uptrace/bun"
)

var (
	// ErrInvalidRequest marks requests missing a selector, a body, or
	// carrying unknown columns. Mapped to 400 at the HTTP boundary.
	ErrInvalidRequest = errors.New("catalog: invalid request")

	// ErrNotFound marks lookups and mutations that matched no record.
	// Mapped to 404 at the HTTP boundary.
	ErrNotFound = errors.New("catalog: route not found")
)

// Route is one row of the bus_routes relation. ID is the surrogate primary
// key; RouteNo is the business-meaningful natural key, unique per route.
type Route struct {
	bun.BaseModel `bun:"table:bus_routes,alias:br" json:"-" msgpack:"-"`

	ID           int64  `bun:"id,pk,autoincrement" json:"id"`
	RouteNo      string `bun:"route_no,notnull,unique" json:"route_no"`
	Origin       string `bun:"origin" json:"origin"`
	Destination  string `bun:"destination" json:"destination"`
	OperatorName string `bun:"operator_name" json:"operator_name"`
	FrequencyMin int    `bun:"frequency_min" json:"frequency_min"`
	Active       bool   `bun:"active" json:"active"`
}

// Fields is a partial route payload keyed by column name. Column names are
// caller-controlled and must pass the repository allow-list before they are
// interpolated into a statement.
type Fields map[string]any

// ValidateForCreate checks that a create payload carries the columns the
// schema cannot default. Unknown columns are rejected later by the
// repository allow-list; this only checks presence.
func (f Fields) ValidateForCreate() error {
	err := validation.Validate(map[string]any(f),
		validation.Map(
			validation.Key("route_no", validation.Required, validation.Length(1, 32)),
		).AllowExtraKeys(),
	)
	if err != nil {
		return errors.Join(ErrInvalidRequest, err)
	}
	return nil
}

// Selector identifies a single route by exactly one of its unique keys.
type Selector struct {
	ID      *int64
	RouteNo *string
}

// Validate reports ErrInvalidRequest when neither key is present.
func (s Selector) Validate() error {
	if s.ID == nil && s.RouteNo == nil {
		return errors.Join(ErrInvalidRequest, errors.New("selector needs id or route_no"))
	}
	return nil
}

// RouteRepository is the persistent-store contract the service coordinates
// against. Lookups return (nil, nil) when no row matched; Delete reports
// whether a row was removed.
type RouteRepository interface {
	List(ctx context.Context, limit, offset int) ([]Route, error)
	GetByID(ctx context.Context, id int64) (*Route, error)
	GetByRouteNo(ctx context.Context, routeNo string) (*Route, error)
	Create(ctx context.Context, fields Fields) (*Route, error)
	Update(ctx context.Context, id int64, fields Fields) (*Route, error)
	Delete(ctx context.Context, id int64) (bool, error)
}
