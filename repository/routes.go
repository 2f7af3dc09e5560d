// Package repository translates catalog operations into parameterized
// statements executed through bun. It holds no state of its own; every
// method is a straight pass to the connection pool it was constructed with.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/uptrace/bun"

	"github.com/goliatone/go-bus-catalog/catalog"
)

// mutableColumns is the allow-list for caller-supplied column names in
// create and update payloads. Names outside this set are rejected before
// any statement is built; only allow-listed identifiers are ever
// interpolated, and values always bind through placeholders. The surrogate
// id is deliberately absent: it is never client-writable.
var mutableColumns = map[string]struct{}{
	"route_no":      {},
	"origin":        {},
	"destination":   {},
	"operator_name": {},
	"frequency_min": {},
	"active":        {},
}

// Routes is the bus_routes accessor.
type Routes struct {
	db bun.IDB
}

var _ catalog.RouteRepository = (*Routes)(nil)

// NewRoutes builds a repository over an existing connection pool. The pool
// is shared and externally owned; nothing here holds a connection beyond a
// single call.
func NewRoutes(db bun.IDB) *Routes {
	return &Routes{db: db}
}

// List returns up to limit routes starting at offset. Rows are ordered by
// id so consecutive pages are stable and disjoint; callers cannot supply a
// sort of their own yet, which is a known limitation.
func (r *Routes) List(ctx context.Context, limit, offset int) ([]catalog.Route, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	routes := make([]catalog.Route, 0, limit)
	err := r.db.NewSelect().
		Model(&routes).
		OrderExpr("id ASC").
		Limit(limit).
		Offset(offset).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("select routes: %w", err)
	}
	return routes, nil
}

// GetByID returns the route with the given surrogate id, or nil when no row
// matched.
func (r *Routes) GetByID(ctx context.Context, id int64) (*catalog.Route, error) {
	route := new(catalog.Route)
	err := r.db.NewSelect().
		Model(route).
		Where("id = ?", id).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select route id=%d: %w", id, err)
	}
	return route, nil
}

// GetByRouteNo returns the route with the given natural key, or nil when no
// row matched. Uniqueness of route_no is enforced by the schema.
func (r *Routes) GetByRouteNo(ctx context.Context, routeNo string) (*catalog.Route, error) {
	route := new(catalog.Route)
	err := r.db.NewSelect().
		Model(route).
		Where("route_no = ?", routeNo).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select route route_no=%q: %w", routeNo, err)
	}
	return route, nil
}

// Create inserts a route built from the supplied fields and returns the
// persisted row including the generated id. Constraint violations surface
// as store errors.
func (r *Routes) Create(ctx context.Context, fields catalog.Fields) (*catalog.Route, error) {
	route := &catalog.Route{Active: true}
	for _, col := range sortedColumns(fields) {
		if err := applyColumn(route, col, fields[col]); err != nil {
			return nil, err
		}
	}

	if _, err := r.db.NewInsert().Model(route).Exec(ctx); err != nil {
		return nil, fmt.Errorf("insert route: %w", err)
	}
	return route, nil
}

// Update applies only the supplied fields to the row with the given id and
// returns the updated row, or nil when no row matched.
func (r *Routes) Update(ctx context.Context, id int64, fields catalog.Fields) (*catalog.Route, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: empty payload", catalog.ErrInvalidRequest)
	}

	q := r.db.NewUpdate().
		Model((*catalog.Route)(nil)).
		Where("id = ?", id)

	for _, col := range sortedColumns(fields) {
		value, err := coerceColumn(col, fields[col])
		if err != nil {
			return nil, err
		}
		q = q.Set("? = ?", bun.Ident(col), value)
	}

	res, err := q.Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("update route id=%d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("update route id=%d: rows affected: %w", id, err)
	}
	if affected == 0 {
		return nil, nil
	}
	return r.GetByID(ctx, id)
}

// Delete removes the row with the given id and reports whether one matched.
// Success is read from the driver's rows-affected count on the DELETE
// itself.
func (r *Routes) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.NewDelete().
		Model((*catalog.Route)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("delete route id=%d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete route id=%d: rows affected: %w", id, err)
	}
	return affected > 0, nil
}

// sortedColumns gives statements a stable column order regardless of map
// iteration.
func sortedColumns(fields catalog.Fields) []string {
	cols := make([]string, 0, len(fields))
	for col := range fields {
		cols = append(cols, col)
	}
	sort.Strings(cols)
	return cols
}

// coerceColumn gates col against the allow-list and normalizes the value to
// the column's Go type. JSON numbers arrive as float64 and are narrowed
// here so drivers with strict parameter typing accept them.
func coerceColumn(col string, value any) (any, error) {
	if _, ok := mutableColumns[col]; !ok {
		return nil, fmt.Errorf("%w: unknown column %q", catalog.ErrInvalidRequest, col)
	}

	switch col {
	case "route_no", "origin", "destination", "operator_name":
		s, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("%w: column %q wants a string", catalog.ErrInvalidRequest, col)
		}
		return s, nil

	case "frequency_min":
		switch n := value.(type) {
		case int:
			return n, nil
		case int64:
			return int(n), nil
		case float64:
			// JSON numbers decode as float64; accept only whole values
			// rather than silently truncating.
			if n != math.Trunc(n) {
				return nil, fmt.Errorf("%w: column %q wants an integer", catalog.ErrInvalidRequest, col)
			}
			return int(n), nil
		}
		return nil, fmt.Errorf("%w: column %q wants a number", catalog.ErrInvalidRequest, col)

	case "active":
		b, ok := value.(bool)
		if !ok {
			return nil, fmt.Errorf("%w: column %q wants a boolean", catalog.ErrInvalidRequest, col)
		}
		return b, nil
	}

	// Unreachable while the switch covers the allow-list.
	return nil, fmt.Errorf("%w: unknown column %q", catalog.ErrInvalidRequest, col)
}

// applyColumn assigns one allow-listed column onto the model for inserts.
func applyColumn(route *catalog.Route, col string, value any) error {
	normalized, err := coerceColumn(col, value)
	if err != nil {
		return err
	}

	switch col {
	case "route_no":
		route.RouteNo = normalized.(string)
	case "origin":
		route.Origin = normalized.(string)
	case "destination":
		route.Destination = normalized.(string)
	case "operator_name":
		route.OperatorName = normalized.(string)
	case "frequency_min":
		route.FrequencyMin = normalized.(int)
	case "active":
		route.Active = normalized.(bool)
	}
	return nil
}
