// Package amsapi exposes typed AMS resources (assets, workflows, categories,
// locations, users, statistics) on top of the authenticated client.
package amsapi

import (
	"context"
	"fmt"
	"net/url"

	"github.com/go-playground/validator/v10"
	"github.com/oapi-codegen/runtime"

	"github.com/suresoft/ams-client/internal/apierr"
	"github.com/suresoft/ams-client/internal/client"
)

// Pagination bounds enforced by the backend.
const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// API groups the typed resource calls.
type API struct {
	client   *client.Client
	validate *validator.Validate
}

// New creates an API on top of c.
func New(c *client.Client) *API {
	return &API{client: c, validate: validator.New()}
}

// Pagination selects a page of a list endpoint.
type Pagination struct {
	Skip  int `validate:"gte=0"`
	Limit int `validate:"gte=0,lte=1000"`
}

// validateRequest checks v against its struct tags before any network call.
func (a *API) validateRequest(ctx context.Context, v any) error {
	if err := a.validate.StructCtx(ctx, v); err != nil {
		return &apierr.Error{Kind: apierr.KindUnknown, Detail: "invalid request", Err: err}
	}
	return nil
}

// queryBuilder encodes query parameters with OpenAPI form style, the way
// generated clients do. The first error sticks.
type queryBuilder struct {
	values url.Values
	err    error
}

func newQuery() *queryBuilder {
	return &queryBuilder{values: url.Values{}}
}

func (q *queryBuilder) add(name string, value any) *queryBuilder {
	if q.err != nil {
		return q
	}
	frag, err := runtime.StyleParamWithLocation("form", true, name, runtime.ParamLocationQuery, value)
	if err != nil {
		q.err = fmt.Errorf("encoding query parameter %s: %w", name, err)
		return q
	}
	parsed, err := url.ParseQuery(frag)
	if err != nil {
		q.err = fmt.Errorf("parsing query parameter %s: %w", name, err)
		return q
	}
	for key, values := range parsed {
		for _, v := range values {
			q.values.Add(key, v)
		}
	}
	return q
}

// addPage sets skip and limit, defaulting the limit.
func (q *queryBuilder) addPage(p Pagination, defaultLimit int) *queryBuilder {
	limit := p.Limit
	if limit == 0 {
		limit = defaultLimit
	}
	return q.add("skip", p.Skip).add("limit", limit)
}

func (q *queryBuilder) build() (url.Values, error) {
	if q.err != nil {
		return nil, &apierr.Error{Kind: apierr.KindUnknown, Detail: "invalid query", Err: q.err}
	}
	return q.values, nil
}
