package amsapi

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/suresoft/ams-client/internal/client"
	"github.com/suresoft/ams-client/internal/models"
)

// DirectoryFilter narrows ListCategories and ListLocations.
type DirectoryFilter struct {
	Pagination
	Active *bool
	// Site only applies to locations.
	Site string
}

func (a *API) directoryQuery(ctx context.Context, f DirectoryFilter, withSite bool) (client.Request, error) {
	if err := a.validateRequest(ctx, f); err != nil {
		return client.Request{}, err
	}
	if f.Limit > MaxLimit {
		f.Limit = MaxLimit
	}

	q := newQuery().addPage(f.Pagination, DefaultLimit)
	if f.Active != nil {
		q.add("is_active", *f.Active)
	}
	if withSite && f.Site != "" {
		q.add("site", f.Site)
	}
	query, err := q.build()
	if err != nil {
		return client.Request{}, err
	}
	return client.Request{Method: http.MethodGet, Query: query}, nil
}

func (a *API) ListCategories(ctx context.Context, f DirectoryFilter) (models.Page[models.Category], error) {
	req, err := a.directoryQuery(ctx, f, false)
	if err != nil {
		return models.Page[models.Category]{}, err
	}
	req.Path = "/categories"
	return client.Execute[models.Page[models.Category]](ctx, a.client, req)
}

func (a *API) ListLocations(ctx context.Context, f DirectoryFilter) (models.Page[models.Location], error) {
	req, err := a.directoryQuery(ctx, f, true)
	if err != nil {
		return models.Page[models.Location]{}, err
	}
	req.Path = "/locations"
	return client.Execute[models.Page[models.Location]](ctx, a.client, req)
}

func (a *API) ListUsers(ctx context.Context) ([]models.User, error) {
	return client.Execute[[]models.User](ctx, a.client, client.Request{Method: http.MethodGet, Path: "/users"})
}

func (a *API) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := client.Execute[models.User](ctx, a.client, client.Request{
		Method: http.MethodGet,
		Path:   "/users/" + id.String(),
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// StatisticsOverview returns the dashboard overview as loosely typed JSON.
func (a *API) StatisticsOverview(ctx context.Context) (map[string]any, error) {
	return client.Execute[map[string]any](ctx, a.client, client.Request{
		Method: http.MethodGet,
		Path:   "/statistics/overview",
	})
}
