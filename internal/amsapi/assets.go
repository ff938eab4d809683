package amsapi

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/suresoft/ams-client/internal/client"
	"github.com/suresoft/ams-client/internal/models"
)

// AssetFilter narrows ListAssets.
type AssetFilter struct {
	Pagination
	Status     models.AssetStatus `validate:"omitempty,oneof=issued loaned general stock server_room disposed"`
	CategoryID uuid.UUID
	LocationID uuid.UUID
}

// ListAssets returns assets matching f. The backend returns up to 100 assets by default.
func (a *API) ListAssets(ctx context.Context, f AssetFilter) ([]models.Asset, error) {
	if err := a.validateRequest(ctx, f); err != nil {
		return nil, err
	}

	q := newQuery().addPage(f.Pagination, MaxLimit)
	if f.Status != "" {
		q.add("status", f.Status)
	}
	if f.CategoryID != uuid.Nil {
		q.add("category_id", f.CategoryID.String())
	}
	if f.LocationID != uuid.Nil {
		q.add("location_id", f.LocationID.String())
	}
	query, err := q.build()
	if err != nil {
		return nil, err
	}

	return client.Execute[[]models.Asset](ctx, a.client, client.Request{
		Method: http.MethodGet,
		Path:   "/assets",
		Query:  query,
	})
}

func (a *API) GetAsset(ctx context.Context, id uuid.UUID) (*models.Asset, error) {
	asset, err := client.Execute[models.Asset](ctx, a.client, client.Request{
		Method: http.MethodGet,
		Path:   "/assets/" + id.String(),
	})
	if err != nil {
		return nil, err
	}
	return &asset, nil
}

func (a *API) CreateAsset(ctx context.Context, req models.CreateAssetRequest) (*models.Asset, error) {
	if err := a.validateRequest(ctx, req); err != nil {
		return nil, err
	}
	asset, err := client.Execute[models.Asset](ctx, a.client, client.Request{
		Method: http.MethodPost,
		Path:   "/assets",
		Body:   req,
	})
	if err != nil {
		return nil, err
	}
	return &asset, nil
}

func (a *API) UpdateAsset(ctx context.Context, id uuid.UUID, req models.UpdateAssetRequest) (*models.Asset, error) {
	if err := a.validateRequest(ctx, req); err != nil {
		return nil, err
	}
	asset, err := client.Execute[models.Asset](ctx, a.client, client.Request{
		Method: http.MethodPatch,
		Path:   "/assets/" + id.String(),
		Body:   req,
	})
	if err != nil {
		return nil, err
	}
	return &asset, nil
}

func (a *API) DeleteAsset(ctx context.Context, id uuid.UUID) error {
	_, err := a.client.Do(ctx, client.Request{
		Method: http.MethodDelete,
		Path:   "/assets/" + id.String(),
	})
	return err
}
