package amsapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suresoft/ams-client/internal/apierr"
	"github.com/suresoft/ams-client/internal/client"
	"github.com/suresoft/ams-client/internal/models"
	"github.com/suresoft/ams-client/internal/tokenstore"
)

type recordedRequest struct {
	method string
	path   string
	query  url.Values
	body   map[string]any
	auth   string
}

// recordingServer answers every request with the configured JSON and remembers it.
type recordingServer struct {
	mu       sync.Mutex
	requests []recordedRequest
	status   int
	response any
}

func (s *recordingServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rec := recordedRequest{
		method: r.Method,
		path:   r.URL.Path,
		query:  r.URL.Query(),
		auth:   r.Header.Get("Authorization"),
	}
	if data, _ := io.ReadAll(r.Body); len(data) > 0 {
		_ = json.Unmarshal(data, &rec.body)
	}

	s.mu.Lock()
	s.requests = append(s.requests, rec)
	status, response := s.status, s.response
	s.mu.Unlock()

	if status == 0 {
		status = http.StatusOK
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if response != nil {
		_ = json.NewEncoder(w).Encode(response)
	}
}

func (s *recordingServer) last(t *testing.T) recordedRequest {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	require.NotEmpty(t, s.requests)
	return s.requests[len(s.requests)-1]
}

func (s *recordingServer) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

func newTestAPI(t *testing.T, srv *recordingServer) *API {
	t.Helper()
	server := httptest.NewServer(srv)
	t.Cleanup(server.Close)

	store, err := tokenstore.NewStore(tokenstore.NewMemoryBackend())
	require.NoError(t, err)
	require.NoError(t, store.SetTokens(context.Background(), tokenstore.Credential{
		AccessToken:  "access",
		RefreshToken: "refresh",
	}))

	c, err := client.New(server.URL+"/api/v1", store, client.WithTimeout(5*time.Second))
	require.NoError(t, err)
	return New(c)
}

func TestListAssetsEncodesFilter(t *testing.T) {
	srv := &recordingServer{response: []map[string]any{{"id": uuid.NewString(), "asset_tag": "SS-0001"}}}
	api := newTestAPI(t, srv)

	category := uuid.New()
	assets, err := api.ListAssets(context.Background(), AssetFilter{
		Pagination: Pagination{Skip: 10, Limit: 5},
		Status:     models.AssetStock,
		CategoryID: category,
	})
	require.NoError(t, err)
	require.Len(t, assets, 1)
	assert.Equal(t, "SS-0001", assets[0].AssetTag)

	req := srv.last(t)
	assert.Equal(t, http.MethodGet, req.method)
	assert.Equal(t, "/api/v1/assets", req.path)
	assert.Equal(t, "stock", req.query.Get("status"))
	assert.Equal(t, category.String(), req.query.Get("category_id"))
	assert.Equal(t, "10", req.query.Get("skip"))
	assert.Equal(t, "5", req.query.Get("limit"))
	assert.False(t, req.query.Has("location_id"))
	assert.Equal(t, "Bearer access", req.auth)
}

func TestListAssetsDefaultLimit(t *testing.T) {
	srv := &recordingServer{response: []any{}}
	api := newTestAPI(t, srv)

	_, err := api.ListAssets(context.Background(), AssetFilter{})
	require.NoError(t, err)
	assert.Equal(t, "100", srv.last(t).query.Get("limit"))
	assert.Equal(t, "0", srv.last(t).query.Get("skip"))
}

func TestListAssetsRejectsUnknownStatus(t *testing.T) {
	srv := &recordingServer{}
	api := newTestAPI(t, srv)

	_, err := api.ListAssets(context.Background(), AssetFilter{Status: "misplaced"})
	require.Error(t, err)
	assert.Equal(t, apierr.KindUnknown, apierr.KindOf(err))
	assert.Zero(t, srv.count(), "invalid filters must not reach the network")
}

func TestWorkflowActions(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name       string
		call       func(api *API) (*models.Workflow, error)
		wantMethod string
		wantPath   string
		wantBody   map[string]any
	}{
		{
			name:       "approve with comment",
			call:       func(api *API) (*models.Workflow, error) { return api.ApproveWorkflow(context.Background(), id, "ok") },
			wantMethod: http.MethodPost,
			wantPath:   "/api/v1/workflows/" + id.String() + "/approve",
			wantBody:   map[string]any{"comment": "ok"},
		},
		{
			name:       "approve without comment",
			call:       func(api *API) (*models.Workflow, error) { return api.ApproveWorkflow(context.Background(), id, "") },
			wantMethod: http.MethodPost,
			wantPath:   "/api/v1/workflows/" + id.String() + "/approve",
			wantBody:   nil,
		},
		{
			name:       "reject",
			call:       func(api *API) (*models.Workflow, error) { return api.RejectWorkflow(context.Background(), id, "broken") },
			wantMethod: http.MethodPost,
			wantPath:   "/api/v1/workflows/" + id.String() + "/reject",
			wantBody:   map[string]any{"reason": "broken"},
		},
		{
			name:       "cancel",
			call:       func(api *API) (*models.Workflow, error) { return api.CancelWorkflow(context.Background(), id) },
			wantMethod: http.MethodPatch,
			wantPath:   "/api/v1/workflows/" + id.String() + "/cancel",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := &recordingServer{response: map[string]any{"id": id.String(), "status": "approved"}}
			api := newTestAPI(t, srv)

			wf, err := tt.call(api)
			require.NoError(t, err)
			assert.Equal(t, id, wf.ID)

			req := srv.last(t)
			assert.Equal(t, tt.wantMethod, req.method)
			assert.Equal(t, tt.wantPath, req.path)
			if tt.wantBody != nil {
				assert.Equal(t, tt.wantBody, req.body)
			} else {
				assert.Empty(t, req.body)
			}
		})
	}
}

func TestRejectWorkflowRequiresReason(t *testing.T) {
	srv := &recordingServer{}
	api := newTestAPI(t, srv)

	_, err := api.RejectWorkflow(context.Background(), uuid.New(), "")
	require.Error(t, err)
	assert.Zero(t, srv.count())
}

func TestMyRequestsPage(t *testing.T) {
	srv := &recordingServer{response: map[string]any{
		"items": []map[string]any{{"id": uuid.NewString(), "status": "pending"}},
		"total": 41,
		"skip":  20,
		"limit": 20,
	}}
	api := newTestAPI(t, srv)

	page, err := api.MyRequests(context.Background(), WorkflowFilter{
		Pagination: Pagination{Skip: 20, Limit: 500},
		Status:     models.WorkflowPending,
		AssetID:    uuid.New(),
	})
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)
	assert.Equal(t, 2, page.Number())
	assert.Equal(t, 3, page.Pages())

	req := srv.last(t)
	assert.Equal(t, "/api/v1/workflows/my-requests", req.path)
	assert.Equal(t, "pending", req.query.Get("status"))
	assert.Equal(t, "100", req.query.Get("limit"), "limit is clamped")
	assert.False(t, req.query.Has("asset_id"))
}

func TestListLocationsFilters(t *testing.T) {
	srv := &recordingServer{response: map[string]any{"items": []any{}, "total": 0, "skip": 0, "limit": 20}}
	api := newTestAPI(t, srv)

	active := true
	_, err := api.ListLocations(context.Background(), DirectoryFilter{Active: &active, Site: "Pangyo"})
	require.NoError(t, err)

	req := srv.last(t)
	assert.Equal(t, "/api/v1/locations", req.path)
	assert.Equal(t, "true", req.query.Get("is_active"))
	assert.Equal(t, "Pangyo", req.query.Get("site"))
	assert.Equal(t, "20", req.query.Get("limit"))
}

func TestListCategoriesIgnoresSite(t *testing.T) {
	srv := &recordingServer{response: map[string]any{"items": []any{}, "total": 0, "skip": 0, "limit": 20}}
	api := newTestAPI(t, srv)

	_, err := api.ListCategories(context.Background(), DirectoryFilter{Site: "Pangyo"})
	require.NoError(t, err)
	assert.False(t, srv.last(t).query.Has("site"))
}

func TestErrorsAreClassified(t *testing.T) {
	srv := &recordingServer{status: http.StatusNotFound, response: map[string]any{"detail": "Asset not found"}}
	api := newTestAPI(t, srv)

	_, err := api.GetAsset(context.Background(), uuid.New())
	require.ErrorIs(t, err, apierr.ErrNotFound)

	var apiErr *apierr.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Asset not found", apiErr.Detail)
}

func TestDeleteAsset(t *testing.T) {
	srv := &recordingServer{status: http.StatusNoContent}
	api := newTestAPI(t, srv)

	id := uuid.New()
	require.NoError(t, api.DeleteAsset(context.Background(), id))

	req := srv.last(t)
	assert.Equal(t, http.MethodDelete, req.method)
	assert.Equal(t, "/api/v1/assets/"+id.String(), req.path)
}
