package amsapi

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/suresoft/ams-client/internal/client"
	"github.com/suresoft/ams-client/internal/models"
)

// WorkflowFilter narrows ListWorkflows and MyRequests.
type WorkflowFilter struct {
	Pagination
	Type    models.WorkflowType   `validate:"omitempty,oneof=checkout checkin transfer maintenance rental return disposal"`
	Status  models.WorkflowStatus `validate:"omitempty,oneof=pending approved rejected cancelled completed"`
	AssetID uuid.UUID
}

// approvalRequest is the body of POST /workflows/{id}/approve.
type approvalRequest struct {
	Comment *string `json:"comment,omitempty" validate:"omitempty,max=500"`
}

// rejectionRequest is the body of POST /workflows/{id}/reject.
type rejectionRequest struct {
	Reason string `json:"reason" validate:"required,max=1000"`
}

func (a *API) workflowQuery(ctx context.Context, f WorkflowFilter) (client.Request, error) {
	if err := a.validateRequest(ctx, f); err != nil {
		return client.Request{}, err
	}
	if f.Limit > MaxLimit {
		f.Limit = MaxLimit
	}

	q := newQuery().addPage(f.Pagination, DefaultLimit)
	if f.Type != "" {
		q.add("workflow_type", f.Type)
	}
	if f.Status != "" {
		q.add("status", f.Status)
	}
	if f.AssetID != uuid.Nil {
		q.add("asset_id", f.AssetID.String())
	}
	query, err := q.build()
	if err != nil {
		return client.Request{}, err
	}
	return client.Request{Method: http.MethodGet, Query: query}, nil
}

// ListWorkflows returns workflows visible to the current user.
func (a *API) ListWorkflows(ctx context.Context, f WorkflowFilter) (models.Page[models.Workflow], error) {
	req, err := a.workflowQuery(ctx, f)
	if err != nil {
		return models.Page[models.Workflow]{}, err
	}
	req.Path = "/workflows"
	return client.Execute[models.Page[models.Workflow]](ctx, a.client, req)
}

// MyRequests returns workflows requested by the current user. AssetID is ignored.
func (a *API) MyRequests(ctx context.Context, f WorkflowFilter) (models.Page[models.Workflow], error) {
	f.AssetID = uuid.Nil
	req, err := a.workflowQuery(ctx, f)
	if err != nil {
		return models.Page[models.Workflow]{}, err
	}
	req.Path = "/workflows/my-requests"
	return client.Execute[models.Page[models.Workflow]](ctx, a.client, req)
}

func (a *API) GetWorkflow(ctx context.Context, id uuid.UUID) (*models.Workflow, error) {
	return a.workflowCall(ctx, http.MethodGet, "/workflows/"+id.String(), nil)
}

func (a *API) CreateWorkflow(ctx context.Context, req models.CreateWorkflowRequest) (*models.Workflow, error) {
	if err := a.validateRequest(ctx, req); err != nil {
		return nil, err
	}
	return a.workflowCall(ctx, http.MethodPost, "/workflows", req)
}

// ApproveWorkflow approves a pending workflow. Managers and admins only.
func (a *API) ApproveWorkflow(ctx context.Context, id uuid.UUID, comment string) (*models.Workflow, error) {
	body := approvalRequest{}
	if comment != "" {
		body.Comment = &comment
	}
	if err := a.validateRequest(ctx, body); err != nil {
		return nil, err
	}
	return a.workflowCall(ctx, http.MethodPost, "/workflows/"+id.String()+"/approve", body)
}

// RejectWorkflow rejects a pending workflow. Managers and admins only.
func (a *API) RejectWorkflow(ctx context.Context, id uuid.UUID, reason string) (*models.Workflow, error) {
	body := rejectionRequest{Reason: reason}
	if err := a.validateRequest(ctx, body); err != nil {
		return nil, err
	}
	return a.workflowCall(ctx, http.MethodPost, "/workflows/"+id.String()+"/reject", body)
}

// CancelWorkflow cancels a pending workflow. Only its requester may cancel it.
func (a *API) CancelWorkflow(ctx context.Context, id uuid.UUID) (*models.Workflow, error) {
	return a.workflowCall(ctx, http.MethodPatch, "/workflows/"+id.String()+"/cancel", nil)
}

func (a *API) workflowCall(ctx context.Context, method, path string, body any) (*models.Workflow, error) {
	wf, err := client.Execute[models.Workflow](ctx, a.client, client.Request{
		Method: method,
		Path:   path,
		Body:   body,
	})
	if err != nil {
		return nil, err
	}
	return &wf, nil
}
