// Package models mirrors the AMS backend schemas consumed by the client.
package models

import (
	"time"

	"github.com/google/uuid"
)

// UserRole is the authorization role of a user.
type UserRole string

const (
	RoleAdmin    UserRole = "admin"
	RoleManager  UserRole = "manager"
	RoleEmployee UserRole = "employee"
)

// CanApprove reports whether the role may approve or reject workflows.
func (r UserRole) CanApprove() bool {
	return r == RoleAdmin || r == RoleManager
}

type User struct {
	ID         uuid.UUID `json:"id"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	Role       UserRole  `json:"role"`
	Department *string   `json:"department,omitempty"`
	EmployeeID *string   `json:"employee_id,omitempty"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse is returned by POST /auth/login and POST /auth/refresh.
type LoginResponse struct {
	User         *User  `json:"user,omitempty"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// Page is the backend's paginated list envelope.
type Page[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
	Skip  int `json:"skip"`
	Limit int `json:"limit"`
}

// Number returns the 1-based page number.
func (p Page[T]) Number() int {
	if p.Limit <= 0 {
		return 1
	}
	return p.Skip/p.Limit + 1
}

// Pages returns the total number of pages.
func (p Page[T]) Pages() int {
	if p.Limit <= 0 {
		return 0
	}
	return (p.Total + p.Limit - 1) / p.Limit
}

// AssetStatus is the lifecycle state of an asset.
type AssetStatus string

const (
	AssetIssued     AssetStatus = "issued"
	AssetLoaned     AssetStatus = "loaned"
	AssetGeneral    AssetStatus = "general"
	AssetStock      AssetStatus = "stock"
	AssetServerRoom AssetStatus = "server_room"
	AssetDisposed   AssetStatus = "disposed"
)

// AssetGrade is the age bracket of an asset: A (0-2y), B (2-4y), C (4y+).
type AssetGrade string

const (
	GradeA AssetGrade = "A"
	GradeB AssetGrade = "B"
	GradeC AssetGrade = "C"
)

type Asset struct {
	ID               uuid.UUID   `json:"id"`
	AssetTag         string      `json:"asset_tag"`
	Model            *string     `json:"model,omitempty"`
	SerialNumber     *string     `json:"serial_number,omitempty"`
	Status           AssetStatus `json:"status"`
	CategoryID       uuid.UUID   `json:"category_id"`
	LocationID       *uuid.UUID  `json:"location_id,omitempty"`
	AssignedTo       *uuid.UUID  `json:"assigned_to,omitempty"`
	CategoryName     *string     `json:"category_name,omitempty"`
	LocationName     *string     `json:"location_name,omitempty"`
	AssignedUserName *string     `json:"assigned_user_name,omitempty"`
	PurchaseDate     *time.Time  `json:"purchase_date,omitempty"`
	PurchasePrice    *float64    `json:"purchase_price,omitempty"`
	Supplier         *string     `json:"supplier,omitempty"`
	Grade            *AssetGrade `json:"grade,omitempty"`
	Description      *string     `json:"description,omitempty"`
	Notes            *string     `json:"notes,omitempty"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
}

type CreateAssetRequest struct {
	AssetTag      *string     `json:"asset_tag,omitempty" validate:"omitempty,min=1,max=50"`
	Model         *string     `json:"model,omitempty" validate:"omitempty,max=255"`
	SerialNumber  *string     `json:"serial_number,omitempty" validate:"omitempty,max=255"`
	CategoryID    uuid.UUID   `json:"category_id" validate:"required"`
	Status        AssetStatus `json:"status,omitempty"`
	LocationID    *uuid.UUID  `json:"location_id,omitempty"`
	PurchaseDate  *time.Time  `json:"purchase_date,omitempty"`
	PurchasePrice *float64    `json:"purchase_price,omitempty" validate:"omitempty,gte=0"`
	Supplier      *string     `json:"supplier,omitempty" validate:"omitempty,max=255"`
	Notes         *string     `json:"notes,omitempty" validate:"omitempty,max=1000"`
}

type UpdateAssetRequest struct {
	Status        *AssetStatus `json:"status,omitempty"`
	CategoryID    *uuid.UUID   `json:"category_id,omitempty"`
	LocationID    *uuid.UUID   `json:"location_id,omitempty"`
	AssignedTo    *uuid.UUID   `json:"assigned_to,omitempty"`
	PurchaseDate  *time.Time   `json:"purchase_date,omitempty"`
	PurchasePrice *float64     `json:"purchase_price,omitempty" validate:"omitempty,gte=0"`
	Notes         *string      `json:"notes,omitempty" validate:"omitempty,max=1000"`
	Grade         *AssetGrade  `json:"grade,omitempty"`
}

// WorkflowType is the kind of approval request.
type WorkflowType string

const (
	WorkflowCheckout    WorkflowType = "checkout"
	WorkflowCheckin     WorkflowType = "checkin"
	WorkflowTransfer    WorkflowType = "transfer"
	WorkflowMaintenance WorkflowType = "maintenance"
	WorkflowRental      WorkflowType = "rental"
	WorkflowReturn      WorkflowType = "return"
	WorkflowDisposal    WorkflowType = "disposal"
)

// WorkflowStatus is the approval state of a workflow.
type WorkflowStatus string

const (
	WorkflowPending   WorkflowStatus = "pending"
	WorkflowApproved  WorkflowStatus = "approved"
	WorkflowRejected  WorkflowStatus = "rejected"
	WorkflowCancelled WorkflowStatus = "cancelled"
	WorkflowCompleted WorkflowStatus = "completed"
)

// Terminal reports whether no further transition is possible.
func (s WorkflowStatus) Terminal() bool {
	return s == WorkflowRejected || s == WorkflowCancelled || s == WorkflowCompleted
}

type Workflow struct {
	ID                 uuid.UUID      `json:"id"`
	Type               WorkflowType   `json:"type"`
	Status             WorkflowStatus `json:"status"`
	AssetID            uuid.UUID      `json:"asset_id"`
	RequesterID        uuid.UUID      `json:"requester_id"`
	AssigneeID         *uuid.UUID     `json:"assignee_id,omitempty"`
	ApproverID         *uuid.UUID     `json:"approver_id,omitempty"`
	Reason             *string        `json:"reason,omitempty"`
	ExpectedReturnDate *time.Time     `json:"expected_return_date,omitempty"`
	ApprovedAt         *time.Time     `json:"approved_at,omitempty"`
	RejectedAt         *time.Time     `json:"rejected_at,omitempty"`
	RejectReason       *string        `json:"reject_reason,omitempty"`
	CompletedAt        *time.Time     `json:"completed_at,omitempty"`
	CompletionNotes    *string        `json:"completion_notes,omitempty"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
}

type CreateWorkflowRequest struct {
	Type               WorkflowType `json:"type" validate:"required,oneof=checkout checkin transfer maintenance rental return disposal"`
	AssetID            uuid.UUID    `json:"asset_id" validate:"required"`
	AssigneeID         *uuid.UUID   `json:"assignee_id,omitempty"`
	Reason             *string      `json:"reason,omitempty" validate:"omitempty,max=1000"`
	ExpectedReturnDate *time.Time   `json:"expected_return_date,omitempty"`
}

type Category struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Code        string    `json:"code"`
	Description *string   `json:"description,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Location struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Code      string    `json:"code"`
	Site      *string   `json:"site,omitempty"`
	Building  *string   `json:"building,omitempty"`
	Floor     *string   `json:"floor,omitempty"`
	Room      *string   `json:"room,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
