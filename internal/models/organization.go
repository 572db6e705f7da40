package models

import (
	"time"
)

// Organization is the tenant boundary: users and assets belong to exactly
// one organization and all queries are scoped by it.
type Organization struct {
	ID               int64     `json:"id"`
	Name             string    `json:"name"`
	Domain           *string   `json:"domain,omitempty"`
	LogoURL          *string   `json:"logo_url,omitempty"`
	EmployeeIDPrefix *string   `json:"employee_id_prefix,omitempty"`
	IsPersonal       bool      `json:"is_personal"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// UpdateOrganizationRequest represents the request body for updating
// organization settings. Absent fields are left unchanged; an empty
// logo_url or employee_id_prefix clears the value.
type UpdateOrganizationRequest struct {
	Name             *string `json:"name,omitempty"`
	LogoURL          *string `json:"logo_url,omitempty"`
	EmployeeIDPrefix *string `json:"employee_id_prefix,omitempty"`
}

// InviteCode onboards users into an organization
type InviteCode struct {
	ID              int64      `json:"id"`
	Code            string     `json:"code"`
	OrganizationID  int64      `json:"organization_id"`
	CreatedByUserID int64      `json:"created_by_user_id"`
	MaxUses         *int       `json:"max_uses,omitempty"`
	Uses            int        `json:"uses"`
	ExpiresAt       *time.Time `json:"expires_at,omitempty"`
	IsActive        bool       `json:"is_active"`
	CreatedAt       time.Time  `json:"created_at"`
}

// CreateInviteRequest represents the request body for creating an invite code
type CreateInviteRequest struct {
	MaxUses   *int       `json:"max_uses,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}
