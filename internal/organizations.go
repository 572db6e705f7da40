package internal

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"atlas-asset-api/internal/auth"
	"atlas-asset-api/internal/models"
)

// getCurrentOrganization returns the caller's organization
func (s *Server) getCurrentOrganization(w http.ResponseWriter, r *http.Request) {
	orgID := auth.OrgIDFromContext(r.Context())
	if orgID == 0 {
		http.Error(w, "User is not part of an organization", http.StatusNotFound)
		return
	}

	org, err := s.fetchOrganization(r, orgID)
	if err == sql.ErrNoRows {
		http.Error(w, "Organization not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(org)
}

// updateOrganization updates organization settings. Admin only (enforced by
// route middleware). The employee-ID prefix is upper-cased on write; empty
// strings clear nullable fields.
func (s *Server) updateOrganization(w http.ResponseWriter, r *http.Request) {
	orgID := auth.OrgIDFromContext(r.Context())
	if orgID == 0 {
		http.Error(w, "User is not part of an organization", http.StatusNotFound)
		return
	}

	var req models.UpdateOrganizationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	type set struct {
		sql string
		val interface{}
	}
	sets := make([]set, 0, 3)

	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			http.Error(w, "Organization name cannot be empty", http.StatusBadRequest)
			return
		}
		sets = append(sets, set{"name", *req.Name})
	}
	if req.LogoURL != nil {
		sets = append(sets, set{"logo_url", nullIfEmpty(req.LogoURL)})
	}
	if req.EmployeeIDPrefix != nil {
		upper := strings.ToUpper(strings.TrimSpace(*req.EmployeeIDPrefix))
		sets = append(sets, set{"employee_id_prefix", nullIfEmpty(&upper)})
	}

	if len(sets) == 0 {
		http.Error(w, "No fields to update", http.StatusBadRequest)
		return
	}

	args := make([]interface{}, 0, len(sets)+1)
	sqlStr := "UPDATE organizations SET "
	for i, sset := range sets {
		if i > 0 {
			sqlStr += ", "
		}
		sqlStr += fmt.Sprintf("%s = $%d", sset.sql, i+1)
		args = append(args, sset.val)
	}
	sqlStr += fmt.Sprintf(", updated_at = now() WHERE id = $%d RETURNING id, name, domain, logo_url, employee_id_prefix, is_personal, created_at, updated_at", len(args)+1)
	args = append(args, orgID)

	q := dbFrom(r.Context(), s.DB)
	var org models.Organization
	err := q.QueryRowContext(r.Context(), sqlStr, args...).Scan(
		&org.ID, &org.Name, &org.Domain, &org.LogoURL, &org.EmployeeIDPrefix,
		&org.IsPersonal, &org.CreatedAt, &org.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		http.Error(w, "Organization not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "Failed to update organization", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(org)
}

// fetchOrganization loads one organization row
func (s *Server) fetchOrganization(r *http.Request, orgID int64) (models.Organization, error) {
	q := dbFrom(r.Context(), s.DB)
	var org models.Organization
	err := q.QueryRowContext(r.Context(), `
		SELECT id, name, domain, logo_url, employee_id_prefix, is_personal, created_at, updated_at
		FROM organizations WHERE id = $1`, orgID).Scan(
		&org.ID, &org.Name, &org.Domain, &org.LogoURL, &org.EmployeeIDPrefix,
		&org.IsPersonal, &org.CreatedAt, &org.UpdatedAt,
	)
	return org, err
}
