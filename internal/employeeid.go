package internal

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"atlas-asset-api/internal/auth"
	"atlas-asset-api/internal/models"

	"github.com/go-chi/chi/v5"
)

// allocRetries bounds recomputation when a concurrent generate lands on the
// same number and the unique index rejects the write.
const allocRetries = 3

// nextEmployeeID computes the next sequential ID for a prefix from the set
// of existing IDs. Remainders that do not parse as an integer are skipped,
// not errors. The number is zero-padded to 3 digits; values past 999 keep
// their full width.
func nextEmployeeID(prefix string, existing []string) string {
	maxNum := 0
	for _, id := range existing {
		if !strings.HasPrefix(id, prefix) {
			continue
		}
		num, err := strconv.Atoi(id[len(prefix):])
		if err != nil {
			continue
		}
		if num > maxNum {
			maxNum = num
		}
	}
	return fmt.Sprintf("%s%03d", prefix, maxNum+1)
}

// generateEmployeeID assigns the next sequential employee ID under the
// organization's configured prefix. Admin only (route middleware).
func (s *Server) generateEmployeeID(w http.ResponseWriter, r *http.Request) {
	orgID := auth.OrgIDFromContext(r.Context())
	if orgID == 0 {
		http.Error(w, "User is not part of an organization", http.StatusNotFound)
		return
	}

	userID, err := strconv.ParseInt(chi.URLParam(r, "user_id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
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
	if org.EmployeeIDPrefix == nil || *org.EmployeeIDPrefix == "" {
		http.Error(w, "Organization has no employee ID prefix set", http.StatusBadRequest)
		return
	}
	prefix := *org.EmployeeIDPrefix

	q := dbFrom(r.Context(), s.DB)

	// Target must exist in the caller's organization; cross-tenant reads
	// as not-found.
	var existingID sql.NullString
	err = q.QueryRowContext(r.Context(), `
		SELECT employee_id FROM users WHERE id = $1 AND organization_id = $2`,
		userID, orgID).Scan(&existingID)
	if err == sql.ErrNoRows {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	if existingID.Valid {
		http.Error(w, "User already has an employee ID", http.StatusBadRequest)
		return
	}

	// Scan-and-assign. The unique index on (organization_id, employee_id)
	// turns a concurrent duplicate into a retryable write conflict.
	var newID string
	for attempt := 0; ; attempt++ {
		rows, err := q.QueryContext(r.Context(), `
			SELECT employee_id FROM users
			WHERE organization_id = $1 AND employee_id IS NOT NULL AND employee_id LIKE $2`,
			orgID, prefix+"%")
		if err != nil {
			http.Error(w, "Database error", http.StatusInternalServerError)
			return
		}
		var existing []string
		for rows.Next() {
			var id string
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				http.Error(w, "Database error", http.StatusInternalServerError)
				return
			}
			existing = append(existing, id)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			http.Error(w, "Database error", http.StatusInternalServerError)
			return
		}

		newID = nextEmployeeID(prefix, existing)

		_, err = q.ExecContext(r.Context(), `
			UPDATE users SET employee_id = $1, updated_at = now()
			WHERE id = $2 AND organization_id = $3`,
			newID, userID, orgID)
		if err == nil {
			break
		}
		if isUniqueViolation(err) && attempt < allocRetries {
			continue
		}
		if isUniqueViolation(err) {
			http.Error(w, "Employee ID allocation conflict", http.StatusConflict)
			return
		}
		http.Error(w, "Failed to assign employee ID", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(models.EmployeeIDResponse{EmployeeID: newID, UserID: userID})
}

// setEmployeeID assigns a literal employee ID chosen by the admin. The only
// validation is a case-sensitive duplicate check within the organization.
func (s *Server) setEmployeeID(w http.ResponseWriter, r *http.Request) {
	orgID := auth.OrgIDFromContext(r.Context())
	if orgID == 0 {
		http.Error(w, "User is not part of an organization", http.StatusNotFound)
		return
	}

	userID, err := strconv.ParseInt(chi.URLParam(r, "user_id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	employeeID := r.URL.Query().Get("employee_id")
	if employeeID == "" {
		http.Error(w, "employee_id is required", http.StatusBadRequest)
		return
	}

	q := dbFrom(r.Context(), s.DB)

	var targetExists bool
	err = q.QueryRowContext(r.Context(), `
		SELECT EXISTS(SELECT 1 FROM users WHERE id = $1 AND organization_id = $2)`,
		userID, orgID).Scan(&targetExists)
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	if !targetExists {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}

	// Exact-match duplicate check against other users in the organization
	var inUse bool
	err = q.QueryRowContext(r.Context(), `
		SELECT EXISTS(
			SELECT 1 FROM users
			WHERE organization_id = $1 AND employee_id = $2 AND id != $3)`,
		orgID, employeeID, userID).Scan(&inUse)
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	if inUse {
		http.Error(w, fmt.Sprintf("Employee ID %s is already in use", employeeID), http.StatusBadRequest)
		return
	}

	_, err = q.ExecContext(r.Context(), `
		UPDATE users SET employee_id = $1, updated_at = now()
		WHERE id = $2 AND organization_id = $3`,
		employeeID, userID, orgID)
	if err != nil {
		// The unique index is the backstop for a check-then-write race
		if isUniqueViolation(err) {
			http.Error(w, fmt.Sprintf("Employee ID %s is already in use", employeeID), http.StatusBadRequest)
			return
		}
		http.Error(w, "Failed to set employee ID", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(models.EmployeeIDResponse{EmployeeID: employeeID, UserID: userID})
}

// isUniqueViolation reports whether the driver error is a Postgres unique
// constraint failure
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}
