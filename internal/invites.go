package internal

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"atlas-asset-api/internal/auth"
	"atlas-asset-api/internal/models"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const inviteColumns = `id, code, organization_id, created_by_user_id, max_uses, uses, expires_at, is_active, created_at`

func scanInvite(row interface{ Scan(...any) error }) (models.InviteCode, error) {
	var invite models.InviteCode
	var maxUses sql.NullInt64
	var expiresAt sql.NullTime

	err := row.Scan(
		&invite.ID, &invite.Code, &invite.OrganizationID, &invite.CreatedByUserID,
		&maxUses, &invite.Uses, &expiresAt, &invite.IsActive, &invite.CreatedAt,
	)
	if err != nil {
		return invite, err
	}

	if maxUses.Valid {
		v := int(maxUses.Int64)
		invite.MaxUses = &v
	}
	if expiresAt.Valid {
		invite.ExpiresAt = &expiresAt.Time
	}
	return invite, nil
}

// newInviteCode derives a short human-pasteable code from a random UUID
func newInviteCode() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:12])
}

// createInvite handles admin creation of invite codes
func (s *Server) createInvite(w http.ResponseWriter, r *http.Request) {
	orgID := auth.OrgIDFromContext(r.Context())
	if orgID == 0 {
		http.Error(w, "User is not part of an organization", http.StatusNotFound)
		return
	}
	userID := auth.UserIDFromContext(r.Context())

	var req models.CreateInviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.MaxUses != nil && *req.MaxUses <= 0 {
		http.Error(w, "max_uses must be positive", http.StatusBadRequest)
		return
	}
	if req.ExpiresAt != nil && req.ExpiresAt.Before(time.Now()) {
		http.Error(w, "expires_at must be in the future", http.StatusBadRequest)
		return
	}

	q := dbFrom(r.Context(), s.DB)
	invite, err := scanInvite(q.QueryRowContext(r.Context(), `
		INSERT INTO invite_codes (code, organization_id, created_by_user_id, max_uses, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+inviteColumns,
		newInviteCode(), orgID, userID, req.MaxUses, req.ExpiresAt))
	if err != nil {
		http.Error(w, "Failed to create invite code", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(invite)
}

// listInvites lists the caller's organization invite codes
func (s *Server) listInvites(w http.ResponseWriter, r *http.Request) {
	orgID := auth.OrgIDFromContext(r.Context())
	if orgID == 0 {
		http.Error(w, "User is not part of an organization", http.StatusNotFound)
		return
	}

	q := dbFrom(r.Context(), s.DB)
	rows, err := q.QueryContext(r.Context(), `
		SELECT `+inviteColumns+`
		FROM invite_codes
		WHERE organization_id = $1
		ORDER BY created_at DESC, id DESC`, orgID)
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	defer rows.Close()

	invites := []models.InviteCode{}
	for rows.Next() {
		invite, err := scanInvite(rows)
		if err != nil {
			http.Error(w, "Failed to scan invite code", http.StatusInternalServerError)
			return
		}
		invites = append(invites, invite)
	}
	if err := rows.Err(); err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(invites)
}

// registerUser handles self-service registration with an invite code. The
// new account joins the code's organization as a regular user, and the use
// counter is consumed atomically so a capped code cannot be oversubscribed.
func (s *Server) registerUser(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Name == "" || req.Email == "" || req.Password == "" || req.InviteCode == "" {
		http.Error(w, "Name, email, password, and invite_code are required", http.StatusBadRequest)
		return
	}
	if len(req.Password) < 8 {
		http.Error(w, "Password must be at least 8 characters", http.StatusBadRequest)
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		http.Error(w, "Failed to hash password", http.StatusInternalServerError)
		return
	}

	tx, err := s.DB.BeginTx(r.Context(), nil)
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	defer tx.Rollback()

	// Consume one use of the code only while it is still valid
	var orgID int64
	err = tx.QueryRowContext(r.Context(), `
		UPDATE invite_codes
		SET uses = uses + 1
		WHERE code = $1
		  AND is_active = true
		  AND (expires_at IS NULL OR expires_at > now())
		  AND (max_uses IS NULL OR uses < max_uses)
		RETURNING organization_id`, strings.ToUpper(strings.TrimSpace(req.InviteCode))).Scan(&orgID)
	if err == sql.ErrNoRows {
		http.Error(w, "Invalid or expired invite code", http.StatusBadRequest)
		return
	}
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}

	user, err := scanUser(tx.QueryRowContext(r.Context(), `
		INSERT INTO users (name, email, password_hash, role, organization_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+userColumns,
		req.Name, req.Email, string(hashedPassword), models.RoleUser, orgID))
	if err != nil {
		if isUniqueViolation(err) {
			http.Error(w, "User with this email already exists", http.StatusConflict)
			return
		}
		http.Error(w, "Failed to create user", http.StatusInternalServerError)
		return
	}

	if err := tx.Commit(); err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(user.Redacted())
}
