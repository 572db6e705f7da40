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

const assetColumns = `id, organization_id, asset_type, status, condition, category, asset_tag,
	       model, serial, subscription, warranty_end, renewal_date,
	       seats_total, seats_used, needs_data_wipe, assigned_user_id, notes,
	       created_at, updated_at`

func scanAsset(row interface{ Scan(...any) error }, extra ...any) (models.Asset, error) {
	var asset models.Asset
	var condition, category, model, serial, subscription, notes sql.NullString
	var warrantyEnd, renewalDate sql.NullTime
	var seatsTotal, seatsUsed, assignedUserID sql.NullInt64

	dest := []any{
		&asset.ID, &asset.OrganizationID, &asset.AssetType, &asset.Status,
		&condition, &category, &asset.AssetTag,
		&model, &serial, &subscription, &warrantyEnd, &renewalDate,
		&seatsTotal, &seatsUsed, &asset.NeedsDataWipe, &assignedUserID, &notes,
		&asset.CreatedAt, &asset.UpdatedAt,
	}
	dest = append(dest, extra...)
	if err := row.Scan(dest...); err != nil {
		return asset, err
	}

	if condition.Valid {
		asset.Condition = &condition.String
	}
	if category.Valid {
		asset.Category = &category.String
	}
	if model.Valid {
		asset.Model = &model.String
	}
	if serial.Valid {
		asset.Serial = &serial.String
	}
	if subscription.Valid {
		asset.Subscription = &subscription.String
	}
	if notes.Valid {
		asset.Notes = &notes.String
	}
	if warrantyEnd.Valid {
		d := models.DateOf(warrantyEnd.Time)
		asset.WarrantyEnd = &d
	}
	if renewalDate.Valid {
		d := models.DateOf(renewalDate.Time)
		asset.RenewalDate = &d
	}
	if seatsTotal.Valid {
		v := int(seatsTotal.Int64)
		asset.SeatsTotal = &v
	}
	if seatsUsed.Valid {
		v := int(seatsUsed.Int64)
		asset.SeatsUsed = &v
	}
	if assignedUserID.Valid {
		asset.AssignedUserID = &assignedUserID.Int64
	}
	return asset, nil
}

// validateAssetEnums checks the closed status and condition domains
func validateAssetEnums(status string, condition *string) string {
	if status != "" && !models.IsValidAssetStatus(status) {
		return fmt.Sprintf("Invalid status: must be one of %s", strings.Join(models.AllAssetStatuses, ", "))
	}
	if condition != nil && *condition != "" && !models.IsValidAssetCondition(*condition) {
		return fmt.Sprintf("Invalid condition: must be one of %s", strings.Join(models.AllAssetConditions, ", "))
	}
	return ""
}

// createAsset handles creating a new asset in the caller's organization
func (s *Server) createAsset(w http.ResponseWriter, r *http.Request) {
	orgID := auth.OrgIDFromContext(r.Context())
	if orgID == 0 {
		http.Error(w, "User is not part of an organization", http.StatusNotFound)
		return
	}

	var req models.CreateAssetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	req.AssetTag = strings.TrimSpace(req.AssetTag)
	if req.AssetTag == "" {
		http.Error(w, "asset_tag is required", http.StatusBadRequest)
		return
	}
	if !models.IsValidAssetType(req.AssetType) {
		http.Error(w, fmt.Sprintf("Invalid asset_type: must be one of %s", strings.Join(models.AllAssetTypes, ", ")), http.StatusBadRequest)
		return
	}
	if req.Status == "" {
		req.Status = models.StatusInStock
	}
	if msg := validateAssetEnums(req.Status, req.Condition); msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	}
	needsWipe := false
	if req.NeedsDataWipe != nil {
		needsWipe = *req.NeedsDataWipe
	}

	q := dbFrom(r.Context(), s.DB)

	if req.AssignedUserID != nil {
		var exists bool
		err := q.QueryRowContext(r.Context(),
			`SELECT EXISTS(SELECT 1 FROM users WHERE id = $1 AND organization_id = $2)`,
			*req.AssignedUserID, orgID).Scan(&exists)
		if err != nil {
			http.Error(w, "Database error", http.StatusInternalServerError)
			return
		}
		if !exists {
			http.Error(w, "Assigned user not found", http.StatusBadRequest)
			return
		}
	}

	asset, err := scanAsset(q.QueryRowContext(r.Context(), `
		INSERT INTO assets (organization_id, asset_type, status, condition, category, asset_tag,
		                    model, serial, subscription, warranty_end, renewal_date,
		                    seats_total, seats_used, needs_data_wipe, assigned_user_id, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING `+assetColumns,
		orgID, req.AssetType, req.Status, nullIfEmpty(req.Condition), nullIfEmpty(req.Category), req.AssetTag,
		nullIfEmpty(req.Model), nullIfEmpty(req.Serial), nullIfEmpty(req.Subscription), req.WarrantyEnd, req.RenewalDate,
		req.SeatsTotal, req.SeatsUsed, needsWipe, req.AssignedUserID, nullIfEmpty(req.Notes)))
	if err != nil {
		if isUniqueViolation(err) {
			http.Error(w, "Asset with this asset_tag already exists", http.StatusConflict)
			return
		}
		http.Error(w, "Failed to create asset", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(asset)
}

// listAssets lists the caller's organization assets with optional filters,
// search, sorting, and pagination.
func (s *Server) listAssets(w http.ResponseWriter, r *http.Request) {
	orgID := auth.OrgIDFromContext(r.Context())
	if orgID == 0 {
		http.Error(w, "User is not part of an organization", http.StatusNotFound)
		return
	}

	params := parseListParams(r)

	clauses := []string{"organization_id = $1"}
	args := []interface{}{orgID}
	arg := 2

	if v := r.URL.Query().Get("asset_type"); v != "" {
		if !models.IsValidAssetType(v) {
			http.Error(w, "Invalid asset_type filter", http.StatusBadRequest)
			return
		}
		clauses = append(clauses, fmt.Sprintf("asset_type = $%d", arg))
		args = append(args, v)
		arg++
	}
	if v := r.URL.Query().Get("status"); v != "" {
		if !models.IsValidAssetStatus(v) {
			http.Error(w, "Invalid status filter", http.StatusBadRequest)
			return
		}
		clauses = append(clauses, fmt.Sprintf("status = $%d", arg))
		args = append(args, v)
		arg++
	}
	if v := r.URL.Query().Get("category"); v != "" {
		clauses = append(clauses, fmt.Sprintf("category = $%d", arg))
		args = append(args, v)
		arg++
	}
	if v := r.URL.Query().Get("assigned_user_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			http.Error(w, "Invalid assigned_user_id filter", http.StatusBadRequest)
			return
		}
		clauses = append(clauses, fmt.Sprintf("assigned_user_id = $%d", arg))
		args = append(args, id)
		arg++
	}
	if params.q != "" {
		clauses = append(clauses, fmt.Sprintf("(asset_tag ILIKE $%d OR model ILIKE $%d OR serial ILIKE $%d)", arg, arg, arg))
		args = append(args, "%"+params.q+"%")
		arg++
	}

	sqlStr := `SELECT ` + assetColumns + `, COUNT(*) OVER() AS total
		FROM assets
		WHERE ` + strings.Join(clauses, " AND ")

	allowedSort := map[string]string{
		"id":           "id",
		"asset_tag":    "asset_tag",
		"status":       "status",
		"category":     "category",
		"warranty_end": "warranty_end",
		"renewal_date": "renewal_date",
		"created_at":   "created_at",
	}
	sqlStr += buildOrderBy(params.sort, allowedSort)
	sqlStr += fmt.Sprintf(" LIMIT %d OFFSET %d", params.limit, params.offset)

	q := dbFrom(r.Context(), s.DB)
	rows, err := q.QueryContext(r.Context(), sqlStr, args...)
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	defer rows.Close()

	assets := []models.Asset{}
	total := 0
	for rows.Next() {
		asset, err := scanAsset(rows, &total)
		if err != nil {
			http.Error(w, "Failed to scan asset", http.StatusInternalServerError)
			return
		}
		assets = append(assets, asset)
	}
	if err := rows.Err(); err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}

	sendListResponse(w, assets, total, params)
}

// getAsset returns one asset from the caller's organization. Cross-tenant
// lookups read as not-found.
func (s *Server) getAsset(w http.ResponseWriter, r *http.Request) {
	orgID := auth.OrgIDFromContext(r.Context())
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid asset ID", http.StatusBadRequest)
		return
	}

	q := dbFrom(r.Context(), s.DB)
	asset, err := scanAsset(q.QueryRowContext(r.Context(), `
		SELECT `+assetColumns+`
		FROM assets
		WHERE id = $1 AND organization_id = $2`, id, orgID))
	if err == sql.ErrNoRows {
		http.Error(w, "Asset not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(asset)
}

// updateAsset handles partial updates of an asset
func (s *Server) updateAsset(w http.ResponseWriter, r *http.Request) {
	orgID := auth.OrgIDFromContext(r.Context())
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid asset ID", http.StatusBadRequest)
		return
	}

	var req models.UpdateAssetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Status != nil && !models.IsValidAssetStatus(*req.Status) {
		http.Error(w, fmt.Sprintf("Invalid status: must be one of %s", strings.Join(models.AllAssetStatuses, ", ")), http.StatusBadRequest)
		return
	}
	if req.Condition != nil && *req.Condition != "" && !models.IsValidAssetCondition(*req.Condition) {
		http.Error(w, fmt.Sprintf("Invalid condition: must be one of %s", strings.Join(models.AllAssetConditions, ", ")), http.StatusBadRequest)
		return
	}

	setParts := []string{}
	args := []interface{}{}
	argIndex := 1

	addSet := func(col string, val interface{}) {
		setParts = append(setParts, fmt.Sprintf("%s = $%d", col, argIndex))
		args = append(args, val)
		argIndex++
	}

	if req.Status != nil {
		addSet("status", *req.Status)
	}
	if req.Condition != nil {
		addSet("condition", nullIfEmpty(req.Condition))
	}
	if req.Category != nil {
		addSet("category", nullIfEmpty(req.Category))
	}
	if req.AssetTag != nil {
		tag := strings.TrimSpace(*req.AssetTag)
		if tag == "" {
			http.Error(w, "asset_tag cannot be empty", http.StatusBadRequest)
			return
		}
		addSet("asset_tag", tag)
	}
	if req.Model != nil {
		addSet("model", nullIfEmpty(req.Model))
	}
	if req.Serial != nil {
		addSet("serial", nullIfEmpty(req.Serial))
	}
	if req.Subscription != nil {
		addSet("subscription", nullIfEmpty(req.Subscription))
	}
	if req.WarrantyEnd != nil {
		addSet("warranty_end", *req.WarrantyEnd)
	}
	if req.RenewalDate != nil {
		addSet("renewal_date", *req.RenewalDate)
	}
	if req.SeatsTotal != nil {
		addSet("seats_total", *req.SeatsTotal)
	}
	if req.SeatsUsed != nil {
		addSet("seats_used", *req.SeatsUsed)
	}
	if req.NeedsDataWipe != nil {
		addSet("needs_data_wipe", *req.NeedsDataWipe)
	}
	if req.AssignedUserID != nil {
		addSet("assigned_user_id", *req.AssignedUserID)
	}
	if req.Notes != nil {
		addSet("notes", nullIfEmpty(req.Notes))
	}

	if len(setParts) == 0 {
		http.Error(w, "No fields to update", http.StatusBadRequest)
		return
	}

	q := dbFrom(r.Context(), s.DB)

	if req.AssignedUserID != nil {
		var exists bool
		err := q.QueryRowContext(r.Context(),
			`SELECT EXISTS(SELECT 1 FROM users WHERE id = $1 AND organization_id = $2)`,
			*req.AssignedUserID, orgID).Scan(&exists)
		if err != nil {
			http.Error(w, "Database error", http.StatusInternalServerError)
			return
		}
		if !exists {
			http.Error(w, "Assigned user not found", http.StatusBadRequest)
			return
		}
	}

	setParts = append(setParts, "updated_at = now()")
	updateQuery := fmt.Sprintf(`
		UPDATE assets
		SET %s
		WHERE id = $%d AND organization_id = $%d
		RETURNING `+assetColumns,
		strings.Join(setParts, ", "), argIndex, argIndex+1)
	args = append(args, id, orgID)

	asset, err := scanAsset(q.QueryRowContext(r.Context(), updateQuery, args...))
	if err == sql.ErrNoRows {
		http.Error(w, "Asset not found", http.StatusNotFound)
		return
	}
	if err != nil {
		if isUniqueViolation(err) {
			http.Error(w, "Asset with this asset_tag already exists", http.StatusConflict)
			return
		}
		http.Error(w, "Failed to update asset", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(asset)
}

// deleteAsset removes an asset from the caller's organization
func (s *Server) deleteAsset(w http.ResponseWriter, r *http.Request) {
	orgID := auth.OrgIDFromContext(r.Context())
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid asset ID", http.StatusBadRequest)
		return
	}

	q := dbFrom(r.Context(), s.DB)
	res, err := q.ExecContext(r.Context(), `DELETE FROM assets WHERE id = $1 AND organization_id = $2`, id, orgID)
	if err != nil {
		http.Error(w, "Failed to delete asset", http.StatusInternalServerError)
		return
	}
	n, err := res.RowsAffected()
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	if n == 0 {
		http.Error(w, "Asset not found", http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
