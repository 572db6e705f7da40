package internal

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"

	"atlas-asset-api/internal/auth"
	"atlas-asset-api/internal/models"
)

// Near-term window for warranty and renewal lists, inclusive on both ends.
const upcomingWindowDays = 30

// getDashboardStats assembles the organization dashboard snapshot. Read
// only; an organization with no assets yields all-zero counts and empty
// lists.
func (s *Server) getDashboardStats(w http.ResponseWriter, r *http.Request) {
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

	q := dbFrom(r.Context(), s.DB)
	ctx := r.Context()

	stats := models.DashboardStats{
		Organization: models.DashboardOrganization{
			ID:               org.ID,
			Name:             org.Name,
			LogoURL:          org.LogoURL,
			EmployeeIDPrefix: org.EmployeeIDPrefix,
		},
		WarrantyExpiring:  []models.WarrantyExpiringAsset{},
		RenewalsComing:    []models.RenewalComingAsset{},
		CategoryBreakdown: []models.CategoryCount{},
	}

	// Headline totals
	err = q.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM users WHERE organization_id = $1 AND is_active = true`,
		orgID).Scan(&stats.Totals.Users)
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}

	err = q.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE asset_type = $2),
		       COUNT(*) FILTER (WHERE asset_type = $3),
		       COUNT(*) FILTER (WHERE needs_data_wipe)
		FROM assets WHERE organization_id = $1`,
		orgID, models.AssetTypeHardware, models.AssetTypeSoftware).Scan(
		&stats.Totals.Assets, &stats.Totals.Hardware, &stats.Totals.Software, &stats.NeedsDataWipe)
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}

	// Status breakdown: group observed values, then fill the full declared
	// domain so every status appears even at zero.
	observedStatuses, err := groupCounts(ctx, q, `
		SELECT status, COUNT(*) FROM assets
		WHERE organization_id = $1
		GROUP BY status`, orgID)
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	stats.StatusBreakdown = fillDomain(models.AllAssetStatuses, observedStatuses)

	// Condition breakdown (hardware only), same full-domain treatment.
	observedConditions, err := groupCounts(ctx, q, `
		SELECT condition, COUNT(*) FROM assets
		WHERE organization_id = $1 AND asset_type = $2 AND condition IS NOT NULL
		GROUP BY condition`, orgID, models.AssetTypeHardware)
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	stats.ConditionBreakdown = fillDomain(models.AllAssetConditions, observedConditions)

	today := models.Today()
	windowEnd := today.AddDays(upcomingWindowDays)

	// Hardware with warranty ending inside the window
	rows, err := q.QueryContext(ctx, `
		SELECT id, asset_tag, category, model, warranty_end
		FROM assets
		WHERE organization_id = $1 AND asset_type = $2
		  AND warranty_end IS NOT NULL
		  AND warranty_end >= $3 AND warranty_end <= $4
		ORDER BY warranty_end, id`,
		orgID, models.AssetTypeHardware, today.Time, windowEnd.Time)
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	defer rows.Close()
	for rows.Next() {
		var a models.WarrantyExpiringAsset
		var warrantyEnd sql.NullTime
		if err := rows.Scan(&a.ID, &a.AssetTag, &a.Category, &a.Model, &warrantyEnd); err != nil {
			http.Error(w, "Database error", http.StatusInternalServerError)
			return
		}
		if warrantyEnd.Valid {
			d := models.DateOf(warrantyEnd.Time)
			a.WarrantyEnd = &d
		}
		stats.WarrantyExpiring = append(stats.WarrantyExpiring, a)
	}
	if err := rows.Err(); err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}

	// Software renewing inside the window
	renewRows, err := q.QueryContext(ctx, `
		SELECT id, asset_tag, subscription, renewal_date, seats_total, seats_used
		FROM assets
		WHERE organization_id = $1 AND asset_type = $2
		  AND renewal_date IS NOT NULL
		  AND renewal_date >= $3 AND renewal_date <= $4
		ORDER BY renewal_date, id`,
		orgID, models.AssetTypeSoftware, today.Time, windowEnd.Time)
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	defer renewRows.Close()
	for renewRows.Next() {
		var a models.RenewalComingAsset
		var renewalDate sql.NullTime
		if err := renewRows.Scan(&a.ID, &a.AssetTag, &a.Subscription, &renewalDate, &a.SeatsTotal, &a.SeatsUsed); err != nil {
			http.Error(w, "Database error", http.StatusInternalServerError)
			return
		}
		if renewalDate.Valid {
			d := models.DateOf(renewalDate.Time)
			a.RenewalDate = &d
		}
		stats.RenewalsComing = append(stats.RenewalsComing, a)
	}
	if err := renewRows.Err(); err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}

	// Top 10 hardware categories by count
	catRows, err := q.QueryContext(ctx, `
		SELECT category, COUNT(*) AS cnt
		FROM assets
		WHERE organization_id = $1 AND asset_type = $2 AND category IS NOT NULL
		GROUP BY category
		ORDER BY cnt DESC, category
		LIMIT 10`,
		orgID, models.AssetTypeHardware)
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	defer catRows.Close()
	for catRows.Next() {
		var cc models.CategoryCount
		if err := catRows.Scan(&cc.Category, &cc.Count); err != nil {
			http.Error(w, "Database error", http.StatusInternalServerError)
			return
		}
		stats.CategoryBreakdown = append(stats.CategoryBreakdown, cc)
	}
	if err := catRows.Err(); err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}

// groupCounts runs a two-column (key, count) query into a map
func groupCounts(ctx context.Context, q querier, query string, args ...any) (map[string]int, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]int{}
	for rows.Next() {
		var key string
		var count int
		if err := rows.Scan(&key, &count); err != nil {
			return nil, err
		}
		out[key] = count
	}
	return out, rows.Err()
}

// fillDomain maps every declared enum value to its observed count,
// defaulting to zero. Keys outside the declared domain are dropped.
func fillDomain(domain []string, observed map[string]int) map[string]int {
	out := make(map[string]int, len(domain))
	for _, v := range domain {
		out[v] = observed[v]
	}
	return out
}
