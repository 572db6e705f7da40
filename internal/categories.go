package internal

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"atlas-asset-api/internal/models"
)

// listCategories returns the category catalog, optionally filtered by
// category_type. Any authenticated user may read.
func (s *Server) listCategories(w http.ResponseWriter, r *http.Request) {
	categoryType := strings.TrimSpace(r.URL.Query().Get("category_type"))

	clauses := []string{}
	args := []interface{}{}
	arg := 1

	if categoryType != "" {
		if !models.IsValidCategoryType(categoryType) {
			http.Error(w, "Invalid category_type", http.StatusBadRequest)
			return
		}
		clauses = append(clauses, fmt.Sprintf("category_type = $%d", arg))
		args = append(args, categoryType)
		arg++
	}

	sqlStr := `
		SELECT id, name, category_type, display_name
		FROM categories`
	if len(clauses) > 0 {
		sqlStr += " WHERE " + strings.Join(clauses, " AND ")
	}
	sqlStr += " ORDER BY category_type, name"

	q := dbFrom(r.Context(), s.DB)
	rows, err := q.QueryContext(r.Context(), sqlStr, args...)
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	defer rows.Close()

	categories := []models.Category{}
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.CategoryType, &c.DisplayName); err != nil {
			http.Error(w, "Failed to scan category", http.StatusInternalServerError)
			return
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(categories)
}

// createCategory adds an entry to the catalog. Admin only (route middleware).
func (s *Server) createCategory(w http.ResponseWriter, r *http.Request) {
	var req models.CreateCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	req.Name = strings.ToUpper(strings.TrimSpace(req.Name))
	if req.Name == "" || req.DisplayName == "" {
		http.Error(w, "name and display_name are required", http.StatusBadRequest)
		return
	}
	if !models.IsValidCategoryType(req.CategoryType) {
		http.Error(w, "category_type must be HARDWARE or ACCESSORY", http.StatusBadRequest)
		return
	}

	q := dbFrom(r.Context(), s.DB)
	var cat models.Category
	err := q.QueryRowContext(r.Context(), `
		INSERT INTO categories (name, category_type, display_name)
		VALUES ($1, $2, $3)
		RETURNING id, name, category_type, display_name`,
		req.Name, req.CategoryType, req.DisplayName).Scan(
		&cat.ID, &cat.Name, &cat.CategoryType, &cat.DisplayName)
	if err != nil {
		if isUniqueViolation(err) {
			http.Error(w, "Category with this name already exists", http.StatusConflict)
			return
		}
		http.Error(w, "Failed to create category", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(cat)
}
