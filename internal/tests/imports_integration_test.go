//go:build integration

package tests

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"atlas-asset-api/internal/testutil"

	"github.com/tealeg/xlsx/v3"
)

// buildWorkbook writes a one-sheet xlsx with a header row and data rows
func buildWorkbook(t *testing.T, sheetName string, header []string, rows [][]string) []byte {
	t.Helper()

	wb := xlsx.NewFile()
	sheet, err := wb.AddSheet(sheetName)
	if err != nil {
		t.Fatalf("Failed to add sheet: %v", err)
	}

	hr := sheet.AddRow()
	for _, h := range header {
		hr.AddCell().SetString(h)
	}
	for _, row := range rows {
		r := sheet.AddRow()
		for _, v := range row {
			r.AddCell().SetString(v)
		}
	}

	var buf bytes.Buffer
	if err := wb.Write(&buf); err != nil {
		t.Fatalf("Failed to write workbook: %v", err)
	}
	return buf.Bytes()
}

func uploadWorkbook(t *testing.T, token, mappingPath string, dryRun bool, workbook []byte) *httptest.ResponseRecorder {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	if dryRun {
		writer.WriteField("dry_run", "true")
	}
	if mappingPath != "" {
		writer.WriteField("mapping", mappingPath)
	}
	fw, err := writer.CreateFormFile("file", "assets.xlsx")
	if err != nil {
		t.Fatalf("Failed to create form file: %v", err)
	}
	fw.Write(workbook)
	writer.Close()

	req := httptest.NewRequest("POST", "/imports/excel", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	testServer.Router.ServeHTTP(w, req)
	return w
}

// writeMapping drops a minimal mapping file into a temp dir
func writeMapping(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "assets.yaml")
	err := os.WriteFile(path, []byte(`
version: 1
defaults:
  status: IN_STOCK
sheets:
  Hardware:
    asset_type: HARDWARE
    aliases:
      Asset Tag: ["Tag"]
    columns:
      Asset Tag:
        field: asset_tag
        type: TEXT
      Category:
        field: category
        type: TEXT
      Model:
        field: model
        type: TEXT
      Warranty End:
        field: warranty_end
        type: DATE
`), 0o644)
	if err != nil {
		t.Fatalf("Failed to write mapping: %v", err)
	}
	return path
}

func TestExcelImport(t *testing.T) {
	testutil.RequireIntegration(t)

	orgID := newOrg(t, "Import Org")
	adminID := newUser(t, orgID, "import-admin@example.com", "ADMIN")
	token := tokenFor(t, adminID, orgID, "ADMIN")
	mapping := writeMapping(t)

	header := []string{"Tag", "Category", "Model", "Warranty End"}
	workbook := buildWorkbook(t, "Hardware", header, [][]string{
		{"IMP-001", "Laptop", "ThinkPad X1", "2027-01-15"},
		{"IMP-002", "Monitor", "Dell U2720Q", ""},
		{"", "Laptop", "Ghost row", ""}, // missing tag -> error row
	})

	// Dry run reports counts without writing
	w := uploadWorkbook(t, token, mapping, true, workbook)
	if w.Code != http.StatusOK {
		t.Fatalf("Dry run failed: %d %s", w.Code, w.Body.String())
	}

	var count int
	testDB.QueryRow("SELECT COUNT(*) FROM assets WHERE organization_id = $1", orgID).Scan(&count)
	if count != 0 {
		t.Errorf("Dry run wrote %d rows", count)
	}

	// Real import inserts both valid rows
	w = uploadWorkbook(t, token, mapping, false, workbook)
	if w.Code != http.StatusOK {
		t.Fatalf("Import failed: %d %s", w.Code, w.Body.String())
	}

	var payload struct {
		Data struct {
			Inserted int `json:"inserted"`
			Updated  int `json:"updated"`
			Errors   int `json:"errors"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatalf("Failed to decode summary: %v", err)
	}
	if payload.Data.Inserted != 2 {
		t.Errorf("Expected 2 inserted, got %d", payload.Data.Inserted)
	}
	if payload.Data.Errors != 1 {
		t.Errorf("Expected 1 error row, got %d", payload.Data.Errors)
	}

	testDB.QueryRow("SELECT COUNT(*) FROM assets WHERE organization_id = $1", orgID).Scan(&count)
	if count != 2 {
		t.Errorf("Expected 2 assets, got %d", count)
	}

	// Re-importing matches on asset_tag and updates instead of inserting
	workbook = buildWorkbook(t, "Hardware", header, [][]string{
		{"IMP-001", "Laptop", "ThinkPad X1 Carbon", "2027-06-30"},
	})
	w = uploadWorkbook(t, token, mapping, false, workbook)
	if w.Code != http.StatusOK {
		t.Fatalf("Re-import failed: %d %s", w.Code, w.Body.String())
	}
	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatalf("Failed to decode summary: %v", err)
	}
	if payload.Data.Updated != 1 || payload.Data.Inserted != 0 {
		t.Errorf("Expected 1 updated / 0 inserted, got %d / %d", payload.Data.Updated, payload.Data.Inserted)
	}

	var model string
	testDB.QueryRow(
		"SELECT model FROM assets WHERE organization_id = $1 AND asset_tag = 'IMP-001'", orgID).Scan(&model)
	if model != "ThinkPad X1 Carbon" {
		t.Errorf("Expected updated model, got %s", model)
	}
}
