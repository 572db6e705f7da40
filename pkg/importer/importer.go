package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"atlas-asset-api/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tealeg/xlsx/v3"
	"gopkg.in/yaml.v3"
)

// ImportOptions defines the configuration for Excel import operations
type ImportOptions struct {
	OrgID       int64
	MappingPath string // default "configs/mapping/assets.yaml"
	DryRun      bool
	MaxErrors   int // default 50
}

// RowError represents an error that occurred during row processing
type RowError struct {
	Sheet   string `json:"sheet"`
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// SheetSummary contains the import statistics for a single sheet
type SheetSummary struct {
	Name     string     `json:"name"`
	Inserted int        `json:"inserted"`
	Updated  int        `json:"updated"`
	Skipped  int        `json:"skipped"`
	Errors   int        `json:"errors"`
	Samples  []RowError `json:"error_samples,omitempty"`
}

// ImportSummary contains the overall import statistics
type ImportSummary struct {
	Inserted int            `json:"inserted"`
	Updated  int            `json:"updated"`
	Skipped  int            `json:"skipped"`
	Errors   int            `json:"errors"`
	Sheets   []SheetSummary `json:"sheets"`
	DryRun   bool           `json:"dry_run"`
}

// MappingConfig represents the YAML mapping configuration
type MappingConfig struct {
	Version  int                    `yaml:"version"`
	Defaults map[string]string      `yaml:"defaults"`
	Sheets   map[string]SheetConfig `yaml:"sheets"`
}

// SheetConfig maps one worksheet onto the assets table. Rows match existing
// assets by asset_tag; matched rows update, the rest insert.
type SheetConfig struct {
	AssetType string                  `yaml:"asset_type"`
	Aliases   map[string][]string     `yaml:"aliases"`
	Columns   map[string]ColumnConfig `yaml:"columns"`
}

type ColumnConfig struct {
	Field string `yaml:"field"`
	Type  string `yaml:"type"`
}

// importable columns on the assets table
var assetFields = map[string]bool{
	"asset_tag":       true,
	"status":          true,
	"condition":       true,
	"category":        true,
	"model":           true,
	"serial":          true,
	"subscription":    true,
	"warranty_end":    true,
	"renewal_date":    true,
	"seats_total":     true,
	"seats_used":      true,
	"needs_data_wipe": true,
	"notes":           true,
}

// ImportExcel processes an Excel file and imports assets into the database.
// Sheets without a mapping entry are ignored.
func ImportExcel(ctx context.Context, db *pgxpool.Pool, r io.Reader, opts ImportOptions) (ImportSummary, error) {
	summary := ImportSummary{
		DryRun: opts.DryRun,
		Sheets: []SheetSummary{},
	}

	if opts.MappingPath == "" {
		opts.MappingPath = "configs/mapping/assets.yaml"
	}
	if opts.MaxErrors == 0 {
		opts.MaxErrors = 50
	}
	if opts.OrgID <= 0 {
		return summary, fmt.Errorf("organization id is required")
	}

	mapping, err := loadMappingConfig(opts.MappingPath)
	if err != nil {
		return summary, fmt.Errorf("failed to load mapping config: %w", err)
	}

	// xlsx needs an io.ReaderAt, so buffer the upload
	data, err := io.ReadAll(r)
	if err != nil {
		return summary, fmt.Errorf("failed to read Excel file: %w", err)
	}

	xlFile, err := xlsx.OpenBinary(data)
	if err != nil {
		return summary, fmt.Errorf("failed to open Excel file: %w", err)
	}

	conn, err := db.Acquire(ctx)
	if err != nil {
		return summary, fmt.Errorf("failed to acquire database connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, "SET app.current_org_id = "+strconv.FormatInt(opts.OrgID, 10))
	if err != nil {
		return summary, fmt.Errorf("failed to set org context: %w", err)
	}

	for _, sheet := range xlFile.Sheets {
		sheetConfig, exists := mapping.Sheets[sheet.Name]
		if !exists {
			continue
		}

		sheetSummary := processSheet(ctx, conn, sheet, sheetConfig, opts, mapping.Defaults)
		summary.Sheets = append(summary.Sheets, sheetSummary)

		summary.Inserted += sheetSummary.Inserted
		summary.Updated += sheetSummary.Updated
		summary.Skipped += sheetSummary.Skipped
		summary.Errors += sheetSummary.Errors

		if summary.Errors > opts.MaxErrors {
			return summary, fmt.Errorf("too many errors (%d), stopping import", summary.Errors)
		}
	}

	return summary, nil
}

func loadMappingConfig(path string) (*MappingConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg MappingConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if len(cfg.Sheets) == 0 {
		return nil, fmt.Errorf("mapping config has no sheets")
	}
	for name, sheet := range cfg.Sheets {
		if !models.IsValidAssetType(sheet.AssetType) {
			return nil, fmt.Errorf("sheet %s: invalid asset_type %q", name, sheet.AssetType)
		}
	}
	return &cfg, nil
}

func processSheet(ctx context.Context, conn *pgxpool.Conn, sheet *xlsx.Sheet, config SheetConfig, opts ImportOptions, defaults map[string]string) SheetSummary {
	summary := SheetSummary{Name: sheet.Name}

	headerRow, err := sheet.Row(0)
	if err != nil {
		summary.Errors++
		summary.Samples = append(summary.Samples, RowError{
			Sheet:   sheet.Name,
			Row:     1,
			Message: "Failed to read header row: " + err.Error(),
		})
		return summary
	}

	// Header name (upper-cased, alias-resolved) to column index
	headerMap := make(map[string]int)
	colIdx := 0
	for {
		cell := headerRow.GetCell(colIdx)
		if cell == nil {
			break
		}
		headerName := strings.ToUpper(strings.TrimSpace(cell.String()))
		if headerName == "" {
			colIdx++
			continue
		}
		canonical := headerName
		for name, aliases := range config.Aliases {
			for _, alias := range aliases {
				if strings.ToUpper(alias) == headerName {
					canonical = strings.ToUpper(name)
				}
			}
		}
		headerMap[canonical] = colIdx
		colIdx++
	}

	rowIdx := 1
	for {
		row, err := sheet.Row(rowIdx)
		if err != nil {
			break
		}

		rowData := make(map[string]string)
		for headerName, idx := range headerMap {
			cell := row.GetCell(idx)
			if cell == nil {
				continue
			}
			if v := strings.TrimSpace(cell.String()); v != "" {
				rowData[headerName] = v
			}
		}

		if len(rowData) == 0 {
			summary.Skipped++
			rowIdx++
			continue
		}

		assetData, err := buildAssetData(rowData, config, defaults)
		if err != nil {
			summary.Errors++
			if len(summary.Samples) < 10 {
				summary.Samples = append(summary.Samples, RowError{
					Sheet:   sheet.Name,
					Row:     rowIdx + 1,
					Message: err.Error(),
				})
			}
			rowIdx++
			continue
		}

		existingID, err := findExistingAsset(ctx, conn, assetData, opts.OrgID)
		if err != nil {
			summary.Errors++
			if len(summary.Samples) < 10 {
				summary.Samples = append(summary.Samples, RowError{
					Sheet:   sheet.Name,
					Row:     rowIdx + 1,
					Message: err.Error(),
				})
			}
			rowIdx++
			continue
		}

		if existingID > 0 {
			if !opts.DryRun {
				if err := updateAsset(ctx, conn, existingID, assetData); err != nil {
					summary.Errors++
					if len(summary.Samples) < 10 {
						summary.Samples = append(summary.Samples, RowError{
							Sheet:   sheet.Name,
							Row:     rowIdx + 1,
							Message: err.Error(),
						})
					}
					rowIdx++
					continue
				}
			}
			summary.Updated++
		} else {
			if !opts.DryRun {
				if err := insertAsset(ctx, conn, assetData, config, opts.OrgID); err != nil {
					summary.Errors++
					if len(summary.Samples) < 10 {
						summary.Samples = append(summary.Samples, RowError{
							Sheet:   sheet.Name,
							Row:     rowIdx + 1,
							Message: err.Error(),
						})
					}
					rowIdx++
					continue
				}
			}
			summary.Inserted++
		}

		rowIdx++
	}

	return summary
}

func buildAssetData(rowData map[string]string, config SheetConfig, defaults map[string]string) (map[string]interface{}, error) {
	assetData := make(map[string]interface{})

	if v, ok := defaults["status"]; ok {
		assetData["status"] = v
	}

	for headerName, columnConfig := range config.Columns {
		value, exists := rowData[strings.ToUpper(headerName)]
		if !exists || value == "" {
			continue
		}
		if !assetFields[columnConfig.Field] {
			return nil, fmt.Errorf("column %s maps to unknown field %s", headerName, columnConfig.Field)
		}
		parsed, err := parseValue(value, columnConfig.Type)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %v", headerName, err)
		}
		assetData[columnConfig.Field] = parsed
	}

	tag, ok := assetData["asset_tag"].(string)
	if !ok || strings.TrimSpace(tag) == "" {
		return nil, fmt.Errorf("asset_tag is required")
	}
	assetData["asset_tag"] = strings.TrimSpace(tag)

	if status, ok := assetData["status"].(string); ok {
		status = strings.ToUpper(status)
		if !models.IsValidAssetStatus(status) {
			return nil, fmt.Errorf("invalid status: %s", status)
		}
		assetData["status"] = status
	}
	if condition, ok := assetData["condition"].(string); ok {
		condition = strings.ToUpper(condition)
		if !models.IsValidAssetCondition(condition) {
			return nil, fmt.Errorf("invalid condition: %s", condition)
		}
		assetData["condition"] = condition
	}

	return assetData, nil
}

func parseValue(value, valueType string) (interface{}, error) {
	switch strings.ToUpper(valueType) {
	case "", "TEXT", "STRING":
		return value, nil
	case "INT":
		return strconv.Atoi(value)
	case "BOOL":
		value = strings.ToLower(value)
		return value == "yes" || value == "y" || value == "true" || value == "1", nil
	case "DATE":
		formats := []string{
			"2006-01-02",
			"02/01/2006",
			"01/02/2006",
			"2006-01-02 15:04:05",
		}
		for _, format := range formats {
			if t, err := time.Parse(format, value); err == nil {
				return t, nil
			}
		}
		return nil, fmt.Errorf("invalid date format: %s", value)
	default:
		return nil, fmt.Errorf("unknown column type: %s", valueType)
	}
}

func findExistingAsset(ctx context.Context, conn *pgxpool.Conn, assetData map[string]interface{}, orgID int64) (int64, error) {
	var id int64
	err := conn.QueryRow(ctx,
		"SELECT id FROM assets WHERE organization_id = $1 AND asset_tag = $2",
		orgID, assetData["asset_tag"]).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return id, nil
}

func insertAsset(ctx context.Context, conn *pgxpool.Conn, assetData map[string]interface{}, config SheetConfig, orgID int64) error {
	fields := []string{"organization_id", "asset_type"}
	values := []interface{}{orgID, config.AssetType}
	placeholders := []string{"$1", "$2"}
	argIndex := 3

	for field, value := range assetData {
		fields = append(fields, field)
		values = append(values, value)
		placeholders = append(placeholders, fmt.Sprintf("$%d", argIndex))
		argIndex++
	}

	query := fmt.Sprintf(`
		INSERT INTO assets (%s)
		VALUES (%s)
	`, strings.Join(fields, ", "), strings.Join(placeholders, ", "))

	_, err := conn.Exec(ctx, query, values...)
	return err
}

func updateAsset(ctx context.Context, conn *pgxpool.Conn, assetID int64, assetData map[string]interface{}) error {
	setParts := []string{}
	values := []interface{}{}
	argIndex := 1

	for field, value := range assetData {
		if field == "asset_tag" {
			continue
		}
		setParts = append(setParts, fmt.Sprintf("%s = $%d", field, argIndex))
		values = append(values, value)
		argIndex++
	}

	if len(setParts) == 0 {
		return nil
	}

	setParts = append(setParts, "updated_at = now()")
	query := fmt.Sprintf(`
		UPDATE assets SET %s
		WHERE id = $%d
	`, strings.Join(setParts, ", "), argIndex)
	values = append(values, assetID)

	_, err := conn.Exec(ctx, query, values...)
	return err
}
