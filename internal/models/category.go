package models

// Category type values
const (
	CategoryTypeHardware  = "HARDWARE"
	CategoryTypeAccessory = "ACCESSORY"
)

// IsValidCategoryType checks a value against the category type domain
func IsValidCategoryType(t string) bool {
	return t == CategoryTypeHardware || t == CategoryTypeAccessory
}

// Category is a controlled-vocabulary classification of asset kinds.
// Names are globally unique.
type Category struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	CategoryType string `json:"category_type"`
	DisplayName  string `json:"display_name"`
}

// CreateCategoryRequest represents the request body for creating a category
type CreateCategoryRequest struct {
	Name         string `json:"name" validate:"required"`
	CategoryType string `json:"category_type" validate:"required"`
	DisplayName  string `json:"display_name" validate:"required"`
}

// DefaultCategories are seeded once at store initialization, guarded by an
// existence check.
var DefaultCategories = []Category{
	{Name: "LAPTOP", CategoryType: CategoryTypeHardware, DisplayName: "Laptop"},
	{Name: "PHONE", CategoryType: CategoryTypeHardware, DisplayName: "Phone"},
	{Name: "MONITOR", CategoryType: CategoryTypeHardware, DisplayName: "Monitor"},
	{Name: "TABLET", CategoryType: CategoryTypeHardware, DisplayName: "Tablet"},
	{Name: "OTHER", CategoryType: CategoryTypeHardware, DisplayName: "Other"},
	{Name: "MOUSE", CategoryType: CategoryTypeAccessory, DisplayName: "Mouse"},
	{Name: "KEYBOARD", CategoryType: CategoryTypeAccessory, DisplayName: "Keyboard"},
	{Name: "HEADSET", CategoryType: CategoryTypeAccessory, DisplayName: "Headset"},
	{Name: "WEBCAM", CategoryType: CategoryTypeAccessory, DisplayName: "Webcam"},
	{Name: "DOCKING_STATION", CategoryType: CategoryTypeAccessory, DisplayName: "Docking Station"},
	{Name: "CHARGER", CategoryType: CategoryTypeAccessory, DisplayName: "Charger"},
	{Name: "CABLE", CategoryType: CategoryTypeAccessory, DisplayName: "Cable"},
	{Name: "OTHER_ACCESSORY", CategoryType: CategoryTypeAccessory, DisplayName: "Other Accessory"},
}
