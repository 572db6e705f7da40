package models

// DashboardOrganization is the organization header of the dashboard payload
type DashboardOrganization struct {
	ID               int64   `json:"id"`
	Name             string  `json:"name"`
	LogoURL          *string `json:"logo_url"`
	EmployeeIDPrefix *string `json:"employee_id_prefix"`
}

// DashboardTotals holds the headline counts
type DashboardTotals struct {
	Users    int `json:"users"`
	Assets   int `json:"assets"`
	Hardware int `json:"hardware"`
	Software int `json:"software"`
}

// WarrantyExpiringAsset is a hardware asset whose warranty ends within the
// upcoming window
type WarrantyExpiringAsset struct {
	ID          int64   `json:"id"`
	AssetTag    string  `json:"asset_tag"`
	Category    *string `json:"category"`
	Model       *string `json:"model"`
	WarrantyEnd *Date   `json:"warranty_end"`
}

// RenewalComingAsset is a software asset whose renewal falls within the
// upcoming window
type RenewalComingAsset struct {
	ID           int64   `json:"id"`
	AssetTag     string  `json:"asset_tag"`
	Subscription *string `json:"subscription"`
	RenewalDate  *Date   `json:"renewal_date"`
	SeatsTotal   *int    `json:"seats_total"`
	SeatsUsed    *int    `json:"seats_used"`
}

// CategoryCount is one entry of the top-categories breakdown
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// DashboardStats is the aggregation payload for an organization. Status and
// condition breakdowns carry an entry for every declared value, zeroes
// included.
type DashboardStats struct {
	Organization        DashboardOrganization   `json:"organization"`
	Totals              DashboardTotals         `json:"totals"`
	StatusBreakdown     map[string]int          `json:"status_breakdown"`
	ConditionBreakdown  map[string]int          `json:"condition_breakdown"`
	NeedsDataWipe       int                     `json:"needs_data_wipe"`
	WarrantyExpiring    []WarrantyExpiringAsset `json:"warranty_expiring_soon"`
	RenewalsComing      []RenewalComingAsset    `json:"renewals_coming_soon"`
	CategoryBreakdown   []CategoryCount         `json:"category_breakdown"`
}
