package models

import (
	"time"
)

// Asset type values
const (
	AssetTypeHardware = "HARDWARE"
	AssetTypeSoftware = "SOFTWARE"
)

// AllAssetTypes is the closed asset type domain
var AllAssetTypes = []string{AssetTypeHardware, AssetTypeSoftware}

// Asset status lifecycle values. AllAssetStatuses is the closed domain;
// consumers that need every known status (dashboard zero-fill) iterate it,
// not the observed data.
const (
	StatusInStock  = "IN_STOCK"
	StatusInUse    = "IN_USE"
	StatusInRepair = "IN_REPAIR"
	StatusRetired  = "RETIRED"
)

var AllAssetStatuses = []string{
	StatusInStock,
	StatusInUse,
	StatusInRepair,
	StatusRetired,
}

// Asset condition values (hardware only)
const (
	ConditionNew  = "NEW"
	ConditionGood = "GOOD"
	ConditionFair = "FAIR"
	ConditionPoor = "POOR"
)

var AllAssetConditions = []string{
	ConditionNew,
	ConditionGood,
	ConditionFair,
	ConditionPoor,
}

// IsValidAssetType checks a value against the asset type domain
func IsValidAssetType(t string) bool {
	return t == AssetTypeHardware || t == AssetTypeSoftware
}

// IsValidAssetStatus checks a value against the status domain
func IsValidAssetStatus(s string) bool {
	for _, v := range AllAssetStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// IsValidAssetCondition checks a value against the condition domain
func IsValidAssetCondition(c string) bool {
	for _, v := range AllAssetConditions {
		if v == c {
			return true
		}
	}
	return false
}

// Asset represents a tracked hardware or software item
type Asset struct {
	ID             int64     `json:"id"`
	OrganizationID int64     `json:"organization_id"`
	AssetType      string    `json:"asset_type"`
	Status         string    `json:"status"`
	Condition      *string   `json:"condition,omitempty"`
	Category       *string   `json:"category,omitempty"`
	AssetTag       string    `json:"asset_tag"`
	Model          *string   `json:"model,omitempty"`
	Serial         *string   `json:"serial,omitempty"`
	Subscription   *string   `json:"subscription,omitempty"`
	WarrantyEnd    *Date     `json:"warranty_end"`
	RenewalDate    *Date     `json:"renewal_date"`
	SeatsTotal     *int      `json:"seats_total,omitempty"`
	SeatsUsed      *int      `json:"seats_used,omitempty"`
	NeedsDataWipe  bool      `json:"needs_data_wipe"`
	AssignedUserID *int64    `json:"assigned_user_id,omitempty"`
	Notes          *string   `json:"notes,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// CreateAssetRequest represents the request body for creating a new asset
type CreateAssetRequest struct {
	AssetType      string  `json:"asset_type" validate:"required"`
	Status         string  `json:"status,omitempty"`
	Condition      *string `json:"condition,omitempty"`
	Category       *string `json:"category,omitempty"`
	AssetTag       string  `json:"asset_tag" validate:"required"`
	Model          *string `json:"model,omitempty"`
	Serial         *string `json:"serial,omitempty"`
	Subscription   *string `json:"subscription,omitempty"`
	WarrantyEnd    *Date   `json:"warranty_end,omitempty"`
	RenewalDate    *Date   `json:"renewal_date,omitempty"`
	SeatsTotal     *int    `json:"seats_total,omitempty"`
	SeatsUsed      *int    `json:"seats_used,omitempty"`
	NeedsDataWipe  *bool   `json:"needs_data_wipe,omitempty"`
	AssignedUserID *int64  `json:"assigned_user_id,omitempty"`
	Notes          *string `json:"notes,omitempty"`
}

// UpdateAssetRequest represents the request body for updating an asset
type UpdateAssetRequest struct {
	Status         *string `json:"status,omitempty"`
	Condition      *string `json:"condition,omitempty"`
	Category       *string `json:"category,omitempty"`
	AssetTag       *string `json:"asset_tag,omitempty"`
	Model          *string `json:"model,omitempty"`
	Serial         *string `json:"serial,omitempty"`
	Subscription   *string `json:"subscription,omitempty"`
	WarrantyEnd    *Date   `json:"warranty_end,omitempty"`
	RenewalDate    *Date   `json:"renewal_date,omitempty"`
	SeatsTotal     *int    `json:"seats_total,omitempty"`
	SeatsUsed      *int    `json:"seats_used,omitempty"`
	NeedsDataWipe  *bool   `json:"needs_data_wipe,omitempty"`
	AssignedUserID *int64  `json:"assigned_user_id,omitempty"`
	Notes          *string `json:"notes,omitempty"`
}
