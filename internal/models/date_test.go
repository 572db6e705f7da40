package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateJSONRoundTrip(t *testing.T) {
	d := NewDate(2026, time.March, 15)

	data, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2026-03-15"`, string(data))

	var parsed Date
	require.NoError(t, json.Unmarshal(data, &parsed))
	assert.True(t, d.Equal(parsed.Time))
}

func TestDateUnmarshalNull(t *testing.T) {
	var d Date
	require.NoError(t, json.Unmarshal([]byte("null"), &d))
	assert.True(t, d.IsZero())
}

func TestDateUnmarshalRejectsBadFormat(t *testing.T) {
	var d Date
	assert.Error(t, json.Unmarshal([]byte(`"15/03/2026"`), &d))
	assert.Error(t, json.Unmarshal([]byte(`"not-a-date"`), &d))
}

func TestNilDatePointerSerializesNull(t *testing.T) {
	asset := Asset{AssetTag: "HW-001", AssetType: AssetTypeHardware, Status: StatusInStock}

	data, err := json.Marshal(asset)
	require.NoError(t, err)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Contains(t, out, "warranty_end")
	assert.Nil(t, out["warranty_end"])
	assert.Contains(t, out, "renewal_date")
	assert.Nil(t, out["renewal_date"])
}

func TestAddDays(t *testing.T) {
	d := NewDate(2026, time.February, 27)
	assert.True(t, NewDate(2026, time.March, 1).Equal(d.AddDays(2).Time))
}

func TestEnumValidators(t *testing.T) {
	assert.True(t, IsValidAssetStatus(StatusInStock))
	assert.False(t, IsValidAssetStatus("ACTIVE"))
	assert.True(t, IsValidAssetCondition(ConditionPoor))
	assert.False(t, IsValidAssetCondition("BROKEN"))
	assert.True(t, IsValidAssetType(AssetTypeSoftware))
	assert.False(t, IsValidAssetType("FURNITURE"))
}
