package internal

import (
	"testing"

	"atlas-asset-api/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestFillDomainZeroFillsMissingValues(t *testing.T) {
	observed := map[string]int{
		models.StatusInUse: 5,
	}

	got := fillDomain(models.AllAssetStatuses, observed)

	assert.Len(t, got, len(models.AllAssetStatuses))
	assert.Equal(t, 5, got[models.StatusInUse])
	assert.Equal(t, 0, got[models.StatusInStock])
	assert.Equal(t, 0, got[models.StatusInRepair])
	assert.Equal(t, 0, got[models.StatusRetired])
}

func TestFillDomainEmptyObserved(t *testing.T) {
	got := fillDomain(models.AllAssetConditions, map[string]int{})

	assert.Len(t, got, len(models.AllAssetConditions))
	for _, c := range models.AllAssetConditions {
		assert.Equal(t, 0, got[c])
	}
}

func TestFillDomainDropsUnknownKeys(t *testing.T) {
	observed := map[string]int{
		models.StatusRetired: 2,
		"LEGACY_STATE":       9,
	}

	got := fillDomain(models.AllAssetStatuses, observed)

	assert.Len(t, got, len(models.AllAssetStatuses))
	assert.Equal(t, 2, got[models.StatusRetired])
	assert.NotContains(t, got, "LEGACY_STATE")
}
