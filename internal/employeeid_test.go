package internal

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextEmployeeID(t *testing.T) {
	tests := []struct {
		name     string
		prefix   string
		existing []string
		want     string
	}{
		{
			name:     "empty organization starts at one",
			prefix:   "ACME",
			existing: nil,
			want:     "ACME001",
		},
		{
			name:     "increments highest existing number",
			prefix:   "ACME",
			existing: []string{"ACME001", "ACME002", "ACME007"},
			want:     "ACME008",
		},
		{
			name:     "gaps are not reused",
			prefix:   "ACME",
			existing: []string{"ACME001", "ACME042"},
			want:     "ACME043",
		},
		{
			name:     "padding grows past three digits",
			prefix:   "PFX",
			existing: []string{"PFX999"},
			want:     "PFX1000",
		},
		{
			name:     "four digit ids keep counting",
			prefix:   "PFX",
			existing: []string{"PFX1000", "PFX1001"},
			want:     "PFX1002",
		},
		{
			name:     "non numeric suffixes are skipped",
			prefix:   "ACME",
			existing: []string{"ACME001", "ACMEABC", "ACME-X"},
			want:     "ACME002",
		},
		{
			name:     "ids with other prefixes are ignored",
			prefix:   "ACME",
			existing: []string{"OTHER005", "ACME003"},
			want:     "ACME004",
		},
		{
			name:     "prefix only value is skipped",
			prefix:   "ACME",
			existing: []string{"ACME"},
			want:     "ACME001",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, nextEmployeeID(tt.prefix, tt.existing))
		})
	}
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(errors.New(`ERROR: duplicate key value violates unique constraint "uq_users_org_employee_id" (SQLSTATE 23505)`)))
	assert.True(t, isUniqueViolation(errors.New("unique constraint failed")))
	assert.False(t, isUniqueViolation(errors.New("connection refused")))
	assert.False(t, isUniqueViolation(nil))
}
