package internal

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseListParamsDefaults(t *testing.T) {
	r := httptest.NewRequest("GET", "/assets", nil)
	p := parseListParams(r)

	assert.Equal(t, 50, p.limit)
	assert.Equal(t, 0, p.offset)
	assert.Equal(t, "", p.q)
	assert.Equal(t, "", p.sort)
}

func TestParseListParamsCapsLimit(t *testing.T) {
	r := httptest.NewRequest("GET", "/assets?limit=9999&offset=20", nil)
	p := parseListParams(r)

	assert.Equal(t, 200, p.limit)
	assert.Equal(t, 20, p.offset)
}

func TestParseListParamsIgnoresGarbage(t *testing.T) {
	r := httptest.NewRequest("GET", "/assets?limit=abc&offset=-5", nil)
	p := parseListParams(r)

	assert.Equal(t, 50, p.limit)
	assert.Equal(t, 0, p.offset)
}

func TestBuildOrderBy(t *testing.T) {
	allowed := map[string]string{
		"id":        "id",
		"asset_tag": "asset_tag",
		"status":    "status",
	}

	tests := []struct {
		name string
		sort string
		want string
	}{
		{"empty defaults to id", "", " ORDER BY id ASC"},
		{"single ascending", "asset_tag", " ORDER BY asset_tag ASC"},
		{"single descending", "-status", " ORDER BY status DESC"},
		{"multiple keys", "status,-asset_tag", " ORDER BY status ASC, asset_tag DESC"},
		{"unknown keys are dropped", "evil;drop table assets", " ORDER BY id ASC"},
		{"mixed known and unknown", "bogus,asset_tag", " ORDER BY asset_tag ASC"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, buildOrderBy(tt.sort, allowed))
		})
	}
}

func TestNullIfEmpty(t *testing.T) {
	assert.Nil(t, nullIfEmpty(nil))

	empty := "   "
	assert.Nil(t, nullIfEmpty(&empty))

	value := "laptop"
	assert.Equal(t, "laptop", nullIfEmpty(&value))
}
