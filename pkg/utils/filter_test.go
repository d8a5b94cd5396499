package utils

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFilterFromQuery(t *testing.T) {
	values, err := url.ParseQuery("search=ra%C3%A7%C3%A3o&sort[id]=DESC&sort[setor]=sideways&filter[status]=Pendente&filter[status]=Cancelado&limit=10&page=3")
	require.NoError(t, err)

	f := ParseFilterFromQuery(values)
	assert.Equal(t, "ração", f.Search)
	assert.Equal(t, map[string]string{"id": "desc"}, f.Sort)
	assert.Equal(t, "Pendente,Cancelado", f.Filter["status"])
	assert.Equal(t, 10, f.Limit)
	assert.Equal(t, 3, f.Page)
	assert.Equal(t, 20, f.Offset)
	assert.True(t, f.WithPagination)
}

func TestParseFilterFromQueryDefaults(t *testing.T) {
	f := ParseFilterFromQuery(url.Values{"limit": {"100000"}, "withPagination": {"false"}})
	assert.Equal(t, MaxLimit, f.Limit)
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, 0, f.Offset)
	assert.False(t, f.WithPagination)
}

func TestHashAndComparePasswords(t *testing.T) {
	hash, err := HashPassword("senha123")
	require.NoError(t, err)
	assert.NoError(t, ComparePasswords(hash, "senha123"))
	assert.Error(t, ComparePasswords(hash, "outra"))
}
