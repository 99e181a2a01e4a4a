package services

import (
	"testing"

	"backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveExactMatchRanksFirst(t *testing.T) {
	catalog := &fakeCatalog{foods: []models.FoodRecord{
		{ID: "1", Name: "pan integral"},
		{ID: "2", Name: "pan"},
		{ID: "3", Name: "pan amasado"},
	}}
	resolver := NewFoodResolver(catalog)

	results := resolver.Resolve("pan", nil)
	require.NotEmpty(t, results)
	assert.Equal(t, "pan", results[0].Name)
}

func TestResolveShorterNameWinsTie(t *testing.T) {
	catalog := &fakeCatalog{foods: []models.FoodRecord{
		{ID: "1", Name: "leche condensada"},
		{ID: "2", Name: "leche entera"},
	}}
	resolver := NewFoodResolver(catalog)

	results := resolver.Resolve("leche", nil)
	require.Len(t, results, 2)
	assert.Equal(t, "leche entera", results[0].Name)
}

func TestResolveDecomposesCompoundTerms(t *testing.T) {
	// no single entry contains the full phrase, each word hits separately
	catalog := &fakeCatalog{foods: []models.FoodRecord{
		{ID: "1", Name: "pan"},
		{ID: "2", Name: "trigo"},
	}}
	resolver := NewFoodResolver(catalog)

	results := resolver.Resolve("pan de trigo", nil)
	require.Len(t, results, 2)
	// "de" is under three characters and must not be searched
	assert.NotContains(t, catalog.searches, "de")
}

func TestResolveDeduplicatesAcrossPasses(t *testing.T) {
	catalog := &fakeCatalog{foods: []models.FoodRecord{
		{ID: "1", Name: "arroz blanco"},
	}}
	resolver := NewFoodResolver(catalog)

	results := resolver.Resolve("arroz blanco", nil)
	assert.Len(t, results, 1)
}

func TestResolveSearchErrorTreatedAsEmpty(t *testing.T) {
	catalog := &fakeCatalog{
		foods:   []models.FoodRecord{{ID: "1", Name: "pan"}},
		failFor: map[string]bool{"sopa quemada": true},
	}
	resolver := NewFoodResolver(catalog)

	// failing term yields nothing but the word pass still runs
	results := resolver.Resolve("sopa quemada", nil)
	assert.Empty(t, results)

	// sibling terms are unaffected
	assert.NotEmpty(t, resolver.Resolve("pan", nil))
}

func TestResolveOrFallback(t *testing.T) {
	catalog := &fakeCatalog{foods: []models.FoodRecord{{ID: "1", Name: "pan"}}}
	resolver := NewFoodResolver(catalog)

	best := resolver.ResolveOrFallback("pan")
	require.NotNil(t, best)
	assert.Equal(t, "pan", best.Name)

	assert.Nil(t, resolver.ResolveOrFallback("unicornio"))
}

func TestResolveCachesLookups(t *testing.T) {
	catalog := &fakeCatalog{foods: []models.FoodRecord{{ID: "1", Name: "pan"}}}
	resolver := NewFoodResolver(catalog)

	resolver.Resolve("pan", nil)
	hits := len(catalog.searches)
	resolver.Resolve("pan", nil)
	assert.Equal(t, hits, len(catalog.searches))

	resolver.Reset()
	resolver.Resolve("pan", nil)
	assert.Greater(t, len(catalog.searches), hits)
}
