package services

import (
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"

	"backend/models"
)

// minDirectResults is the result count below which a multi-word term is
// decomposed and each word searched independently. Compound terms like
// "whole wheat bread" often miss a single substring match against
// single-word catalog entries but hit when split.
const minDirectResults = 3

type FoodResolver struct {
	catalog Catalog

	mu    sync.Mutex
	cache map[string][]models.FoodRecord
}

func NewFoodResolver(catalog Catalog) *FoodResolver {
	return &FoodResolver{
		catalog: catalog,
		cache:   make(map[string][]models.FoodRecord),
	}
}

// Reset drops the lookup cache. Called when an analysis session ends.
func (r *FoodResolver) Reset() {
	r.mu.Lock()
	r.cache = make(map[string][]models.FoodRecord)
	r.mu.Unlock()
}

// Resolve returns catalog candidates for a detected term, best match first.
// Catalog errors are logged and treated as empty results so one bad term
// never aborts resolution of its siblings.
func (r *FoodResolver) Resolve(term string, categoryID *uint) []models.FoodRecord {
	term = strings.TrimSpace(strings.ToLower(term))
	if term == "" {
		return nil
	}

	cacheKey := term
	if categoryID != nil {
		cacheKey = fmt.Sprintf("%s#%d", term, *categoryID)
	}
	r.mu.Lock()
	if cached, ok := r.cache[cacheKey]; ok {
		r.mu.Unlock()
		return cached
	}
	r.mu.Unlock()

	results, err := r.catalog.Search(term, categoryID)
	if err != nil {
		log.Printf("catalog search failed for %q: %v", term, err)
		results = nil
	}

	words := strings.Fields(term)
	if len(results) < minDirectResults && len(words) > 1 {
		seen := make(map[string]struct{}, len(results))
		for _, f := range results {
			seen[f.ID] = struct{}{}
		}
		for _, w := range words {
			if len([]rune(w)) < 3 {
				continue
			}
			extra, err := r.catalog.Search(w, categoryID)
			if err != nil {
				log.Printf("catalog search failed for %q: %v", w, err)
				continue
			}
			for _, f := range extra {
				if _, dup := seen[f.ID]; dup {
					continue
				}
				seen[f.ID] = struct{}{}
				results = append(results, f)
			}
		}
	}

	rankResults(results, term, words)

	r.mu.Lock()
	r.cache[cacheKey] = results
	r.mu.Unlock()
	return results
}

// ResolveOrFallback returns the single best candidate, or nil when the
// term stays unresolved.
func (r *FoodResolver) ResolveOrFallback(term string) *models.FoodRecord {
	results := r.Resolve(term, nil)
	if len(results) == 0 {
		return nil
	}
	return &results[0]
}

func rankResults(results []models.FoodRecord, term string, words []string) {
	sort.SliceStable(results, func(i, j int) bool {
		a, b := rankKey(results[i], term, words), rankKey(results[j], term, words)
		if a.exact != b.exact {
			return a.exact
		}
		if a.contains != b.contains {
			return a.contains
		}
		if a.wordHits != b.wordHits {
			return a.wordHits > b.wordHits
		}
		return a.nameLen < b.nameLen
	})
}

type resultRank struct {
	exact    bool
	contains bool
	wordHits int
	nameLen  int
}

func rankKey(f models.FoodRecord, term string, words []string) resultRank {
	name := strings.ToLower(f.Name)
	hits := 0
	for _, w := range words {
		if strings.Contains(name, w) {
			hits++
		}
	}
	return resultRank{
		exact:    name == term,
		contains: strings.Contains(name, term),
		wordHits: hits,
		nameLen:  len(name),
	}
}
