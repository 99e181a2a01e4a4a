package services

import (
	"errors"
	"sync"

	"backend/models"
	"backend/utils"
)

var ErrReadOnly = errors.New("analysis is read-only")

// Serving is how much of a food was eaten: a unit plus a quantity.
type Serving struct {
	Unit     models.UnitDefinition `json:"unit"`
	Quantity float64               `json:"quantity"`
}

// Selection binds a detected term to the food the user picked for it.
type Selection struct {
	OriginalTerm string            `json:"original_term"`
	Food         models.FoodRecord `json:"food"`
	Serving      Serving           `json:"serving"`
}

// Aggregator owns the running nutrient totals for one analysis session.
// Replacing a selection subtracts the old contribution and adds the new
// one, so totals always equal the sum of active selections in catalog
// mode, or the upstream whole-dish estimate in AI mode.
type Aggregator struct {
	mu         sync.Mutex
	selections map[string]Selection
	totals     models.NutrientTotals
	mode       string
	readOnly   bool
	unresolved []string
	// generation per term, bumped on every applied selection so an
	// in-flight resolution that lands late can be discarded
	gen map[string]uint64
}

func NewAggregator() *Aggregator {
	return &Aggregator{
		selections: make(map[string]Selection),
		mode:       models.SourceCatalog,
		gen:        make(map[string]uint64),
	}
}

// InitializeFromDetection seeds the aggregator from an image-analysis
// result. Each term is resolved to its best catalog candidate with the
// default serving. When fewer than half the terms resolve and a
// whole-dish AI estimate exists, the estimate is taken verbatim instead
// of a misleading partial sum. Returns the terms left unresolved.
func (a *Aggregator) InitializeFromDetection(terms []string, aiTotals *models.NutrientTotals, resolver *FoodResolver, defaultUnit models.UnitDefinition) []string {
	a.mu.Lock()
	defer a.mu.Unlock()

	// Duplicate terms collapse to one selection but count as independent
	// occurrences for coverage.
	resolved := make(map[string]Selection, len(terms))
	var unresolved []string
	seenUnresolved := make(map[string]struct{})
	resolvedCount := 0
	for _, term := range terms {
		if _, ok := resolved[term]; ok {
			resolvedCount++
			continue
		}
		if _, ok := seenUnresolved[term]; ok {
			continue
		}
		food := resolver.ResolveOrFallback(term)
		if food == nil {
			seenUnresolved[term] = struct{}{}
			unresolved = append(unresolved, term)
			continue
		}
		resolvedCount++
		resolved[term] = Selection{
			OriginalTerm: term,
			Food:         *food,
			Serving:      Serving{Unit: defaultUnit, Quantity: 1},
		}
	}

	a.unresolved = unresolved

	// Boundary is strict: exactly half resolved still counts as usable
	// catalog coverage.
	if float64(resolvedCount) < float64(len(terms))/2 && aiTotals != nil {
		a.mode = models.SourceAIEstimate
		a.totals = *aiTotals
		a.totals.Source = models.SourceAIEstimate
		a.selections = make(map[string]Selection)
		return unresolved
	}

	a.mode = models.SourceCatalog
	a.totals = models.NutrientTotals{Source: models.SourceCatalog}
	a.selections = resolved
	for _, sel := range resolved {
		c := utils.Contribution(sel.Food, sel.Serving.Unit, sel.Serving.Quantity)
		a.totals.Add(c)
	}
	return unresolved
}

// ApplySelection records the user's pick for a term. The first user
// selection after an AI-estimate baseline discards that baseline
// entirely; mixing a whole-dish guess with catalog detail would double
// count.
func (a *Aggregator) ApplySelection(term string, food models.FoodRecord, serving Serving) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.readOnly {
		return ErrReadOnly
	}
	a.applySelectionLocked(term, food, serving)
	return nil
}

func (a *Aggregator) applySelectionLocked(term string, food models.FoodRecord, serving Serving) {
	if a.mode == models.SourceAIEstimate {
		a.mode = models.SourceCatalog
		a.totals = models.NutrientTotals{Source: models.SourceCatalog}
		a.selections = make(map[string]Selection)
	}

	if prev, ok := a.selections[term]; ok {
		old := utils.Contribution(prev.Food, prev.Serving.Unit, prev.Serving.Quantity)
		a.totals.Sub(old)
	}

	c := utils.Contribution(food, serving.Unit, serving.Quantity)
	a.totals.Add(c)
	a.selections[term] = Selection{OriginalTerm: term, Food: food, Serving: serving}
	a.gen[term]++
	a.dropUnresolved(term)
}

// RemoveSelection is the inverse of ApplySelection.
func (a *Aggregator) RemoveSelection(term string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.readOnly {
		return ErrReadOnly
	}
	prev, ok := a.selections[term]
	if !ok {
		return nil
	}
	old := utils.Contribution(prev.Food, prev.Serving.Unit, prev.Serving.Quantity)
	a.totals.Sub(old)
	delete(a.selections, term)
	a.gen[term]++
	return nil
}

// BeginResolution marks the start of an async catalog lookup for a term
// and returns a token for ApplyResolution.
func (a *Aggregator) BeginResolution(term string) uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.gen[term]
}

// ApplyResolution applies a finished lookup only if no newer selection
// for the same term landed while it was in flight. Reports whether the
// result was applied.
func (a *Aggregator) ApplyResolution(term string, token uint64, food models.FoodRecord, serving Serving) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.gen[term] != token {
		return false, nil
	}
	if a.readOnly {
		return false, ErrReadOnly
	}
	a.applySelectionLocked(term, food, serving)
	return true, nil
}

// UseAIEstimate seeds the aggregator with a whole-dish estimate,
// discarding any selections. Used when replaying an analysis that
// never left AI-estimate mode.
func (a *Aggregator) UseAIEstimate(totals models.NutrientTotals) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.mode = models.SourceAIEstimate
	a.totals = totals
	a.totals.Source = models.SourceAIEstimate
	a.selections = make(map[string]Selection)
}

// MarkUnresolved records the detection terms still without a selection.
func (a *Aggregator) MarkUnresolved(terms []string) {
	a.mu.Lock()
	a.unresolved = terms
	a.mu.Unlock()
}

// CurrentTotals returns a copy of the running totals tagged with the
// active mode.
func (a *Aggregator) CurrentTotals() models.NutrientTotals {
	a.mu.Lock()
	defer a.mu.Unlock()
	t := a.totals
	t.Source = a.mode
	return t
}

func (a *Aggregator) Mode() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mode
}

// UnresolvedTerms reports detection terms still without a selection.
func (a *Aggregator) UnresolvedTerms() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, len(a.unresolved))
	copy(out, a.unresolved)
	return out
}

// Selections returns a copy of the current term-to-selection map.
func (a *Aggregator) Selections() map[string]Selection {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make(map[string]Selection, len(a.selections))
	for k, v := range a.selections {
		out[k] = v
	}
	return out
}

// SetReadOnly freezes the aggregator for replay of a completed analysis.
func (a *Aggregator) SetReadOnly(ro bool) {
	a.mu.Lock()
	a.readOnly = ro
	a.mu.Unlock()
}

func (a *Aggregator) dropUnresolved(term string) {
	for i, t := range a.unresolved {
		if t == term {
			a.unresolved = append(a.unresolved[:i], a.unresolved[i+1:]...)
			return
		}
	}
}
