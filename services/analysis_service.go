package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"

	"backend/models"
	"backend/utils"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrAnalysisNotFound = errors.New("analysis not found")
	ErrNotOwner         = errors.New("analysis belongs to another user")
)

// analysisSession is the live in-memory state for one open analysis.
// Completed analyses have no session; they are rebuilt read-only from
// the persisted selection rows on access.
type analysisSession struct {
	agg      *Aggregator
	resolver *FoodResolver
	userID   uint
}

type AnalysisService struct {
	db      *gorm.DB
	catalog Catalog
	vision  *VisionService
	replay  *ReplayService

	mu       sync.Mutex
	sessions map[string]*analysisSession
}

func NewAnalysisService(db *gorm.DB, catalog Catalog, vision *VisionService, replay *ReplayService) *AnalysisService {
	return &AnalysisService{
		db:       db,
		catalog:  catalog,
		vision:   vision,
		replay:   replay,
		sessions: make(map[string]*analysisSession),
	}
}

// AnalysisView is the engine state handed back to the client after any
// operation: totals, per-nutrient bands, and what is still unresolved.
type AnalysisView struct {
	AnalysisID string                            `json:"analysis_id"`
	DishName   string                            `json:"dish_name,omitempty"`
	ImageURL   string                            `json:"image_url,omitempty"`
	Totals     models.NutrientTotals             `json:"totals"`
	Bands      map[string]utils.NutrientReading  `json:"bands"`
	Unresolved []string                          `json:"unresolved,omitempty"`
	Selections map[string]Selection              `json:"selections"`
	Snapshot   SelectionSnapshot                 `json:"snapshot"`
	ReadOnly   bool                              `json:"read_only"`
	Completed  bool                              `json:"completed"`
}

// CreateFromImage uploads the meal photo, runs label detection, seeds an
// aggregator from the detected terms, and persists the new analysis.
func (s *AnalysisService) CreateFromImage(user *models.User, base64Img string, aiTotalsJSON []byte, dishName string) (*AnalysisView, error) {
	imageURL, err := utils.UploadMealImage(base64Img, fmt.Sprintf("u%d", user.ID))
	if err != nil {
		return nil, fmt.Errorf("image upload failed: %v", err)
	}

	det, err := s.vision.Detect(base64Img, aiTotalsJSON)
	if err != nil {
		return nil, fmt.Errorf("image analysis failed: %v", err)
	}

	defaultUnit, err := s.catalog.GetUnitByName("plato normal")
	if err != nil {
		// degenerate unit: both equivalents nil, factor falls back to quantity
		defaultUnit = &models.UnitDefinition{Name: "plato normal"}
	}

	resolver := NewFoodResolver(s.catalog)
	agg := NewAggregator()
	unresolved := agg.InitializeFromDetection(det.DetectedTerms, det.AITotals, resolver, *defaultUnit)

	termsJSON, _ := json.Marshal(det.DetectedTerms)
	var aiJSON datatypes.JSON
	if det.AITotals != nil {
		raw, _ := json.Marshal(det.AITotals)
		aiJSON = datatypes.JSON(raw)
	}

	analysis := models.MealAnalysis{
		ID:            uuid.NewString(),
		UserID:        user.ID,
		ImageURL:      imageURL,
		DishName:      dishName,
		DetectedTerms: datatypes.JSON(termsJSON),
		AITotals:      aiJSON,
	}
	if err := s.db.Create(&analysis).Error; err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.sessions[analysis.ID] = &analysisSession{agg: agg, resolver: resolver, userID: user.ID}
	s.mu.Unlock()

	s.replay.Persist(analysis.ID, user.ID, agg)
	return s.view(&analysis, agg, unresolved)
}

// Get returns the current state of an analysis. Live sessions are served
// from memory; completed ones are replayed read-only from storage.
func (s *AnalysisService) Get(analysisID string, userID uint) (*AnalysisView, error) {
	analysis, err := s.load(analysisID, userID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	sess := s.sessions[analysisID]
	s.mu.Unlock()

	if sess != nil {
		return s.view(analysis, sess.agg, sess.agg.UnresolvedTerms())
	}

	agg, _, err := s.replay.Restore(analysisID)
	if err != nil {
		return nil, err
	}
	return s.view(analysis, agg, agg.UnresolvedTerms())
}

// ApplySelection records the user's food pick for a detected term and
// returns the recomputed state. Fires a nutrient alert when the new
// totals cross a hard limit.
func (s *AnalysisService) ApplySelection(analysisID string, user *models.User, term, foodID string, unitID uint, quantity float64) (*AnalysisView, error) {
	analysis, err := s.load(analysisID, user.ID)
	if err != nil {
		return nil, err
	}
	if analysis.Completed {
		return nil, ErrReadOnly
	}

	sess, err := s.session(analysis, user.ID)
	if err != nil {
		return nil, err
	}

	// take the token before the catalog lookups suspend, so a newer
	// selection for the same term invalidates this one while we fetch
	token := sess.agg.BeginResolution(term)

	food, err := s.catalog.GetByID(foodID)
	if err != nil {
		return nil, err
	}
	unit, err := s.catalog.GetUnit(unitID)
	if err != nil {
		return nil, err
	}

	applied, err := sess.agg.ApplyResolution(term, token, *food, Serving{Unit: *unit, Quantity: quantity})
	if err != nil {
		return nil, err
	}
	if !applied {
		// a newer selection for this term won the race; state unchanged
		return s.view(analysis, sess.agg, sess.agg.UnresolvedTerms())
	}

	s.replay.Persist(analysisID, user.ID, sess.agg)
	s.notifyIfExceeded(user, sess.agg)
	return s.view(analysis, sess.agg, sess.agg.UnresolvedTerms())
}

// RemoveSelection undoes a pick for one term.
func (s *AnalysisService) RemoveSelection(analysisID string, user *models.User, term string) (*AnalysisView, error) {
	analysis, err := s.load(analysisID, user.ID)
	if err != nil {
		return nil, err
	}
	if analysis.Completed {
		return nil, ErrReadOnly
	}

	sess, err := s.session(analysis, user.ID)
	if err != nil {
		return nil, err
	}
	if err := sess.agg.RemoveSelection(term); err != nil {
		return nil, err
	}
	s.replay.Persist(analysisID, user.ID, sess.agg)
	return s.view(analysis, sess.agg, sess.agg.UnresolvedTerms())
}

// Complete freezes the analysis, drops its live session and logs every
// active selection as consumed intake.
func (s *AnalysisService) Complete(analysisID string, user *models.User, intake *IntakeService) (*AnalysisView, error) {
	analysis, err := s.load(analysisID, user.ID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	sess := s.sessions[analysisID]
	delete(s.sessions, analysisID)
	s.mu.Unlock()

	if sess == nil {
		agg, _, err := s.replay.Restore(analysisID)
		if err != nil {
			return nil, err
		}
		sess = &analysisSession{agg: agg, userID: user.ID}
	} else {
		s.replay.Persist(analysisID, user.ID, sess.agg)
		sess.agg.SetReadOnly(true)
		if sess.resolver != nil {
			sess.resolver.Reset()
		}
	}

	if !analysis.Completed {
		analysis.Completed = true
		if err := s.db.Model(analysis).Update("completed", true).Error; err != nil {
			log.Printf("complete flag write failed for analysis %s: %v", analysisID, err)
		}
		if intake != nil {
			intake.LogAnalysis(user.ID, analysisID, sess.agg)
		}
	}
	return s.view(analysis, sess.agg, sess.agg.UnresolvedTerms())
}

// History lists the user's analyses, newest first.
func (s *AnalysisService) History(userID uint, limit int) ([]models.MealAnalysis, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var out []models.MealAnalysis
	err := s.db.Where("user_id = ?", userID).
		Order("created_at desc").Limit(limit).Find(&out).Error
	return out, err
}

func (s *AnalysisService) load(analysisID string, userID uint) (*models.MealAnalysis, error) {
	var analysis models.MealAnalysis
	if err := s.db.First(&analysis, "id = ?", analysisID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAnalysisNotFound
		}
		return nil, err
	}
	if analysis.UserID != userID {
		return nil, ErrNotOwner
	}
	return &analysis, nil
}

// session returns the live session for an open analysis, rebuilding one
// from storage after e.g. a server restart.
func (s *AnalysisService) session(analysis *models.MealAnalysis, userID uint) (*analysisSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[analysis.ID]; ok {
		return sess, nil
	}

	agg, _, err := s.replay.Restore(analysis.ID)
	if err != nil {
		return nil, err
	}
	agg.SetReadOnly(false)
	sess := &analysisSession{agg: agg, resolver: NewFoodResolver(s.catalog), userID: userID}
	s.sessions[analysis.ID] = sess
	return sess, nil
}

func (s *AnalysisService) thresholds(userID uint) utils.MealThresholds {
	var profile models.MedicalProfile
	if err := s.db.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return utils.DefaultMealThresholds()
	}
	return utils.ThresholdsForProfile(&profile)
}

func (s *AnalysisService) view(analysis *models.MealAnalysis, agg *Aggregator, unresolved []string) (*AnalysisView, error) {
	totals := agg.CurrentTotals()
	bands := utils.ClassifyTotals(totals, s.thresholds(analysis.UserID))
	return &AnalysisView{
		AnalysisID: analysis.ID,
		DishName:   analysis.DishName,
		ImageURL:   analysis.ImageURL,
		Totals:     totals,
		Bands:      bands,
		Unresolved: unresolved,
		Selections: agg.Selections(),
		Snapshot:   s.replay.Snapshot(agg),
		ReadOnly:   analysis.Completed,
		Completed:  analysis.Completed,
	}, nil
}

// notifyIfExceeded emits alerts and a caregiver email for every nutrient
// band at or over its hard limit.
func (s *AnalysisService) notifyIfExceeded(user *models.User, agg *Aggregator) {
	totals := agg.CurrentTotals()
	bands := utils.ClassifyTotals(totals, s.thresholds(user.ID))
	for nutrient, reading := range bands {
		if reading.Band != utils.BandExceeded {
			continue
		}
		msg := fmt.Sprintf("This meal contains %.0f mg of %s, over your %.0f mg per-meal limit.",
			reading.Value, nutrient, reading.Limit)
		EmitNutrientAlert(user.ID, "threshold_exceeded", nutrient, msg)
		if user.CaregiverEmail != "" {
			if err := utils.SendThresholdAlertEmail(user.CaregiverEmail, user.FullName, nutrient, reading.Value, reading.Limit); err != nil {
				log.Printf("caregiver alert email failed for user %d: %v", user.ID, err)
			}
		}
	}
}
