package services

import (
	"fmt"
	"time"

	"backend/models"

	"gorm.io/gorm"
)

type alertDeps struct {
	db *gorm.DB
	rt *RealtimeHub
	ps *PushService
}

var _alert alertDeps

func InitAlertDeps(db *gorm.DB, rt *RealtimeHub, ps *PushService) {
	_alert = alertDeps{db: db, rt: rt, ps: ps}
}

// EmitNutrientAlert records and fans out a threshold alert. Safe to call
// anywhere; a nil bus is a no-op.
func EmitNutrientAlert(userID uint, typ, nutrient, message string) {
	if _alert.db == nil {
		return
	} // not initialized
	a := &models.Alert{UserID: userID, Type: typ, Nutrient: nutrient, Message: message, CreatedAt: time.Now()}
	_ = _alert.db.Create(a).Error

	if _alert.rt != nil {
		_alert.rt.Broadcast(userID, map[string]any{
			"kind":  "alert.created",
			"alert": a,
		})
	}
	if _alert.ps != nil {
		_alert.ps.PushToUser(userID, "Nutrient Alert", message, map[string]string{
			"type": typ, "nutrient": nutrient, "alertId": fmt.Sprintf("%d", a.ID),
		})
	}
}
