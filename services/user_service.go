package services

import (
	"errors"

	"backend/config"
	"backend/models"
	"backend/utils"

	"gorm.io/gorm"
)

type ProfileInput struct {
	FullName        string  `json:"full_name"`
	CaregiverEmail  string  `json:"caregiver_email"`
	MFAEnabled      *bool   `json:"mfa_enabled"`
	HeightCm        float64 `json:"height_cm"`
	WeightKg        float64 `json:"weight_kg"`
	CKDStage        int     `json:"ckd_stage"`
	SodiumLimit     float64 `json:"sodium_limit"`
	PotassiumLimit  float64 `json:"potassium_limit"`
	PhosphorusLimit float64 `json:"phosphorus_limit"`
}

func FindUserByEmail(email string) (*models.User, error) {
	var user models.User
	result := config.DB.First(&user, "email = ?", email)
	if result.Error != nil {
		return nil, errors.New("user not found")
	}
	return &user, nil
}

func GetUserProfile(email string) (map[string]interface{}, error) {
	user, err := FindUserByEmail(email)
	if err != nil {
		return nil, err
	}

	profile, _ := GetMedicalProfile(user.ID)

	out := map[string]interface{}{
		"id":              user.ID,
		"email":           user.Email,
		"full_name":       user.FullName,
		"role":            user.Role,
		"caregiver_email": user.CaregiverEmail,
		"mfa_enabled":     user.MFAEnabled,
	}

	if profile != nil {
		out["height_cm"] = profile.HeightCm
		out["weight_kg"] = profile.WeightKg
		out["ckd_stage"] = profile.CKDStage
		th := utils.ThresholdsForProfile(profile)
		out["meal_thresholds"] = th
		if bmi, err := utils.CalculateBMI(profile.HeightCm, profile.WeightKg); err == nil {
			out["bmi"] = bmi
			out["bmi_category"] = utils.BMICategory(bmi)
		}
	} else {
		out["meal_thresholds"] = utils.DefaultMealThresholds()
	}

	return out, nil
}

func UpdateUserProfile(email string, input ProfileInput) error {
	user, err := FindUserByEmail(email)
	if err != nil {
		return err
	}

	if input.FullName != "" {
		user.FullName = input.FullName
	}
	if input.CaregiverEmail != "" {
		user.CaregiverEmail = input.CaregiverEmail
	}
	if input.MFAEnabled != nil {
		user.MFAEnabled = *input.MFAEnabled
	}
	if err := config.DB.Save(user).Error; err != nil {
		return err
	}

	profile, err := GetMedicalProfile(user.ID)
	if err != nil {
		profile = &models.MedicalProfile{UserID: user.ID}
	}
	if input.HeightCm > 0 {
		profile.HeightCm = input.HeightCm
	}
	if input.WeightKg > 0 {
		profile.WeightKg = input.WeightKg
	}
	if input.CKDStage > 0 {
		profile.CKDStage = input.CKDStage
	}
	if input.SodiumLimit > 0 {
		profile.SodiumLimit = input.SodiumLimit
	}
	if input.PotassiumLimit > 0 {
		profile.PotassiumLimit = input.PotassiumLimit
	}
	if input.PhosphorusLimit > 0 {
		profile.PhosphorusLimit = input.PhosphorusLimit
	}
	return config.DB.Save(profile).Error
}

func GetMedicalProfile(userID uint) (*models.MedicalProfile, error) {
	var profile models.MedicalProfile
	if err := config.DB.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("medical profile not found")
		}
		return nil, err
	}
	return &profile, nil
}
