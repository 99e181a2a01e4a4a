package services

import (
	"errors"
	"time"

	"backend/config"
	"backend/models"
	"backend/utils"
)

func RegisterUser(email, password, fullName, role string) error {
	hashedPassword, err := utils.HashPassword(password)
	if err != nil {
		return err
	}
	if role == "" {
		role = "patient"
	}

	user := models.User{
		Email:    email,
		Password: hashedPassword,
		FullName: fullName,
		Role:     role,
	}

	result := config.DB.Create(&user)
	return result.Error
}

func AuthenticateUser(email, password string) (string, error) {
	var user models.User
	result := config.DB.Where("email = ?", email).First(&user)
	if result.Error != nil {
		return "", errors.New("user not found")
	}

	if !utils.CheckPasswordHash(password, user.Password) {
		return "", errors.New("incorrect password")
	}

	if user.MFAEnabled {
		code := utils.GenerateRandomToken(6)
		user.MFACode = code
		if err := config.DB.Save(&user).Error; err != nil {
			return "", err
		}
		if err := utils.SendMFAEmail(user.Email, code); err != nil {
			return "", err
		}
		return "", errors.New("mfa required")
	}

	return utils.GenerateJWT(user.Email)
}

func VerifyMFA(email, code string) (string, error) {
	var user models.User
	if err := config.DB.Where("email = ?", email).First(&user).Error; err != nil {
		return "", errors.New("user not found")
	}
	if user.MFACode == "" || user.MFACode != code {
		return "", errors.New("invalid mfa code")
	}
	user.MFACode = ""
	_ = config.DB.Save(&user).Error
	return utils.GenerateJWT(user.Email)
}

func StartPasswordReset(email string) error {
	var user models.User
	if err := config.DB.Where("email = ?", email).First(&user).Error; err != nil {
		// do not leak which emails exist
		return nil
	}
	token := utils.GenerateRandomToken(8)
	user.ResetToken = token
	user.ResetTokenExp = time.Now().Add(30 * time.Minute)
	if err := config.DB.Save(&user).Error; err != nil {
		return err
	}
	return utils.SendResetEmail(user.Email, token)
}

func CompletePasswordReset(email, token, newPassword string) error {
	var user models.User
	if err := config.DB.Where("email = ?", email).First(&user).Error; err != nil {
		return errors.New("user not found")
	}
	if user.ResetToken == "" || user.ResetToken != token || time.Now().After(user.ResetTokenExp) {
		return errors.New("invalid or expired reset token")
	}
	hashed, err := utils.HashPassword(newPassword)
	if err != nil {
		return err
	}
	user.Password = hashed
	user.ResetToken = ""
	return config.DB.Save(&user).Error
}
