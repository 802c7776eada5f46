package utils

import (
	"errors"
	"fmt"

	"github.com/3Eeeecho/go-docmanager/internal/pkg/logger"
	"github.com/3Eeeecho/go-docmanager/internal/pkg/xerr"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// bcrypt 只处理前 72 字节
const MaxPasswordBytes = 72

// PasswordCost 为 bcrypt 计算成本，测试中可调低
var PasswordCost = bcrypt.DefaultCost

// HashPassword 生成密码哈希，超过 MaxPasswordBytes 的密码返回 ErrValidationFailed
func HashPassword(password string) (string, error) {
	if len(password) > MaxPasswordBytes {
		return "", fmt.Errorf("password longer than %d bytes: %w", MaxPasswordBytes, xerr.ErrValidationFailed)
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	if err != nil {
		logger.Error("Error hashing password", zap.Error(err))
		return "", err
	}
	return string(hashed), nil
}

// CheckPasswordHash 比较明文与哈希，哈希为空或格式错误时视为不匹配
func CheckPasswordHash(password, hash string) bool {
	if hash == "" {
		return false
	}
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err != nil {
		if !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			logger.Warn("Error comparing password hash", zap.Error(err))
		}
		return false
	}
	return true
}
