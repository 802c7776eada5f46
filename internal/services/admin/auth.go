package admin

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/3Eeeecho/go-docmanager/internal/config"
	"github.com/3Eeeecho/go-docmanager/internal/models"
	"github.com/3Eeeecho/go-docmanager/internal/pkg/authz"
	"github.com/3Eeeecho/go-docmanager/internal/pkg/cache"
	"github.com/3Eeeecho/go-docmanager/internal/pkg/logger"
	"github.com/3Eeeecho/go-docmanager/internal/pkg/utils"
	"github.com/3Eeeecho/go-docmanager/internal/pkg/xerr"
	"github.com/3Eeeecho/go-docmanager/internal/repositories"
	"github.com/3Eeeecho/go-docmanager/internal/services/explorer"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const minPasswordLength = 6

type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// AuthResult 登录成功后返回给客户端的内容
type AuthResult struct {
	Token     string
	ExpiresAt time.Time
	User      *models.User
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*models.User, error)
	// Login 支持用户名或邮箱登录
	Login(ctx context.Context, identifier, password string) (*AuthResult, error)
	// Logout 把 Token 加入黑名单直到其过期
	Logout(ctx context.Context, tokenID string, expiresAt time.Time) error
	UsernameAvailable(ctx context.Context, username string) (bool, error)
	EmailAvailable(ctx context.Context, email string) (bool, error)
	ChangePassword(ctx context.Context, userID uint64, oldPassword, newPassword string) error
}

type authService struct {
	userRepo           repositories.UserRepository
	transactionManager explorer.TransactionManager
	blocklist          cache.TokenBlocklist
	cfg                *config.Config
}

// 确保authService实现了AuthService的方法
var _ AuthService = (*authService)(nil)

func NewAuthService(
	userRepo repositories.UserRepository,
	transactionManager explorer.TransactionManager,
	blocklist cache.TokenBlocklist,
	cfg *config.Config,
) AuthService {
	return &authService{
		userRepo:           userRepo,
		transactionManager: transactionManager,
		blocklist:          blocklist,
		cfg:                cfg,
	}
}

func validateRegister(in *RegisterInput) error {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)

	if n := utf8.RuneCountInString(in.Username); n < 3 || n > 100 {
		return fmt.Errorf("auth service: username length must be 3-100: %w", xerr.ErrValidationFailed)
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return fmt.Errorf("auth service: invalid email: %w", xerr.ErrValidationFailed)
	}
	if len(in.Password) < minPasswordLength {
		return fmt.Errorf("auth service: password shorter than %d: %w", minPasswordLength, xerr.ErrValidationFailed)
	}
	return nil
}

func (s *authService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if err := validateRegister(&in); err != nil {
		return nil, err
	}

	hashedPassword, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hashedPassword,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		IsActive:     true,
	}

	err = s.transactionManager.WithTransaction(ctx, func(tx *gorm.DB) error {
		repo := s.userRepo.WithTx(tx)

		//检查用户名是否存在
		exists, err := repo.ExistsByUsername(ctx, in.Username)
		if err != nil {
			return fmt.Errorf("auth service: failed to check username: %w", xerr.ErrDatabaseError)
		}
		if exists {
			return fmt.Errorf("auth service: %w", xerr.ErrUserAlreadyExists)
		}

		//检查邮箱是否存在
		exists, err = repo.ExistsByEmail(ctx, in.Email)
		if err != nil {
			return fmt.Errorf("auth service: failed to check email: %w", xerr.ErrDatabaseError)
		}
		if exists {
			return fmt.Errorf("auth service: %w", xerr.ErrEmailAlreadyExists)
		}

		role, err := repo.FindRoleByName(ctx, authz.RoleUser)
		if err != nil {
			logger.Error("Register: Default role missing", zap.String("role", authz.RoleUser), zap.Error(err))
			return fmt.Errorf("auth service: %w", xerr.ErrInternalServer)
		}
		user.Roles = []models.Role{*role}

		if err := repo.CreateUser(ctx, user); err != nil {
			return fmt.Errorf("auth service: failed to create user: %w", xerr.ErrDatabaseError)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("User registered successfully", zap.Uint64("userID", user.ID), zap.String("username", user.Username))
	return user, nil
}

func (s *authService) Login(ctx context.Context, identifier, password string) (*AuthResult, error) {
	identifier = strings.TrimSpace(identifier)

	// 先按用户名查找，找不到再按邮箱
	user, err := s.userRepo.GetUserByUsername(ctx, identifier)
	if errors.Is(err, xerr.ErrUserNotFound) {
		user, err = s.userRepo.GetUserByEmail(ctx, identifier)
	}
	if err != nil {
		if errors.Is(err, xerr.ErrUserNotFound) {
			logger.Warn("Login: Unknown identifier", zap.String("identifier", identifier))
			return nil, fmt.Errorf("auth service: %w", xerr.ErrInvalidCredentials)
		}
		return nil, fmt.Errorf("auth service: failed to get user: %w", xerr.ErrDatabaseError)
	}

	//验证密码
	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		logger.Warn("Login: Password mismatch", zap.Uint64("userID", user.ID))
		return nil, fmt.Errorf("auth service: %w", xerr.ErrInvalidCredentials)
	}
	if !user.IsActive {
		logger.Warn("Login: Inactive user", zap.Uint64("userID", user.ID))
		return nil, fmt.Errorf("auth service: %w", xerr.ErrUserInactive)
	}

	now := time.Now()
	user.LastLoginAt = &now
	if err := s.userRepo.UpdateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("auth service: failed to update last login: %w", xerr.ErrDatabaseError)
	}

	token, expiresAt, err := utils.GenerateToken(user.ID, user.Username, user.Email, user.RoleNames(), &s.cfg.JWT)
	if err != nil {
		logger.Error("Login: Failed to generate token", zap.Uint64("userID", user.ID), zap.Error(err))
		return nil, fmt.Errorf("auth service: failed to generate token: %w", xerr.ErrInternalServer)
	}

	logger.Info("User logged in", zap.Uint64("userID", user.ID))
	return &AuthResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

func (s *authService) Logout(ctx context.Context, tokenID string, expiresAt time.Time) error {
	if tokenID == "" {
		return fmt.Errorf("auth service: %w", xerr.ErrTokenInvalid)
	}
	if err := s.blocklist.Revoke(ctx, tokenID, time.Until(expiresAt)); err != nil {
		logger.Error("Logout: Failed to revoke token", zap.String("tokenID", tokenID), zap.Error(err))
		return fmt.Errorf("auth service: %w", xerr.ErrInternalServer)
	}
	return nil
}

func (s *authService) UsernameAvailable(ctx context.Context, username string) (bool, error) {
	exists, err := s.userRepo.ExistsByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return false, fmt.Errorf("auth service: %w", xerr.ErrDatabaseError)
	}
	return !exists, nil
}

func (s *authService) EmailAvailable(ctx context.Context, email string) (bool, error) {
	exists, err := s.userRepo.ExistsByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return false, fmt.Errorf("auth service: %w", xerr.ErrDatabaseError)
	}
	return !exists, nil
}

func (s *authService) ChangePassword(ctx context.Context, userID uint64, oldPassword, newPassword string) error {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, xerr.ErrUserNotFound) {
			return fmt.Errorf("auth service: %w", xerr.ErrUserNotFound)
		}
		return fmt.Errorf("auth service: %w", xerr.ErrDatabaseError)
	}
	if !utils.CheckPasswordHash(oldPassword, user.PasswordHash) {
		return fmt.Errorf("auth service: %w", xerr.ErrInvalidCredentials)
	}
	if len(newPassword) < minPasswordLength {
		return fmt.Errorf("auth service: password shorter than %d: %w", minPasswordLength, xerr.ErrValidationFailed)
	}

	hashed, err := hashPassword(newPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = hashed
	if err := s.userRepo.UpdateUser(ctx, user); err != nil {
		return fmt.Errorf("auth service: failed to update password: %w", xerr.ErrDatabaseError)
	}
	logger.Info("ChangePassword: Password updated", zap.Uint64("userID", userID))
	return nil
}

func hashPassword(password string) (string, error) {
	hashed, err := utils.HashPassword(password)
	if err != nil {
		if errors.Is(err, xerr.ErrValidationFailed) {
			return "", fmt.Errorf("auth service: %w", err)
		}
		return "", fmt.Errorf("auth service: failed to hash password: %w", xerr.ErrInternalServer)
	}
	return hashed, nil
}
