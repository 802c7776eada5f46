package admin

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/3Eeeecho/go-docmanager/internal/config"
	"github.com/3Eeeecho/go-docmanager/internal/models"
	"github.com/3Eeeecho/go-docmanager/internal/pkg/authz"
	"github.com/3Eeeecho/go-docmanager/internal/pkg/logger"
	"github.com/3Eeeecho/go-docmanager/internal/pkg/utils"
	"github.com/3Eeeecho/go-docmanager/internal/pkg/xerr"
	"github.com/3Eeeecho/go-docmanager/internal/repositories"
	"go.uber.org/zap"
)

type UserService interface {
	GetUserProfile(ctx context.Context, userID uint64) (*models.User, error)

	// 以下操作只对管理员开放，由路由层保证
	ListUsers(ctx context.Context) ([]models.User, error)
	AssignRole(ctx context.Context, userID uint64, roleName string) (*models.User, error)
	RemoveRole(ctx context.Context, userID uint64, roleName string) (*models.User, error)
	SetActive(ctx context.Context, userID uint64, active bool) (*models.User, error)

	// BootstrapAdmin 按配置创建或提升管理员账号，Username 为空时什么也不做
	BootstrapAdmin(ctx context.Context, cfg config.AdminConfig) error
}

type userService struct {
	userRepo repositories.UserRepository
}

var _ UserService = (*userService)(nil)

func NewUserService(userRepo repositories.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

func (s *userService) load(ctx context.Context, userID uint64) (*models.User, error) {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, xerr.ErrUserNotFound) {
			logger.Warn("User not found", zap.Uint64("userID", userID))
			return nil, fmt.Errorf("user service: %w", xerr.ErrUserNotFound)
		}
		logger.Error("Error retrieving user from DB", zap.Uint64("userID", userID), zap.Error(err))
		return nil, fmt.Errorf("user service: %w", xerr.ErrDatabaseError)
	}
	return user, nil
}

func (s *userService) GetUserProfile(ctx context.Context, userID uint64) (*models.User, error) {
	user, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	logger.Info("GetUserProfile: User profile retrieved successfully", zap.Uint64("userID", userID))
	return user, nil
}

func (s *userService) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.userRepo.ListUsers(ctx)
	if err != nil {
		logger.Error("ListUsers: Failed to list users", zap.Error(err))
		return nil, fmt.Errorf("user service: %w", xerr.ErrDatabaseError)
	}
	return users, nil
}

func (s *userService) findRole(ctx context.Context, roleName string) (*models.Role, error) {
	role, err := s.userRepo.FindRoleByName(ctx, strings.TrimSpace(roleName))
	if err != nil {
		if errors.Is(err, xerr.ErrRoleNotFound) {
			return nil, fmt.Errorf("user service: %s: %w", roleName, xerr.ErrRoleNotFound)
		}
		return nil, fmt.Errorf("user service: %w", xerr.ErrDatabaseError)
	}
	return role, nil
}

func (s *userService) AssignRole(ctx context.Context, userID uint64, roleName string) (*models.User, error) {
	user, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	role, err := s.findRole(ctx, roleName)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.AddRole(ctx, user, role); err != nil {
		logger.Error("AssignRole: Failed to add role", zap.Uint64("userID", userID), zap.String("role", role.Name), zap.Error(err))
		return nil, fmt.Errorf("user service: %w", xerr.ErrDatabaseError)
	}
	logger.Info("AssignRole: Role assigned", zap.Uint64("userID", userID), zap.String("role", role.Name))
	return s.load(ctx, userID)
}

func (s *userService) RemoveRole(ctx context.Context, userID uint64, roleName string) (*models.User, error) {
	user, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	role, err := s.findRole(ctx, roleName)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.RemoveRole(ctx, user, role); err != nil {
		logger.Error("RemoveRole: Failed to remove role", zap.Uint64("userID", userID), zap.String("role", role.Name), zap.Error(err))
		return nil, fmt.Errorf("user service: %w", xerr.ErrDatabaseError)
	}
	logger.Info("RemoveRole: Role removed", zap.Uint64("userID", userID), zap.String("role", role.Name))
	return s.load(ctx, userID)
}

func (s *userService) SetActive(ctx context.Context, userID uint64, active bool) (*models.User, error) {
	user, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.IsActive = active
	if err := s.userRepo.UpdateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("user service: %w", xerr.ErrDatabaseError)
	}
	logger.Info("SetActive: User status changed", zap.Uint64("userID", userID), zap.Bool("active", active))
	return user, nil
}

func (s *userService) BootstrapAdmin(ctx context.Context, cfg config.AdminConfig) error {
	if cfg.Username == "" {
		return nil
	}

	adminRole, err := s.findRole(ctx, authz.RoleAdmin)
	if err != nil {
		return err
	}

	user, err := s.userRepo.GetUserByUsername(ctx, cfg.Username)
	switch {
	case err == nil:
		if slices.Contains(user.RoleNames(), authz.RoleAdmin) {
			return nil
		}
		if err := s.userRepo.AddRole(ctx, user, adminRole); err != nil {
			return fmt.Errorf("user service: promote admin: %w", err)
		}
		logger.Info("BootstrapAdmin: Existing user promoted to admin", zap.String("username", cfg.Username))
		return nil
	case !errors.Is(err, xerr.ErrUserNotFound):
		return fmt.Errorf("user service: %w", xerr.ErrDatabaseError)
	}

	if cfg.Password == "" || cfg.Email == "" {
		return errors.New("user service: admin email and password are required to create the admin account")
	}
	userRole, err := s.findRole(ctx, authz.RoleUser)
	if err != nil {
		return err
	}
	hashed, err := utils.HashPassword(cfg.Password)
	if err != nil {
		return fmt.Errorf("user service: hash admin password: %w", err)
	}
	user = &models.User{
		Username:     cfg.Username,
		Email:        cfg.Email,
		PasswordHash: hashed,
		IsActive:     true,
		Roles:        []models.Role{*adminRole, *userRole},
	}
	if err := s.userRepo.CreateUser(ctx, user); err != nil {
		return fmt.Errorf("user service: create admin: %w", err)
	}
	logger.Info("BootstrapAdmin: Admin account created", zap.Uint64("userID", user.ID), zap.String("username", cfg.Username))
	return nil
}
