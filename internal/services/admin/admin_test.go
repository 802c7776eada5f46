package admin

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/3Eeeecho/go-docmanager/internal/config"
	"github.com/3Eeeecho/go-docmanager/internal/models"
	"github.com/3Eeeecho/go-docmanager/internal/pkg/authz"
	"github.com/3Eeeecho/go-docmanager/internal/pkg/cache"
	"github.com/3Eeeecho/go-docmanager/internal/pkg/utils"
	"github.com/3Eeeecho/go-docmanager/internal/pkg/xerr"
	"github.com/3Eeeecho/go-docmanager/internal/repositories"
	"github.com/3Eeeecho/go-docmanager/internal/services/explorer"
	"github.com/3Eeeecho/go-docmanager/internal/testutils"
	"gorm.io/gorm"
)

func newServices(t *testing.T) (*gorm.DB, AuthService, UserService, *cache.MemoryCache, *config.Config) {
	t.Helper()
	db := testutils.SetupDB(t)
	cfg := &config.Config{JWT: config.JWTConfig{
		SecretKey: "test-secret",
		ExpiresIn: time.Hour,
		Issuer:    "DocumentManager",
		Audience:  []string{"DocumentManager"},
	}}
	repo := repositories.NewUserRepository(db)
	blocklist := cache.NewMemoryCache()
	auth := NewAuthService(repo, explorer.NewTransactionManager(db), blocklist, cfg)
	return db, auth, NewUserService(repo), blocklist, cfg
}

func register(t *testing.T, auth AuthService, username string) *models.User {
	t.Helper()
	user, err := auth.Register(context.Background(), RegisterInput{
		Username: username,
		Email:    username + "@example.com",
		Password: "secret123",
	})
	if err != nil {
		t.Fatalf("register %s: %v", username, err)
	}
	return user
}

func TestRegister(t *testing.T) {
	db, auth, _, _, _ := newServices(t)
	ctx := context.Background()

	user := register(t, auth, "alice")
	if !slices.Contains(user.RoleNames(), authz.RoleUser) {
		t.Fatalf("新用户应带有 User 角色，实际为 %v", user.RoleNames())
	}
	if user.PasswordHash == "secret123" {
		t.Fatalf("密码不应明文保存")
	}

	tests := []struct {
		name string
		in   RegisterInput
		want error
	}{
		{"duplicate username", RegisterInput{Username: "alice", Email: "other@example.com", Password: "secret123"}, xerr.ErrUserAlreadyExists},
		{"duplicate email", RegisterInput{Username: "alice2", Email: "alice@example.com", Password: "secret123"}, xerr.ErrEmailAlreadyExists},
		{"short username", RegisterInput{Username: "al", Email: "al@example.com", Password: "secret123"}, xerr.ErrValidationFailed},
		{"bad email", RegisterInput{Username: "carol", Email: "not-an-email", Password: "secret123"}, xerr.ErrValidationFailed},
		{"short password", RegisterInput{Username: "carol", Email: "carol@example.com", Password: "123"}, xerr.ErrValidationFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := auth.Register(ctx, tt.in); !errors.Is(err, tt.want) {
				t.Fatalf("期望 %v，实际为 %v", tt.want, err)
			}
		})
	}

	var count int64
	db.Model(&models.User{}).Count(&count)
	if count != 1 {
		t.Fatalf("失败的注册不应写入用户，实际用户数 %d", count)
	}
}

func TestLogin(t *testing.T) {
	_, auth, users, _, cfg := newServices(t)
	ctx := context.Background()
	alice := register(t, auth, "alice")

	result, err := auth.Login(ctx, "alice", "secret123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	claims, err := utils.ParseToken(result.Token, &cfg.JWT)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.UserID != alice.ID || !slices.Contains(claims.Roles, authz.RoleUser) {
		t.Fatalf("Token 内容不正确: %+v", claims)
	}
	if result.User.LastLoginAt == nil {
		t.Fatalf("登录后应记录 LastLoginAt")
	}

	if _, err := auth.Login(ctx, "alice@example.com", "secret123"); err != nil {
		t.Fatalf("邮箱登录应成功: %v", err)
	}
	if _, err := auth.Login(ctx, "alice", "wrong-pass"); !errors.Is(err, xerr.ErrInvalidCredentials) {
		t.Fatalf("期望 ErrInvalidCredentials，实际为 %v", err)
	}
	if _, err := auth.Login(ctx, "nobody", "secret123"); !errors.Is(err, xerr.ErrInvalidCredentials) {
		t.Fatalf("未知用户也应返回 ErrInvalidCredentials，实际为 %v", err)
	}

	if _, err := users.SetActive(ctx, alice.ID, false); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if _, err := auth.Login(ctx, "alice", "secret123"); !errors.Is(err, xerr.ErrUserInactive) {
		t.Fatalf("期望 ErrUserInactive，实际为 %v", err)
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	_, auth, _, blocklist, cfg := newServices(t)
	ctx := context.Background()
	register(t, auth, "alice")

	result, err := auth.Login(ctx, "alice", "secret123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	claims, err := utils.ParseToken(result.Token, &cfg.JWT)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if err := auth.Logout(ctx, claims.ID, result.ExpiresAt); err != nil {
		t.Fatalf("logout: %v", err)
	}
	revoked, err := blocklist.IsRevoked(ctx, claims.ID)
	if err != nil || !revoked {
		t.Fatalf("注销后 Token 应在黑名单中: %v %v", revoked, err)
	}
}

func TestChangePasswordAndAvailability(t *testing.T) {
	_, auth, _, _, _ := newServices(t)
	ctx := context.Background()
	alice := register(t, auth, "alice")

	if ok, _ := auth.UsernameAvailable(ctx, "alice"); ok {
		t.Fatalf("alice 已被占用")
	}
	if ok, _ := auth.EmailAvailable(ctx, "free@example.com"); !ok {
		t.Fatalf("free@example.com 应可用")
	}

	if err := auth.ChangePassword(ctx, alice.ID, "wrong", "newsecret"); !errors.Is(err, xerr.ErrInvalidCredentials) {
		t.Fatalf("期望 ErrInvalidCredentials，实际为 %v", err)
	}
	if err := auth.ChangePassword(ctx, alice.ID, "secret123", "newsecret"); err != nil {
		t.Fatalf("change password: %v", err)
	}
	if _, err := auth.Login(ctx, "alice", "newsecret"); err != nil {
		t.Fatalf("新密码应可登录: %v", err)
	}
}

func TestUserService_Roles(t *testing.T) {
	_, auth, users, _, _ := newServices(t)
	ctx := context.Background()
	alice := register(t, auth, "alice")

	updated, err := users.AssignRole(ctx, alice.ID, authz.RoleAdmin)
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if !slices.Contains(updated.RoleNames(), authz.RoleAdmin) {
		t.Fatalf("应带有 Admin 角色: %v", updated.RoleNames())
	}

	updated, err = users.RemoveRole(ctx, alice.ID, authz.RoleAdmin)
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if slices.Contains(updated.RoleNames(), authz.RoleAdmin) {
		t.Fatalf("Admin 角色应已移除: %v", updated.RoleNames())
	}

	if _, err := users.AssignRole(ctx, alice.ID, "Auditor"); !errors.Is(err, xerr.ErrRoleNotFound) {
		t.Fatalf("期望 ErrRoleNotFound，实际为 %v", err)
	}
	if _, err := users.GetUserProfile(ctx, 9999); !errors.Is(err, xerr.ErrUserNotFound) {
		t.Fatalf("期望 ErrUserNotFound，实际为 %v", err)
	}

	list, err := users.ListUsers(ctx)
	if err != nil || len(list) != 1 {
		t.Fatalf("期望 1 个用户: %v %v", list, err)
	}
}

func TestBootstrapAdmin(t *testing.T) {
	db, auth, users, _, _ := newServices(t)
	ctx := context.Background()

	if err := users.BootstrapAdmin(ctx, config.AdminConfig{}); err != nil {
		t.Fatalf("未配置时应跳过: %v", err)
	}

	cfg := config.AdminConfig{Username: "admin", Email: "admin@example.com", Password: "admin123"}
	for i := 0; i < 2; i++ {
		if err := users.BootstrapAdmin(ctx, cfg); err != nil {
			t.Fatalf("bootstrap #%d: %v", i, err)
		}
	}
	var count int64
	db.Model(&models.User{}).Count(&count)
	if count != 1 {
		t.Fatalf("重复执行不应再创建用户，实际 %d", count)
	}

	result, err := auth.Login(ctx, "admin", "admin123")
	if err != nil {
		t.Fatalf("admin login: %v", err)
	}
	if !slices.Contains(result.User.RoleNames(), authz.RoleAdmin) {
		t.Fatalf("管理员账号应带有 Admin 角色: %v", result.User.RoleNames())
	}

	bob := register(t, auth, "bob")
	if err := users.BootstrapAdmin(ctx, config.AdminConfig{Username: "bob"}); err != nil {
		t.Fatalf("promote: %v", err)
	}
	profile, _ := users.GetUserProfile(ctx, bob.ID)
	if !slices.Contains(profile.RoleNames(), authz.RoleAdmin) {
		t.Fatalf("已有用户应被提升为管理员: %v", profile.RoleNames())
	}
}
