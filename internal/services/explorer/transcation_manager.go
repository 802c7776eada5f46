package explorer

import (
	"context"
	"fmt"

	"github.com/3Eeeecho/go-docmanager/internal/pkg/logger"
	"github.com/3Eeeecho/go-docmanager/internal/pkg/xerr"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// TransactionManager 把一次逻辑操作的全部写入放进同一个事务。
// fn 内部只能使用绑定到 tx 的仓储，否则在单连接的 SQLite 上会互相等待。
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type transactionManager struct {
	db *gorm.DB
}

var _ TransactionManager = (*transactionManager)(nil)

func NewTransactionManager(db *gorm.DB) TransactionManager {
	return &transactionManager{db: db}
}

// WithTransaction fn 返回错误或 panic 时回滚，fn 的错误原样返回；
// 开启或提交事务失败时返回 ErrDatabaseError
func (tm *transactionManager) WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) (err error) {
	tx := tm.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		logger.Error("WithTransaction: Failed to begin transaction", zap.Error(tx.Error))
		return fmt.Errorf("begin transaction: %w", xerr.ErrDatabaseError)
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		if rbErr := tx.Rollback().Error; rbErr != nil {
			logger.Warn("WithTransaction: Rollback failed", zap.Error(rbErr))
		}
		if r := recover(); r != nil {
			panic(r)
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit().Error; err != nil {
		logger.Error("WithTransaction: Failed to commit transaction", zap.Error(err))
		return fmt.Errorf("commit transaction: %w", xerr.ErrDatabaseError)
	}
	committed = true
	return nil
}
