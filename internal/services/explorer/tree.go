package explorer

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/3Eeeecho/go-docmanager/internal/models"
	"github.com/3Eeeecho/go-docmanager/internal/pkg/authz"
	"github.com/3Eeeecho/go-docmanager/internal/pkg/logger"
	"github.com/3Eeeecho/go-docmanager/internal/pkg/xerr"
	"github.com/3Eeeecho/go-docmanager/internal/repositories"
	"go.uber.org/zap"
)

// MaxFolderDepth 目录树允许的最大层数，遍历与建目录都以此为上限
const MaxFolderDepth = 64

// treeWalker 在可见目录上做遍历，子树删除、打包下载与面包屑共用
type treeWalker struct {
	folderRepo repositories.FolderRepository
	fileRepo   repositories.FileRepository
	maxDepth   int
}

func newTreeWalker(folderRepo repositories.FolderRepository, fileRepo repositories.FileRepository) *treeWalker {
	return &treeWalker{folderRepo: folderRepo, fileRepo: fileRepo, maxDepth: MaxFolderDepth}
}

type walkFrame struct {
	folder   models.Folder
	depth    int
	path     string // 相对子树根的路径，根为空串，其余以 "/" 结尾
	expanded bool
}

// walk 使用显式栈后序遍历 root 的子树：每个目录在其全部子目录之后交给 visit。
// 出现重复访问返回 ErrFolderCycle，深度超过上限返回 ErrFolderDepthExceeded。
func (w *treeWalker) walk(ctx context.Context, root *models.Folder, visit func(folder *models.Folder, depth int, path string) error) error {
	stack := []walkFrame{{folder: *root}}
	visited := map[uint64]bool{root.ID: true}

	for len(stack) > 0 {
		top := len(stack) - 1
		if !stack[top].expanded {
			stack[top].expanded = true
			current := stack[top]

			children, err := w.folderRepo.FindChildren(ctx, current.folder.ID)
			if err != nil {
				logger.Error("walk: Failed to load child folders", zap.Uint64("folderID", current.folder.ID), zap.Error(err))
				return fmt.Errorf("folder tree: %w", xerr.ErrDatabaseError)
			}
			if len(children) > 0 && current.depth+1 > w.maxDepth {
				logger.Warn("walk: Folder tree too deep", zap.Uint64("rootID", root.ID), zap.Int("maxDepth", w.maxDepth))
				return fmt.Errorf("folder tree: %w", xerr.ErrFolderDepthExceeded)
			}

			// 逆序入栈，使同级目录按名称顺序出栈
			for i := len(children) - 1; i >= 0; i-- {
				child := children[i]
				if visited[child.ID] {
					logger.Error("walk: Cycle detected in folder tree", zap.Uint64("rootID", root.ID), zap.Uint64("folderID", child.ID))
					return fmt.Errorf("folder tree: %w", xerr.ErrFolderCycle)
				}
				visited[child.ID] = true
				stack = append(stack, walkFrame{
					folder: child,
					depth:  current.depth + 1,
					path:   current.path + archiveSegment(child.Name) + "/",
				})
			}
			continue
		}

		done := stack[top]
		stack = stack[:top]
		if err := visit(&done.folder, done.depth, done.path); err != nil {
			return err
		}
	}
	return nil
}

// softDeleteSubtree 自底向上软删除 root 及其下全部目录和文件，调用方负责事务
func (w *treeWalker) softDeleteSubtree(ctx context.Context, root *models.Folder, at time.Time) (folders int, files int, err error) {
	err = w.walk(ctx, root, func(folder *models.Folder, _ int, _ string) error {
		contained, err := w.fileRepo.FindByFolder(ctx, folder.ID)
		if err != nil {
			logger.Error("softDeleteSubtree: Failed to load folder files", zap.Uint64("folderID", folder.ID), zap.Error(err))
			return fmt.Errorf("folder tree: %w", xerr.ErrDatabaseError)
		}
		if len(contained) > 0 {
			ids := make([]uint64, 0, len(contained))
			for _, f := range contained {
				ids = append(ids, f.ID)
			}
			if err := w.fileRepo.SoftDelete(ctx, ids, at); err != nil {
				logger.Error("softDeleteSubtree: Failed to delete files", zap.Uint64("folderID", folder.ID), zap.Error(err))
				return fmt.Errorf("folder tree: %w", xerr.ErrDatabaseError)
			}
			files += len(ids)
		}

		if err := w.folderRepo.SoftDelete(ctx, []uint64{folder.ID}, at); err != nil {
			logger.Error("softDeleteSubtree: Failed to delete folder", zap.Uint64("folderID", folder.ID), zap.Error(err))
			return fmt.Errorf("folder tree: %w", xerr.ErrDatabaseError)
		}
		folders++
		return nil
	})
	return folders, files, err
}

// height 返回子树相对 root 的最大深度，单个目录为 0
func (w *treeWalker) height(ctx context.Context, root *models.Folder) (int, error) {
	maxDepth := 0
	err := w.walk(ctx, root, func(_ *models.Folder, depth int, _ string) error {
		maxDepth = max(maxDepth, depth)
		return nil
	})
	return maxDepth, err
}

// ancestors 从 folderID 向上走到根，结果以根在前。
// check 非空时对每一层调用，返回错误即中止。
func (w *treeWalker) ancestors(ctx context.Context, folderID uint64, check func(folder *models.Folder) error) ([]models.Folder, error) {
	var chain []models.Folder
	visited := make(map[uint64]bool)

	for current := &folderID; current != nil; {
		id := *current
		if visited[id] {
			logger.Error("ancestors: Cycle detected in parent chain", zap.Uint64("folderID", folderID), zap.Uint64("repeatedID", id))
			return nil, fmt.Errorf("folder tree: %w", xerr.ErrFolderCycle)
		}
		if len(chain) >= w.maxDepth {
			return nil, fmt.Errorf("folder tree: %w", xerr.ErrFolderDepthExceeded)
		}
		visited[id] = true

		folder, err := w.folderRepo.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, xerr.ErrDirectoryNotFound) {
				return nil, fmt.Errorf("folder %d: %w", id, xerr.ErrDirectoryNotFound)
			}
			logger.Error("ancestors: Failed to load folder", zap.Uint64("folderID", id), zap.Error(err))
			return nil, fmt.Errorf("folder tree: %w", xerr.ErrDatabaseError)
		}
		if check != nil {
			if err := check(folder); err != nil {
				return nil, err
			}
		}
		chain = append(chain, *folder)
		current = folder.ParentID
	}

	slices.Reverse(chain)
	return chain, nil
}

// breadcrumb 返回从根到 folderID 的路径，途经的每一层都必须对调用者可见
func (w *treeWalker) breadcrumb(ctx context.Context, id authz.Identity, folderID uint64) ([]models.Folder, error) {
	return w.ancestors(ctx, folderID, func(folder *models.Folder) error {
		if !authz.CanAccess(id, folder.UserID) {
			logger.Warn("breadcrumb: Ancestor access denied",
				zap.Uint64("folderID", folder.ID),
				zap.Uint64("userID", id.UserID))
			return fmt.Errorf("folder %d: %w", folder.ID, xerr.ErrPermissionDenied)
		}
		return nil
	})
}
