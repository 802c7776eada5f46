package explorer

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/3Eeeecho/go-docmanager/internal/config"
	"github.com/3Eeeecho/go-docmanager/internal/models"
	"github.com/3Eeeecho/go-docmanager/internal/pkg/authz"
	"github.com/3Eeeecho/go-docmanager/internal/pkg/storage"
	"github.com/3Eeeecho/go-docmanager/internal/pkg/xerr"
	"github.com/3Eeeecho/go-docmanager/internal/repositories"
	"github.com/3Eeeecho/go-docmanager/internal/testutils"
	"github.com/klauspost/compress/zip"
	"gorm.io/gorm"
)

type fixture struct {
	db         *gorm.DB
	folders    *folderService
	files      *fileService
	folderRepo repositories.FolderRepository
	fileRepo   repositories.FileRepository
	blobDir    string

	alice authz.Identity
	bob   authz.Identity
	admin authz.Identity
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := testutils.SetupDB(t)
	blobDir := t.TempDir()
	store, err := storage.NewLocalStorageService(blobDir)
	if err != nil {
		t.Fatalf("local storage: %v", err)
	}
	cfg := &config.Config{Storage: config.StorageConfig{Type: "local", LocalBasePath: blobDir, MaxUploadMB: 1}}

	folderRepo := repositories.NewFolderRepository(db)
	fileRepo := repositories.NewFileRepository(db)
	domain := NewDomainService(folderRepo, fileRepo)
	tm := NewTransactionManager(db)

	return &fixture{
		db:         db,
		folders:    NewFolderService(folderRepo, fileRepo, domain, tm, store).(*folderService),
		files:      NewFileService(fileRepo, domain, tm, store, cfg).(*fileService),
		folderRepo: folderRepo,
		fileRepo:   fileRepo,
		blobDir:    blobDir,
		alice:      testutils.Identity(testutils.CreateUser(t, db, "alice", authz.RoleUser)),
		bob:        testutils.Identity(testutils.CreateUser(t, db, "bob", authz.RoleUser)),
		admin:      testutils.Identity(testutils.CreateUser(t, db, "root", authz.RoleAdmin)),
	}
}

func (f *fixture) mkdir(t *testing.T, id authz.Identity, name string, parent *models.Folder) *models.Folder {
	t.Helper()
	var parentID *uint64
	if parent != nil {
		parentID = &parent.ID
	}
	folder, err := f.folders.CreateFolder(context.Background(), id, name, parentID)
	if err != nil {
		t.Fatalf("create folder %s: %v", name, err)
	}
	return folder
}

func (f *fixture) upload(t *testing.T, id authz.Identity, parent *models.Folder, name, body string) *models.File {
	t.Helper()
	var folderID *uint64
	if parent != nil {
		folderID = &parent.ID
	}
	files, err := f.files.Upload(context.Background(), id, folderID, []UploadInput{textUpload(name, body)})
	if err != nil {
		t.Fatalf("upload %s: %v", name, err)
	}
	return &files[0]
}

func textUpload(name, body string) UploadInput {
	return UploadInput{
		FileName:    name,
		ContentType: "text/plain",
		Size:        int64(len(body)),
		Open:        func() (io.ReadCloser, error) { return io.NopCloser(strings.NewReader(body)), nil },
	}
}

func blobCount(t *testing.T, dir string) int {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read blob dir: %v", err)
	}
	return len(entries)
}

func TestOwnershipScoping(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	reports := f.mkdir(t, f.alice, "Reports", nil)
	q1 := f.upload(t, f.alice, reports, "q1.pdf", "numbers")

	bobRoots, err := f.folders.ListFolders(ctx, f.bob, nil)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(bobRoots) != 0 {
		t.Fatalf("bob 不应看到 alice 的目录，实际为 %+v", bobRoots)
	}
	bobFiles, err := f.files.ListFiles(ctx, f.bob, &reports.ID)
	if err != nil {
		t.Fatalf("list files: %v", err)
	}
	if len(bobFiles) != 0 {
		t.Fatalf("bob 不应看到 alice 的文件，实际为 %+v", bobFiles)
	}
	if _, err := f.files.GetFile(ctx, f.bob, q1.ID); !errors.Is(err, xerr.ErrPermissionDenied) {
		t.Fatalf("期望 ErrPermissionDenied，实际为 %v", err)
	}
	if _, err := f.folders.GetFolder(ctx, f.bob, reports.ID); !errors.Is(err, xerr.ErrPermissionDenied) {
		t.Fatalf("期望 ErrPermissionDenied，实际为 %v", err)
	}

	adminRoots, err := f.folders.ListFolders(ctx, f.admin, nil)
	if err != nil {
		t.Fatalf("list admin: %v", err)
	}
	if len(adminRoots) != 1 || adminRoots[0].ID != reports.ID {
		t.Fatalf("管理员应看到 Reports，实际为 %+v", adminRoots)
	}
	adminFiles, err := f.files.ListFiles(ctx, f.admin, &reports.ID)
	if err != nil {
		t.Fatalf("list admin files: %v", err)
	}
	if len(adminFiles) != 1 || adminFiles[0].FileName != "q1.pdf" {
		t.Fatalf("管理员应看到 q1.pdf，实际为 %+v", adminFiles)
	}

	if _, err := f.folders.GetFolder(ctx, f.alice, 9999); !errors.Is(err, xerr.ErrDirectoryNotFound) {
		t.Fatalf("期望 ErrDirectoryNotFound，实际为 %v", err)
	}
}

func TestCreateFolder_InheritsParentOwner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	reports := f.mkdir(t, f.alice, "Reports", nil)
	child := f.mkdir(t, f.admin, "  Q1  ", reports)
	if child.Name != "Q1" {
		t.Fatalf("名称应去除首尾空白，实际为 %q", child.Name)
	}
	if child.UserID == nil || *child.UserID != f.alice.UserID {
		t.Fatalf("子目录应归属父目录所有者 alice，实际为 %v", child.UserID)
	}

	if _, err := f.folders.CreateFolder(ctx, f.alice, "   ", nil); !errors.Is(err, xerr.ErrFolderNameRequired) {
		t.Fatalf("期望 ErrFolderNameRequired，实际为 %v", err)
	}
	if _, err := f.folders.CreateFolder(ctx, f.bob, "x", &reports.ID); !errors.Is(err, xerr.ErrPermissionDenied) {
		t.Fatalf("期望 ErrPermissionDenied，实际为 %v", err)
	}
}

func TestDeleteFolderRecursive_HidesSubtree(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	root := f.mkdir(t, f.alice, "root", nil)
	mid := f.mkdir(t, f.alice, "mid", root)
	leaf := f.mkdir(t, f.alice, "leaf", mid)
	f.upload(t, f.alice, root, "a.txt", "a")
	f.upload(t, f.alice, leaf, "b.txt", "b")
	keep := f.mkdir(t, f.alice, "keep", nil)

	if err := f.folders.DeleteFolderRecursive(ctx, f.bob, root.ID); !errors.Is(err, xerr.ErrPermissionDenied) {
		t.Fatalf("bob 删除应被拒绝，实际为 %v", err)
	}
	if err := f.folders.DeleteFolderRecursive(ctx, f.alice, root.ID); err != nil {
		t.Fatalf("recursive delete: %v", err)
	}

	roots, _ := f.folders.ListFolders(ctx, f.alice, nil)
	if len(roots) != 1 || roots[0].ID != keep.ID {
		t.Fatalf("根目录只应剩 keep，实际为 %+v", roots)
	}
	for _, parent := range []*models.Folder{root, mid, leaf} {
		if children, _ := f.folders.ListFolders(ctx, f.admin, &parent.ID); len(children) != 0 {
			t.Fatalf("目录 %s 下不应再有可见子目录: %+v", parent.Name, children)
		}
		if files, _ := f.files.ListFiles(ctx, f.admin, &parent.ID); len(files) != 0 {
			t.Fatalf("目录 %s 下不应再有可见文件: %+v", parent.Name, files)
		}
		stored, err := f.folderRepo.FindByIDUnscoped(ctx, parent.ID)
		if err != nil {
			t.Fatalf("unscoped find: %v", err)
		}
		if !stored.IsDeleted || !stored.DeletedAt.Valid {
			t.Fatalf("目录 %s 应被标记为删除: %+v", parent.Name, stored)
		}
	}

	var deletedFiles int64
	f.db.Unscoped().Model(&models.File{}).Where("is_deleted = ?", true).Count(&deletedFiles)
	if deletedFiles != 2 {
		t.Fatalf("期望 2 个文件被软删除，实际为 %d", deletedFiles)
	}
	if blobCount(t, f.blobDir) != 2 {
		t.Fatalf("软删除不应移除存储内容")
	}
}

func TestDeleteFolder_NotEmptyLeavesTreeUntouched(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	root := f.mkdir(t, f.alice, "root", nil)
	child := f.mkdir(t, f.alice, "child", root)

	if err := f.folders.DeleteFolder(ctx, f.alice, root.ID); !errors.Is(err, xerr.ErrDirNotEmpty) {
		t.Fatalf("期望 ErrDirNotEmpty，实际为 %v", err)
	}
	if _, err := f.folders.GetFolder(ctx, f.alice, root.ID); err != nil {
		t.Fatalf("root 应保持可见: %v", err)
	}
	if _, err := f.folders.GetFolder(ctx, f.alice, child.ID); err != nil {
		t.Fatalf("child 应保持可见: %v", err)
	}

	if err := f.folders.DeleteFolder(ctx, f.alice, child.ID); err != nil {
		t.Fatalf("空目录应可删除: %v", err)
	}
	if _, err := f.folders.GetFolder(ctx, f.alice, child.ID); !errors.Is(err, xerr.ErrDirectoryNotFound) {
		t.Fatalf("删除后应返回 ErrDirectoryNotFound，实际为 %v", err)
	}
	if err := f.folders.DeleteFolder(ctx, f.alice, root.ID); err != nil {
		t.Fatalf("子目录删除后 root 应可删除: %v", err)
	}
}

func TestForceDeleteFolder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	root := f.mkdir(t, f.bob, "root", nil)
	mid := f.mkdir(t, f.bob, "mid", root)
	f.mkdir(t, f.bob, "leaf", mid)
	f.upload(t, f.bob, mid, "notes.txt", "n")

	if err := f.folders.ForceDeleteFolder(ctx, f.bob, root.ID); !errors.Is(err, xerr.ErrAdminRequired) {
		t.Fatalf("期望 ErrAdminRequired，实际为 %v", err)
	}
	if err := f.folders.ForceDeleteFolder(ctx, f.admin, 9999); !errors.Is(err, xerr.ErrDirectoryNotFound) {
		t.Fatalf("期望 ErrDirectoryNotFound，实际为 %v", err)
	}
	if err := f.folders.ForceDeleteFolder(ctx, f.admin, root.ID); err != nil {
		t.Fatalf("force delete: %v", err)
	}

	var total, deleted int64
	f.db.Unscoped().Model(&models.Folder{}).Count(&total)
	f.db.Unscoped().Model(&models.Folder{}).Where("is_deleted = ?", true).Count(&deleted)
	if total != 3 || deleted != 3 {
		t.Fatalf("三层目录都应保留并标记删除，total=%d deleted=%d", total, deleted)
	}
	if visible, _ := f.folders.ListFolders(ctx, f.bob, nil); len(visible) != 0 {
		t.Fatalf("bob 不应再看到任何目录: %+v", visible)
	}
}

func TestBreadcrumb(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	root := f.mkdir(t, f.alice, "root", nil)
	mid := f.mkdir(t, f.alice, "mid", root)
	leaf := f.mkdir(t, f.alice, "leaf", mid)

	path, err := f.folders.Breadcrumb(ctx, f.alice, leaf.ID)
	if err != nil {
		t.Fatalf("breadcrumb: %v", err)
	}
	var names []string
	for _, p := range path {
		names = append(names, p.Name)
	}
	if strings.Join(names, "/") != "root/mid/leaf" {
		t.Fatalf("面包屑应为 root/mid/leaf，实际为 %v", names)
	}

	if _, err := f.folders.Breadcrumb(ctx, f.bob, leaf.ID); !errors.Is(err, xerr.ErrPermissionDenied) {
		t.Fatalf("期望 ErrPermissionDenied，实际为 %v", err)
	}
	if path, err := f.folders.Breadcrumb(ctx, f.admin, leaf.ID); err != nil || len(path) != 3 {
		t.Fatalf("管理员应得到完整面包屑: %v %v", path, err)
	}
}

func TestFolderCycleIsDetected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	root := f.mkdir(t, f.alice, "root", nil)
	mid := f.mkdir(t, f.alice, "mid", root)
	leaf := f.mkdir(t, f.alice, "leaf", mid)
	// 直接改库制造环 root -> mid -> leaf -> root
	if err := f.db.Model(&models.Folder{}).Where("id = ?", root.ID).Update("parent_id", leaf.ID).Error; err != nil {
		t.Fatalf("corrupt tree: %v", err)
	}

	if _, err := f.folders.Breadcrumb(ctx, f.alice, leaf.ID); !errors.Is(err, xerr.ErrFolderCycle) {
		t.Fatalf("面包屑期望 ErrFolderCycle，实际为 %v", err)
	}
	if err := f.folders.DeleteFolderRecursive(ctx, f.alice, root.ID); !errors.Is(err, xerr.ErrFolderCycle) {
		t.Fatalf("递归删除期望 ErrFolderCycle，实际为 %v", err)
	}
	var deleted int64
	f.db.Unscoped().Model(&models.Folder{}).Where("is_deleted = ?", true).Count(&deleted)
	if deleted != 0 {
		t.Fatalf("失败的删除不应留下部分修改，实际删除 %d 个", deleted)
	}
}

func TestTreeWalker_DepthLimit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	root := f.mkdir(t, f.alice, "root", nil)
	mid := f.mkdir(t, f.alice, "mid", root)
	f.mkdir(t, f.alice, "leaf", mid)

	walker := newTreeWalker(f.folderRepo, f.fileRepo)
	walker.maxDepth = 1
	if _, err := walker.height(ctx, root); !errors.Is(err, xerr.ErrFolderDepthExceeded) {
		t.Fatalf("期望 ErrFolderDepthExceeded，实际为 %v", err)
	}

	walker.maxDepth = MaxFolderDepth
	height, err := walker.height(ctx, root)
	if err != nil || height != 2 {
		t.Fatalf("期望高度 2，实际为 %d %v", height, err)
	}

	var order []string
	err = walker.walk(ctx, root, func(folder *models.Folder, _ int, _ string) error {
		order = append(order, folder.Name)
		return nil
	})
	if err != nil || strings.Join(order, ",") != "leaf,mid,root" {
		t.Fatalf("后序遍历应为 leaf,mid,root，实际为 %v %v", order, err)
	}
}

func TestMoveFolder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	root := f.mkdir(t, f.alice, "root", nil)
	mid := f.mkdir(t, f.alice, "mid", root)
	leaf := f.mkdir(t, f.alice, "leaf", mid)
	other := f.mkdir(t, f.alice, "other", nil)
	bobs := f.mkdir(t, f.bob, "bobs", nil)

	if _, err := f.folders.MoveFolder(ctx, f.alice, root.ID, &leaf.ID); !errors.Is(err, xerr.ErrCannotMoveIntoSubtree) {
		t.Fatalf("移入子孙期望 ErrCannotMoveIntoSubtree，实际为 %v", err)
	}
	if _, err := f.folders.MoveFolder(ctx, f.alice, root.ID, &root.ID); !errors.Is(err, xerr.ErrCannotMoveIntoSubtree) {
		t.Fatalf("移入自身期望 ErrCannotMoveIntoSubtree，实际为 %v", err)
	}
	if _, err := f.folders.MoveFolder(ctx, f.admin, mid.ID, &bobs.ID); !errors.Is(err, xerr.ErrFolderOwnerMismatch) {
		t.Fatalf("跨所有者移动期望 ErrFolderOwnerMismatch，实际为 %v", err)
	}

	moved, err := f.folders.MoveFolder(ctx, f.alice, mid.ID, &other.ID)
	if err != nil {
		t.Fatalf("move: %v", err)
	}
	if moved.ParentID == nil || *moved.ParentID != other.ID {
		t.Fatalf("mid 应挂到 other 下，实际为 %v", moved.ParentID)
	}
	path, err := f.folders.Breadcrumb(ctx, f.alice, leaf.ID)
	if err != nil || len(path) != 3 || path[0].ID != other.ID {
		t.Fatalf("移动后面包屑应以 other 开头: %+v %v", path, err)
	}

	if _, err := f.folders.MoveFolder(ctx, f.alice, mid.ID, nil); err != nil {
		t.Fatalf("move to root: %v", err)
	}
}

func TestUpload_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.files.Upload(ctx, f.alice, nil, nil); !errors.Is(err, xerr.ErrNoFilesProvided) {
		t.Fatalf("期望 ErrNoFilesProvided，实际为 %v", err)
	}

	big := textUpload("big.bin", "")
	big.Size = 2 << 20
	if _, err := f.files.Upload(ctx, f.alice, nil, []UploadInput{textUpload("ok.txt", "ok"), big}); !errors.Is(err, xerr.ErrFileTooLarge) {
		t.Fatalf("期望 ErrFileTooLarge，实际为 %v", err)
	}
	if _, err := f.files.Upload(ctx, f.alice, nil, []UploadInput{textUpload("..", "x")}); !errors.Is(err, xerr.ErrFileNameInvalid) {
		t.Fatalf("期望 ErrFileNameInvalid，实际为 %v", err)
	}

	bobs := f.mkdir(t, f.bob, "bobs", nil)
	if _, err := f.files.Upload(ctx, f.alice, &bobs.ID, []UploadInput{textUpload("x.txt", "x")}); !errors.Is(err, xerr.ErrPermissionDenied) {
		t.Fatalf("期望 ErrPermissionDenied，实际为 %v", err)
	}
	missing := uint64(9999)
	if _, err := f.files.Upload(ctx, f.alice, &missing, []UploadInput{textUpload("x.txt", "x")}); !errors.Is(err, xerr.ErrDirectoryNotFound) {
		t.Fatalf("期望 ErrDirectoryNotFound，实际为 %v", err)
	}
	if blobCount(t, f.blobDir) != 0 {
		t.Fatalf("校验失败时不应写入任何内容")
	}
}

func TestUpload_StoresMetadata(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	bobs := f.mkdir(t, f.bob, "bobs", nil)
	files, err := f.files.Upload(ctx, f.admin, &bobs.ID, []UploadInput{
		textUpload(`C:\Users\bob\report.txt`, "hello"),
		textUpload("second.txt", "world!"),
	})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("期望上传 2 个文件，实际为 %d", len(files))
	}
	first := files[0]
	if first.FileName != "report.txt" || first.Size != 5 || first.ContentType != "text/plain" {
		t.Fatalf("元数据不正确: %+v", first)
	}
	if first.UserID == nil || *first.UserID != f.bob.UserID {
		t.Fatalf("文件应归属目录所有者 bob，实际为 %v", first.UserID)
	}
	if first.StoredName == "" || first.StoredName == first.FileName {
		t.Fatalf("存储名应由存储层生成: %q", first.StoredName)
	}
	if blobCount(t, f.blobDir) != 2 {
		t.Fatalf("应写入 2 个存储对象")
	}

	file, rc, err := f.files.Download(ctx, f.bob, first.ID)
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	data, _ := io.ReadAll(rc)
	_ = rc.Close()
	if file.ID != first.ID || string(data) != "hello" {
		t.Fatalf("下载内容不一致: %q", data)
	}
}

func TestRecentFilesAndMarkOpened(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := f.upload(t, f.alice, nil, "a.txt", "a")
	b := f.upload(t, f.alice, nil, "b.txt", "b")
	f.upload(t, f.alice, nil, "never.txt", "c")
	bobs := f.upload(t, f.bob, nil, "bob.txt", "d")

	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	for i, file := range []*models.File{a, b, bobs} {
		at := base.Add(time.Duration(i) * time.Minute)
		f.files.now = func() time.Time { return at }
		opened, err := f.files.MarkOpened(ctx, f.admin, file.ID)
		if err != nil {
			t.Fatalf("mark opened: %v", err)
		}
		if opened.LastOpenedAt == nil || !opened.LastOpenedAt.Equal(at) {
			t.Fatalf("LastOpenedAt 应为 %v，实际为 %v", at, opened.LastOpenedAt)
		}
	}

	recent, err := f.files.RecentFiles(ctx, f.alice, 0)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(recent) != 2 || recent[0].ID != b.ID || recent[1].ID != a.ID {
		t.Fatalf("alice 最近文件应为 b, a，实际为 %+v", recent)
	}

	all, err := f.files.RecentFiles(ctx, f.admin, 1)
	if err != nil {
		t.Fatalf("recent admin: %v", err)
	}
	if len(all) != 1 || all[0].ID != bobs.ID {
		t.Fatalf("管理员 limit=1 应只返回最近打开的 bob.txt，实际为 %+v", all)
	}

	if _, err := f.files.MarkOpened(ctx, f.bob, a.ID); !errors.Is(err, xerr.ErrPermissionDenied) {
		t.Fatalf("期望 ErrPermissionDenied，实际为 %v", err)
	}
}

func TestDeleteFile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	file := f.upload(t, f.alice, nil, "a.txt", "a")
	if err := f.files.DeleteFile(ctx, f.bob, file.ID); !errors.Is(err, xerr.ErrPermissionDenied) {
		t.Fatalf("期望 ErrPermissionDenied，实际为 %v", err)
	}
	if err := f.files.DeleteFile(ctx, f.alice, file.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := f.files.GetFile(ctx, f.alice, file.ID); !errors.Is(err, xerr.ErrFileNotFound) {
		t.Fatalf("期望 ErrFileNotFound，实际为 %v", err)
	}
	if files, _ := f.files.ListFiles(ctx, f.alice, nil); len(files) != 0 {
		t.Fatalf("删除后不应再列出: %+v", files)
	}
}

func TestArchiveFolder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	root := f.mkdir(t, f.alice, "root", nil)
	sub := f.mkdir(t, f.alice, "sub", root)
	f.upload(t, f.alice, root, "a.txt", "alpha")
	f.upload(t, f.alice, root, "a.txt", "again")
	f.upload(t, f.alice, sub, "b.txt", "beta")

	if _, _, err := f.folders.ArchiveFolder(ctx, f.bob, root.ID); !errors.Is(err, xerr.ErrPermissionDenied) {
		t.Fatalf("期望 ErrPermissionDenied，实际为 %v", err)
	}

	_, rc, err := f.folders.ArchiveFolder(ctx, f.alice, root.ID)
	if err != nil {
		t.Fatalf("archive: %v", err)
	}
	data, err := io.ReadAll(rc)
	_ = rc.Close()
	if err != nil {
		t.Fatalf("read archive: %v", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("open zip: %v", err)
	}
	contents := make(map[string]string)
	for _, entry := range zr.File {
		if strings.HasSuffix(entry.Name, "/") {
			contents[entry.Name] = ""
			continue
		}
		r, err := entry.Open()
		if err != nil {
			t.Fatalf("open entry %s: %v", entry.Name, err)
		}
		body, _ := io.ReadAll(r)
		_ = r.Close()
		contents[entry.Name] = string(body)
	}

	if contents["sub/b.txt"] != "beta" {
		t.Fatalf("缺少 sub/b.txt: %v", contents)
	}
	if _, ok := contents["sub/"]; !ok {
		t.Fatalf("缺少目录项 sub/: %v", contents)
	}
	if contents["a.txt"] == "" || contents["a (1).txt"] == "" || contents["a.txt"] == contents["a (1).txt"] {
		t.Fatalf("同名文件应分别保存为 a.txt 与 a (1).txt: %v", contents)
	}
}

func TestWithTransaction_RollsBack(t *testing.T) {
	f := newFixture(t)
	tm := NewTransactionManager(f.db)
	ctx := context.Background()

	errBoom := errors.New("boom")
	err := tm.WithTransaction(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(&models.Folder{Name: "rolled-back", UserID: &f.alice.UserID}).Error; err != nil {
			t.Fatalf("create: %v", err)
		}
		return errBoom
	})
	if !errors.Is(err, errBoom) {
		t.Fatalf("fn 的错误应原样返回，实际为 %v", err)
	}

	func() {
		defer func() {
			if recover() == nil {
				t.Fatalf("panic 应继续向上抛出")
			}
		}()
		_ = tm.WithTransaction(ctx, func(tx *gorm.DB) error {
			tx.Create(&models.Folder{Name: "panicked", UserID: &f.alice.UserID})
			panic("boom")
		})
	}()

	var count int64
	if err := f.db.Model(&models.Folder{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("回滚后不应留下目录，实际 %d 个", count)
	}

	if err := tm.WithTransaction(ctx, func(tx *gorm.DB) error {
		return tx.Create(&models.Folder{Name: "kept", UserID: &f.alice.UserID}).Error
	}); err != nil {
		t.Fatalf("提交失败: %v", err)
	}
	if err := f.db.Model(&models.Folder{}).Count(&count).Error; err != nil || count != 1 {
		t.Fatalf("提交后应有 1 个目录，实际 %d (%v)", count, err)
	}
}
