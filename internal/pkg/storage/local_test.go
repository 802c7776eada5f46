package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLocalStorageService_SaveOpenDelete(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStorageService(t.TempDir())
	if err != nil {
		t.Fatalf("new local storage: %v", err)
	}

	obj, err := s.Save(ctx, "../../etc/Q1 Report.PDF", strings.NewReader("hello"), 5, "application/pdf")
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if !strings.HasSuffix(obj.StoredName, ".pdf") || strings.Contains(obj.StoredName, "Report") {
		t.Fatalf("对象名应为 uuid+扩展名，实际为 %q", obj.StoredName)
	}
	if obj.Size != 5 {
		t.Fatalf("期望写入 5 字节，实际为 %d", obj.Size)
	}
	if _, err := os.Stat(filepath.Join(s.basePath, obj.StoredName)); err != nil {
		t.Fatalf("对象应写入基础目录: %v", err)
	}

	rc, err := s.Open(ctx, obj.StoredName)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	data, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(data) != "hello" {
		t.Fatalf("读取内容不一致: %q", data)
	}

	if !s.Delete(ctx, obj.StoredName) {
		t.Fatalf("删除应成功")
	}
	if s.Delete(ctx, obj.StoredName) {
		t.Fatalf("重复删除应返回 false")
	}
	if _, err := s.Open(ctx, obj.StoredName); !errors.Is(err, ErrObjectNotFound) {
		t.Fatalf("删除后打开应返回 ErrObjectNotFound，实际为 %v", err)
	}
}

func TestLocalStorageService_RejectsTraversal(t *testing.T) {
	s, err := NewLocalStorageService(t.TempDir())
	if err != nil {
		t.Fatalf("new local storage: %v", err)
	}
	if _, err := s.Open(context.Background(), "../secret"); err == nil {
		t.Fatalf("包含路径分隔符的对象名应被拒绝")
	}
	if s.Delete(context.Background(), "..") {
		t.Fatalf("非法对象名删除应返回 false")
	}
}

func TestNewStoredName_Unique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		name := NewStoredName("a.txt")
		if seen[name] {
			t.Fatalf("对象名重复: %s", name)
		}
		seen[name] = true
	}
	if ext := filepath.Ext(NewStoredName("noext")); ext != "" {
		t.Fatalf("无扩展名时不应附加扩展名，实际为 %q", ext)
	}
}
