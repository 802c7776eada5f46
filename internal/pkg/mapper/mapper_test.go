package mapper

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/3Eeeecho/go-docmanager/internal/models"
)

func TestToFileResponse_HidesStorageDetails(t *testing.T) {
	file := &models.File{ID: 42, FileName: "q1.pdf", StoredName: "0f1e.pdf", RelativePath: "uploads/0f1e.pdf", Size: 10}

	resp := ToFileResponse(file)
	if resp.URL != "/api/v1/files/download/42" {
		t.Fatalf("下载地址不正确: %s", resp.URL)
	}
	data, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(data), "0f1e") {
		t.Fatalf("响应不应包含存储对象名: %s", data)
	}
}

func TestToUserResponse_RolesNeverNull(t *testing.T) {
	data, _ := json.Marshal(ToUserResponse(&models.User{ID: 1, Username: "alice"}))
	if !strings.Contains(string(data), `"roles":[]`) {
		t.Fatalf("roles 应为空数组: %s", data)
	}
	if strings.Contains(string(data), "password") {
		t.Fatalf("响应不应包含密码: %s", data)
	}
}
