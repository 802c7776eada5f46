package mapper

import (
	"fmt"
	"time"

	"github.com/3Eeeecho/go-docmanager/internal/models"
)

// FileResponse 对外展示的文件信息，不暴露存储层对象名与路径
type FileResponse struct {
	ID           uint64     `json:"id"`
	FileName     string     `json:"fileName"`
	ContentType  string     `json:"contentType"`
	Size         int64      `json:"size"`
	FolderID     *uint64    `json:"folderId"`
	UserID       *uint64    `json:"userId"`
	UploadedAt   time.Time  `json:"uploadedAt"`
	LastOpenedAt *time.Time `json:"lastOpenedAt"`
	URL          string     `json:"url"`
}

// DownloadURL 返回文件的下载地址
func DownloadURL(fileID uint64) string {
	return fmt.Sprintf("/api/v1/files/download/%d", fileID)
}

func ToFileResponse(file *models.File) FileResponse {
	return FileResponse{
		ID:           file.ID,
		FileName:     file.FileName,
		ContentType:  file.ContentType,
		Size:         file.Size,
		FolderID:     file.FolderID,
		UserID:       file.UserID,
		UploadedAt:   file.UploadedAt,
		LastOpenedAt: file.LastOpenedAt,
		URL:          DownloadURL(file.ID),
	}
}

func ToFileResponses(files []models.File) []FileResponse {
	out := make([]FileResponse, 0, len(files))
	for i := range files {
		out = append(out, ToFileResponse(&files[i]))
	}
	return out
}
