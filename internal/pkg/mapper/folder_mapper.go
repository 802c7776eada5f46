package mapper

import (
	"time"

	"github.com/3Eeeecho/go-docmanager/internal/models"
)

type FolderResponse struct {
	ID        uint64    `json:"id"`
	Name      string    `json:"name"`
	ParentID  *uint64   `json:"parentId"`
	UserID    *uint64   `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BreadcrumbItem 面包屑中的一层
type BreadcrumbItem struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}

func ToFolderResponse(folder *models.Folder) FolderResponse {
	return FolderResponse{
		ID:        folder.ID,
		Name:      folder.Name,
		ParentID:  folder.ParentID,
		UserID:    folder.UserID,
		CreatedAt: folder.CreatedAt,
		UpdatedAt: folder.UpdatedAt,
	}
}

func ToFolderResponses(folders []models.Folder) []FolderResponse {
	out := make([]FolderResponse, 0, len(folders))
	for i := range folders {
		out = append(out, ToFolderResponse(&folders[i]))
	}
	return out
}

func ToBreadcrumb(path []models.Folder) []BreadcrumbItem {
	out := make([]BreadcrumbItem, 0, len(path))
	for _, f := range path {
		out = append(out, BreadcrumbItem{ID: f.ID, Name: f.Name})
	}
	return out
}
