package explorer

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/3Eeeecho/go-docmanager/internal/models"
	"github.com/3Eeeecho/go-docmanager/internal/pkg/logger"
	"github.com/3Eeeecho/go-docmanager/internal/pkg/xerr"
	"github.com/klauspost/compress/zip"
	"go.uber.org/zap"
)

type archiveEntry struct {
	name   string // ZIP 内路径，目录以 "/" 结尾
	folder bool
	file   models.File
}

// archiveSegment 把展示名转成单个合法的 ZIP 路径段
func archiveSegment(name string) string {
	name = strings.NewReplacer("/", "_", `\`, "_").Replace(name)
	if name == "" || name == "." || name == ".." {
		return "_"
	}
	return name
}

// uniqueEntryName 同一目录下重名时追加 (1)、(2) 等后缀
func uniqueEntryName(seen map[string]int, dir, name string) string {
	candidate := dir + name
	n, exists := seen[candidate]
	if !exists {
		seen[candidate] = 0
		return candidate
	}
	ext := path.Ext(name)
	base := strings.TrimSuffix(name, ext)
	for {
		n++
		next := fmt.Sprintf("%s%s (%d)%s", dir, base, n, ext)
		if _, taken := seen[next]; !taken {
			seen[candidate] = n
			seen[next] = 0
			return next
		}
	}
}

// collectArchive 在请求上下文里读完目录结构，流式压缩阶段只访问存储
func (s *folderService) collectArchive(ctx context.Context, root *models.Folder) ([]archiveEntry, error) {
	walker := newTreeWalker(s.folderRepo, s.fileRepo)
	var entries []archiveEntry
	seen := make(map[string]int)

	err := walker.walk(ctx, root, func(folder *models.Folder, _ int, dir string) error {
		if _, dup := seen[dir]; dir != "" && !dup {
			entries = append(entries, archiveEntry{name: dir, folder: true})
			seen[dir] = 0
		}
		files, err := s.fileRepo.FindByFolder(ctx, folder.ID)
		if err != nil {
			return fmt.Errorf("folder service: %w", xerr.ErrDatabaseError)
		}
		for _, f := range files {
			entries = append(entries, archiveEntry{
				name: uniqueEntryName(seen, dir, archiveSegment(f.FileName)),
				file: f,
			})
		}
		return nil
	})
	return entries, err
}

// streamArchive 通过 pipe 边压缩边输出，读取失败的文件跳过
func (s *folderService) streamArchive(ctx context.Context, root *models.Folder, entries []archiveEntry) io.ReadCloser {
	pr, pw := io.Pipe()
	go func() {
		zipWriter := zip.NewWriter(pw)

		for _, entry := range entries {
			if ctx.Err() != nil {
				pw.CloseWithError(ctx.Err())
				return
			}
			if entry.folder {
				if _, err := zipWriter.Create(entry.name); err != nil {
					pw.CloseWithError(fmt.Errorf("create folder entry %s: %w", entry.name, err))
					return
				}
				continue
			}

			if err := s.writeArchiveFile(ctx, zipWriter, entry); err != nil {
				pw.CloseWithError(err)
				return
			}
		}

		if err := zipWriter.Close(); err != nil {
			pw.CloseWithError(fmt.Errorf("close zip writer: %w", err))
			return
		}
		logger.Info("ArchiveFolder: ZIP creation finished", zap.Uint64("folderID", root.ID), zap.Int("entries", len(entries)))
		pw.Close()
	}()
	return pr
}

func (s *folderService) writeArchiveFile(ctx context.Context, zipWriter *zip.Writer, entry archiveEntry) error {
	content, err := s.storage.Open(ctx, entry.file.StoredName)
	if err != nil {
		logger.Warn("ArchiveFolder: 读取文件内容失败，在 ZIP 中跳过",
			zap.Uint64("fileID", entry.file.ID),
			zap.String("fileName", entry.file.FileName),
			zap.Error(err))
		return nil
	}
	defer content.Close()

	header := &zip.FileHeader{
		Name:     entry.name,
		Method:   zip.Deflate,
		Modified: entry.file.UploadedAt,
	}
	writer, err := zipWriter.CreateHeader(header)
	if err != nil {
		return fmt.Errorf("create zip header %s: %w", entry.name, err)
	}
	if _, err := io.Copy(writer, content); err != nil {
		return fmt.Errorf("copy %s into zip: %w", entry.name, err)
	}
	return nil
}
