package file_store

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/gogf/gf/v2/frame/g"

	"github.com/karan3613/ragscope/core/errors"
)

// SaveFileToLocal 把上传内容写到 upload/knowledge_file/知识库id/文件名
func SaveFileToLocal(ctx context.Context, knowledgeId string, fileName string, file io.Reader) (finalPath string, err error) {
	targetDir := filepath.Join("upload", "knowledge_file", knowledgeId)
	if err := os.MkdirAll(targetDir, 0755); err != nil {
		g.Log().Errorf(ctx, "Failed to create directory %s: %v", targetDir, err)
		return "", errors.Newf(errors.ErrFileUploadFailed, "failed to create directory %s: %v", targetDir, err)
	}

	finalPath = filepath.Join(targetDir, fileName)
	destFile, err := os.Create(finalPath)
	if err != nil {
		g.Log().Errorf(ctx, "Failed to create file %s: %v", finalPath, err)
		return "", errors.Newf(errors.ErrFileUploadFailed, "failed to create file %s: %v", finalPath, err)
	}
	defer destFile.Close()

	if _, err = io.Copy(destFile, file); err != nil {
		g.Log().Errorf(ctx, "Failed to write file %s: %v", finalPath, err)
		// 写入失败的半截文件不保留
		_ = os.Remove(finalPath)
		return "", errors.Newf(errors.ErrFileUploadFailed, "failed to write file %s: %v", finalPath, err)
	}

	g.Log().Infof(ctx, "File saved to local storage: %s", finalPath)
	return finalPath, nil
}
