package file_store

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gogf/gf/v2/frame/g"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/karan3613/ragscope/core/errors"
)

type RustfsConfig struct {
	Client     *minio.Client
	BucketName string
}

var rustfsConfig RustfsConfig

// InitRustFS 初始化对象存储客户端并确保 bucket 存在
func InitRustFS(ctx context.Context, endpoint, accessKey, secretKey, bucketName string, ssl bool) error {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: ssl,
	})
	if err != nil {
		return errors.Newf(errors.ErrInternalError, "failed to create MinIO client: %v", err)
	}

	rustfsConfig = RustfsConfig{Client: client, BucketName: bucketName}

	exists, err := client.BucketExists(ctx, bucketName)
	if err != nil {
		return errors.Newf(errors.ErrInternalError, "failed to check if bucket exists: %v", err)
	}
	if !exists {
		if err = client.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{}); err != nil {
			return errors.Newf(errors.ErrInternalError, "failed to create bucket: %v", err)
		}
		g.Log().Infof(ctx, "Created bucket '%s'", bucketName)
	}
	return nil
}

// GetRustfsConfig 获取 RustFS 全局配置
func GetRustfsConfig() *RustfsConfig {
	return &rustfsConfig
}

// SaveFileToRustFS 先落一份本地副本再上传对象存储
// 返回本地路径和对象 key（knowledge_file/知识库id/文件名）
func SaveFileToRustFS(ctx context.Context, client *minio.Client, bucketName string, knowledgeId string, fileName string, file io.Reader) (localPath string, rustfsKey string, err error) {
	localPath, err = SaveFileToLocal(ctx, knowledgeId, fileName, file)
	if err != nil {
		return "", "", err
	}

	rustfsKey = filepath.Join("knowledge_file", knowledgeId, fileName)
	if err = putLocalFile(ctx, client, bucketName, rustfsKey, localPath); err != nil {
		return localPath, "", err
	}

	g.Log().Infof(ctx, "File uploaded to RustFS: bucket=%s, key=%s", bucketName, rustfsKey)
	return localPath, rustfsKey, nil
}

// putLocalFile 把本地文件上传为对象，内容类型按文件头嗅探
func putLocalFile(ctx context.Context, client *minio.Client, bucketName, key, localPath string) error {
	f, err := os.Open(localPath)
	if err != nil {
		return errors.Newf(errors.ErrFileReadFailed, "failed to open local file for upload: %v", err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return errors.Newf(errors.ErrFileReadFailed, "failed to stat local file: %v", err)
	}

	header := make([]byte, 512)
	n, err := f.Read(header)
	if err != nil && err != io.EOF {
		return errors.Newf(errors.ErrFileReadFailed, "failed to read file header: %v", err)
	}
	if _, err = f.Seek(0, io.SeekStart); err != nil {
		return errors.Newf(errors.ErrFileReadFailed, "failed to rewind file: %v", err)
	}

	_, err = client.PutObject(ctx, bucketName, key, f, stat.Size(),
		minio.PutObjectOptions{ContentType: http.DetectContentType(header[:n])})
	if err != nil {
		return errors.Newf(errors.ErrFileUploadFailed, "failed to upload to RustFS: %v", err)
	}
	return nil
}

// DeleteObject 删除对象存储中的文件
func DeleteObject(ctx context.Context, client *minio.Client, bucketName, objectName string) error {
	if err := client.RemoveObject(ctx, bucketName, objectName, minio.RemoveObjectOptions{}); err != nil {
		return errors.Newf(errors.ErrFileDeleteFailed, "failed to delete object %s: %v", objectName, err)
	}
	g.Log().Infof(ctx, "Deleted object '%s' from bucket '%s'", objectName, bucketName)
	return nil
}
