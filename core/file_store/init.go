package file_store

import (
	"github.com/gogf/gf/v2/frame/g"
	"github.com/gogf/gf/v2/os/gctx"
)

// InitStorage 初始化存储系统
// 配置为 rustfs 但缺少 endpoint 时自动回退到本地存储
func InitStorage() {
	ctx := gctx.New()

	storageTypeStr := g.Cfg().MustGet(ctx, "storage.type", "local").String()

	if storageTypeStr == "rustfs" {
		rustfsEndpoint := g.Cfg().MustGet(ctx, "rustfs.endpoint", "").String()
		if rustfsEndpoint == "" {
			SetStorageType(StorageTypeLocal)
			g.Log().Infof(ctx, "RustFS not configured, using local storage")
			InitUploadDirectories()
			return
		}

		rustfsAccessKey := g.Cfg().MustGet(ctx, "rustfs.accessKey").String()
		rustfsSecretKey := g.Cfg().MustGet(ctx, "rustfs.secretKey").String()
		rustfsBucketName := g.Cfg().MustGet(ctx, "rustfs.bucketName").String()
		rustfsSsl := g.Cfg().MustGet(ctx, "rustfs.ssl", false).Bool()

		if err := InitRustFS(ctx, rustfsEndpoint, rustfsAccessKey, rustfsSecretKey, rustfsBucketName, rustfsSsl); err != nil {
			g.Log().Fatalf(ctx, "failed to initialize RustFS: %v", err)
			return
		}

		SetStorageType(StorageTypeRustFS)
		g.Log().Infof(ctx, "Using RustFS storage as configured")
		InitUploadDirectories()
		return
	}

	SetStorageType(StorageTypeLocal)
	g.Log().Infof(ctx, "Using local storage")
	InitUploadDirectories()
}
