package vector_store

import (
	"context"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/google/uuid"
	"github.com/milvus-io/milvus/client/v2/milvusclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karan3613/ragscope/core/common"
)

// TestMilvusStoreCreation 测试 Milvus 存储实例创建
func TestMilvusStoreCreation(t *testing.T) {
	t.Run("创建成功", func(t *testing.T) {
		ctx := context.Background()
		client, err := milvusclient.New(ctx, &milvusclient.ClientConfig{
			Address: "localhost:19530",
			DBName:  "test",
		})
		if err != nil {
			t.Skip("Milvus 未运行，跳过测试")
		}

		config := &VectorStoreConfig{
			Type:     VectorStoreTypeMilvus,
			Client:   client,
			Database: "test",
		}

		store, err := NewMilvusStore(config)
		require.NoError(t, err)
		assert.NotNil(t, store)
	})

	t.Run("配置为nil", func(t *testing.T) {
		store, err := NewMilvusStore(nil)
		assert.Error(t, err)
		assert.Nil(t, store)
		assert.Contains(t, err.Error(), "config cannot be nil")
	})

	t.Run("客户端类型错误", func(t *testing.T) {
		config := &VectorStoreConfig{
			Type:     VectorStoreTypeMilvus,
			Client:   "invalid_client",
			Database: "test",
		}

		store, err := NewMilvusStore(config)
		assert.Error(t, err)
		assert.Nil(t, store)
		assert.Contains(t, err.Error(), "client must be *milvusclient.Client")
	})

	t.Run("数据库名为空", func(t *testing.T) {
		ctx := context.Background()
		client, err := milvusclient.New(ctx, &milvusclient.ClientConfig{
			Address: "localhost:19530",
		})
		if err != nil {
			t.Skip("Milvus 未运行，跳过测试")
		}

		config := &VectorStoreConfig{
			Type:   VectorStoreTypeMilvus,
			Client: client,
		}

		store, err := NewMilvusStore(config)
		assert.Error(t, err)
		assert.Nil(t, store)
		assert.Contains(t, err.Error(), "database name cannot be empty")
	})
}

// TestMilvusInsertAndDelete 测试插入与删除（需要本地 Milvus）
func TestMilvusInsertAndDelete(t *testing.T) {
	ctx := context.Background()
	client, err := milvusclient.New(ctx, &milvusclient.ClientConfig{
		Address: "localhost:19530",
		DBName:  "default",
	})
	if err != nil {
		t.Skip("Milvus 未运行，跳过测试")
	}

	store, err := NewMilvusStore(&VectorStoreConfig{
		Type:     VectorStoreTypeMilvus,
		Client:   client,
		Database: "default",
	})
	require.NoError(t, err)

	collectionName := "test_" + uuid.New().String()[:8]
	require.NoError(t, store.CreateCollection(ctx, collectionName))
	defer func() {
		_ = store.DeleteCollection(ctx, collectionName)
	}()

	documentID := uuid.New().String()
	knowledgeID := uuid.New().String()
	ctx = context.WithValue(ctx, common.DocumentId, documentID)
	ctx = context.WithValue(ctx, common.KnowledgeId, knowledgeID)

	dim := 1024
	vec := make([]float32, dim)
	vec[0] = 1.0
	chunks := []*schema.Document{
		{Content: "向量检索测试文本", MetaData: map[string]any{"source": "unit_test"}},
	}

	ids, err := store.InsertVectors(ctx, collectionName, chunks, [][]float32{vec})
	require.NoError(t, err)
	require.Len(t, ids, 1)

	t.Run("插入后chunk带有ID", func(t *testing.T) {
		assert.NotEmpty(t, chunks[0].ID)
		assert.Equal(t, chunks[0].ID, ids[0])
	})

	t.Run("按文档ID删除", func(t *testing.T) {
		err := store.DeleteByDocumentID(ctx, collectionName, documentID)
		assert.NoError(t, err)
	})

	t.Run("非法UUID被拒绝", func(t *testing.T) {
		err := store.DeleteByDocumentID(ctx, collectionName, `x" or 1==1`)
		assert.Error(t, err)
	})
}

// TestInsertVectorsValidation 测试插入参数校验（无需 Milvus 服务）
func TestInsertVectorsValidation(t *testing.T) {
	store := &MilvusStore{database: "test"}

	t.Run("长度不匹配", func(t *testing.T) {
		chunks := []*schema.Document{{Content: "a"}, {Content: "b"}}
		vectors := [][]float32{{0.1}}
		_, err := store.InsertVectors(context.Background(), "c", chunks, vectors)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "length mismatch")
	})
}
