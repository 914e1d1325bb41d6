package milvus

import (
	"github.com/milvus-io/milvus/client/v2/entity"
)

// CollectionSchema 知识库集合的标准结构：分块文本、向量及归属信息
type CollectionSchema struct {
	// Id is the unique identifier for each chunk (primary key)
	Id string `milvus:"id,varchar,256,primary_key"`

	// Text is the content of the document chunk
	Text string `milvus:"text,varchar,65535"`

	// Vector is the embedding vector of the chunk
	Vector []float32 `milvus:"vector,float_vector"`

	// DocumentId is the ID of the document this chunk belongs to
	DocumentId string `milvus:"document_id,varchar,256"`

	// Metadata stores additional information as JSON
	Metadata string `milvus:"metadata,json"`
}

// GetFields returns the Milvus field definitions for a chunk collection
// dim 为向量维度，随 embedding 模型配置变化
func (CollectionSchema) GetFields(dim string) []*entity.Field {
	return []*entity.Field{
		{
			Name:        "id",
			DataType:    entity.FieldTypeVarChar,
			TypeParams:  map[string]string{"max_length": "256"},
			PrimaryKey:  true,
			AutoID:      false,
			Description: "Chunk unique ID (primary key)",
		},
		{
			Name:        "text",
			DataType:    entity.FieldTypeVarChar,
			TypeParams:  map[string]string{"max_length": "65535"},
			Description: "Document chunk content",
		},
		{
			Name:        "vector",
			DataType:    entity.FieldTypeFloatVector,
			TypeParams:  map[string]string{"dim": dim},
			Description: "Document chunk embedding vector",
		},
		{
			Name:        "document_id",
			DataType:    entity.FieldTypeVarChar,
			TypeParams:  map[string]string{"max_length": "256"},
			Description: "Document ID (foreign key)",
		},
		{
			Name:        "metadata",
			DataType:    entity.FieldTypeJSON,
			Description: "Additional metadata (JSON)",
		},
	}
}

// GetStandardCollectionFields is a helper function to get standard collection fields
func GetStandardCollectionFields(dim string) []*entity.Field {
	return CollectionSchema{}.GetFields(dim)
}
