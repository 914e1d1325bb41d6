package v1

import (
	"github.com/gogf/gf/v2/frame/g"
	"github.com/gogf/gf/v2/net/ghttp"
)

// IndexerReq 单文档入库请求：上传本地文件或给出 URL，切分向量化后写入知识库
type IndexerReq struct {
	g.Meta      `path:"/v1/indexer" method:"post" mime:"multipart/form-data" tags:"indexer"`
	File        *ghttp.UploadFile `p:"file" type:"file" dc:"If it's a local file, upload the file directly"`
	URL         string            `p:"url" dc:"If it's a web file, just enter the URL" d:""`
	KnowledgeId string            `p:"knowledge_id" dc:"Knowledge base ID" v:"required"`
	ChunkSize   int               `p:"chunk_size" dc:"Document chunk size" d:"1000"`
	OverlapSize int               `p:"overlap_size" dc:"Chunk overlap size" d:"100"`
	Separator   string            `p:"separator" dc:"Custom separator for document splitting"`
}

type IndexerRes struct {
	g.Meta     `mime:"application/json"`
	DocumentId string `json:"document_id" dc:"Document ID"`
	ChunkCount int    `json:"chunk_count" dc:"Number of indexed chunks"`
	Status     string `json:"status" dc:"Indexing status"`
}

// BatchIndexerReq 批量入库请求（异步执行）
type BatchIndexerReq struct {
	g.Meta      `path:"/v1/indexer/batch" method:"post" tags:"indexer"`
	KnowledgeId string   `p:"knowledge_id" dc:"Knowledge base ID" v:"required"`
	Sources     []string `p:"sources" dc:"Local paths or URLs to index" v:"required"`
	ChunkSize   int      `p:"chunk_size" dc:"Document chunk size" d:"1000"`
	OverlapSize int      `p:"overlap_size" dc:"Chunk overlap size" d:"100"`
	Separator   string   `p:"separator" dc:"Custom separator for document splitting"`
}

type BatchIndexerRes struct {
	g.Meta  `mime:"application/json"`
	Message string `json:"message" dc:"Indexing task started"`
}

// DocumentDeleteReq 删除文档（知识库中该文档的全部分块）
type DocumentDeleteReq struct {
	g.Meta      `path:"/v1/indexer/document" method:"delete" tags:"indexer"`
	KnowledgeId string `p:"knowledge_id" v:"required"`
	DocumentId  string `p:"document_id" v:"required"`
}

type DocumentDeleteRes struct {
	g.Meta  `mime:"application/json"`
	Message string `json:"message"`
}
