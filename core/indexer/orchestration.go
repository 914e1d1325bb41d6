package indexer

import (
	"context"
	"strings"

	"github.com/cloudwego/eino/components/document"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"

	"github.com/karan3613/ragscope/core/config"
	"github.com/karan3613/ragscope/core/vector_store"
)

// BuildIndexer 编排完整的索引图：加载 -> 切分 -> 补ID去空块 -> 向量化落库
// separator 非空时按自定义分隔符切分，否则按递归/markdown 规则切分
func BuildIndexer(ctx context.Context, conf *config.Config, store vector_store.VectorStore,
	rustfsClient *minio.Client, rustfsBucket string,
	collectionName string, chunkSize, overlapSize int, separator string) (r compose.Runnable[document.Source, []string], err error) {
	const (
		NodeLoader           = "Loader"
		NodeTransformer      = "DocumentTransformer"
		NodeDocAddIDAndMerge = "DocAddIDAndMerge"
		NodeIndexer          = "Indexer"
	)

	gr := compose.NewGraph[document.Source, []string]()

	ldr, err := Loader(ctx, rustfsClient, rustfsBucket)
	if err != nil {
		return nil, err
	}
	_ = gr.AddLoaderNode(NodeLoader, ldr)

	var tfr document.Transformer
	if separator != "" {
		tfr, err = NewTransformerWithSeparator(ctx, chunkSize, overlapSize, separator)
	} else {
		tfr, err = NewTransformer(ctx, chunkSize, overlapSize)
	}
	if err != nil {
		return nil, err
	}
	_ = gr.AddDocumentTransformerNode(NodeTransformer, tfr)

	_ = gr.AddLambdaNode(NodeDocAddIDAndMerge, compose.InvokableLambda(docAddIDAndMerge))

	idr, err := newIndexer(ctx, conf, store, collectionName)
	if err != nil {
		return nil, err
	}
	_ = gr.AddIndexerNode(NodeIndexer, idr)

	_ = gr.AddEdge(compose.START, NodeLoader)
	_ = gr.AddEdge(NodeLoader, NodeTransformer)
	_ = gr.AddEdge(NodeTransformer, NodeDocAddIDAndMerge)
	_ = gr.AddEdge(NodeDocAddIDAndMerge, NodeIndexer)
	_ = gr.AddEdge(NodeIndexer, compose.END)

	r, err = gr.Compile(ctx, compose.WithGraphName("indexer"))
	if err != nil {
		return nil, err
	}
	return r, nil
}

// docAddIDAndMerge 丢弃空白分块并为缺失 ID 的分块补上 uuid
func docAddIDAndMerge(ctx context.Context, docs []*schema.Document) ([]*schema.Document, error) {
	merged := make([]*schema.Document, 0, len(docs))
	for _, doc := range docs {
		if strings.TrimSpace(doc.Content) == "" {
			continue
		}
		if doc.ID == "" {
			doc.ID = uuid.New().String()
		}
		merged = append(merged, doc)
	}
	return merged, nil
}
