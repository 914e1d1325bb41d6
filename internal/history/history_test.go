package history

import (
	"context"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karan3613/ragscope/internal/dao"
)

func TestManager_SaveAndLoad(t *testing.T) {
	// Skip if database is not initialized
	if !dao.Initialized() {
		t.Skip("Database not initialized, skipping test")
	}

	ctx := context.Background()
	manager := NewManager()
	convID := "conv_history_test"

	err := manager.SaveMessage(ctx, schema.UserMessage("测试问题"), convID)
	require.NoError(t, err)

	metadata := map[string]interface{}{
		"strategy":    "self",
		"retry_count": 1,
		"documents":   3,
	}
	err = manager.SaveMessageWithMetadata(ctx, schema.AssistantMessage("测试回答", nil), convID, metadata)
	require.NoError(t, err)

	msgs, err := manager.GetHistory(ctx, convID, 10)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(msgs), 2)
	assert.Equal(t, schema.User, msgs[0].Role)

	records, err := manager.GetConversationMessages(ctx, convID)
	require.NoError(t, err)
	require.NotEmpty(t, records)

	meta, err := manager.GetMessageMetadata(ctx, records[len(records)-1].MsgID)
	require.NoError(t, err)
	assert.Equal(t, "self", meta["strategy"])
}

func TestAsyncMessageSaverQueue(t *testing.T) {
	saver := NewAsyncMessageSaver(2)
	defer saver.Shutdown()

	assert.Equal(t, 0, saver.GetQueueSize())
}
