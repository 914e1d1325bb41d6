package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError(t *testing.T) {
	t.Run("错误消息包含错误码", func(t *testing.T) {
		err := New(ErrInvalidParameter, "knowledgeId is required")
		assert.Equal(t, "[1001] knowledgeId is required", err.Error())
	})

	t.Run("格式化消息", func(t *testing.T) {
		err := Newf(ErrFileDeleteFailed, "failed to delete object %s: %v", "knowledge_file/kb1/a.md", "timeout")
		assert.Equal(t, ErrFileDeleteFailed, err.Code)
		assert.Contains(t, err.Message, "knowledge_file/kb1/a.md")
	})

	t.Run("包装后仍可识别错误码", func(t *testing.T) {
		err := fmt.Errorf("outer: %w", New(ErrConversationNotFound, "conversation not found"))
		require.True(t, IsAppError(err))
		assert.True(t, IsCode(err, ErrConversationNotFound))
		assert.False(t, IsCode(err, ErrChatFailed))
	})

	t.Run("普通错误不是业务错误", func(t *testing.T) {
		err := fmt.Errorf("plain error")
		assert.False(t, IsAppError(err))
		assert.Nil(t, GetAppError(err))
	})
}

// 文件相关错误码保持在 4000 段且互不重复
func TestFileErrCodeRange(t *testing.T) {
	codes := []ErrCode{
		ErrKBNotFound,
		ErrDocumentParseFailed,
		ErrFileUploadFailed,
		ErrFileReadFailed,
		ErrIndexingFailed,
		ErrFileDeleteFailed,
	}
	seen := make(map[ErrCode]bool)
	for _, code := range codes {
		assert.GreaterOrEqual(t, int(code), 4001)
		assert.Less(t, int(code), 5000)
		assert.False(t, seen[code], "duplicate code %d", code)
		seen[code] = true
	}
}
