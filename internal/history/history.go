package history

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/gogf/gf/v2/frame/g"
	"github.com/google/uuid"

	"github.com/karan3613/ragscope/internal/dao"
	gormModel "github.com/karan3613/ragscope/internal/model/gorm"
)

// MessageRecord 待保存的消息及其附加信息
type MessageRecord struct {
	Message   *schema.Message
	Metadata  map[string]interface{} // 策略、重试次数、引用条数等
	LatencyMs int
}

// Manager 聊天历史管理器
type Manager struct{}

// NewManager 创建新的聊天历史管理器
func NewManager() *Manager {
	return &Manager{}
}

// SaveMessage 保存消息
func (h *Manager) SaveMessage(ctx context.Context, message *schema.Message, convID string) error {
	return h.SaveMessageWithMetadata(ctx, message, convID, nil)
}

// SaveMessageWithMetadata 保存带元数据的消息
func (h *Manager) SaveMessageWithMetadata(ctx context.Context, message *schema.Message, convID string, metadata map[string]interface{}) error {
	return saveRecord(ctx, &MessageRecord{Message: message, Metadata: metadata}, convID)
}

// SaveRecordAsync 异步保存消息，不等待结果
func (h *Manager) SaveRecordAsync(record *MessageRecord, convID string) {
	GetGlobalAsyncSaver().SaveAsync(record, convID)
}

// GetHistory 获取聊天历史，转换为模型消息格式
func (h *Manager) GetHistory(ctx context.Context, convID string, limit int) ([]*schema.Message, error) {
	if limit <= 0 {
		limit = 100
	}

	messages, _, err := dao.Message.ListByConvID(ctx, convID, 1, limit)
	if err != nil {
		return nil, err
	}

	result := make([]*schema.Message, len(messages))
	for i, msg := range messages {
		result[i] = &schema.Message{
			Role:    schema.RoleType(msg.Role),
			Content: msg.Content,
		}
	}

	return result, nil
}

// GetConversationMessages 获取会话的原始消息记录（含元数据）
func (h *Manager) GetConversationMessages(ctx context.Context, convID string) ([]*gormModel.Message, error) {
	messages, _, err := dao.Message.ListByConvID(ctx, convID, 1, 1000)
	return messages, err
}

// GetMessageMetadata 获取消息的元数据
func (h *Manager) GetMessageMetadata(ctx context.Context, msgID string) (map[string]interface{}, error) {
	message, err := dao.Message.GetByMsgID(ctx, msgID)
	if err != nil {
		return nil, err
	}

	if message == nil || len(message.Metadata) == 0 {
		return nil, nil
	}

	var metadata map[string]interface{}
	err = json.Unmarshal(message.Metadata, &metadata)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
	}

	return metadata, nil
}

// saveRecord 落库一条消息，必要时先补建会话
func saveRecord(ctx context.Context, record *MessageRecord, convID string) error {
	if err := ensureConversationExists(ctx, convID); err != nil {
		return err
	}

	var metadataJSON gormModel.JSON
	if record.Metadata != nil {
		data, err := json.Marshal(record.Metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal metadata: %w", err)
		}
		metadataJSON = gormModel.JSON(data)
	}

	now := time.Now()
	msg := &gormModel.Message{
		MsgID:      generateMessageID(),
		ConvID:     convID,
		Role:       string(record.Message.Role),
		Content:    record.Message.Content,
		LatencyMs:  record.LatencyMs,
		Metadata:   metadataJSON,
		CreateTime: &now,
	}

	return dao.Message.Create(ctx, msg)
}

// ensureConversationExists 确保对话存在
func ensureConversationExists(ctx context.Context, convID string) error {
	conversation, err := dao.Conversation.GetByConvID(ctx, convID)
	if err != nil {
		return err
	}

	if conversation == nil {
		now := time.Now()
		conversation := &gormModel.Conversation{
			ConvID:     convID,
			UserID:     "default_user", // 默认用户ID，实际使用时应从上下文获取
			Title:      "New Conversation",
			Strategy:   "adaptive",
			Status:     "active",
			CreateTime: &now,
			UpdateTime: &now,
		}
		return dao.Conversation.Create(ctx, conversation)
	}

	return nil
}

// generateMessageID 生成消息ID
func generateMessageID() string {
	return uuid.New().String()
}

// ========== 异步消息保存器 ==========

// SaveTask 消息保存任务
type SaveTask struct {
	Record *MessageRecord
	ConvID string
	Result chan error
}

// AsyncMessageSaver 异步消息保存器
type AsyncMessageSaver struct {
	taskQueue  chan *SaveTask
	workerPool int
	wg         sync.WaitGroup
	ctx        context.Context
	cancel     context.CancelFunc
}

// NewAsyncMessageSaver 创建异步消息保存器
func NewAsyncMessageSaver(workerPool int) *AsyncMessageSaver {
	if workerPool <= 0 {
		workerPool = 5 // 默认5个worker
	}

	ctx, cancel := context.WithCancel(context.Background())
	saver := &AsyncMessageSaver{
		taskQueue:  make(chan *SaveTask, 200), // 缓冲队列
		workerPool: workerPool,
		ctx:        ctx,
		cancel:     cancel,
	}

	saver.start()

	return saver
}

// start 启动worker pool
func (s *AsyncMessageSaver) start() {
	for i := 0; i < s.workerPool; i++ {
		s.wg.Add(1)
		go s.worker()
	}
}

// worker 处理消息保存任务
func (s *AsyncMessageSaver) worker() {
	defer s.wg.Done()

	for {
		select {
		case <-s.ctx.Done():
			return
		case task, ok := <-s.taskQueue:
			if !ok {
				return
			}
			err := saveRecord(s.ctx, task.Record, task.ConvID)
			if err != nil {
				g.Log().Errorf(s.ctx, "failed to save message for conv %s: %v", task.ConvID, err)
			}
			if task.Result != nil {
				task.Result <- err
				close(task.Result)
			}
		}
	}
}

// SaveAsync 异步保存消息（不等待结果）
func (s *AsyncMessageSaver) SaveAsync(record *MessageRecord, convID string) {
	task := &SaveTask{
		Record: record,
		ConvID: convID,
	}

	select {
	case s.taskQueue <- task:
		// 任务提交成功
	default:
		// 队列满了，记录警告但不阻塞
		g.Log().Warning(context.Background(), "Message save queue is full, message may be lost")
	}
}

// SaveAsyncWait 异步保存消息（等待结果）
func (s *AsyncMessageSaver) SaveAsyncWait(ctx context.Context, record *MessageRecord, convID string) error {
	task := &SaveTask{
		Record: record,
		ConvID: convID,
		Result: make(chan error, 1),
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case s.taskQueue <- task:
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-task.Result:
			return err
		}
	default:
		// 队列满了，同步保存
		g.Log().Warning(ctx, "Message save queue is full, saving synchronously")
		return saveRecord(ctx, record, convID)
	}
}

// Shutdown 关闭异步保存器
func (s *AsyncMessageSaver) Shutdown() {
	s.cancel()
	close(s.taskQueue)
	s.wg.Wait()
}

// GetQueueSize 获取当前队列大小
func (s *AsyncMessageSaver) GetQueueSize() int {
	return len(s.taskQueue)
}

// 全局异步保存器实例
var globalAsyncSaver *AsyncMessageSaver
var saverOnce sync.Once

// GetGlobalAsyncSaver 获取全局异步保存器
func GetGlobalAsyncSaver() *AsyncMessageSaver {
	saverOnce.Do(func() {
		globalAsyncSaver = NewAsyncMessageSaver(5)
	})
	return globalAsyncSaver
}
