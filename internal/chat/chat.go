// Package chat 提供会话目录与消息流装配
// 会话目录维护按最近优先排序的会话摘要集合，通过乐观本地变更 +
// 服务端确认保持一致；消息流装配器管理活跃会话的有序消息序列，
// 包括临时消息的创建、流式片段的追加以及临时ID到真实ID的原子替换
package chat

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/purpose168/bazichat/internal/api"
	"github.com/purpose168/bazichat/internal/db"
	"github.com/purpose168/bazichat/internal/pubsub"
	"github.com/purpose168/bazichat/internal/session"
)

// Service 聊天服务接口，定义了会话目录和消息流装配的核心操作
type Service interface {
	pubsub.Subscriber[Message]
	// SubscribeConversations 订阅会话目录的变更事件
	SubscribeConversations(ctx context.Context) <-chan pubsub.Event[Conversation]

	// Conversations 返回本地会话目录的快照，按最近优先排序
	Conversations() []Conversation
	// Current 返回当前活跃会话
	Current() (Conversation, bool)
	// Load 从服务端刷新会话目录，整体替换本地集合
	Load(ctx context.Context, skip, limit int) ([]Conversation, error)
	// Create 创建新会话；服务端返回真实ID后才加入目录头部
	Create(ctx context.Context, params CreateParams) (Conversation, error)
	// Rename 重命名会话；以服务端返回值按ID匹配更新，ID不存在时静默丢弃
	Rename(ctx context.Context, id, title string) (Conversation, error)
	// Delete 删除会话；服务端确认后移出本地目录
	Delete(ctx context.Context, id string) error
	// Select 拉取会话完整历史并设为活跃会话
	Select(ctx context.Context, id string) (Conversation, []Message, error)
	// Share 生成指向会话的小程序分享码
	Share(ctx context.Context, id string) (ShareCode, error)

	// Messages 返回活跃会话消息缓冲区的快照
	Messages() []Message
	// MessagesFor 仅当目标会话为活跃会话时返回其消息，否则返回空序列
	MessagesFor(conversationID string) []Message
	// SubmitUserMessage 追加一条带临时ID的用户消息，纯本地操作
	SubmitUserMessage(content string) Message
	// Send 提交用户消息并请求助手回复，驱动完整的消息流装配周期
	Send(ctx context.Context, content string) (Message, error)
	// BeginAssistantReply 追加一条空内容的助手消息，作为流式追加的唯一目标
	BeginAssistantReply() Message
	// AppendStreamFragment 将流式片段拼接到临时消息的内容上，ID不存在时为空操作
	AppendStreamFragment(provisionalID, fragment string)
	// FinalizeAssistantReply 原子地将临时ID替换为真实ID并记录消耗
	FinalizeAssistantReply(provisionalID, realID string, tokenCost int64)
	// ClearCurrent 无条件丢弃活跃会话及其消息缓冲区
	ClearCurrent()

	// CachedConversations 返回本地缓存的会话目录（离线视图）
	CachedConversations(ctx context.Context) ([]Conversation, error)
	// CachedMessages 返回本地缓存的会话消息（离线视图）
	CachedMessages(ctx context.Context, conversationID string) ([]Message, error)
}

// service 聊天服务的具体实现
// 会话目录、活跃会话和消息缓冲区由同一把互斥锁保护，
// 公开操作的本地变更相对网络挂起点是原子的
type service struct {
	*pubsub.Broker[Message]
	convBroker *pubsub.Broker[Conversation]

	client   *api.Client
	sessions session.Service
	q        db.Querier

	mu            sync.Mutex
	conversations []Conversation
	current       Conversation
	hasCurrent    bool
	messages      []Message
	index         map[string]int // 消息ID到缓冲区位置的索引
	inflightID    string         // 正在接收流式内容的消息临时ID
	seq           int64          // 临时ID单调序号
}

// NewService 创建新的聊天服务实例
func NewService(client *api.Client, sessions session.Service, q db.Querier) Service {
	return &service{
		Broker:     pubsub.NewBroker[Message](),
		convBroker: pubsub.NewBroker[Conversation](),
		client:     client,
		sessions:   sessions,
		q:          q,
		index:      make(map[string]int),
	}
}

// SubscribeConversations 订阅会话目录的变更事件
func (s *service) SubscribeConversations(ctx context.Context) <-chan pubsub.Event[Conversation] {
	return s.convBroker.Subscribe(ctx)
}

// Conversations 返回本地会话目录的快照
func (s *service) Conversations() []Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]Conversation, len(s.conversations))
	copy(items, s.conversations)
	return items
}

// Current 返回当前活跃会话
func (s *service) Current() (Conversation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current, s.hasCurrent
}

// Load 从服务端刷新会话目录
// 本地集合被服务端结果整体替换（最后写入胜出，不做合并或差异对比）
func (s *service) Load(ctx context.Context, skip, limit int) ([]Conversation, error) {
	query := url.Values{}
	if skip > 0 {
		query.Set("skip", strconv.Itoa(skip))
	}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	var conversations []Conversation
	if err := s.client.Get(ctx, "/chat/conversations", &conversations, api.WithQuery(query)); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.conversations = conversations
	s.mu.Unlock()

	for _, conv := range conversations {
		s.cacheConversation(ctx, conv)
	}
	return conversations, nil
}

// Create 创建新会话
// 非乐观操作：只有服务端返回真实ID后，摘要才被插入目录头部并设为活跃会话
func (s *service) Create(ctx context.Context, params CreateParams) (Conversation, error) {
	var conv Conversation
	if err := s.client.Post(ctx, "/chat/conversations", params, &conv); err != nil {
		return Conversation{}, err
	}

	s.mu.Lock()
	s.conversations = append([]Conversation{conv}, s.conversations...)
	s.current = conv
	s.hasCurrent = true
	s.messages = nil
	s.index = make(map[string]int)
	s.inflightID = ""
	s.mu.Unlock()

	s.cacheConversation(ctx, conv)
	s.convBroker.Publish(pubsub.CreatedEvent, conv)
	return conv, nil
}

// Rename 重命名会话
// 非乐观操作：仅以服务端返回的表示按ID匹配更新本地条目；
// 本地不存在该ID时静默丢弃（条目可能已被并发删除），不视为错误
func (s *service) Rename(ctx context.Context, id, title string) (Conversation, error) {
	var updated Conversation
	if err := s.client.Put(ctx, "/chat/conversations/"+id, map[string]string{"title": title}, &updated); err != nil {
		return Conversation{}, err
	}

	s.mu.Lock()
	for i, conv := range s.conversations {
		if conv.ID == id {
			s.conversations[i] = updated
			break
		}
	}
	if s.hasCurrent && s.current.ID == id {
		s.current = updated
	}
	s.mu.Unlock()

	s.cacheConversation(ctx, updated)
	s.convBroker.Publish(pubsub.UpdatedEvent, updated)
	return updated, nil
}

// Delete 删除会话
// 先发出删除调用；成功后将条目移出本地目录，若为活跃会话则一并
// 清除活跃状态和消息缓冲区。失败时本地状态不变，错误向上传播
func (s *service) Delete(ctx context.Context, id string) error {
	if err := s.client.Delete(ctx, "/chat/conversations/"+id); err != nil {
		return err
	}

	var deleted Conversation
	s.mu.Lock()
	kept := s.conversations[:0]
	for _, conv := range s.conversations {
		if conv.ID == id {
			deleted = conv
			continue
		}
		kept = append(kept, conv)
	}
	s.conversations = kept
	if s.hasCurrent && s.current.ID == id {
		s.current = Conversation{}
		s.hasCurrent = false
		s.messages = nil
		s.index = make(map[string]int)
		s.inflightID = ""
	}
	s.mu.Unlock()

	if s.q != nil {
		if err := s.q.DeleteConversationMessages(ctx, id); err != nil {
			slog.Warn("删除消息缓存失败", "conversation_id", id, "error", err)
		}
		if err := s.q.DeleteConversation(ctx, id); err != nil {
			slog.Warn("删除会话缓存失败", "conversation_id", id, "error", err)
		}
	}
	s.convBroker.Publish(pubsub.DeletedEvent, deleted)
	return nil
}

// Select 拉取会话完整历史并设为活跃会话
// 整体替换之前的活跃会话和消息缓冲区，不与无关会话的消息合并
func (s *service) Select(ctx context.Context, id string) (Conversation, []Message, error) {
	var history historyResponse
	if err := s.client.Get(ctx, "/chat/history/"+id, &history); err != nil {
		return Conversation{}, nil, err
	}

	s.mu.Lock()
	s.current = history.Conversation
	s.hasCurrent = true
	s.messages = make([]Message, len(history.Messages))
	copy(s.messages, history.Messages)
	s.index = make(map[string]int, len(s.messages))
	for i, msg := range s.messages {
		s.index[msg.ID] = i
	}
	s.inflightID = ""
	s.mu.Unlock()

	s.cacheConversation(ctx, history.Conversation)
	for _, msg := range history.Messages {
		s.cacheMessage(ctx, msg)
	}
	return history.Conversation, history.Messages, nil
}

// Share 生成指向会话的小程序分享码
// 码由服务端调用微信接口生成，会话归属校验也在服务端完成
func (s *service) Share(ctx context.Context, id string) (ShareCode, error) {
	var code ShareCode
	err := s.client.Post(ctx, "/share/miniprogram-code", map[string]string{
		"conversation_id": id,
		"page":            sharePage,
	}, &code)
	if err != nil {
		return ShareCode{}, err
	}
	return code, nil
}

// Messages 返回活跃会话消息缓冲区的快照
func (s *service) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]Message, len(s.messages))
	copy(items, s.messages)
	return items
}

// MessagesFor 仅当目标会话为活跃会话时返回其消息
// 其他会话按需返回空序列而不发起拉取；调用方需要时应先 Select
func (s *service) MessagesFor(conversationID string) []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	if conversationID == "" || !s.hasCurrent || s.current.ID != conversationID {
		return []Message{}
	}
	items := make([]Message, len(s.messages))
	copy(items, s.messages)
	return items
}

// SubmitUserMessage 追加一条带临时ID的用户消息
// 纯本地变更：内容立即完整写入，不经过网络，对读取方同步可见
func (s *service) SubmitUserMessage(content string) Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	message := Message{
		ID:             s.provisionalID(RoleUser),
		ConversationID: s.currentID(),
		Role:           RoleUser,
		Content:        content,
		TokenCost:      0,
		CreatedAt:      time.Now().Format(time.RFC3339),
	}
	s.appendLocked(message)
	return message
}

// Send 提交用户消息并请求助手回复
// 用户消息立即入缓冲区；网络调用失败时丢弃空的在途助手消息，
// 用户消息保留（与服务端状态的差异由下次 Select 抹平）
func (s *service) Send(ctx context.Context, content string) (Message, error) {
	s.SubmitUserMessage(content)
	reply := s.BeginAssistantReply()

	s.mu.Lock()
	conversationID := s.currentID()
	s.mu.Unlock()

	var resp sendResponse
	err := s.client.Post(ctx, "/chat/send", map[string]string{
		"conversation_id": conversationID,
		"content":         content,
	}, &resp)
	if err != nil {
		s.discardProvisional(reply.ID)
		return Message{}, err
	}

	s.AppendStreamFragment(reply.ID, resp.Content)
	s.FinalizeAssistantReply(reply.ID, resp.MessageID, resp.TokenCost)

	s.mu.Lock()
	defer s.mu.Unlock()
	if idx, ok := s.index[resp.MessageID]; ok {
		return s.messages[idx], nil
	}
	// 等待回复期间会话被切走：回复按迟到内容丢弃
	return Message{}, nil
}

// discardProvisional 将失败的在途临时消息移出缓冲区
// ID 不在缓冲区时为空操作
func (s *service) discardProvisional(provisionalID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.discardLocked(provisionalID)
}

// discardLocked 将临时消息移出缓冲区并重建其后的索引
// 调用方必须持有 s.mu
func (s *service) discardLocked(provisionalID string) {
	idx, ok := s.index[provisionalID]
	if !ok {
		return
	}
	s.messages = append(s.messages[:idx], s.messages[idx+1:]...)
	delete(s.index, provisionalID)
	for i := idx; i < len(s.messages); i++ {
		s.index[s.messages[i].ID] = i
	}
	if s.inflightID == provisionalID {
		s.inflightID = ""
	}
}

// BeginAssistantReply 追加一条空内容的助手消息
// 该消息是后续流式片段追加的唯一目标；每个会话同一时刻至多一条在途消息
func (s *service) BeginAssistantReply() Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	// 旧的在途消息尚未完成时被丢弃，流式片段不会再有第二个目标
	if s.inflightID != "" {
		s.discardLocked(s.inflightID)
	}

	message := Message{
		ID:             s.provisionalID(RoleAssistant),
		ConversationID: s.currentID(),
		Role:           RoleAssistant,
		Content:        "",
		TokenCost:      0,
		CreatedAt:      time.Now().Format(time.RFC3339),
	}
	s.appendLocked(message)
	s.inflightID = message.ID
	return message
}

// AppendStreamFragment 将流式片段拼接到临时消息的内容上
// 按临时ID在当前缓冲区内定位；ID不存在时为空操作（会话可能已切走，
// 迟到的片段直接丢弃，不会污染当前活跃会话的缓冲区）
func (s *service) AppendStreamFragment(provisionalID, fragment string) {
	s.mu.Lock()
	idx, ok := s.index[provisionalID]
	if !ok {
		s.mu.Unlock()
		return
	}
	s.messages[idx].Content += fragment
	updated := s.messages[idx]
	s.mu.Unlock()

	s.Publish(pubsub.UpdatedEvent, updated)
}

// FinalizeAssistantReply 完成流式回复
// 原子地将消息的临时ID替换为服务端分配的真实ID并记录学得的消耗，
// 读取方不会观察到ID与消耗不一致的中间状态；随后扣减本地展示余额。
// 临时ID不在缓冲区时为空操作，不报错
func (s *service) FinalizeAssistantReply(provisionalID, realID string, tokenCost int64) {
	s.mu.Lock()
	idx, ok := s.index[provisionalID]
	if !ok {
		s.mu.Unlock()
		return
	}
	s.messages[idx].ID = realID
	s.messages[idx].TokenCost = tokenCost
	delete(s.index, provisionalID)
	s.index[realID] = idx
	if s.inflightID == provisionalID {
		s.inflightID = ""
	}
	finalized := s.messages[idx]
	s.mu.Unlock()

	s.sessions.DeductBalance(tokenCost)
	s.cacheMessage(context.Background(), finalized)
	s.Publish(pubsub.UpdatedEvent, finalized)
}

// ClearCurrent 无条件丢弃活跃会话及其消息缓冲区
// 在途的临时消息一并丢弃，不提供跨切换的草稿恢复；
// 服务端记录（如有）可在之后重新 Select 取回
func (s *service) ClearCurrent() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = Conversation{}
	s.hasCurrent = false
	s.messages = nil
	s.index = make(map[string]int)
	s.inflightID = ""
}

// CachedConversations 返回本地缓存的会话目录
func (s *service) CachedConversations(ctx context.Context) ([]Conversation, error) {
	if s.q == nil {
		return nil, nil
	}
	items, err := s.q.ListConversations(ctx)
	if err != nil {
		return nil, err
	}
	conversations := make([]Conversation, len(items))
	for i, item := range items {
		conversations[i] = Conversation{
			ID:            item.ID,
			UserID:        item.UserID,
			Title:         item.Title,
			BaziProfileID: item.BaziProfileID.String,
			ContextSize:   item.ContextSize,
			AIStyle:       item.AiStyle,
			CreatedAt:     item.CreatedAt,
			UpdatedAt:     item.UpdatedAt.String,
		}
	}
	return conversations, nil
}

// CachedMessages 返回本地缓存的会话消息
func (s *service) CachedMessages(ctx context.Context, conversationID string) ([]Message, error) {
	if s.q == nil {
		return nil, nil
	}
	items, err := s.q.ListMessagesByConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	messages := make([]Message, len(items))
	for i, item := range items {
		messages[i] = Message{
			ID:             item.ID,
			ConversationID: item.ConversationID,
			Role:           Role(item.Role),
			Content:        item.Content,
			TokenCost:      item.TokenCost,
			CreatedAt:      item.CreatedAt,
		}
	}
	return messages, nil
}

// appendLocked 将消息追加到缓冲区尾部并维护索引
// 调用方必须持有 s.mu
func (s *service) appendLocked(message Message) {
	s.messages = append(s.messages, message)
	s.index[message.ID] = len(s.messages) - 1
	s.Publish(pubsub.CreatedEvent, message)
}

// currentID 返回活跃会话ID，无活跃会话时返回空字符串
// 调用方必须持有 s.mu
func (s *service) currentID() string {
	if !s.hasCurrent {
		return ""
	}
	return s.current.ID
}

// provisionalID 生成本地临时消息ID
// 由单调序号和角色标签组成，在本地会话范围内唯一
// 调用方必须持有 s.mu
func (s *service) provisionalID(role Role) string {
	s.seq++
	tag := "user"
	if role == RoleAssistant {
		tag = "ai"
	}
	return fmt.Sprintf("%s%s_%d_%d", provisionalPrefix, tag, time.Now().UnixMilli(), s.seq)
}

// cacheConversation 将会话摘要写入本地缓存，失败时仅记录日志
func (s *service) cacheConversation(ctx context.Context, conv Conversation) {
	if s.q == nil {
		return
	}
	_, err := s.q.UpsertConversation(ctx, db.UpsertConversationParams{
		ID:            conv.ID,
		UserID:        conv.UserID,
		Title:         conv.Title,
		BaziProfileID: sql.NullString{String: conv.BaziProfileID, Valid: conv.BaziProfileID != ""},
		ContextSize:   conv.ContextSize,
		AiStyle:       conv.AIStyle,
		CreatedAt:     conv.CreatedAt,
		UpdatedAt:     sql.NullString{String: conv.UpdatedAt, Valid: conv.UpdatedAt != ""},
	})
	if err != nil {
		slog.Warn("写入会话缓存失败", "conversation_id", conv.ID, "error", err)
	}
}

// cacheMessage 将消息写入本地缓存，失败时仅记录日志
// 临时消息不入缓存，只缓存持有服务端真实ID的消息
func (s *service) cacheMessage(ctx context.Context, message Message) {
	if s.q == nil || message.Provisional() {
		return
	}
	_, err := s.q.UpsertMessage(ctx, db.UpsertMessageParams{
		ID:             message.ID,
		ConversationID: message.ConversationID,
		Role:           string(message.Role),
		Content:        message.Content,
		TokenCost:      message.TokenCost,
		CreatedAt:      message.CreatedAt,
	})
	if err != nil {
		slog.Warn("写入消息缓存失败", "message_id", message.ID, "error", err)
	}
}
