package twin

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/ndrozd/mirra/internal/completion"
	"github.com/ndrozd/mirra/internal/observability"
)

const (
	historyLimit             = 10
	defaultConversationTitle = "Новый диалог"
)

// ErrEmptyMessage marks a chat request without message text.
var ErrEmptyMessage = errors.New("message is required")

// ChatService runs one chat exchange end to end: conversation resolution,
// persona context, completion call, persistence and the learn step.
type ChatService struct {
	store   Store
	client  completion.Client
	metrics *observability.Metrics
	userID  int64
}

func NewChatService(store Store, client completion.Client, metrics *observability.Metrics) *ChatService {
	return &ChatService{
		store:   store,
		client:  client,
		metrics: metrics,
		userID:  DefaultUserID,
	}
}

// ChatReply is the outcome of one exchange.
type ChatReply struct {
	Response       string `json:"response"`
	ConversationID int64  `json:"conversationId"`
}

// Send processes one user message. Steps run sequentially with no
// compensation: the user message stays recorded even if the completion
// call fails afterwards.
func (s *ChatService) Send(ctx context.Context, message string, conversationID int64) (ChatReply, error) {
	if strings.TrimSpace(message) == "" {
		return ChatReply{}, ErrEmptyMessage
	}

	if conversationID == 0 {
		id, err := s.store.CreateConversation(ctx, s.userID, defaultConversationTitle)
		if err != nil {
			return ChatReply{}, err
		}
		conversationID = id
	}

	system, err := PersonaContext(ctx, s.store, s.userID)
	if err != nil {
		return ChatReply{}, err
	}

	// History is read before the new message is saved, so the model sees
	// the message exactly once, as the final user turn.
	history, err := s.store.RecentMessages(ctx, conversationID, historyLimit)
	if err != nil {
		return ChatReply{}, err
	}

	if err := s.store.SaveMessage(ctx, conversationID, RoleUser, message); err != nil {
		return ChatReply{}, err
	}

	start := time.Now()
	reply, err := s.client.Complete(ctx, completion.Request{
		System:      system,
		History:     toCompletionHistory(history),
		UserMessage: message,
	})
	if s.metrics != nil {
		s.metrics.ObserveCompletionLatency(time.Since(start))
	}
	if err != nil {
		return ChatReply{}, err
	}

	if err := s.store.SaveMessage(ctx, conversationID, RoleAssistant, reply); err != nil {
		return ChatReply{}, err
	}

	// Best-effort learning; a failure here must not fail the exchange.
	s.learn(ctx, message)

	return ChatReply{Response: reply, ConversationID: conversationID}, nil
}

func (s *ChatService) learn(ctx context.Context, message string) {
	pattern := ObservedPattern(message)
	if err := s.store.RecordBehavior(ctx, s.userID, pattern); err != nil {
		log.Printf("behavior learn step failed: %v", err)
		if s.metrics != nil {
			s.metrics.LearnFailures.Inc()
		}
		return
	}
	if s.metrics != nil {
		s.metrics.BehaviorObservations.WithLabelValues(pattern.SituationType).Inc()
	}
}

func toCompletionHistory(messages []Message) []completion.Message {
	if len(messages) == 0 {
		return nil
	}
	out := make([]completion.Message, 0, len(messages))
	for _, m := range messages {
		out = append(out, completion.Message{Role: m.Role, Content: m.Content})
	}
	return out
}
