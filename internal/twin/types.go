package twin

import (
	"context"
	"time"
)

// DefaultUserID is the single owner of all twin data. The service is
// single-tenant; a real identity would have to replace this constant in
// every operation before multiple users could share one deployment.
const DefaultUserID int64 = 1

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Conversation is one chat thread with the twin.
type Conversation struct {
	ID            int64     `json:"id"`
	UserID        int64     `json:"user_id"`
	Title         string    `json:"title"`
	StartedAt     time.Time `json:"started_at"`
	LastMessageAt time.Time `json:"last_message_at"`
}

// Message is a single user or assistant turn. Messages are immutable;
// creation order defines conversation history.
type Message struct {
	ID             int64     `json:"id"`
	ConversationID int64     `json:"conversation_id"`
	Role           string    `json:"role"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
}

// PersonalityTrait is a named 0-100 attribute of the simulated user,
// curated via the profile endpoint only.
type PersonalityTrait struct {
	Name        string `json:"trait_name"`
	Value       int    `json:"trait_value"`
	Description string `json:"description"`
}

// KnowledgeEntry is one fact about the user, ranked by importance.
type KnowledgeEntry struct {
	Category   string    `json:"category"`
	Topic      string    `json:"topic"`
	Content    string    `json:"content"`
	Importance int       `json:"importance"`
	CreatedAt  time.Time `json:"created_at"`
}

// BehaviorPattern records how the user tends to respond in a situation.
// Confidence is a 0-1 estimate fixed at first observation.
type BehaviorPattern struct {
	SituationType   string  `json:"situation_type"`
	Context         string  `json:"context"`
	TypicalResponse string  `json:"typical_response"`
	Confidence      float64 `json:"confidence_score"`
	TimesObserved   int     `json:"times_observed"`
}

// Preference is a like or dislike with an intensity.
type Preference struct {
	Category  string `json:"category"`
	Item      string `json:"item"`
	Type      string `json:"preference_type"`
	Intensity int    `json:"intensity"`
	Notes     string `json:"notes"`
}

// Profile is the editable identity card of the twin's owner.
type Profile struct {
	ID         int64      `json:"id"`
	Name       *string    `json:"name"`
	BirthDate  *time.Time `json:"birth_date"`
	Location   *string    `json:"location"`
	Occupation *string    `json:"occupation"`
	Bio        *string    `json:"bio"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// ProfileUpdate replaces the editable profile fields as a whole.
type ProfileUpdate struct {
	Name       *string `json:"name"`
	BirthDate  *string `json:"birth_date"`
	Location   *string `json:"location"`
	Occupation *string `json:"occupation"`
	Bio        *string `json:"bio"`
}

// TraitUpdate sets a trait's value, matched by name.
type TraitUpdate struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// KnowledgeStat counts knowledge entries in one category.
type KnowledgeStat struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// ActivityStats summarizes conversation activity.
type ActivityStats struct {
	TotalConversations int `json:"total_conversations"`
	ActiveDays         int `json:"active_days"`
}

// BehaviorStat aggregates recorded patterns for one situation type.
type BehaviorStat struct {
	SituationType string  `json:"situation_type"`
	Count         int     `json:"count"`
	AvgConfidence float64 `json:"avg_confidence"`
}

// Store persists and retrieves all twin data.
type Store interface {
	CreateConversation(ctx context.Context, userID int64, title string) (int64, error)
	// RecentMessages returns up to limit most recent messages in
	// chronological order.
	RecentMessages(ctx context.Context, conversationID int64, limit int) ([]Message, error)
	// SaveMessage appends a message and touches the conversation's
	// last_message_at in the same unit of work.
	SaveMessage(ctx context.Context, conversationID int64, role, content string) error

	// Traits returns all traits ordered by value descending, then name.
	Traits(ctx context.Context, userID int64) ([]PersonalityTrait, error)
	// TopKnowledge returns up to limit entries ordered by importance
	// descending, then recency descending.
	TopKnowledge(ctx context.Context, userID int64, limit int) ([]KnowledgeEntry, error)
	// TopBehaviors returns up to limit patterns ordered by confidence
	// descending, then times observed descending.
	TopBehaviors(ctx context.Context, userID int64, limit int) ([]BehaviorPattern, error)
	// RecordBehavior inserts a pattern; a duplicate
	// (user, situation, response) combination is a silent no-op.
	RecordBehavior(ctx context.Context, userID int64, p BehaviorPattern) error

	Profile(ctx context.Context, userID int64) (*Profile, error)
	KnowledgeStats(ctx context.Context, userID int64) ([]KnowledgeStat, error)
	ActivityStats(ctx context.Context, userID int64) (ActivityStats, error)
	BehaviorStats(ctx context.Context, userID int64) ([]BehaviorStat, error)

	UpdateProfile(ctx context.Context, userID int64, upd ProfileUpdate) error
	UpdateTraitValues(ctx context.Context, userID int64, updates []TraitUpdate) error
	AddKnowledge(ctx context.Context, userID int64, entry KnowledgeEntry) error
	AddPreference(ctx context.Context, userID int64, pref Preference) error

	Close() error
}
