package twin

import (
	"context"
	"sort"
	"sync"
	"time"
)

// InMemoryStore is a simple in-process store for local/dev use and tests.
type InMemoryStore struct {
	mu sync.RWMutex

	nextConversationID int64
	nextMessageID      int64

	conversations map[int64]*Conversation
	messages      map[int64][]Message

	profiles  map[int64]*Profile
	traits    map[int64][]PersonalityTrait
	knowledge map[int64][]KnowledgeEntry
	behaviors map[int64][]BehaviorPattern
	prefs     map[int64][]Preference
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		nextConversationID: 1,
		nextMessageID:      1,
		conversations:      make(map[int64]*Conversation),
		messages:           make(map[int64][]Message),
		profiles:           make(map[int64]*Profile),
		traits:             make(map[int64][]PersonalityTrait),
		knowledge:          make(map[int64][]KnowledgeEntry),
		behaviors:          make(map[int64][]BehaviorPattern),
		prefs:              make(map[int64][]Preference),
	}
}

func (s *InMemoryStore) CreateConversation(_ context.Context, userID int64, title string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextConversationID
	s.nextConversationID++
	now := time.Now().UTC()
	s.conversations[id] = &Conversation{
		ID:            id,
		UserID:        userID,
		Title:         title,
		StartedAt:     now,
		LastMessageAt: now,
	}
	return id, nil
}

func (s *InMemoryStore) RecentMessages(_ context.Context, conversationID int64, limit int) ([]Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	arr := s.messages[conversationID]
	if len(arr) == 0 {
		return nil, nil
	}
	if limit <= 0 || limit > len(arr) {
		limit = len(arr)
	}
	out := make([]Message, 0, limit)
	for i := len(arr) - limit; i < len(arr); i++ {
		out = append(out, arr[i])
	}
	return out, nil
}

func (s *InMemoryStore) SaveMessage(_ context.Context, conversationID int64, role, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	msg := Message{
		ID:             s.nextMessageID,
		ConversationID: conversationID,
		Role:           role,
		Content:        content,
		CreatedAt:      now,
	}
	s.nextMessageID++
	s.messages[conversationID] = append(s.messages[conversationID], msg)
	if conv, ok := s.conversations[conversationID]; ok {
		conv.LastMessageAt = now
	}
	return nil
}

func (s *InMemoryStore) Traits(_ context.Context, userID int64) ([]PersonalityTrait, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := append([]PersonalityTrait(nil), s.traits[userID]...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Value != out[j].Value {
			return out[i].Value > out[j].Value
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (s *InMemoryStore) TopKnowledge(_ context.Context, userID int64, limit int) ([]KnowledgeEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := append([]KnowledgeEntry(nil), s.knowledge[userID]...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Importance != out[j].Importance {
			return out[i].Importance > out[j].Importance
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *InMemoryStore) TopBehaviors(_ context.Context, userID int64, limit int) ([]BehaviorPattern, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := append([]BehaviorPattern(nil), s.behaviors[userID]...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Confidence != out[j].Confidence {
			return out[i].Confidence > out[j].Confidence
		}
		return out[i].TimesObserved > out[j].TimesObserved
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *InMemoryStore) RecordBehavior(_ context.Context, userID int64, p BehaviorPattern) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.behaviors[userID] {
		if existing.SituationType == p.SituationType && existing.TypicalResponse == p.TypicalResponse {
			return nil
		}
	}
	if p.TimesObserved == 0 {
		p.TimesObserved = 1
	}
	s.behaviors[userID] = append(s.behaviors[userID], p)
	return nil
}

func (s *InMemoryStore) Profile(_ context.Context, userID int64) (*Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[userID]
	if !ok {
		return nil, nil
	}
	copied := *p
	return &copied, nil
}

func (s *InMemoryStore) KnowledgeStats(_ context.Context, userID int64) ([]KnowledgeStat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[string]int)
	order := make([]string, 0, 8)
	for _, k := range s.knowledge[userID] {
		if _, seen := counts[k.Category]; !seen {
			order = append(order, k.Category)
		}
		counts[k.Category]++
	}
	out := make([]KnowledgeStat, 0, len(order))
	for _, cat := range order {
		out = append(out, KnowledgeStat{Category: cat, Count: counts[cat]})
	}
	return out, nil
}

func (s *InMemoryStore) ActivityStats(_ context.Context, userID int64) (ActivityStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	days := make(map[string]struct{})
	total := 0
	for _, conv := range s.conversations {
		if conv.UserID != userID {
			continue
		}
		total++
		days[conv.StartedAt.Format("2006-01-02")] = struct{}{}
	}
	return ActivityStats{TotalConversations: total, ActiveDays: len(days)}, nil
}

func (s *InMemoryStore) BehaviorStats(_ context.Context, userID int64) ([]BehaviorStat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	type agg struct {
		count int
		sum   float64
	}
	byType := make(map[string]*agg)
	order := make([]string, 0, 8)
	for _, b := range s.behaviors[userID] {
		a, ok := byType[b.SituationType]
		if !ok {
			a = &agg{}
			byType[b.SituationType] = a
			order = append(order, b.SituationType)
		}
		a.count++
		a.sum += b.Confidence
	}
	out := make([]BehaviorStat, 0, len(order))
	for _, st := range order {
		a := byType[st]
		out = append(out, BehaviorStat{
			SituationType: st,
			Count:         a.count,
			AvgConfidence: a.sum / float64(a.count),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out, nil
}

func (s *InMemoryStore) UpdateProfile(_ context.Context, userID int64, upd ProfileUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var birthDate *time.Time
	if upd.BirthDate != nil && *upd.BirthDate != "" {
		t, err := time.Parse("2006-01-02", *upd.BirthDate)
		if err != nil {
			return err
		}
		birthDate = &t
	}
	now := time.Now().UTC()
	p, ok := s.profiles[userID]
	if !ok {
		p = &Profile{ID: userID, CreatedAt: now}
		s.profiles[userID] = p
	}
	p.Name = upd.Name
	p.BirthDate = birthDate
	p.Location = upd.Location
	p.Occupation = upd.Occupation
	p.Bio = upd.Bio
	p.UpdatedAt = now
	return nil
}

func (s *InMemoryStore) UpdateTraitValues(_ context.Context, userID int64, updates []TraitUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	arr := s.traits[userID]
	for _, u := range updates {
		for i := range arr {
			if arr[i].Name == u.Name {
				arr[i].Value = u.Value
			}
		}
	}
	return nil
}

func (s *InMemoryStore) AddKnowledge(_ context.Context, userID int64, entry KnowledgeEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	s.knowledge[userID] = append(s.knowledge[userID], entry)
	return nil
}

func (s *InMemoryStore) AddPreference(_ context.Context, userID int64, pref Preference) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prefs[userID] = append(s.prefs[userID], pref)
	return nil
}

// SetTraits seeds traits wholesale; used by local setups and tests.
func (s *InMemoryStore) SetTraits(userID int64, traits []PersonalityTrait) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.traits[userID] = append([]PersonalityTrait(nil), traits...)
}

// Preferences returns stored preferences; used by tests.
func (s *InMemoryStore) Preferences(userID int64) []Preference {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Preference(nil), s.prefs[userID]...)
}

// BehaviorCount reports how many patterns are stored; used by tests.
func (s *InMemoryStore) BehaviorCount(userID int64) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.behaviors[userID])
}

func (s *InMemoryStore) Close() error { return nil }
