package twin

import (
	"context"
	"testing"
)

func TestInMemoryRecentMessagesChronological(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()

	id, err := store.CreateConversation(ctx, DefaultUserID, "Новый диалог")
	if err != nil {
		t.Fatalf("CreateConversation error = %v", err)
	}
	for _, content := range []string{"a", "b", "c"} {
		if err := store.SaveMessage(ctx, id, RoleUser, content); err != nil {
			t.Fatalf("SaveMessage error = %v", err)
		}
	}

	msgs, err := store.RecentMessages(ctx, id, 2)
	if err != nil {
		t.Fatalf("RecentMessages error = %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("len(msgs) = %d, want 2", len(msgs))
	}
	if msgs[0].Content != "b" || msgs[1].Content != "c" {
		t.Fatalf("msgs = [%q, %q], want most recent two in chronological order", msgs[0].Content, msgs[1].Content)
	}
}

func TestInMemoryKnowledgeStatsEmptyIsNotError(t *testing.T) {
	store := NewInMemoryStore()
	stats, err := store.KnowledgeStats(context.Background(), DefaultUserID)
	if err != nil {
		t.Fatalf("KnowledgeStats error = %v", err)
	}
	if len(stats) != 0 {
		t.Fatalf("stats = %+v, want empty", stats)
	}
}

func TestInMemoryBehaviorStatsAggregates(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()

	patterns := []BehaviorPattern{
		{SituationType: "professional", TypicalResponse: "a", Confidence: 0.2},
		{SituationType: "professional", TypicalResponse: "b", Confidence: 0.4},
		{SituationType: "emotional", TypicalResponse: "c", Confidence: 0.9},
	}
	for _, p := range patterns {
		if err := store.RecordBehavior(ctx, DefaultUserID, p); err != nil {
			t.Fatalf("RecordBehavior error = %v", err)
		}
	}

	stats, err := store.BehaviorStats(ctx, DefaultUserID)
	if err != nil {
		t.Fatalf("BehaviorStats error = %v", err)
	}
	if len(stats) != 2 {
		t.Fatalf("len(stats) = %d, want 2", len(stats))
	}
	if stats[0].SituationType != "professional" || stats[0].Count != 2 {
		t.Fatalf("stats[0] = %+v, want professional with count 2 first", stats[0])
	}
	if diff := stats[0].AvgConfidence - 0.3; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("avg confidence = %v, want 0.3", stats[0].AvgConfidence)
	}
}

func TestInMemoryUpdateTraitValuesMatchesByName(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	store.SetTraits(DefaultUserID, []PersonalityTrait{
		{Name: "юмор", Value: 50},
		{Name: "эмпатия", Value: 70},
	})

	err := store.UpdateTraitValues(ctx, DefaultUserID, []TraitUpdate{
		{Name: "юмор", Value: 90},
		{Name: "несуществующая", Value: 10},
	})
	if err != nil {
		t.Fatalf("UpdateTraitValues error = %v", err)
	}

	traits, err := store.Traits(ctx, DefaultUserID)
	if err != nil {
		t.Fatalf("Traits error = %v", err)
	}
	if traits[0].Name != "юмор" || traits[0].Value != 90 {
		t.Fatalf("traits[0] = %+v, want юмор at 90 ranked first", traits[0])
	}
	if len(traits) != 2 {
		t.Fatalf("len(traits) = %d, want 2 (no phantom trait created)", len(traits))
	}
}
