package twin

import (
	"context"
	"strings"

	"github.com/ndrozd/mirra/internal/observability"
)

const (
	defaultImportance     = 3
	defaultPreferenceType = "like"
	defaultIntensity      = 3
)

// ProfileService serves the aggregate profile view and applies edits.
type ProfileService struct {
	store   Store
	metrics *observability.Metrics
	userID  int64
}

func NewProfileService(store Store, metrics *observability.Metrics) *ProfileService {
	return &ProfileService{
		store:   store,
		metrics: metrics,
		userID:  DefaultUserID,
	}
}

// ProfileOverview aggregates five independent reads. A missing profile row
// yields a null profile, not an error; empty stats render as empty lists.
type ProfileOverview struct {
	Profile        *Profile           `json:"profile"`
	Traits         []PersonalityTrait `json:"traits"`
	KnowledgeStats []KnowledgeStat    `json:"knowledgeStats"`
	Stats          ActivityStats      `json:"stats"`
	BehaviorStats  []BehaviorStat     `json:"behaviorStats"`
}

func (s *ProfileService) Overview(ctx context.Context) (ProfileOverview, error) {
	profile, err := s.store.Profile(ctx, s.userID)
	if err != nil {
		return ProfileOverview{}, err
	}
	traits, err := s.store.Traits(ctx, s.userID)
	if err != nil {
		return ProfileOverview{}, err
	}
	knowledgeStats, err := s.store.KnowledgeStats(ctx, s.userID)
	if err != nil {
		return ProfileOverview{}, err
	}
	stats, err := s.store.ActivityStats(ctx, s.userID)
	if err != nil {
		return ProfileOverview{}, err
	}
	behaviorStats, err := s.store.BehaviorStats(ctx, s.userID)
	if err != nil {
		return ProfileOverview{}, err
	}

	if traits == nil {
		traits = []PersonalityTrait{}
	}
	if knowledgeStats == nil {
		knowledgeStats = []KnowledgeStat{}
	}
	if behaviorStats == nil {
		behaviorStats = []BehaviorStat{}
	}

	return ProfileOverview{
		Profile:        profile,
		Traits:         traits,
		KnowledgeStats: knowledgeStats,
		Stats:          stats,
		BehaviorStats:  behaviorStats,
	}, nil
}

// ProfileEdit is the PUT payload: either shape may be present; each is
// applied in its own unit of work, with no cross-shape rollback.
type ProfileEdit struct {
	Profile *ProfileUpdate `json:"profile"`
	Traits  []TraitUpdate  `json:"traits"`
}

func (s *ProfileService) ApplyEdit(ctx context.Context, edit ProfileEdit) error {
	if edit.Profile != nil {
		if err := s.store.UpdateProfile(ctx, s.userID, *edit.Profile); err != nil {
			return err
		}
		if s.metrics != nil {
			s.metrics.ProfileUpdates.WithLabelValues("profile").Inc()
		}
	}
	if len(edit.Traits) > 0 {
		if err := s.store.UpdateTraitValues(ctx, s.userID, edit.Traits); err != nil {
			return err
		}
		if s.metrics != nil {
			s.metrics.ProfileUpdates.WithLabelValues("traits").Inc()
		}
	}
	return nil
}

func (s *ProfileService) AddKnowledge(ctx context.Context, entry KnowledgeEntry) error {
	if entry.Importance == 0 {
		entry.Importance = defaultImportance
	}
	if err := s.store.AddKnowledge(ctx, s.userID, entry); err != nil {
		return err
	}
	if s.metrics != nil {
		s.metrics.ProfileUpdates.WithLabelValues("knowledge").Inc()
	}
	return nil
}

func (s *ProfileService) AddPreference(ctx context.Context, pref Preference) error {
	if strings.TrimSpace(pref.Type) == "" {
		pref.Type = defaultPreferenceType
	}
	if pref.Intensity == 0 {
		pref.Intensity = defaultIntensity
	}
	if err := s.store.AddPreference(ctx, s.userID, pref); err != nil {
		return err
	}
	if s.metrics != nil {
		s.metrics.ProfileUpdates.WithLabelValues("preference").Inc()
	}
	return nil
}
