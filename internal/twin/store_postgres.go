package twin

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists twin data in PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, strings.TrimSpace(databaseURL))
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := initSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return &PostgresStore{pool: pool}, nil
}

func initSchema(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS user_profile (
			id BIGINT PRIMARY KEY,
			name TEXT,
			birth_date DATE,
			location TEXT,
			occupation TEXT,
			bio TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
		`CREATE TABLE IF NOT EXISTS conversations (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL,
			title TEXT NOT NULL,
			started_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			last_message_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
		`CREATE INDEX IF NOT EXISTS idx_conversations_user_started ON conversations (user_id, started_at DESC);`,
		`CREATE TABLE IF NOT EXISTS messages (
			id BIGSERIAL PRIMARY KEY,
			conversation_id BIGINT NOT NULL REFERENCES conversations(id),
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
		`CREATE INDEX IF NOT EXISTS idx_messages_conversation_created ON messages (conversation_id, created_at DESC);`,
		`CREATE TABLE IF NOT EXISTS personality_traits (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL,
			trait_name TEXT NOT NULL,
			trait_value INTEGER NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			UNIQUE (user_id, trait_name)
		);`,
		`CREATE TABLE IF NOT EXISTS knowledge_base (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL,
			category TEXT NOT NULL,
			topic TEXT NOT NULL DEFAULT '',
			content TEXT NOT NULL,
			importance INTEGER NOT NULL DEFAULT 3,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
		`CREATE INDEX IF NOT EXISTS idx_knowledge_user_importance ON knowledge_base (user_id, importance DESC, created_at DESC);`,
		`CREATE TABLE IF NOT EXISTS behavior_patterns (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL,
			situation_type TEXT NOT NULL,
			context TEXT NOT NULL DEFAULT '',
			typical_response TEXT NOT NULL,
			confidence_score DOUBLE PRECISION NOT NULL,
			times_observed INTEGER NOT NULL DEFAULT 1,
			UNIQUE (user_id, situation_type, typical_response)
		);`,
		`CREATE TABLE IF NOT EXISTS preferences (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL,
			category TEXT NOT NULL,
			item TEXT NOT NULL,
			preference_type TEXT NOT NULL DEFAULT 'like',
			intensity INTEGER NOT NULL DEFAULT 3,
			notes TEXT NOT NULL DEFAULT ''
		);`,
	}

	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema failed on %q: %w", stmt, err)
		}
	}
	return nil
}

func (s *PostgresStore) CreateConversation(ctx context.Context, userID int64, title string) (int64, error) {
	var id int64
	err := s.pool.QueryRow(ctx,
		`INSERT INTO conversations (user_id, title) VALUES ($1, $2) RETURNING id`,
		userID, title,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create conversation: %w", err)
	}
	return id, nil
}

func (s *PostgresStore) RecentMessages(ctx context.Context, conversationID int64, limit int) ([]Message, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, conversation_id, role, content, created_at
		   FROM messages WHERE conversation_id=$1 ORDER BY created_at DESC LIMIT $2`,
		conversationID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query recent messages: %w", err)
	}
	defer rows.Close()

	out := make([]Message, 0, limit)
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message row: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate message rows: %w", err)
	}

	// Reverse into chronological order for prompt coherence.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

func (s *PostgresStore) SaveMessage(ctx context.Context, conversationID int64, role, content string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx,
		`INSERT INTO messages (conversation_id, role, content) VALUES ($1, $2, $3)`,
		conversationID, role, content,
	); err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	if _, err := tx.Exec(ctx,
		`UPDATE conversations SET last_message_at=now() WHERE id=$1`,
		conversationID,
	); err != nil {
		return fmt.Errorf("touch conversation: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (s *PostgresStore) Traits(ctx context.Context, userID int64) ([]PersonalityTrait, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT trait_name, trait_value, description
		   FROM personality_traits WHERE user_id=$1 ORDER BY trait_value DESC, trait_name ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query traits: %w", err)
	}
	defer rows.Close()

	out := make([]PersonalityTrait, 0, 8)
	for rows.Next() {
		var t PersonalityTrait
		if err := rows.Scan(&t.Name, &t.Value, &t.Description); err != nil {
			return nil, fmt.Errorf("scan trait row: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trait rows: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) TopKnowledge(ctx context.Context, userID int64, limit int) ([]KnowledgeEntry, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT category, topic, content, importance, created_at
		   FROM knowledge_base WHERE user_id=$1
		  ORDER BY importance DESC, created_at DESC LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query knowledge: %w", err)
	}
	defer rows.Close()

	out := make([]KnowledgeEntry, 0, limit)
	for rows.Next() {
		var k KnowledgeEntry
		if err := rows.Scan(&k.Category, &k.Topic, &k.Content, &k.Importance, &k.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan knowledge row: %w", err)
		}
		out = append(out, k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate knowledge rows: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) TopBehaviors(ctx context.Context, userID int64, limit int) ([]BehaviorPattern, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT situation_type, context, typical_response, confidence_score, times_observed
		   FROM behavior_patterns WHERE user_id=$1
		  ORDER BY confidence_score DESC, times_observed DESC LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query behaviors: %w", err)
	}
	defer rows.Close()

	out := make([]BehaviorPattern, 0, limit)
	for rows.Next() {
		var b BehaviorPattern
		if err := rows.Scan(&b.SituationType, &b.Context, &b.TypicalResponse, &b.Confidence, &b.TimesObserved); err != nil {
			return nil, fmt.Errorf("scan behavior row: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate behavior rows: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) RecordBehavior(ctx context.Context, userID int64, p BehaviorPattern) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO behavior_patterns (user_id, situation_type, context, typical_response, confidence_score)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (user_id, situation_type, typical_response) DO NOTHING`,
		userID, p.SituationType, p.Context, p.TypicalResponse, p.Confidence,
	)
	if err != nil {
		return fmt.Errorf("record behavior: %w", err)
	}
	return nil
}

func (s *PostgresStore) Profile(ctx context.Context, userID int64) (*Profile, error) {
	var p Profile
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, birth_date, location, occupation, bio, created_at, updated_at
		   FROM user_profile WHERE id=$1`,
		userID,
	).Scan(&p.ID, &p.Name, &p.BirthDate, &p.Location, &p.Occupation, &p.Bio, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("query profile: %w", err)
	}
	return &p, nil
}

func (s *PostgresStore) KnowledgeStats(ctx context.Context, userID int64) ([]KnowledgeStat, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT category, COUNT(*) FROM knowledge_base WHERE user_id=$1 GROUP BY category`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query knowledge stats: %w", err)
	}
	defer rows.Close()

	out := make([]KnowledgeStat, 0, 8)
	for rows.Next() {
		var st KnowledgeStat
		if err := rows.Scan(&st.Category, &st.Count); err != nil {
			return nil, fmt.Errorf("scan knowledge stat row: %w", err)
		}
		out = append(out, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate knowledge stat rows: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) ActivityStats(ctx context.Context, userID int64) (ActivityStats, error) {
	var st ActivityStats
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*), COUNT(DISTINCT DATE(started_at)) FROM conversations WHERE user_id=$1`,
		userID,
	).Scan(&st.TotalConversations, &st.ActiveDays)
	if err != nil {
		return ActivityStats{}, fmt.Errorf("query activity stats: %w", err)
	}
	return st, nil
}

func (s *PostgresStore) BehaviorStats(ctx context.Context, userID int64) ([]BehaviorStat, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT situation_type, COUNT(*), AVG(confidence_score)
		   FROM behavior_patterns WHERE user_id=$1
		  GROUP BY situation_type ORDER BY COUNT(*) DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query behavior stats: %w", err)
	}
	defer rows.Close()

	out := make([]BehaviorStat, 0, 8)
	for rows.Next() {
		var st BehaviorStat
		if err := rows.Scan(&st.SituationType, &st.Count, &st.AvgConfidence); err != nil {
			return nil, fmt.Errorf("scan behavior stat row: %w", err)
		}
		out = append(out, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate behavior stat rows: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) UpdateProfile(ctx context.Context, userID int64, upd ProfileUpdate) error {
	var birthDate *time.Time
	if upd.BirthDate != nil && strings.TrimSpace(*upd.BirthDate) != "" {
		t, err := time.Parse("2006-01-02", strings.TrimSpace(*upd.BirthDate))
		if err != nil {
			return fmt.Errorf("parse birth_date: %w", err)
		}
		birthDate = &t
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx,
		`INSERT INTO user_profile (id, name, birth_date, location, occupation, bio)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (id) DO UPDATE SET
			name=EXCLUDED.name,
			birth_date=EXCLUDED.birth_date,
			location=EXCLUDED.location,
			occupation=EXCLUDED.occupation,
			bio=EXCLUDED.bio,
			updated_at=now()`,
		userID, upd.Name, birthDate, upd.Location, upd.Occupation, upd.Bio,
	); err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpdateTraitValues(ctx context.Context, userID int64, updates []TraitUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, u := range updates {
		if _, err := tx.Exec(ctx,
			`UPDATE personality_traits SET trait_value=$1, updated_at=now()
			  WHERE user_id=$2 AND trait_name=$3`,
			u.Value, userID, u.Name,
		); err != nil {
			return fmt.Errorf("update trait %q: %w", u.Name, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (s *PostgresStore) AddKnowledge(ctx context.Context, userID int64, entry KnowledgeEntry) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO knowledge_base (user_id, category, topic, content, importance)
		 VALUES ($1, $2, $3, $4, $5)`,
		userID, entry.Category, entry.Topic, entry.Content, entry.Importance,
	)
	if err != nil {
		return fmt.Errorf("insert knowledge: %w", err)
	}
	return nil
}

func (s *PostgresStore) AddPreference(ctx context.Context, userID int64, pref Preference) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO preferences (user_id, category, item, preference_type, intensity, notes)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		userID, pref.Category, pref.Item, pref.Type, pref.Intensity, pref.Notes,
	)
	if err != nil {
		return fmt.Errorf("insert preference: %w", err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
