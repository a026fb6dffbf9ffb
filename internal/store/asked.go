package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"go.uber.org/zap"
)

// askedRepo implements AskedRepo on the asked_questions table.
type askedRepo struct {
	drv    *entsql.Driver
	logger *zap.Logger
}

func (r *askedRepo) Asked(ctx context.Context, key AskedKey) ([]string, error) {
	return readAsked(ctx, r.drv, key)
}

func (r *askedRepo) MergeAsked(ctx context.Context, key AskedKey, texts []string) (err error) {
	slug := Slug(key.Topic)
	if slug == "" {
		return fmt.Errorf("merge asked questions: empty topic")
	}

	tx, err := r.drv.Tx(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	existing, err := readAsked(ctx, tx, key)
	if err != nil {
		return err
	}
	merged := mergeTexts(existing, texts)

	raw, err := json.Marshal(merged)
	if err != nil {
		return fmt.Errorf("marshal asked questions: %w", err)
	}

	query, args := entsql.Dialect(dialect.SQLite).
		Insert(AskedQuestionsTable.Name).
		Columns("namespace", "user_id", "topic_slug", "topic", "questions", "updated_at").
		Values(key.Namespace, key.UserID, slug, key.Topic, string(raw), time.Now().UTC()).
		OnConflict(
			entsql.ConflictColumns("namespace", "user_id", "topic_slug"),
			entsql.ResolveWithNewValues(),
		).
		Query()
	if err = tx.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("upsert asked questions: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit asked questions: %w", err)
	}

	r.logger.Debug("asked questions merged",
		zap.String("topic", slug),
		zap.Int("added", len(merged)-len(existing)),
		zap.Int("total", len(merged)))
	return nil
}

func (r *askedRepo) ClearAsked(ctx context.Context, key AskedKey) error {
	query, args := entsql.Dialect(dialect.SQLite).
		Delete(AskedQuestionsTable.Name).
		Where(askedPredicate(key)).
		Query()
	if err := r.drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("clear asked questions: %w", err)
	}
	return nil
}

func (r *askedRepo) AskedTopics(ctx context.Context, namespace, userID string) ([]AskedTopic, error) {
	query, args := entsql.Dialect(dialect.SQLite).
		Select("topic_slug", "topic", "questions", "updated_at").
		From(entsql.Table(AskedQuestionsTable.Name)).
		Where(entsql.And(
			entsql.EQ("namespace", namespace),
			entsql.EQ("user_id", userID),
		)).
		OrderBy(entsql.Desc("updated_at")).
		Query()

	var rows entsql.Rows
	if err := r.drv.Query(ctx, query, args, &rows); err != nil {
		return nil, fmt.Errorf("query asked topics: %w", err)
	}
	defer rows.Close()

	var out []AskedTopic
	for rows.Next() {
		var (
			t   AskedTopic
			raw []byte
		)
		if err := rows.Scan(&t.Slug, &t.Topic, &raw, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan asked topic: %w", err)
		}
		var texts []string
		if err := json.Unmarshal(raw, &texts); err != nil {
			return nil, fmt.Errorf("decode asked questions for %q: %w", t.Slug, err)
		}
		t.Count = len(texts)
		out = append(out, t)
	}
	return out, rows.Err()
}

// readAsked loads the record for key through q, which may be the driver
// or an open transaction.
func readAsked(ctx context.Context, q dialect.ExecQuerier, key AskedKey) ([]string, error) {
	query, args := entsql.Dialect(dialect.SQLite).
		Select("questions").
		From(entsql.Table(AskedQuestionsTable.Name)).
		Where(askedPredicate(key)).
		Limit(1).
		Query()

	var rows entsql.Rows
	if err := q.Query(ctx, query, args, &rows); err != nil {
		return nil, fmt.Errorf("query asked questions: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return []string{}, rows.Err()
	}
	var (
		raw   []byte
		texts []string
	)
	if err := rows.Scan(&raw); err != nil {
		return nil, fmt.Errorf("scan asked questions: %w", err)
	}
	if err := json.Unmarshal(raw, &texts); err != nil {
		return nil, fmt.Errorf("decode asked questions: %w", err)
	}
	if texts == nil {
		texts = []string{}
	}
	return texts, nil
}

func askedPredicate(key AskedKey) *entsql.Predicate {
	return entsql.And(
		entsql.EQ("namespace", key.Namespace),
		entsql.EQ("user_id", key.UserID),
		entsql.EQ("topic_slug", Slug(key.Topic)),
	)
}

// mergeTexts appends the texts not already present in existing, keeping
// the original order. Empty strings are skipped.
func mergeTexts(existing, texts []string) []string {
	seen := make(map[string]struct{}, len(existing)+len(texts))
	out := make([]string, 0, len(existing)+len(texts))
	for _, t := range existing {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	for _, t := range texts {
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
