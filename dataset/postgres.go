package dataset

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/rushteam/newsrec/core"
)

// PostgresLoader 从关系库全量加载阅读记录与文章元信息。
//
// 两次查询构成一个输入快照：
//   - reading_sessions: (user_id, article_id) 阅读对
//   - feed_items: (guid, keywords, published_at, created_at)
//
// 生效时间优先取 published_at，为空则取 created_at。
type PostgresLoader struct {
	DB  *sql.DB
	Log *zap.Logger
}

func (l *PostgresLoader) Load(ctx context.Context) (*Dataset, error) {
	ds := &Dataset{
		Interactions: make(map[string]map[string]struct{}),
		Articles:     make(map[string]core.Article),
	}

	rows, err := l.DB.QueryContext(ctx, `SELECT user_id, article_id FROM reading_sessions`)
	if err != nil {
		return nil, fmt.Errorf("load reading_sessions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var userID, articleID string
		if err := rows.Scan(&userID, &articleID); err != nil {
			return nil, fmt.Errorf("scan reading_sessions: %w", err)
		}
		// 占位符文章在加载阶段即剔除，不进入训练集
		if core.IsPlaceholderArticle(articleID) {
			continue
		}
		set, ok := ds.Interactions[userID]
		if !ok {
			set = make(map[string]struct{})
			ds.Interactions[userID] = set
		}
		set[articleID] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reading_sessions: %w", err)
	}

	metaRows, err := l.DB.QueryContext(ctx, `
		SELECT guid, keywords, published_at, created_at
		FROM feed_items
		WHERE guid IS NOT NULL`)
	if err != nil {
		return nil, fmt.Errorf("load feed_items: %w", err)
	}
	defer metaRows.Close()

	for metaRows.Next() {
		var (
			guid      string
			keywords  sql.NullString
			published sql.NullTime
			created   sql.NullTime
		)
		if err := metaRows.Scan(&guid, &keywords, &published, &created); err != nil {
			return nil, fmt.Errorf("scan feed_items: %w", err)
		}

		art := core.Article{
			ID:       guid,
			Keywords: ParseKeywords(keywords.String),
		}
		switch {
		case published.Valid:
			art.Timestamp = published.Time
		case created.Valid:
			art.Timestamp = created.Time
		}
		ds.Articles[guid] = art
	}
	if err := metaRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate feed_items: %w", err)
	}

	if l.Log != nil {
		l.Log.Info("dataset loaded",
			zap.Int("users", len(ds.Interactions)),
			zap.Int("articles", len(ds.Articles)))
	}
	return ds, nil
}
