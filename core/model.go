package core

import "time"

// ScoredEntry 是 (文章, 分数) 对，按分数降序排列时用于邻接表与热度表。
type ScoredEntry struct {
	ID    string
	Score float64
}

// ModelView 是离线相似度模型的只读视图。
//
// 设计原则：
//   - 定义在领域层（core），由 model 包的不可变快照实现
//   - 模型整体重建后通过原子指针交换发布，读者永远看到一份自洽的快照
//   - 返回的 map/slice 为快照内部数据，调用方不得修改
type ModelView interface {
	// WatchedBy 返回用户读过的文章集合（训练集视角）
	WatchedBy(userID string) map[string]struct{}

	// Neighbors 返回文章的相似邻接表（分数降序，已按 TopK 截断；
	// 元数据表内的文章保证有条目，无需存在性检查）
	Neighbors(articleID string) []ScoredEntry

	// PopularityRank 返回按阅读人数降序的全量文章
	PopularityRank() []ScoredEntry

	// LatestRank 返回按生效时间降序的文章 ID（无时间信息的视为最新，排在最前）
	LatestRank() []string

	// EligibleArticles 返回元数据表内全部可推荐文章 ID（已剔除占位符）
	EligibleArticles() []string

	// ArticleTime 返回文章生效时间；第二个返回值为 false 表示时间未知
	ArticleTime(articleID string) (time.Time, bool)
}
