// Package model 实现离线的 Item-CF 相似度模型。
//
// 模型由三部分组成：
//   - 热度表：文章 -> 独立阅读用户数
//   - 共现表：两篇文章被同一用户阅读的用户数
//   - 相似度：共现数 / sqrt(热度积) + 关键词 Jaccard，直接相加（不归一化）
//
// 相似度只在元数据表内的文章之间计算（没有元信息的文章不参与
// 平方复杂度的遍历）；每篇文章只保留分数降序的 TopK 邻接表，
// 避免稠密矩阵在大语料上的平方级存储。
//
// 模型每次全量重建为一份不可变快照，通过 Handle 原子交换发布；
// 并发读者永远看到一份完整自洽的模型。
package model

import (
	"context"
	"math"
	"runtime"
	"sort"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rushteam/newsrec/core"
	"github.com/rushteam/newsrec/dataset"
)

// DefaultNeighborK 是每篇文章保留的相似邻居数（个性化层实际消费的宽度）。
const DefaultNeighborK = 20

// Builder 负责从数据快照构建相似度模型。
type Builder struct {
	Loader dataset.Loader

	// NeighborK 每篇文章保留的 TopK 邻居，<=0 时取 DefaultNeighborK
	NeighborK int

	// Workers 相似度计算的并发分片数，<=0 时取 CPU 数
	Workers int

	Log *zap.Logger
}

// Build 全量构建一份新快照。同一输入快照重复构建产出相同模型
// （浮点求和的结合顺序固定，候选遍历按 ID 排序）。
func (b *Builder) Build(ctx context.Context) (*Snapshot, error) {
	ds, err := b.Loader.Load(ctx)
	if err != nil {
		return nil, err
	}
	return b.buildFrom(ctx, ds)
}

func (b *Builder) buildFrom(ctx context.Context, ds *dataset.Dataset) (*Snapshot, error) {
	snap := &Snapshot{
		builtAt:    time.Now(),
		watched:    ds.Interactions,
		articles:   ds.Articles,
		popularity: make(map[string]int),
		neighbors:  make(map[string][]core.ScoredEntry),
	}

	// 热度：文章 -> 独立阅读用户数（交互已按存在性折叠）
	for _, read := range ds.Interactions {
		for article := range read {
			snap.popularity[article]++
		}
	}

	// 共现：同一用户阅读集合内的有序对计数
	co := make(map[string]map[string]int)
	for _, read := range ds.Interactions {
		for a := range read {
			for bID := range read {
				if a == bID {
					continue
				}
				row, ok := co[a]
				if !ok {
					row = make(map[string]int)
					co[a] = row
				}
				row[bID]++
			}
		}
	}

	// 相似度只覆盖元数据表内的非占位符文章
	ids := make([]string, 0, len(ds.Articles))
	for id := range ds.Articles {
		if core.IsPlaceholderArticle(id) {
			continue
		}
		ids = append(ids, id)
	}
	sort.Strings(ids)

	topK := b.NeighborK
	if topK <= 0 {
		topK = DefaultNeighborK
	}
	workers := b.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(ids) {
		workers = len(ids)
	}

	// 平方级相似度计算按文章分片并发执行：分片之间无依赖，
	// 各自写入独立下标，最后合并为邻接表映射。
	lists := make([][]core.ScoredEntry, len(ids))
	if len(ids) > 0 {
		eg, egCtx := errgroup.WithContext(ctx)
		for w := 0; w < workers; w++ {
			shard := w
			eg.Go(func() error {
				for i := shard; i < len(ids); i += workers {
					if err := egCtx.Err(); err != nil {
						return err
					}
					lists[i] = b.neighborList(ids[i], ids, snap.popularity, co, ds.Articles, topK)
				}
				return nil
			})
		}
		if err := eg.Wait(); err != nil {
			return nil, err
		}
	}
	for i, id := range ids {
		snap.neighbors[id] = lists[i]
	}

	snap.eligible = ids
	snap.popularityRank = popularityRank(snap.popularity)
	snap.latestRank = latestRank(ids, ds.Articles)

	if b.Log != nil {
		b.Log.Info("similarity model built",
			zap.Int("users", len(snap.watched)),
			zap.Int("articles", len(ids)),
			zap.Int("neighbor_k", topK))
	}
	return snap, nil
}

// neighborList 计算一篇文章对全部候选的组合相似度，保留 TopK。
// 零分对不进入邻接表；元数据表内的文章在 neighbors 映射里始终有条目
// （可能为空表），查询无需存在性检查。
func (b *Builder) neighborList(
	n1 string,
	ids []string,
	popularity map[string]int,
	co map[string]map[string]int,
	articles map[string]core.Article,
	topK int,
) []core.ScoredEntry {
	coRow := co[n1]
	kw1 := articles[n1].Keywords

	entries := make([]core.ScoredEntry, 0)
	for _, n2 := range ids {
		if n1 == n2 {
			continue
		}

		var coSim float64
		p1, p2 := popularity[n1], popularity[n2]
		if p1 > 0 && p2 > 0 {
			coSim = float64(coRow[n2]) / math.Sqrt(float64(p1)*float64(p2))
		}

		kwSim := keywordJaccard(kw1, articles[n2].Keywords)

		if sim := coSim + kwSim; sim > 0 {
			entries = append(entries, core.ScoredEntry{ID: n2, Score: sim})
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].ID < entries[j].ID
	})
	if len(entries) > topK {
		entries = entries[:topK]
	}
	return entries
}

// keywordJaccard 计算两个关键词集合的交并比；任一集合为空时为 0。
func keywordJaccard(kw1, kw2 map[string]struct{}) float64 {
	if len(kw1) == 0 || len(kw2) == 0 {
		return 0
	}
	small, large := kw1, kw2
	if len(small) > len(large) {
		small, large = large, small
	}
	inter := 0
	for k := range small {
		if _, ok := large[k]; ok {
			inter++
		}
	}
	union := len(kw1) + len(kw2) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

func popularityRank(popularity map[string]int) []core.ScoredEntry {
	rank := make([]core.ScoredEntry, 0, len(popularity))
	for id, count := range popularity {
		rank = append(rank, core.ScoredEntry{ID: id, Score: float64(count)})
	}
	sort.Slice(rank, func(i, j int) bool {
		if rank[i].Score != rank[j].Score {
			return rank[i].Score > rank[j].Score
		}
		return rank[i].ID < rank[j].ID
	})
	return rank
}

// latestRank 按生效时间降序排列元数据表内的文章。
// 无时间信息的文章视为最新（不因缺数据受罚），排在最前。
func latestRank(ids []string, articles map[string]core.Article) []string {
	rank := make([]string, len(ids))
	copy(rank, ids)
	sort.SliceStable(rank, func(i, j int) bool {
		ti, tj := articles[rank[i]].Timestamp, articles[rank[j]].Timestamp
		switch {
		case ti.IsZero() && tj.IsZero():
			return rank[i] < rank[j]
		case ti.IsZero():
			return true
		case tj.IsZero():
			return false
		case !ti.Equal(tj):
			return ti.After(tj)
		default:
			return rank[i] < rank[j]
		}
	})
	return rank
}

// Snapshot 是一份不可变的模型快照，实现 core.ModelView。
// 字段在构建完成后不再修改；读者不得修改返回的 map/slice。
type Snapshot struct {
	builtAt        time.Time
	watched        map[string]map[string]struct{}
	articles       map[string]core.Article
	popularity     map[string]int
	popularityRank []core.ScoredEntry
	neighbors      map[string][]core.ScoredEntry
	latestRank     []string
	eligible       []string
}

var _ core.ModelView = (*Snapshot)(nil)

func (s *Snapshot) BuiltAt() time.Time { return s.builtAt }

func (s *Snapshot) WatchedBy(userID string) map[string]struct{} {
	return s.watched[userID]
}

func (s *Snapshot) Neighbors(articleID string) []core.ScoredEntry {
	return s.neighbors[articleID]
}

func (s *Snapshot) PopularityRank() []core.ScoredEntry {
	return s.popularityRank
}

func (s *Snapshot) LatestRank() []string {
	return s.latestRank
}

func (s *Snapshot) EligibleArticles() []string {
	return s.eligible
}

func (s *Snapshot) ArticleTime(articleID string) (time.Time, bool) {
	art, ok := s.articles[articleID]
	if !ok || !art.HasTimestamp() {
		return time.Time{}, false
	}
	return art.Timestamp, true
}

// Popularity 返回文章的独立阅读用户数。
func (s *Snapshot) Popularity(articleID string) int {
	return s.popularity[articleID]
}

// Handle 是模型快照的原子引用。重建在后台进行，完成后 Swap 发布；
// 请求路径 Load 一次并在整个池构建过程中使用同一份快照。
type Handle struct {
	cur atomic.Pointer[Snapshot]
}

func NewHandle(s *Snapshot) *Handle {
	h := &Handle{}
	h.cur.Store(s)
	return h
}

func (h *Handle) Load() *Snapshot {
	return h.cur.Load()
}

func (h *Handle) Swap(s *Snapshot) {
	h.cur.Store(s)
}
