package recall

import (
	"context"
	"sort"
	"time"

	"github.com/rushteam/newsrec/core"
	"github.com/rushteam/newsrec/pkg/utils"
)

// ItemCF 是基于物品协同过滤的个性化召回源（i2i）。
//
// 算法流程：
//  1. 取用户最近 SeedWindow 内阅读的文章作为种子（无时间信息的视为最近）
//  2. 对每个种子取 TopK 相似文章，分数跨种子累加
//     （被多个种子命中的文章权重更高——这是有意的个性化内热度加成）
//  3. 对排序结果做时间过滤（Window，不足则按回退窗口扩大），再截断
type ItemCF struct {
	// SeedWindow 种子的时间窗口，默认 7 天
	SeedWindow time.Duration

	// Window / Fallback 产出的时间过滤窗口，默认 3 天 / 2 倍
	Window   time.Duration
	Fallback time.Duration

	// TopK 每个种子消费的相似邻居数，默认 20
	TopK int
}

func (r *ItemCF) Name() string { return "recall.itemcf" }

func (r *ItemCF) Recall(
	_ context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	if rctx == nil || rctx.Model == nil || rctx.UserID == "" {
		return nil, nil
	}

	seedWindow := r.SeedWindow
	if seedWindow <= 0 {
		seedWindow = 7 * 24 * time.Hour
	}
	window := r.Window
	if window <= 0 {
		window = 3 * 24 * time.Hour
	}
	fallback := r.Fallback
	if fallback <= window {
		fallback = 2 * window
	}
	topK := r.TopK
	if topK <= 0 {
		topK = 20
	}

	watched := rctx.Watched
	if watched == nil {
		watched = rctx.Model.WatchedBy(rctx.UserID)
	}
	if len(watched) == 0 {
		return nil, nil
	}

	// 只用最近阅读的文章做种子；无时间信息的保守视为最近
	cutoff := rctx.Now.Add(-seedWindow)
	seeds := make([]string, 0, len(watched))
	for id := range watched {
		if ts, ok := rctx.Model.ArticleTime(id); ok && ts.Before(cutoff) {
			continue
		}
		seeds = append(seeds, id)
	}
	sort.Strings(seeds)

	// 分数跨种子累加
	rank := make(map[string]float64)
	for _, seed := range seeds {
		neighbors := rctx.Model.Neighbors(seed)
		if len(neighbors) > topK {
			neighbors = neighbors[:topK]
		}
		for _, nb := range neighbors {
			if _, ok := watched[nb.ID]; ok {
				continue
			}
			if rctx.Blocked(nb.ID) {
				continue
			}
			rank[nb.ID] += nb.Score
		}
	}
	if len(rank) == 0 {
		return nil, nil
	}

	out := make([]*core.Item, 0, len(rank))
	for id, score := range rank {
		it := core.NewItem(id)
		it.Score = score
		it.PutLabel("recall_source", utils.Label{Value: SourceItemCF, Source: "recall"})
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].ID < out[j].ID
	})

	out = FilterRecent(out, rctx.Model, rctx.Now, window, fallback)
	return truncate(out, rctx.Count), nil
}
