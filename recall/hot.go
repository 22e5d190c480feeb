package recall

import (
	"context"
	"time"

	"github.com/rushteam/newsrec/core"
	"github.com/rushteam/newsrec/pkg/utils"
)

// Hot 是热门召回源：按独立阅读用户数降序推荐。
// 热门内容衰减较慢，默认时间窗口比个性化层更宽（7 天）。
type Hot struct {
	// Window / Fallback 时间过滤窗口，默认 7 天 / 2 倍
	Window   time.Duration
	Fallback time.Duration
}

func (r *Hot) Name() string { return "recall.hot" }

func (r *Hot) Recall(
	_ context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	if rctx == nil || rctx.Model == nil {
		return nil, nil
	}

	window := r.Window
	if window <= 0 {
		window = 7 * 24 * time.Hour
	}
	fallback := r.Fallback
	if fallback <= window {
		fallback = 2 * window
	}

	out := make([]*core.Item, 0)
	for _, entry := range rctx.Model.PopularityRank() {
		if rctx.Blocked(entry.ID) {
			continue
		}
		it := core.NewItem(entry.ID)
		it.Score = entry.Score
		it.PutLabel("recall_source", utils.Label{Value: SourceHot, Source: "recall"})
		out = append(out, it)
	}

	out = FilterRecent(out, rctx.Model, rctx.Now, window, fallback)
	return truncate(out, rctx.Count), nil
}
