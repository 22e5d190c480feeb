package recall

import (
	"context"
	"math/rand"
	"time"

	"github.com/rushteam/newsrec/core"
	"github.com/rushteam/newsrec/pkg/utils"
)

// RandomNews 是随机召回源，也是整条链路的最终兜底。
//
// 在全部可推荐文章上做时间过滤（默认 14 天，不足按回退窗口扩大）后
// 无放回采样；过滤后仍凑不够数量时，改为在未过滤的全量可推荐集合上
// 洗牌采样——只要语料里还有任何可推荐文章，这一层就不会缺额。
type RandomNews struct {
	// Window / Fallback 时间过滤窗口，默认 14 天 / 2 倍
	Window   time.Duration
	Fallback time.Duration

	// Rand 可注入的随机源（测试用）；为 nil 时使用全局随机源
	Rand *rand.Rand
}

func (r *RandomNews) Name() string { return "recall.random" }

func (r *RandomNews) Recall(
	_ context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	if rctx == nil || rctx.Model == nil {
		return nil, nil
	}

	window := r.Window
	if window <= 0 {
		window = 14 * 24 * time.Hour
	}
	fallback := r.Fallback
	if fallback <= window {
		fallback = 2 * window
	}

	eligible := make([]*core.Item, 0)
	for _, id := range rctx.Model.EligibleArticles() {
		if rctx.Blocked(id) {
			continue
		}
		it := core.NewItem(id)
		it.PutLabel("recall_source", utils.Label{Value: SourceRandom, Source: "recall"})
		eligible = append(eligible, it)
	}
	if len(eligible) == 0 {
		return nil, nil
	}

	n := rctx.Count
	if n <= 0 {
		n = len(eligible)
	}

	pick := FilterRecent(eligible, rctx.Model, rctx.Now, window, fallback)
	if len(pick) < n {
		// 过滤后凑不够：回到未过滤的全量可推荐集合
		pick = eligible
	}

	r.shuffle(pick)
	return truncate(pick, n), nil
}

func (r *RandomNews) shuffle(items []*core.Item) {
	swap := func(i, j int) { items[i], items[j] = items[j], items[i] }
	if r.Rand != nil {
		r.Rand.Shuffle(len(items), swap)
		return
	}
	rand.Shuffle(len(items), swap)
}
