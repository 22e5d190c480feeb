package recall

import (
	"context"

	"github.com/rushteam/newsrec/core"
	"github.com/rushteam/newsrec/pkg/utils"
)

// Latest 是最新召回源：按生效时间降序覆盖全量已知文章。
// 它的职责是兜底覆盖而不是排序，所以分数恒为 0；
// 无时间信息的文章视为最新，不因缺数据受罚。
type Latest struct{}

func (r *Latest) Name() string { return "recall.latest" }

func (r *Latest) Recall(
	_ context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	if rctx == nil || rctx.Model == nil {
		return nil, nil
	}

	out := make([]*core.Item, 0)
	for _, id := range rctx.Model.LatestRank() {
		if core.IsPlaceholderArticle(id) || rctx.Blocked(id) {
			continue
		}
		it := core.NewItem(id)
		it.PutLabel("recall_source", utils.Label{Value: SourceLatest, Source: "recall"})
		out = append(out, it)
		if rctx.Count > 0 && len(out) >= rctx.Count {
			break
		}
	}
	return out, nil
}
