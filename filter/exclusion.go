package filter

import (
	"context"

	"github.com/rushteam/newsrec/core"
)

// ExclusionFilter 在池构建层面强制执行排除契约：
// 已读、已推荐历史、调用方排除集中的文章以及占位符一律剔除。
// 各召回源在产出前已做同样的检查，这里是池级别的最后一道约束。
type ExclusionFilter struct{}

func (f *ExclusionFilter) Name() string { return "filter.exclusion" }

func (f *ExclusionFilter) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if item == nil {
		return true, nil
	}
	if core.IsPlaceholderArticle(item.ID) {
		return true, nil
	}
	if rctx == nil {
		return false, nil
	}
	return rctx.Blocked(item.ID), nil
}
