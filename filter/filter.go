package filter

import (
	"context"

	"github.com/rushteam/newsrec/core"
)

// Filter 是过滤器的抽象接口，用于判断一个候选是否应该被剔除。
// 返回 true 表示剔除，false 表示保留。
type Filter interface {
	// Name 返回过滤器名称
	Name() string

	// ShouldFilter 判断 item 是否应该被剔除
	ShouldFilter(ctx context.Context, rctx *core.RecommendContext, item *core.Item) (bool, error)
}

// Apply 依次应用多个过滤器；任一过滤器命中即剔除。
// 单个过滤器出错时保留该候选（宁可多推不可漏推，错误由上层观测）。
func Apply(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
	filters []Filter,
) []*core.Item {
	if len(filters) == 0 || len(items) == 0 {
		return items
	}

	out := make([]*core.Item, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		drop := false
		for _, f := range filters {
			hit, err := f.ShouldFilter(ctx, rctx, item)
			if err != nil {
				continue
			}
			if hit {
				drop = true
				break
			}
		}
		if !drop {
			out = append(out, item)
		}
	}
	return out
}
