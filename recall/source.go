package recall

import (
	"context"

	"github.com/rushteam/newsrec/core"
)

// Source 表示一个可复用的召回源（个性化/热门/最新/随机）。
// 池构建按固定优先级顺序依次调用各召回源，每层只补齐缺口。
//
// 排除契约（所有实现共同遵守）：产出不包含 rctx.Watched、rctx.History、
// rctx.Excluded 中的任何文章；产出按分数降序，截断到 rctx.Count。
type Source interface {
	Name() string
	Recall(ctx context.Context, rctx *core.RecommendContext) ([]*core.Item, error)
}

// 各召回源写入 recall_source Label 的取值。
const (
	SourceItemCF = "itemcf"
	SourceHot    = "hot"
	SourceLatest = "latest"
	SourceRandom = "random"
)
