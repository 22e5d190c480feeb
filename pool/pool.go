// Package pool 把各召回层编排成去重、限量的有序推荐池，
// 并负责池与已推荐历史的持久化、游标翻页。
package pool

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/rushteam/newsrec/core"
	"github.com/rushteam/newsrec/filter"
	"github.com/rushteam/newsrec/model"
	"github.com/rushteam/newsrec/recall"
)

// 池的生成方式标签。仅用于向调用方描述结果，不影响池里有哪些候选。
const (
	MethodItemCF = "itemcf" // 个性化层有实际贡献
	MethodHot    = "hot"    // 无阅读历史（新用户），由热门层填充
	MethodRandom = "random" // 所有层之后仍不足请求量一半（数据稀疏信号）
)

// DefaultPoolSize 是单个推荐池的默认容量。
const DefaultPoolSize = 100

// Generator 按严格优先级顺序调用各召回层构建推荐池：
// 个性化 → 热门 → 最新 → 随机。每层只补当前缺口，
// 排除集随已接受的候选增长，实现跨层去重。
//
// 池构建永不失败：极端情况下语料为空时返回空池而不是错误。
type Generator struct {
	Model *model.Handle

	// Tiers 按优先级排列的召回源
	Tiers []recall.Source

	// Filters 池级别过滤器（排除约束、可选的 CEL 规则）
	Filters []filter.Filter

	// Clock 注入的“当前时间”，为 nil 时取 time.Now
	Clock func() time.Time

	Log *zap.Logger
}

// Generate 为用户生成一个容量为 size 的推荐池，返回候选与生成方式标签。
// history 是用户的已推荐历史；单层出错只跳过该层，不中断整个池。
func (g *Generator) Generate(
	ctx context.Context,
	userID string,
	size int,
	history map[string]struct{},
) ([]*core.Item, string) {
	if size <= 0 {
		size = DefaultPoolSize
	}

	now := time.Now()
	if g.Clock != nil {
		now = g.Clock()
	}

	// 整个池构建绑定同一份模型快照
	snap := g.Model.Load()
	rctx := &core.RecommendContext{
		UserID:   userID,
		Now:      now,
		Model:    snap,
		Watched:  snap.WatchedBy(userID),
		History:  history,
		Excluded: make(map[string]struct{}),
	}

	items := make([]*core.Item, 0, size)
	personalized := 0

	for _, tier := range g.Tiers {
		need := size - len(items)
		if need <= 0 {
			break
		}
		rctx.Count = need

		got, err := tier.Recall(ctx, rctx)
		if err != nil {
			if g.Log != nil {
				g.Log.Warn("recall tier failed",
					zap.String("tier", tier.Name()),
					zap.String("user", userID),
					zap.Error(err))
			}
			continue
		}
		got = filter.Apply(ctx, rctx, got, g.Filters)

		for _, it := range got {
			if len(items) >= size {
				break
			}
			if _, ok := rctx.Excluded[it.ID]; ok {
				continue
			}
			items = append(items, it)
			rctx.Exclude(it.ID)
			if lbl, ok := it.GetLabel("recall_source"); ok && lbl.Value == recall.SourceItemCF {
				personalized++
			}
		}
	}

	method := MethodHot
	if personalized > 0 {
		method = MethodItemCF
	}
	if len(items) < size/2 {
		method = MethodRandom
	}
	return items, method
}
