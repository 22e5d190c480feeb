package core

import "time"

// RecommendContext 承载单次候选生成的用户/时间/排除信息，贯穿各召回层透传。
//
// 排除约定（所有召回层共享）：候选不得出现在 Watched（已读）、
// History（已推荐历史）、Excluded（调用方追加，用于同一池内跨层去重）之中。
type RecommendContext struct {
	UserID string

	// Now 是本次请求的“当前时间”，由调用方注入，便于确定性测试
	Now time.Time

	// Count 是本层需要产出的候选数量；<=0 时由各层自行取默认值
	Count int

	// Model 是本次请求绑定的模型快照，一次池构建内保持同一份
	Model ModelView

	Watched  map[string]struct{}
	History  map[string]struct{}
	Excluded map[string]struct{}
}

// Blocked 判断文章是否命中排除约定。
func (rctx *RecommendContext) Blocked(id string) bool {
	if _, ok := rctx.Watched[id]; ok {
		return true
	}
	if _, ok := rctx.History[id]; ok {
		return true
	}
	if _, ok := rctx.Excluded[id]; ok {
		return true
	}
	return false
}

// Exclude 将文章加入调用方排除集（跨层去重）。
func (rctx *RecommendContext) Exclude(id string) {
	if rctx.Excluded == nil {
		rctx.Excluded = make(map[string]struct{})
	}
	rctx.Excluded[id] = struct{}{}
}
