package core

import "github.com/rushteam/newsrec/pkg/utils"

// Item 是推荐链路中的统一承载结构：文章 ID、分数、标签。
// Labels 用于解释与策略驱动（例如记录候选来自哪个召回层）；Score 用于排序决策。
// 注意：不同层产出的分数量纲不同（相似度累加 / 阅读人数 / 0），不可跨层比较。
type Item struct {
	ID     string
	Score  float64
	Labels map[string]utils.Label
}

func NewItem(id string) *Item {
	return &Item{
		ID:     id,
		Labels: make(map[string]utils.Label),
	}
}

// PutLabel 写入 Label；若已存在同名 key，则按默认 Merge 规则累积。
func (it *Item) PutLabel(key string, lbl utils.Label) {
	if it.Labels == nil {
		it.Labels = make(map[string]utils.Label)
	}
	if old, ok := it.Labels[key]; ok {
		it.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	it.Labels[key] = lbl
}

// GetLabel 读取 Label。
func (it *Item) GetLabel(key string) (utils.Label, bool) {
	if it.Labels == nil {
		return utils.Label{}, false
	}
	lbl, ok := it.Labels[key]
	return lbl, ok
}
