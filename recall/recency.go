package recall

import (
	"time"

	"github.com/rushteam/newsrec/core"
)

// minViableRecent 是时间过滤的最低可用候选数：低于它就扩大窗口重试。
const minViableRecent = 5

// FilterRecent 是各召回层共享的时间过滤原语。
//
// 保留生效时间在 now-window 之内的文章；占位符一律剔除；
// 无时间信息的文章一律保留（保守策略）。若命中数不足 minViableRecent
// 且还有更宽的回退窗口（fallback > window），则以 window:=fallback、
// fallback:=2*fallback 扩大重试。
//
// 取舍：宁可偶尔推出较旧的内容，也不让推荐仅仅因为近期内容稀疏而饿死。
// 窗口覆盖全部候选后不再扩大，保证终止。
func FilterRecent(
	items []*core.Item,
	view core.ModelView,
	now time.Time,
	window, fallback time.Duration,
) []*core.Item {
	eligible := make([]*core.Item, 0, len(items))
	for _, it := range items {
		if it == nil || core.IsPlaceholderArticle(it.ID) {
			continue
		}
		eligible = append(eligible, it)
	}

	for {
		cutoff := now.Add(-window)
		filtered := make([]*core.Item, 0, len(eligible))
		for _, it := range eligible {
			ts, ok := view.ArticleTime(it.ID)
			if ok && ts.Before(cutoff) {
				continue
			}
			filtered = append(filtered, it)
		}

		if len(filtered) >= minViableRecent || fallback <= window || len(filtered) == len(eligible) {
			return filtered
		}
		window, fallback = fallback, 2*fallback
	}
}

// truncate 截断到请求数量；n<=0 表示不截断。
func truncate(items []*core.Item, n int) []*core.Item {
	if n > 0 && len(items) > n {
		return items[:n]
	}
	return items
}
