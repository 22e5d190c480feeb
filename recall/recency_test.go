package recall

import (
	"testing"
	"time"

	"github.com/rushteam/newsrec/core"
)

// fakeView 是召回测试共用的内存模型快照。
type fakeView struct {
	watched   map[string]map[string]struct{}
	neighbors map[string][]core.ScoredEntry
	popRank   []core.ScoredEntry
	latest    []string
	eligible  []string
	times     map[string]time.Time
}

func (v *fakeView) WatchedBy(userID string) map[string]struct{} {
	return v.watched[userID]
}

func (v *fakeView) Neighbors(articleID string) []core.ScoredEntry {
	return v.neighbors[articleID]
}

func (v *fakeView) PopularityRank() []core.ScoredEntry { return v.popRank }

func (v *fakeView) LatestRank() []string { return v.latest }

func (v *fakeView) EligibleArticles() []string { return v.eligible }

func (v *fakeView) ArticleTime(articleID string) (time.Time, bool) {
	ts, ok := v.times[articleID]
	if !ok || ts.IsZero() {
		return time.Time{}, false
	}
	return ts, true
}

func items(ids ...string) []*core.Item {
	out := make([]*core.Item, 0, len(ids))
	for _, id := range ids {
		out = append(out, core.NewItem(id))
	}
	return out
}

func ids(items []*core.Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

func idSet(items []*core.Item) map[string]struct{} {
	out := make(map[string]struct{}, len(items))
	for _, it := range items {
		out[it.ID] = struct{}{}
	}
	return out
}

func TestFilterRecentFallbackExpansion(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	day := 24 * time.Hour

	// 2 天内只有 2 篇，7 天内共 7 篇：2 天窗口不足 5 篇，
	// 应按 2d→4d→... 扩大直到覆盖 7 天集合
	view := &fakeView{times: map[string]time.Time{
		"n1": now.Add(-1 * day),
		"n2": now.Add(-1 * day),
		"n3": now.Add(-3 * day),
		"n4": now.Add(-3 * day),
		"n5": now.Add(-5 * day),
		"n6": now.Add(-6 * day),
		"n7": now.Add(-6 * day),
		"n8": now.Add(-30 * day),
	}}

	got := FilterRecent(items("n1", "n2", "n3", "n4", "n5", "n6", "n7", "n8"),
		view, now, 2*day, 4*day)
	if len(got) != 7 {
		t.Fatalf("got %v, want the 7-day set", ids(got))
	}
	set := idSet(got)
	if _, ok := set["n8"]; ok {
		t.Error("30-day-old article survived the expanded window")
	}
}

func TestFilterRecentNoExpansionWhenEnough(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	day := 24 * time.Hour

	times := make(map[string]time.Time)
	in := make([]string, 0)
	for _, id := range []string{"a", "b", "c", "d", "e"} {
		times[id] = now.Add(-1 * day)
		in = append(in, id)
	}
	times["old"] = now.Add(-10 * day)
	in = append(in, "old")

	got := FilterRecent(items(in...), &fakeView{times: times}, now, 2*day, 4*day)
	if len(got) != 5 {
		t.Fatalf("got %v, want the five fresh articles", ids(got))
	}
}

func TestFilterRecentTerminatesOnSparseCorpus(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	day := 24 * time.Hour

	// 候选总数低于最低可用数：窗口覆盖全部后必须停止扩大
	view := &fakeView{times: map[string]time.Time{
		"a": now.Add(-100 * day),
		"b": now.Add(-200 * day),
	}}
	got := FilterRecent(items("a", "b"), view, now, 2*day, 4*day)
	if len(got) != 2 {
		t.Fatalf("got %v, want both candidates after full expansion", ids(got))
	}
}

func TestFilterRecentKeepsTimestampless(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	day := 24 * time.Hour

	view := &fakeView{times: map[string]time.Time{
		"dated": now.Add(-1 * day),
	}}
	got := FilterRecent(items("dated", "undated"), view, now, 2*day, 4*day)
	set := idSet(got)
	if _, ok := set["undated"]; !ok {
		t.Error("article without timestamp was filtered out")
	}
}

func TestFilterRecentDropsPlaceholders(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	view := &fakeView{times: map[string]time.Time{}}

	got := FilterRecent(items("news20250724000", "real"), view, now,
		48*time.Hour, 96*time.Hour)
	for _, it := range got {
		if core.IsPlaceholderArticle(it.ID) {
			t.Errorf("placeholder %s survived filtering", it.ID)
		}
	}
}
