package pool

import (
	"context"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/rushteam/newsrec/core"
	"github.com/rushteam/newsrec/recall"
)

// DefaultPageSize 是单次推荐返回的条数（n_rec_news）。
const DefaultPageSize = 10

// stableRatio 是每页保持稳定排序的头部占比，尾部洗牌保证多样性。
const stableRatio = 0.7

// Session 按游标翻页消费用户的持久化推荐池。
//
// 每用户状态机：无池 →（生成）→ 翻页中 →（游标到底）→ 重建。
// 中途耗尽时取完剩余并重建新池补缺口；新池整体替换旧池，
// 旧池未消费的尾部被丢弃（保新鲜度的取舍，刻意保留）。
// 每次调用无论走哪个分支，返回的文章都并入已推荐历史。
//
// 同一用户的调用经 keyLock 串行化，游标的读改写不会彼此覆盖；
// 不同用户完全并行。存储读失败等价于“无池/无历史”（安全回退重建）；
// 写失败只记日志，本次结果照常返回（下次调用重建，正确但偏浪费）。
type Session struct {
	Store core.Store
	Pools *Generator

	// Random 是旁路随机推荐用的召回源（策略关闭/未知用户），
	// 不读写池，也不记录历史
	Random recall.Source

	// PageSize 每页条数，默认 10；PoolSize 池容量，默认 100
	PageSize int
	PoolSize int

	// Rand 页尾洗牌的随机源（测试用）；为 nil 时使用全局随机源
	Rand *rand.Rand

	Log *zap.Logger

	locks keyLock
}

// Recommend 返回用户的下一页推荐与生成方式标签。
// 标签取本次发生的生成；无需重建时取当前池落盘的标签——同一个池
// 的每一页都按它生成时的方式上报，即使本次调用末尾发生了降级补缺。
func (s *Session) Recommend(ctx context.Context, userID string) ([]ScoredNews, string, error) {
	page := s.PageSize
	if page <= 0 {
		page = DefaultPageSize
	}
	poolSize := s.PoolSize
	if poolSize <= 0 {
		poolSize = DefaultPoolSize
	}

	s.locks.lock(userID)
	defer s.locks.unlock(userID)

	history := s.loadHistory(ctx, userID)
	rec := s.loadPool(ctx, userID)

	var (
		out    []ScoredNews
		method string
	)

	switch {
	case rec == nil || len(rec.Items) == 0 || rec.Cursor >= len(rec.Items):
		// 无池或已耗尽：生成新池，取第一页
		items, m := s.Pools.Generate(ctx, userID, poolSize, history)
		rec = &PoolRecord{Items: toScored(items), Method: m}
		n := min(page, len(rec.Items))
		out = append(out, rec.Items[:n]...)
		rec.Cursor = n
		method = m

	case len(rec.Items)-rec.Cursor >= page:
		// 剩余充足：切片前进游标，不重建
		out = append(out, rec.Items[rec.Cursor:rec.Cursor+page]...)
		rec.Cursor += page
		method = rec.Method

	default:
		// 中途耗尽：取完剩余，重建新池补缺口。
		// 新池整体替换旧池，游标指向本次已消费的缺口量。
		out = append(out, rec.Items[rec.Cursor:]...)
		method = rec.Method
		shortfall := page - len(out)

		exclude := make(map[string]struct{}, len(history)+len(out))
		for id := range history {
			exclude[id] = struct{}{}
		}
		for _, sn := range out {
			exclude[sn.NewsID] = struct{}{}
		}

		items, m2 := s.Pools.Generate(ctx, userID, poolSize, exclude)
		next := &PoolRecord{Items: toScored(items), Method: m2}
		take := min(shortfall, len(next.Items))
		out = append(out, next.Items[:take]...)
		next.Cursor = take
		rec = next
	}

	s.shufflePage(out)

	// 送达的文章并入历史（先合并再落盘；写失败不影响本次返回）
	for _, sn := range out {
		history[sn.NewsID] = struct{}{}
	}
	s.saveHistory(ctx, userID, history)
	s.savePool(ctx, userID, rec)

	return out, method, nil
}

// RandomRecommend 是旁路随机推荐：策略关闭或未知用户时由接入层直接调用。
// 只做排除过滤（已读/已推荐历史），不建池、不推进游标、不记录历史。
func (s *Session) RandomRecommend(ctx context.Context, userID string) ([]ScoredNews, error) {
	page := s.PageSize
	if page <= 0 {
		page = DefaultPageSize
	}

	now := time.Now()
	if s.Pools.Clock != nil {
		now = s.Pools.Clock()
	}

	snap := s.Pools.Model.Load()
	rctx := &core.RecommendContext{
		UserID:   userID,
		Now:      now,
		Count:    page,
		Model:    snap,
		Watched:  snap.WatchedBy(userID),
		History:  s.loadHistory(ctx, userID),
		Excluded: make(map[string]struct{}),
	}

	items, err := s.Random.Recall(ctx, rctx)
	if err != nil {
		if s.Log != nil {
			s.Log.Warn("random recall failed", zap.String("user", userID), zap.Error(err))
		}
		return nil, nil
	}
	return toScored(items), nil
}

// shufflePage 打乱页尾：头部 max(1, 70%) 保持排序，其余洗牌保证多样性。
func (s *Session) shufflePage(page []ScoredNews) {
	if len(page) < 2 {
		return
	}
	stable := int(float64(len(page)) * stableRatio)
	if stable < 1 {
		stable = 1
	}
	tail := page[stable:]
	swap := func(i, j int) { tail[i], tail[j] = tail[j], tail[i] }
	if s.Rand != nil {
		s.Rand.Shuffle(len(tail), swap)
		return
	}
	rand.Shuffle(len(tail), swap)
}

func (s *Session) loadHistory(ctx context.Context, userID string) map[string]struct{} {
	data, err := s.Store.Get(ctx, historyKey(userID))
	if err != nil {
		if !core.IsStoreNotFound(err) && s.Log != nil {
			s.Log.Warn("load history failed", zap.String("user", userID), zap.Error(err))
		}
		return make(map[string]struct{})
	}
	history, err := decodeHistory(data)
	if err != nil {
		if s.Log != nil {
			s.Log.Warn("decode history failed", zap.String("user", userID), zap.Error(err))
		}
		return make(map[string]struct{})
	}
	return history
}

func (s *Session) loadPool(ctx context.Context, userID string) *PoolRecord {
	data, err := s.Store.Get(ctx, poolKey(userID))
	if err != nil {
		if !core.IsStoreNotFound(err) && s.Log != nil {
			s.Log.Warn("load pool failed", zap.String("user", userID), zap.Error(err))
		}
		return nil
	}
	rec, err := decodePool(data)
	if err != nil {
		if s.Log != nil {
			s.Log.Warn("decode pool failed", zap.String("user", userID), zap.Error(err))
		}
		return nil
	}
	return rec
}

func (s *Session) saveHistory(ctx context.Context, userID string, history map[string]struct{}) {
	data, err := encodeHistory(history)
	if err == nil {
		err = s.Store.Set(ctx, historyKey(userID), data, HistoryTTLSeconds)
	}
	if err != nil && s.Log != nil {
		s.Log.Warn("save history failed", zap.String("user", userID), zap.Error(err))
	}
}

func (s *Session) savePool(ctx context.Context, userID string, rec *PoolRecord) {
	data, err := encodePool(rec)
	if err == nil {
		err = s.Store.Set(ctx, poolKey(userID), data, PoolTTLSeconds)
	}
	if err != nil && s.Log != nil {
		s.Log.Warn("save pool failed", zap.String("user", userID), zap.Error(err))
	}
}
