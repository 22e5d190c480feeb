package pool

import (
	"encoding/json"
	"sort"

	"github.com/rushteam/newsrec/core"
)

// 持久化 key 与 TTL。历史的 TTL 刻意短于池：老的历史过期后，
// 曾经推荐过但已经变旧的文章重新变得可推荐。
const (
	poolKeyPrefix    = "rec_pool:"
	historyKeyPrefix = "rec_history:"

	// PoolTTLSeconds 推荐池的保存时长（24 小时）
	PoolTTLSeconds = 24 * 3600

	// HistoryTTLSeconds 已推荐历史的保存时长（2 小时）
	HistoryTTLSeconds = 2 * 3600
)

func poolKey(userID string) string    { return poolKeyPrefix + userID }
func historyKey(userID string) string { return historyKeyPrefix + userID }

// ScoredNews 是对外与落盘共用的 (文章, 分数) 结构。
type ScoredNews struct {
	NewsID string  `json:"news_id"`
	Score  float64 `json:"score"`
}

// PoolRecord 是持久化的推荐池：有序候选、游标与生成方式。
// 显式 JSON 结构而不是语言自带的序列化格式，存储内容可直接检视。
type PoolRecord struct {
	Items  []ScoredNews `json:"items"`
	Cursor int          `json:"cursor"`
	Method string       `json:"method"`
}

// HistoryRecord 是持久化的已推荐历史。
type HistoryRecord struct {
	NewsIDs []string `json:"news_ids"`
}

func encodePool(rec *PoolRecord) ([]byte, error) {
	return json.Marshal(rec)
}

func decodePool(data []byte) (*PoolRecord, error) {
	var rec PoolRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func encodeHistory(history map[string]struct{}) ([]byte, error) {
	rec := HistoryRecord{NewsIDs: make([]string, 0, len(history))}
	for id := range history {
		rec.NewsIDs = append(rec.NewsIDs, id)
	}
	sort.Strings(rec.NewsIDs)
	return json.Marshal(rec)
}

func decodeHistory(data []byte) (map[string]struct{}, error) {
	var rec HistoryRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	history := make(map[string]struct{}, len(rec.NewsIDs))
	for _, id := range rec.NewsIDs {
		history[id] = struct{}{}
	}
	return history, nil
}

func toScored(items []*core.Item) []ScoredNews {
	out := make([]ScoredNews, 0, len(items))
	for _, it := range items {
		out = append(out, ScoredNews{NewsID: it.ID, Score: it.Score})
	}
	return out
}
