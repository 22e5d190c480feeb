package core

import (
	"strings"
	"time"
)

// placeholderSuffix 是列表页占位符文章的结构化后缀。
// 占位符 ID 形如 news20250724000：它代表一个列表页而不是真实文章，
// 必须在加载与召回的所有环节排除。
const placeholderSuffix = "000"

// IsPlaceholderArticle 判断文章 ID 是否为列表页占位符。
func IsPlaceholderArticle(id string) bool {
	return strings.HasSuffix(id, placeholderSuffix)
}

// Article 是文章的元信息：关键词集合与生效时间。
// Timestamp 为零值表示时间未知；时间过滤默认保留无时间信息的文章（保守策略）。
type Article struct {
	ID        string
	Keywords  map[string]struct{}
	Timestamp time.Time
}

// HasTimestamp 返回文章是否带有效时间。
func (a Article) HasTimestamp() bool {
	return !a.Timestamp.IsZero()
}
