package dataset

import (
	"context"
	"strings"

	"github.com/rushteam/newsrec/core"
)

// Dataset 是一次全量加载得到的交互与文章元信息快照。
// 模型构建以它为唯一输入；同一份快照重复构建得到相同模型。
type Dataset struct {
	// Interactions 是用户 -> 已读文章集合。
	// 重复阅读折叠为存在性；占位符文章在加载时即被剔除。
	Interactions map[string]map[string]struct{}

	// Articles 是文章 ID -> 元信息（关键词集合、生效时间），
	// 只覆盖元数据表里有记录的文章。
	Articles map[string]core.Article
}

// Loader 是全量加载的抽象接口，由 Postgres 实现。
type Loader interface {
	Load(ctx context.Context) (*Dataset, error)
}

// ParseKeywords 解析关键词字段。
// 上游字段既可能是逗号分隔文本，也可能是 Postgres 数组的文本形式
// （形如 {a,b,"c d"}），两种都归一化为去空格后的集合；空输入返回空集合。
func ParseKeywords(raw string) map[string]struct{} {
	kw := make(map[string]struct{})
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return kw
	}
	raw = strings.TrimPrefix(raw, "{")
	raw = strings.TrimSuffix(raw, "}")

	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		part = strings.Trim(part, `"`)
		if part == "" {
			continue
		}
		kw[part] = struct{}{}
	}
	return kw
}
