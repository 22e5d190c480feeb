package filter

import (
	"context"

	"github.com/rushteam/newsrec/core"
	"github.com/rushteam/newsrec/pkg/dsl"
)

// RuleFilter 按配置的 CEL 表达式裁剪候选：表达式求值为 true 时保留。
// 表达式在启动时编译一次；求值出错时按 Apply 的约定保留候选。
//
// 示例规则：
//   - `label.recall_source != "random"`
//   - `item.score >= 0.1 || label.recall_source == "latest"`
type RuleFilter struct {
	Program *dsl.Program
}

// NewRuleFilter 编译表达式并构建过滤器。
func NewRuleFilter(expr string) (*RuleFilter, error) {
	prg, err := dsl.Compile(expr)
	if err != nil {
		return nil, err
	}
	return &RuleFilter{Program: prg}, nil
}

func (f *RuleFilter) Name() string { return "filter.rule" }

func (f *RuleFilter) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if f.Program == nil || item == nil {
		return false, nil
	}
	keep, err := f.Program.Eval(item, rctx)
	if err != nil {
		return false, err
	}
	return !keep, nil
}
