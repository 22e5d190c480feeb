package dsl

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/rushteam/newsrec/core"
)

var (
	// celEnv 是全局的 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvOnce sync.Once
	celEnvErr  error
)

// initCELEnv 初始化 CEL 环境，定义候选规则可见的变量
func initCELEnv() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable("item", cel.DynType),
		cel.Variable("label", cel.DynType),
		cel.Variable("user", cel.DynType),
	)
}

func getCELEnv() (*cel.Env, error) {
	celEnvOnce.Do(func() {
		celEnv, celEnvErr = initCELEnv()
	})
	return celEnv, celEnvErr
}

// Program 是一条编译后的候选规则，使用 CEL (Common Expression Language) 语法。
// 表达式对每个候选求值，返回 true 表示保留该候选。
//
// 可见变量：
//   - item.id / item.score
//   - label.<key>（各 Label 的 Value）
//   - user.id
//
// 示例：
//   - `item.score >= 0.0` → 只保留非负分候选
//   - `label.recall_source != "random"` → 剔除随机层产出
//   - `!item.id.startsWith("ad")` → 按 ID 前缀剔除
type Program struct {
	prg cel.Program
}

// Compile 编译 CEL 表达式。表达式在启动时编译一次，之后可并发求值。
func Compile(expr string) (*Program, error) {
	env, err := getCELEnv()
	if err != nil {
		return nil, fmt.Errorf("cel env: %w", err)
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile error: %v", issues.Err())
	}

	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program error: %w", err)
	}

	return &Program{prg: prg}, nil
}

// Eval 对单个候选求值，返回是否保留。
// 表达式结果不是布尔值时视为错误。
func (p *Program) Eval(item *core.Item, rctx *core.RecommendContext) (bool, error) {
	labels := make(map[string]string, len(item.Labels))
	for k, lbl := range item.Labels {
		labels[k] = lbl.Value
	}

	vars := map[string]any{
		"item": map[string]any{
			"id":    item.ID,
			"score": item.Score,
		},
		"label": labels,
		"user":  map[string]any{},
	}
	if rctx != nil {
		vars["user"] = map[string]any{"id": rctx.UserID}
	}

	out, _, err := p.prg.Eval(vars)
	if err != nil {
		return false, fmt.Errorf("eval error: %w", err)
	}

	keep, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("expression result is not a boolean: %v", out.Value())
	}
	return keep, nil
}
