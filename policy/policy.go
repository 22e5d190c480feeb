// Package policy 解析每个用户的推荐策略开关。
package policy

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// 策略标签：开启走个性化推荐链路，关闭或未知用户走旁路随机推荐。
const (
	StrategyItemCF = "itemcf"
	StrategyRandom = "random"
)

// Store 从关系库读取邀请码上的推荐开关。
type Store struct {
	DB *sql.DB
}

// Strategy 返回用户的策略标签。查不到该用户时默认 random，不报错。
func (s *Store) Strategy(ctx context.Context, userID string) (string, error) {
	var enabled bool
	err := s.DB.QueryRowContext(ctx,
		`SELECT has_recommend FROM invite_codes WHERE id = $1`, userID,
	).Scan(&enabled)
	if errors.Is(err, sql.ErrNoRows) {
		return StrategyRandom, nil
	}
	if err != nil {
		return "", fmt.Errorf("query strategy: %w", err)
	}
	if enabled {
		return StrategyItemCF, nil
	}
	return StrategyRandom, nil
}
