// Package server 暴露推荐接口。
//
// 接入层职责：校验用户标识、解析用户的策略开关，再把请求分发到
// 个性化推荐链路或旁路随机推荐。核心对标识类型无感知，
// 格式校验只发生在这一层。
package server

import (
	"context"
	"math"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rushteam/newsrec/model"
	"github.com/rushteam/newsrec/policy"
	"github.com/rushteam/newsrec/pool"
)

// PolicyResolver 解析用户的策略标签。
type PolicyResolver interface {
	Strategy(ctx context.Context, userID string) (string, error)
}

type Server struct {
	Session *pool.Session
	Model   *model.Handle
	Policy  PolicyResolver
	Log     *zap.Logger
}

func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.GET("/", s.handleIndex)
	r.POST("/recommend", s.handleRecommend)
	return r
}

type recommendRequest struct {
	UserID string `json:"user_id"`
}

type recommendationItem struct {
	NewsID string  `json:"news_id"`
	Score  float64 `json:"score"`
}

type recommendResponse struct {
	UserID          string               `json:"user_id"`
	Strategy        string               `json:"strategy"`
	Recommendations []recommendationItem `json:"recommendations"`
}

func (s *Server) handleIndex(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "recommendation service is running, POST /recommend"})
}

func (s *Server) handleRecommend(c *gin.Context) {
	var req recommendRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.UserID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing user_id"})
		return
	}
	if _, err := uuid.Parse(req.UserID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user_id"})
		return
	}

	ctx := c.Request.Context()

	strategy, err := s.Policy.Strategy(ctx, req.UserID)
	if err != nil {
		// 策略库不可用时退回随机策略，不让单次请求失败
		if s.Log != nil {
			s.Log.Warn("resolve strategy failed", zap.String("user", req.UserID), zap.Error(err))
		}
		strategy = policy.StrategyRandom
	}

	var recs []pool.ScoredNews
	snap := s.Model.Load()
	if strategy == policy.StrategyItemCF && len(snap.WatchedBy(req.UserID)) > 0 {
		items, method, err := s.Session.Recommend(ctx, req.UserID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		recs = items
		if s.Log != nil {
			s.Log.Info("recommend served",
				zap.String("user", req.UserID),
				zap.String("method", method),
				zap.Int("count", len(items)))
		}
	} else {
		recs, _ = s.Session.RandomRecommend(ctx, req.UserID)
	}

	out := make([]recommendationItem, 0, len(recs))
	for _, sn := range recs {
		out = append(out, recommendationItem{
			NewsID: sn.NewsID,
			Score:  round4(sn.Score),
		})
	}
	c.JSON(http.StatusOK, recommendResponse{
		UserID:          req.UserID,
		Strategy:        strategy,
		Recommendations: out,
	})
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
