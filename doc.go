// Package newsrec 是一个基于隐式阅读信号的新闻推荐服务。
//
// 设计要点：
//   - Item-CF 为核心：共读共现 + 关键词 Jaccard 的组合相似度，离线全量重建，
//     不可变快照原子发布（model 包）
//   - 分层兜底召回：个性化 → 热门 → 最新 → 随机，按严格优先级补缺口（recall 包）
//   - 池 + 游标：每用户一个持久化推荐池按页消费，已推荐历史跨会话去重（pool 包）
//
// 轻量 facade：便于直接 import "newsrec" 使用核心抽象。
package newsrec

import "github.com/rushteam/newsrec/core"

type Item = core.Item
type Article = core.Article
type RecommendContext = core.RecommendContext
type ModelView = core.ModelView
type Store = core.Store
