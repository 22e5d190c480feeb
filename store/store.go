// Package store 提供 core.Store 的具体实现。
//
// 接口定义在 core 包（领域层定义接口，基础设施层实现），
// 这里提供内存实现（测试/开发）与 Redis 实现（生产）。
package store
