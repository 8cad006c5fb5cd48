package types

import "errors"

// ErrCacheMiss 缓存未命中错误 - 各缓存实现共享的哨兵错误
var ErrCacheMiss = errors.New("cache miss")
