package model

import "sync"

// lazy holds a value computed on first read and kept for the lifetime of
// its owner. The inputs it is derived from must not change after creation.
type lazy[T any] struct {
	once  sync.Once
	value T
}

func (l *lazy[T]) get(compute func() T) T {
	l.once.Do(func() { l.value = compute() })
	return l.value
}
