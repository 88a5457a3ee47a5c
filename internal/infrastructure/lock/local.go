package lock

import (
	"context"
	"sync"
)

// LocalLocker 进程内按key互斥,用于单写者部署
type LocalLocker struct {
	mu    sync.Mutex
	slots map[string]*slot
}

// slot 容量为1的channel充当可被ctx取消的互斥锁
type slot struct {
	ch   chan struct{}
	refs int
}

// NewLocalLocker 创建进程内Locker
func NewLocalLocker() *LocalLocker {
	return &LocalLocker{slots: make(map[string]*slot)}
}

func (l *LocalLocker) Acquire(ctx context.Context, keys ...string) (func(), error) {
	keys = normalize(keys)
	releases := make([]func(), 0, len(keys))
	for _, key := range keys {
		release, err := l.acquireOne(ctx, key)
		if err != nil {
			releaseAll(releases)()
			return nil, err
		}
		releases = append(releases, release)
	}
	return releaseAll(releases), nil
}

func (l *LocalLocker) acquireOne(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	s, ok := l.slots[key]
	if !ok {
		s = &slot{ch: make(chan struct{}, 1)}
		l.slots[key] = s
	}
	s.refs++
	l.mu.Unlock()

	select {
	case s.ch <- struct{}{}:
		return func() {
			<-s.ch
			l.unref(key, s)
		}, nil
	case <-ctx.Done():
		l.unref(key, s)
		return nil, ctx.Err()
	}
}

// unref 没有持有者和等待者时回收slot
func (l *LocalLocker) unref(key string, s *slot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	s.refs--
	if s.refs == 0 {
		delete(l.slots, key)
	}
}
