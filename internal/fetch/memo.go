package fetch

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
)

// Memo caches successful responses in process. Concurrent requests for the
// same URL share one upstream call. Failures are never cached.
type Memo struct {
	next  Getter
	cache *lru.Cache[string, string]
	group singleflight.Group
}

func NewMemo(next Getter, size int) (*Memo, error) {
	if size <= 0 {
		size = 64
	}
	cache, err := lru.New[string, string](size)
	if err != nil {
		return nil, err
	}
	return &Memo{next: next, cache: cache}, nil
}

func (m *Memo) Get(ctx context.Context, url string) (string, error) {
	if body, ok := m.cache.Get(url); ok {
		return body, nil
	}
	v, err, _ := m.group.Do(url, func() (any, error) {
		body, err := m.next.Get(ctx, url)
		if err != nil {
			return "", err
		}
		m.cache.Add(url, body)
		return body, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (m *Memo) Len() int { return m.cache.Len() }
