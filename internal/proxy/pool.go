package proxy

import (
	"sync"
	"time"
)

// DefaultCooldown is how long a proxy stays out of rotation after a failure
const DefaultCooldown = 5 * time.Minute

// Pool rotates through the proxies handed to the screenshot service, skipping
// ones that failed recently
type Pool struct {
	proxies  []string
	index    int
	cooldown time.Duration
	failed   map[string]time.Time
	now      func() time.Time
	mu       sync.Mutex
}

// NewPool creates a Pool. An empty list yields a pool whose Next is always "".
func NewPool(proxies []string) *Pool {
	list := make([]string, 0, len(proxies))
	for _, p := range proxies {
		if p != "" {
			list = append(list, p)
		}
	}
	return &Pool{
		proxies:  list,
		cooldown: DefaultCooldown,
		failed:   make(map[string]time.Time),
		now:      time.Now,
	}
}

// Len returns the number of configured proxies
func (p *Pool) Len() int {
	if p == nil {
		return 0
	}
	return len(p.proxies)
}

// Next returns the next healthy proxy. When every proxy is cooling down the
// rotation continues anyway rather than returning nothing.
func (p *Pool) Next() string {
	if p == nil {
		return ""
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.proxies) == 0 {
		return ""
	}

	for tries := 0; tries < len(p.proxies); tries++ {
		candidate := p.proxies[p.index]
		p.index = (p.index + 1) % len(p.proxies)

		failTime, failed := p.failed[candidate]
		if !failed {
			return candidate
		}
		if p.now().Sub(failTime) >= p.cooldown {
			delete(p.failed, candidate)
			return candidate
		}
	}

	candidate := p.proxies[p.index]
	p.index = (p.index + 1) % len(p.proxies)
	return candidate
}

// MarkFailed takes a proxy out of rotation for the cooldown period
func (p *Pool) MarkFailed(proxy string) {
	if p == nil || proxy == "" {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failed[proxy] = p.now()
}

// MarkHealthy clears the failure status of a proxy
func (p *Pool) MarkHealthy(proxy string) {
	if p == nil || proxy == "" {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.failed, proxy)
}
