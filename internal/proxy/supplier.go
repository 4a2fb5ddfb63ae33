package proxy

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"resty.dev/v3"
)

// ProxySupplier hands out outbound proxies for the source store in round-robin order
type ProxySupplier interface {
	Get() string
}

type proxySupplier struct {
	proxies []string
	current int
	mutex   sync.Mutex
}

// Probe reports whether a proxy can reach the probe URL.
type Probe func(ctx context.Context, proxyURL, probeURL string) bool

// NewProxySupplier keeps the proxies that can reach probeURL (the store's REST index).
// A nil probe uses an HTTP GET through the proxy.
func NewProxySupplier(ctx context.Context, proxies []string, probeURL string, probe Probe) ProxySupplier {
	if len(proxies) == 0 {
		return &proxySupplier{}
	}
	if probe == nil {
		probe = isProxyValid
	}

	log.Infof("🔄 Testing %d proxies against %s...", len(proxies), probeURL)

	// keep the configured order so rotation is predictable
	valid := make([]bool, len(proxies))
	semaphore := make(chan struct{}, 10)

	var wg sync.WaitGroup
	for i, proxyURL := range proxies {
		wg.Add(1)

		go func(index int, proxy string) {
			defer wg.Done()

			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			if probe(ctx, proxy, probeURL) {
				valid[index] = true
				log.Infof("✅ Proxy %s is working", proxy)
			} else {
				log.Warnf("❌ Proxy %s is not working, skipping", proxy)
			}
		}(i, proxyURL)
	}
	wg.Wait()

	working := make([]string, 0, len(proxies))
	for i, ok := range valid {
		if ok {
			working = append(working, proxies[i])
		}
	}

	log.Infof("✅ ProxySupplier initialized with %d working proxies out of %d tested", len(working), len(proxies))

	return &proxySupplier{proxies: working}
}

// Get returns the next proxy URL, or "" when none is usable
func (p *proxySupplier) Get() string {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if len(p.proxies) == 0 {
		return ""
	}

	proxy := p.proxies[p.current]
	p.current = (p.current + 1) % len(p.proxies)

	return proxy
}

func isProxyValid(ctx context.Context, proxyURL, probeURL string) bool {
	client := resty.New().
		SetTimeout(5 * time.Second).
		SetProxy(proxyURL)
	defer client.Close()

	resp, err := client.R().
		SetContext(ctx).
		Get(probeURL)
	if err != nil {
		log.Debugf("Proxy probe failed for %s: %v", proxyURL, err)
		return false
	}

	if resp.IsError() {
		log.Debugf("Proxy probe failed for %s with status: %s", proxyURL, resp.Status())
		return false
	}

	return true
}
