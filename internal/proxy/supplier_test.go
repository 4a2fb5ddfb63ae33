package proxy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSupplierRotatesWorkingProxies(t *testing.T) {
	probe := func(_ context.Context, proxyURL, probeURL string) bool {
		assert.Equal(t, "https://old.example.com/wp-json/", probeURL)
		return proxyURL != "http://dead:8080"
	}

	s := NewProxySupplier(context.Background(),
		[]string{"http://a:8080", "http://dead:8080", "http://b:8080"},
		"https://old.example.com/wp-json/", probe)

	assert.Equal(t, "http://a:8080", s.Get())
	assert.Equal(t, "http://b:8080", s.Get())
	assert.Equal(t, "http://a:8080", s.Get())
}

func TestSupplierWithoutProxies(t *testing.T) {
	s := NewProxySupplier(context.Background(), nil, "", nil)
	assert.Equal(t, "", s.Get())
}

func TestSupplierAllProxiesDead(t *testing.T) {
	s := NewProxySupplier(context.Background(), []string{"http://dead:1"}, "https://x",
		func(context.Context, string, string) bool { return false })
	assert.Equal(t, "", s.Get())
}
