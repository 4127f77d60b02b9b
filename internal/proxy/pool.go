// Package proxy loads the proxy list used to tag wallet blocks.
package proxy

import (
	"bufio"
	"fmt"
	"io"
	"math/rand"
	"os"
	"strings"

	"kozelmixer/internal/logging"
)

// Pool is an ordered list of proxy addresses.
type Pool struct {
	entries []string
}

// NewPool builds a pool from addresses, dropping blank entries.
func NewPool(addrs []string) *Pool {
	p := &Pool{}
	for _, a := range addrs {
		if a = strings.TrimSpace(a); a != "" {
			p.entries = append(p.entries, a)
		}
	}
	return p
}

// Parse reads one proxy per line. Blank lines and lines starting with '#'
// are skipped.
func Parse(r io.Reader) (*Pool, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read proxies: %w", err)
	}
	return NewPool(lines), nil
}

// Load reads a proxy file.
func Load(path string) (*Pool, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open proxy file: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// LoadOrEmpty is Load, except an unreadable source yields an empty pool.
func LoadOrEmpty(path string) *Pool {
	p, err := Load(path)
	if err != nil {
		logging.ProxyWarn("proxy source %s unavailable, continuing without proxies: %v", path, err)
		return &Pool{}
	}
	logging.ProxyDebug("loaded %d proxies from %s", p.Len(), path)
	return p
}

// Len returns the number of proxies.
func (p *Pool) Len() int {
	if p == nil {
		return 0
	}
	return len(p.entries)
}

// Pick returns a uniformly chosen proxy, normalized with WithScheme.
// It panics on an empty pool; callers check Len first.
func (p *Pool) Pick(r *rand.Rand) string {
	return WithScheme(p.entries[r.Intn(len(p.entries))])
}

// WithScheme prefixes addr with http:// unless it already starts with http.
func WithScheme(addr string) string {
	if strings.HasPrefix(addr, "http") {
		return addr
	}
	return "http://" + addr
}
