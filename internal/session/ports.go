package session

import (
	"sync"

	"github.com/mirrorhost/scrcpy-engine/internal/launcher"
)

// portPool hands out the lowest free local TCP port at or above
// launcher.BasePort, reclaiming released ports for reuse. With sessions
// started and stopped in stack order this reproduces spec §3's "base +
// active-session-count" rule exactly; with interleaved stop/start it still
// guarantees uniqueness, which is the property that actually matters.
type portPool struct {
	mu   sync.Mutex
	used map[int]struct{}
}

var _ launcher.PortAllocator = (*portPool)(nil)

func newPortPool() *portPool {
	return &portPool{used: make(map[int]struct{})}
}

func (p *portPool) Allocate() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	for port := launcher.BasePort; ; port++ {
		if _, taken := p.used[port]; !taken {
			p.used[port] = struct{}{}
			return port
		}
	}
}

func (p *portPool) Release(port int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.used, port)
}
