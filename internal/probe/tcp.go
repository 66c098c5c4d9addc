package probe

import (
	"context"
	"errors"
	"net"
	"strconv"
	"time"

	"github.com/NordCoder/nodeping/internal/domain/node"
)

// TCP treats a completed handshake as a successful probe.
type TCP struct {
	port int
}

func NewTCP(port int) *TCP {
	if port <= 0 {
		port = 80
	}
	return &TCP{port: port}
}

func (p *TCP) target(addr string) string {
	if _, _, err := net.SplitHostPort(addr); err == nil {
		return addr
	}
	return net.JoinHostPort(addr, strconv.Itoa(p.port))
}

func (p *TCP) Probe(ctx context.Context, addr string, timeout time.Duration) (node.Outcome, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	d := net.Dialer{}
	conn, err := d.DialContext(ctx, "tcp", p.target(addr))
	if err == nil {
		_ = conn.Close()
		return node.OutcomeSuccess, nil
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return node.OutcomeNoResponse, err
	}
	if errors.Is(err, context.Canceled) {
		return node.OutcomeNoResponse, err
	}
	return node.OutcomeNoResponse, nil
}
