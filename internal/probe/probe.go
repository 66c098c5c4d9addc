// Package probe implements the reachability checks used by the checker.
package probe

import (
	"context"
	"fmt"
	"net"

	"github.com/NordCoder/nodeping/internal/domain/node"
)

const (
	ModeICMP = "icmp" // raw socket, needs CAP_NET_RAW
	ModeUDP  = "udp"  // unprivileged ICMP datagram socket
	ModeTCP  = "tcp"
)

// New returns the prober for mode.
func New(mode string, tcpPort int) (node.Prober, error) {
	switch mode {
	case ModeICMP:
		return NewICMP(true), nil
	case ModeUDP:
		return NewICMP(false), nil
	case ModeTCP:
		return NewTCP(tcpPort), nil
	default:
		return nil, fmt.Errorf("unknown probe mode %q", mode)
	}
}

// resolve turns a literal IP or host name into a single IP, preferring IPv4.
func resolve(ctx context.Context, r *net.Resolver, addr string) (net.IP, error) {
	if ip := net.ParseIP(addr); ip != nil {
		return ip, nil
	}
	if r == nil {
		r = net.DefaultResolver
	}
	ips, err := r.LookupIPAddr(ctx, addr)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", addr, err)
	}
	if len(ips) == 0 {
		return nil, fmt.Errorf("resolve %s: no addresses", addr)
	}
	for _, ia := range ips {
		if ia.IP.To4() != nil {
			return ia.IP, nil
		}
	}
	return ips[0].IP, nil
}
