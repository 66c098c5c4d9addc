package probe

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"sync/atomic"
	"time"

	"github.com/NordCoder/nodeping/internal/domain/node"
	"golang.org/x/net/icmp"
	"golang.org/x/net/ipv4"
	"golang.org/x/net/ipv6"
)

const (
	protocolICMP     = 1
	protocolIPv6ICMP = 58
)

var echoPayload = []byte("nodeping")

// ICMP sends one echo request per probe on a fresh socket.
type ICMP struct {
	privileged bool
	id         int
	seq        atomic.Uint32
	resolver   *net.Resolver
}

func NewICMP(privileged bool) *ICMP {
	return &ICMP{privileged: privileged, id: os.Getpid() & 0xffff, resolver: net.DefaultResolver}
}

type icmpFamily struct {
	network  string
	listen   string
	proto    int
	request  icmp.Type
	reply    icmp.Type
	dst      net.Addr
	matchIDs bool
}

func (p *ICMP) family(ip net.IP) icmpFamily {
	if ip.To4() != nil {
		f := icmpFamily{listen: "0.0.0.0", proto: protocolICMP, request: ipv4.ICMPTypeEcho, reply: ipv4.ICMPTypeEchoReply}
		if p.privileged {
			f.network, f.dst, f.matchIDs = "ip4:icmp", &net.IPAddr{IP: ip}, true
		} else {
			f.network, f.dst = "udp4", &net.UDPAddr{IP: ip}
		}
		return f
	}
	f := icmpFamily{listen: "::", proto: protocolIPv6ICMP, request: ipv6.ICMPTypeEchoRequest, reply: ipv6.ICMPTypeEchoReply}
	if p.privileged {
		f.network, f.dst, f.matchIDs = "ip6:ipv6-icmp", &net.IPAddr{IP: ip}, true
	} else {
		f.network, f.dst = "udp6", &net.UDPAddr{IP: ip}
	}
	return f
}

// Probe is bounded by timeout end to end, name resolution included.
func (p *ICMP) Probe(ctx context.Context, addr string, timeout time.Duration) (node.Outcome, error) {
	parent := ctx
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ip, err := resolve(ctx, p.resolver, addr)
	if err != nil {
		return node.OutcomeNoResponse, err
	}
	f := p.family(ip)

	conn, err := icmp.ListenPacket(f.network, f.listen)
	if err != nil {
		return node.OutcomeNoResponse, fmt.Errorf("open %s socket: %w", f.network, err)
	}
	defer conn.Close()

	seq := int(p.seq.Add(1) & 0xffff)
	msg := icmp.Message{
		Type: f.request,
		Body: &icmp.Echo{ID: p.id, Seq: seq, Data: echoPayload},
	}
	wire, err := msg.Marshal(nil)
	if err != nil {
		return node.OutcomeNoResponse, fmt.Errorf("marshal echo: %w", err)
	}

	deadline, _ := ctx.Deadline()
	if err := conn.SetDeadline(deadline); err != nil {
		return node.OutcomeNoResponse, fmt.Errorf("set deadline: %w", err)
	}
	stop := context.AfterFunc(ctx, func() { _ = conn.SetDeadline(time.Now()) })
	defer stop()

	if _, err := conn.WriteTo(wire, f.dst); err != nil {
		return node.OutcomeNoResponse, fmt.Errorf("send echo to %s: %w", ip, err)
	}

	buf := make([]byte, 1500)
	for {
		n, peer, err := conn.ReadFrom(buf)
		if err != nil {
			if parent.Err() != nil {
				return node.OutcomeNoResponse, parent.Err()
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				return node.OutcomeNoResponse, nil
			}
			return node.OutcomeNoResponse, fmt.Errorf("read echo reply: %w", err)
		}
		if !samePeer(peer, ip) {
			continue
		}
		if isEchoReply(buf[:n], f.proto, f.reply, p.id, seq, f.matchIDs) {
			return node.OutcomeSuccess, nil
		}
	}
}

// isEchoReply reports whether b is the reply to our request. Datagram sockets get their
// identifier rewritten by the kernel, so only the sequence is compared there.
func isEchoReply(b []byte, proto int, want icmp.Type, id, seq int, matchID bool) bool {
	m, err := icmp.ParseMessage(proto, b)
	if err != nil || m.Type != want {
		return false
	}
	echo, ok := m.Body.(*icmp.Echo)
	if !ok || echo.Seq != seq {
		return false
	}
	return !matchID || echo.ID == id
}

func samePeer(peer net.Addr, ip net.IP) bool {
	switch a := peer.(type) {
	case *net.IPAddr:
		return a.IP.Equal(ip)
	case *net.UDPAddr:
		return a.IP.Equal(ip)
	default:
		return false
	}
}
