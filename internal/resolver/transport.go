package resolver

import (
	"context"
	"fmt"
	"net"
	"net/netip"
	"time"

	"github.com/ckousik/rootwalk/internal/dns"
)

// DefaultTimeout is the deadline applied to each query/response exchange.
const DefaultTimeout = 5 * time.Second

// Exchanger abstracts the "send query, receive response with timeout"
// capability the resolver consumes. Implementations must return the complete
// response datagram or an error; the resolver never retries an exchange.
// The query slice is recycled after the call and must not be retained.
type Exchanger interface {
	Exchange(ctx context.Context, server netip.AddrPort, query []byte) ([]byte, error)
}

// UDPExchanger exchanges DNS messages over a connectionless UDP socket bound
// to an ephemeral local port, one dial per exchange.
type UDPExchanger struct {
	Timeout time.Duration // Per-exchange deadline; DefaultTimeout if zero
}

// Exchange sends query to server and waits for a single response datagram.
// The deadline is the sooner of the configured timeout and the context
// deadline. A response larger than dns.MaxMessageSize is reported as an
// error rather than silently truncated.
func (u *UDPExchanger) Exchange(ctx context.Context, server netip.AddrPort, query []byte) ([]byte, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	c, err := net.DialUDP("udp", nil, net.UDPAddrFromAddrPort(server))
	if err != nil {
		return nil, err
	}
	defer c.Close()

	timeout := u.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	deadline := time.Now().Add(timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}
	_ = c.SetDeadline(deadline)

	if _, err := c.Write(query); err != nil {
		return nil, err
	}

	// One extra byte so an oversized datagram is detectable instead of
	// being truncated by the read.
	buf := make([]byte, dns.MaxMessageSize+1)
	n, err := c.Read(buf)
	if err != nil {
		return nil, err
	}
	if n > dns.MaxMessageSize {
		return nil, fmt.Errorf("%w: response exceeds %d byte working buffer", dns.ErrParse, dns.MaxMessageSize)
	}
	return buf[:n:n], nil
}
