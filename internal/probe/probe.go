// Package probe provides reachability probes for monitored servers.
//
// A probe has a binary outcome: the server either accepted a connection
// within the deadline or it did not. Timed-out probes count as
// unhealthy.
package probe

import (
	"context"
	"net"
	"time"
)

// Prober evaluates whether a server is reachable.
//
// Implementations must honor the context deadline; a probe that runs
// past its deadline stalls the whole sampling pass.
type Prober interface {
	// Probe returns nil when the address is reachable and an error
	// describing the failure otherwise.
	Probe(ctx context.Context, address string) error
}

// TCPProber probes reachability by opening a TCP connection.
type TCPProber struct {
	// Timeout bounds a single probe when the context carries no
	// earlier deadline.
	Timeout time.Duration
}

// NewTCPProber creates a TCP prober with the given per-probe timeout.
func NewTCPProber(timeout time.Duration) *TCPProber {
	return &TCPProber{Timeout: timeout}
}

// Probe dials the address and immediately closes the connection.
func (p *TCPProber) Probe(ctx context.Context, address string) error {
	dialCtx := ctx
	if p.Timeout > 0 {
		var cancel context.CancelFunc
		dialCtx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}

	var d net.Dialer
	conn, err := d.DialContext(dialCtx, "tcp", address)
	if err != nil {
		return err
	}
	return conn.Close()
}
