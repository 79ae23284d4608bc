// Copyright 2026 The Voxlane Authors
// SPDX-License-Identifier: Apache-2.0

package keylog

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"sync/atomic"
)

// Peer channel initialization errors. Any of them permanently disables
// the channel for the process; the daemon surfaces them at startup.
var (
	// ErrNoPeerAddress is returned when the mode requests the peer
	// channel but no peer address is configured.
	ErrNoPeerAddress = errors.New("keylog: peer channel requested but no peer address configured")

	// ErrTransportNotUDP is returned when the peer address names a
	// transport other than UDP. Key log lines are only ever sent as
	// single unframed datagrams.
	ErrTransportNotUDP = errors.New("keylog: peer transport must be udp")

	// ErrPeerResolve is returned when the peer host does not resolve
	// at initialization. The destination is fixed once per process;
	// there is no re-resolution at send time.
	ErrPeerResolve = errors.New("keylog: peer address does not resolve")
)

// PeerChannel sends key log lines as UDP datagrams to a remote
// collector. The destination is resolved once at Init and reused for
// the process lifetime; the send socket is obtained lazily on first
// use and cached.
//
// Delivery is best-effort: unordered, unacknowledged, and loss is
// tolerated. A send failure is logged and reported to the caller but
// leaves the channel usable for the next attempt.
type PeerChannel struct {
	mode   Mode
	peer   string
	logger *slog.Logger

	destination *net.UDPAddr

	// conn is the cached send socket. First use by concurrent
	// goroutines may race to dial; the race is benign because the
	// pointer is only ever read or replaced whole. CompareAndSwap
	// picks one winner and the loser closes its socket.
	conn atomic.Pointer[net.UDPConn]
}

// NewPeerChannel creates a peer channel for the given mode and peer
// address. The address has the form "host:port", optionally suffixed
// with ";transport=udp" in SIP URI parameter style. The channel does
// nothing until Init is called.
func NewPeerChannel(mode Mode, peer string, logger *slog.Logger) *PeerChannel {
	return &PeerChannel{mode: mode, peer: peer, logger: logger}
}

// Init parses and resolves the peer address. No-op success when export
// or the peer bit is off. Distinct errors report a missing address, a
// non-UDP transport, and a resolution failure; each leaves the channel
// permanently disabled.
func (c *PeerChannel) Init() error {
	if !c.mode.PeerActive() {
		return nil
	}
	if c.peer == "" {
		return ErrNoPeerAddress
	}

	hostport, transport := splitTransport(c.peer)
	if !strings.EqualFold(transport, "udp") {
		return fmt.Errorf("%w: %q", ErrTransportNotUDP, c.peer)
	}

	destination, err := net.ResolveUDPAddr("udp", hostport)
	if err != nil {
		return fmt.Errorf("%w: %q: %v", ErrPeerResolve, c.peer, err)
	}
	c.destination = destination
	return nil
}

// splitTransport splits an optional ";transport=X" suffix off a peer
// address. A missing suffix defaults to udp.
func splitTransport(peer string) (hostport, transport string) {
	hostport, parameter, found := strings.Cut(peer, ";")
	if !found {
		return hostport, "udp"
	}
	if value, ok := strings.CutPrefix(strings.ToLower(strings.TrimSpace(parameter)), "transport="); ok {
		return hostport, value
	}
	return hostport, parameter
}

// Send transmits one line as a single unframed datagram to the
// resolved destination. No-op success when the channel is not
// initialized. A dial failure aborts this send but the channel stays
// initialized, so the next call retries socket acquisition.
func (c *PeerChannel) Send(line string) error {
	if c.destination == nil {
		return nil
	}

	conn := c.conn.Load()
	if conn == nil {
		dialed, err := net.DialUDP("udp", nil, c.destination)
		if err != nil {
			c.logger.Error("no send socket for keylog peer", "peer", c.peer, "error", err)
			return fmt.Errorf("keylog: dialing peer %q: %w", c.peer, err)
		}
		if c.conn.CompareAndSwap(nil, dialed) {
			conn = dialed
		} else {
			// Another goroutine won the first-use race; keep its
			// socket and discard ours.
			dialed.Close()
			conn = c.conn.Load()
			if conn == nil {
				// Lost the race to a concurrent Close; drop the line.
				return nil
			}
		}
	}

	if _, err := conn.Write([]byte(line)); err != nil {
		c.logger.Error("failed to send keylog line to peer", "peer", c.peer, "error", err)
		return fmt.Errorf("keylog: sending to peer %q: %w", c.peer, err)
	}
	return nil
}

// Close releases the cached send socket, if any.
func (c *PeerChannel) Close() error {
	if conn := c.conn.Swap(nil); conn != nil {
		return conn.Close()
	}
	return nil
}
