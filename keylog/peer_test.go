// Copyright 2026 The Voxlane Authors
// SPDX-License-Identifier: Apache-2.0

package keylog

import (
	"errors"
	"net"
	"testing"
	"time"

	"github.com/voxlane/voxlane/lib/testutil"
)

// listenUDP starts a datagram collector on a loopback port and
// forwards received payloads on the returned channel.
func listenUDP(t *testing.T) (addr string, received <-chan string) {
	t.Helper()

	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Fatalf("ListenUDP: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	payloads := make(chan string, 16)
	go func() {
		buffer := make([]byte, 2048)
		for {
			n, _, err := conn.ReadFromUDP(buffer)
			if err != nil {
				return
			}
			payloads <- string(buffer[:n])
		}
	}()
	return conn.LocalAddr().String(), payloads
}

func TestPeerSendBeforeInitIsNoOp(t *testing.T) {
	channel := NewPeerChannel(ModeEnabled|ModePeer, "127.0.0.1:9060", testLogger())
	if err := channel.Send("CLIENT_RANDOM aa bb"); err != nil {
		t.Fatalf("Send before Init = %v, want nil", err)
	}
}

func TestPeerInitWithoutAddress(t *testing.T) {
	channel := NewPeerChannel(ModeEnabled|ModePeer, "", testLogger())
	if err := channel.Init(); !errors.Is(err, ErrNoPeerAddress) {
		t.Fatalf("Init without address = %v, want ErrNoPeerAddress", err)
	}
}

func TestPeerInitDisabledModes(t *testing.T) {
	for _, mode := range []Mode{0, ModePeer, ModeEnabled, ModeEnabled | ModeFile} {
		channel := NewPeerChannel(mode, "", testLogger())
		if err := channel.Init(); err != nil {
			t.Errorf("Init with mode %b = %v, want nil", mode, err)
		}
	}
}

func TestPeerInitRejectsNonUDPTransport(t *testing.T) {
	channel := NewPeerChannel(ModeEnabled|ModePeer, "127.0.0.1:9060;transport=tcp", testLogger())

	if err := channel.Init(); !errors.Is(err, ErrTransportNotUDP) {
		t.Fatalf("Init with tcp transport = %v, want ErrTransportNotUDP", err)
	}
	// The channel is permanently disabled: sends are silent no-ops.
	if err := channel.Send("CLIENT_RANDOM aa bb"); err != nil {
		t.Errorf("Send on disabled channel = %v, want nil", err)
	}
}

func TestPeerInitResolveFailure(t *testing.T) {
	channel := NewPeerChannel(ModeEnabled|ModePeer, "keylog.invalid.:9060", testLogger())
	if err := channel.Init(); !errors.Is(err, ErrPeerResolve) {
		t.Fatalf("Init with unresolvable host = %v, want ErrPeerResolve", err)
	}
}

func TestPeerSendDeliversDatagram(t *testing.T) {
	addr, received := listenUDP(t)

	channel := NewPeerChannel(ModeEnabled|ModePeer, addr+";transport=udp", testLogger())
	if err := channel.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer channel.Close()

	line := "CLIENT_RANDOM aa bb"
	if err := channel.Send(line); err != nil {
		t.Fatalf("Send: %v", err)
	}

	got := testutil.RequireReceive(t, received, 5*time.Second, "waiting for keylog datagram")
	if got != line {
		t.Errorf("datagram payload = %q, want %q (unframed line)", got, line)
	}
}

func TestPeerSendReusesSocket(t *testing.T) {
	addr, received := listenUDP(t)

	channel := NewPeerChannel(ModeEnabled|ModePeer, addr, testLogger())
	if err := channel.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer channel.Close()

	if err := channel.Send("CLIENT_RANDOM first"); err != nil {
		t.Fatalf("first Send: %v", err)
	}
	first := channel.conn.Load()
	if first == nil {
		t.Fatal("no cached socket after first send")
	}

	if err := channel.Send("CLIENT_RANDOM second"); err != nil {
		t.Fatalf("second Send: %v", err)
	}
	if channel.conn.Load() != first {
		t.Error("second send replaced the cached socket")
	}

	testutil.RequireReceive(t, received, 5*time.Second, "first datagram")
	testutil.RequireReceive(t, received, 5*time.Second, "second datagram")
}

func TestSplitTransport(t *testing.T) {
	tests := []struct {
		peer          string
		wantHostport  string
		wantTransport string
	}{
		{"127.0.0.1:9060", "127.0.0.1:9060", "udp"},
		{"127.0.0.1:9060;transport=udp", "127.0.0.1:9060", "udp"},
		{"127.0.0.1:9060;transport=UDP", "127.0.0.1:9060", "udp"},
		{"collector.example.org:9060;transport=tls", "collector.example.org:9060", "tls"},
	}
	for _, test := range tests {
		hostport, transport := splitTransport(test.peer)
		if hostport != test.wantHostport || transport != test.wantTransport {
			t.Errorf("splitTransport(%q) = (%q, %q), want (%q, %q)",
				test.peer, hostport, transport, test.wantHostport, test.wantTransport)
		}
	}
}
