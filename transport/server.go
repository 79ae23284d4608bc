// Copyright 2026 The Voxlane Authors
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/voxlane/voxlane/config"
	"github.com/voxlane/voxlane/tlscfg"
	"github.com/voxlane/voxlane/tlserr"
)

const handshakeTimeout = 30 * time.Second

// Server accepts TLS connections on the listen address and relays the
// cleartext to the upstream address.
type Server struct {
	listenAddress   string
	upstreamAddress string
	registry        *tlscfg.Registry[*config.DomainSet]
	errorQueue      tlserr.Queue
	logger          *slog.Logger

	listener    net.Listener
	connections sync.WaitGroup
}

// ServerConfig holds everything a transport server needs.
type ServerConfig struct {
	// ListenAddress is the TLS-facing TCP address, e.g. ":5061".
	ListenAddress string

	// UpstreamAddress is where decrypted streams are relayed.
	UpstreamAddress string

	// Registry supplies the configuration generation for each
	// accepted connection.
	Registry *tlscfg.Registry[*config.DomainSet]

	// ErrorQueue is drained before each handshake so residual errors
	// from earlier connections cannot contaminate its reporting.
	// Optional.
	ErrorQueue tlserr.Queue

	Logger *slog.Logger
}

// NewServer creates a transport server. Call Listen then Serve.
func NewServer(serverConfig ServerConfig) (*Server, error) {
	if serverConfig.ListenAddress == "" {
		return nil, fmt.Errorf("transport: listen address is required")
	}
	if serverConfig.UpstreamAddress == "" {
		return nil, fmt.Errorf("transport: upstream address is required")
	}
	if serverConfig.Registry == nil {
		return nil, fmt.Errorf("transport: registry is required")
	}

	logger := serverConfig.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Server{
		listenAddress:   serverConfig.ListenAddress,
		upstreamAddress: serverConfig.UpstreamAddress,
		registry:        serverConfig.Registry,
		errorQueue:      serverConfig.ErrorQueue,
		logger:          logger,
	}, nil
}

// Listen binds the TCP listener.
func (s *Server) Listen() error {
	listener, err := net.Listen("tcp", s.listenAddress)
	if err != nil {
		return fmt.Errorf("transport: listening on %s: %w", s.listenAddress, err)
	}
	s.listener = listener
	return nil
}

// Address returns the bound listen address. Useful when the configured
// address carries port zero.
func (s *Server) Address() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Serve accepts connections until ctx is cancelled, then waits for
// established connections to finish.
func (s *Server) Serve(ctx context.Context) error {
	if s.listener == nil {
		return fmt.Errorf("transport: Serve called before Listen")
	}

	go func() {
		<-ctx.Done()
		s.listener.Close()
	}()

	for {
		connection, err := s.listener.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				s.connections.Wait()
				return nil
			}
			return fmt.Errorf("transport: accept: %w", err)
		}

		s.connections.Add(1)
		go func() {
			defer s.connections.Done()
			s.handleConnection(ctx, connection)
		}()
	}
}

// Close releases the listener. Established connections are unaffected.
func (s *Server) Close() error {
	if s.listener == nil {
		return nil
	}
	return s.listener.Close()
}

// handleConnection terminates TLS on the accepted connection and
// relays the cleartext stream to the upstream address.
func (s *Server) handleConnection(ctx context.Context, rawConnection net.Conn) {
	defer rawConnection.Close()
	remote := rawConnection.RemoteAddr().String()

	// Residual errors from earlier connections would misattribute any
	// failure of this handshake; clear them first.
	if s.errorQueue != nil {
		tlserr.Drain(s.errorQueue, s.logger)
	}

	// The generation checked out here is held until the connection
	// fully tears down. Reloads during the connection's lifetime do
	// not touch this snapshot.
	generation := s.registry.Checkout()
	defer generation.Checkin()
	domains := generation.Payload()

	tlsConnection := tls.Server(rawConnection, &tls.Config{
		GetConfigForClient: func(hello *tls.ClientHelloInfo) (*tls.Config, error) {
			return domains.Lookup(hello.ServerName), nil
		},
	})

	handshakeCtx, cancel := context.WithTimeout(ctx, handshakeTimeout)
	err := tlsConnection.HandshakeContext(handshakeCtx)
	cancel()
	if err != nil {
		s.logger.Warn("TLS handshake failed", "remote", remote, "error", err)
		return
	}

	serverName := tlsConnection.ConnectionState().ServerName
	s.logger.Debug("TLS connection established",
		"remote", remote,
		"server_name", serverName,
		"version", tls.VersionName(tlsConnection.ConnectionState().Version))

	upstream, err := net.Dial("tcp", s.upstreamAddress)
	if err != nil {
		s.logger.Error("upstream dial failed", "upstream", s.upstreamAddress, "error", err)
		return
	}
	defer upstream.Close()

	s.relay(tlsConnection, upstream, remote)
}

// relay pumps bytes between the TLS connection and the upstream until
// either side closes. Closing both connections unblocks the paired
// copy, so a single direction's EOF tears the whole relay down.
func (s *Server) relay(client net.Conn, upstream net.Conn, remote string) {
	var once sync.Once
	teardown := func() {
		client.Close()
		upstream.Close()
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := io.Copy(upstream, client)
		if err != nil && !errors.Is(err, net.ErrClosed) {
			s.logger.Debug("client to upstream copy ended", "remote", remote, "error", err)
		}
		once.Do(teardown)
	}()

	_, err := io.Copy(client, upstream)
	if err != nil && !errors.Is(err, net.ErrClosed) {
		s.logger.Debug("upstream to client copy ended", "remote", remote, "error", err)
	}
	once.Do(teardown)
	<-done
}
