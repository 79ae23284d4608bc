// Copyright 2026 The Voxlane Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"crypto/tls"
	"fmt"
	"io"
	"strings"

	"github.com/voxlane/voxlane/lib/shmem"
)

// DomainSet is one immutable snapshot of the TLS domains built from a
// configuration file. It is the payload carried by a configuration
// generation: connections resolve their domain against the snapshot
// they checked out, unaffected by later reloads.
type DomainSet struct {
	defaultName string
	byName      map[string]*tls.Config

	// names holds the shared-memory copies of the domain names,
	// readable by the embedding proxy core across worker handoff.
	names []*shmem.String
}

// BuildDomainSet loads every domain's certificate pair and assembles
// the snapshot. keyLogWriter, when non-nil, is wired into each
// domain's TLS configuration so handshakes export their secrets.
// Domain names are duplicated into arena; an exhausted arena fails
// the build rather than producing a partial snapshot.
func BuildDomainSet(domains []DomainConfig, keyLogWriter io.Writer, arena *shmem.Arena) (*DomainSet, error) {
	if len(domains) == 0 {
		return nil, fmt.Errorf("config: no TLS domains to build")
	}

	set := &DomainSet{
		defaultName: strings.ToLower(domains[0].Name),
		byName:      make(map[string]*tls.Config, len(domains)),
	}
	for _, domain := range domains {
		certificate, err := tls.LoadX509KeyPair(domain.Certificate, domain.Key)
		if err != nil {
			return nil, fmt.Errorf("config: loading certificate for domain %q: %w", domain.Name, err)
		}
		minVersion, err := domain.ParseMinVersion()
		if err != nil {
			return nil, fmt.Errorf("config: domain %q: %w", domain.Name, err)
		}

		name, err := arena.DupString(domain.Name)
		if err != nil {
			return nil, fmt.Errorf("config: duplicating domain name %q: %w", domain.Name, err)
		}
		set.names = append(set.names, name)

		set.byName[strings.ToLower(domain.Name)] = &tls.Config{
			Certificates: []tls.Certificate{certificate},
			MinVersion:   minVersion,
			KeyLogWriter: keyLogWriter,
		}
	}
	return set, nil
}

// Lookup resolves an SNI server name to its TLS configuration. An
// unknown or empty name falls back to the first configured domain.
func (s *DomainSet) Lookup(serverName string) *tls.Config {
	if configuration, ok := s.byName[strings.ToLower(serverName)]; ok {
		return configuration
	}
	return s.byName[s.defaultName]
}

// Names returns the configured domain names in order.
func (s *DomainSet) Names() []string {
	names := make([]string, len(s.names))
	for i, name := range s.names {
		names[i] = name.String()
	}
	return names
}

// Len returns the number of configured domains.
func (s *DomainSet) Len() int {
	return len(s.byName)
}
