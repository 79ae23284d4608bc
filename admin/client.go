// Copyright 2026 The Voxlane Authors
// SPDX-License-Identifier: Apache-2.0

package admin

import (
	"fmt"
	"net"
	"time"

	"github.com/voxlane/voxlane/lib/codec"
)

// Client talks to the daemon's admin socket. The zero value is not
// usable; create one with NewClient.
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a client for the admin socket at socketPath.
func NewClient(socketPath string) *Client {
	return &Client{socketPath: socketPath, timeout: 30 * time.Second}
}

// Status fetches the transport-layer summary.
func (c *Client) Status() (*Status, error) {
	response, err := c.roundTrip(Request{Action: ActionStatus})
	if err != nil {
		return nil, err
	}
	if response.Status == nil {
		return nil, fmt.Errorf("admin: status response carried no status payload")
	}
	return response.Status, nil
}

// Collect triggers one garbage-collection pass and returns the number
// of generations destroyed.
func (c *Client) Collect() (int, error) {
	response, err := c.roundTrip(Request{Action: ActionCollect})
	if err != nil {
		return 0, err
	}
	return response.Collected, nil
}

// Reload asks the daemon to reload its configuration file. Returns
// the number of generations the post-reload collection destroyed.
func (c *Client) Reload() (int, error) {
	response, err := c.roundTrip(Request{Action: ActionReload})
	if err != nil {
		return 0, err
	}
	return response.Collected, nil
}

// roundTrip sends one request and reads one response over a fresh
// connection.
func (c *Client) roundTrip(request Request) (*Response, error) {
	connection, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("admin: dialing %s: %w", c.socketPath, err)
	}
	defer connection.Close()
	connection.SetDeadline(time.Now().Add(c.timeout))

	if err := codec.NewEncoder(connection).Encode(request); err != nil {
		return nil, fmt.Errorf("admin: sending %s request: %w", request.Action, err)
	}

	var response Response
	if err := codec.NewDecoder(connection).Decode(&response); err != nil {
		return nil, fmt.Errorf("admin: reading %s response: %w", request.Action, err)
	}
	if !response.OK {
		return nil, fmt.Errorf("admin: %s failed: %s", request.Action, response.Error)
	}
	return &response, nil
}
