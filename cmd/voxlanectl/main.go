// Copyright 2026 The Voxlane Authors
// SPDX-License-Identifier: Apache-2.0

// Voxlanectl is the admin client for voxlane-tlsd. It speaks to the
// daemon's Unix admin socket.
//
// Usage:
//
//	voxlanectl [--socket PATH] status
//	voxlanectl [--socket PATH] collect
//	voxlanectl [--socket PATH] reload
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"github.com/voxlane/voxlane/admin"
	"github.com/voxlane/voxlane/lib/version"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	flags := pflag.NewFlagSet("voxlanectl", pflag.ContinueOnError)
	socketPath := flags.StringP("socket", "s", "/run/voxlane/tls-admin.sock", "path to the daemon admin socket")
	showVersion := flags.BoolP("version", "V", false, "print version information and exit")
	flags.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: voxlanectl [flags] <status|collect|reload>\n\n")
		flags.PrintDefaults()
	}
	if err := flags.Parse(os.Args[1:]); err != nil {
		return err
	}

	if *showVersion {
		fmt.Printf("voxlanectl %s\n", version.Info())
		return nil
	}

	if flags.NArg() != 1 {
		flags.Usage()
		return fmt.Errorf("exactly one command is required")
	}

	client := admin.NewClient(*socketPath)
	switch command := flags.Arg(0); command {
	case "status":
		return printStatus(client)

	case "collect":
		collected, err := client.Collect()
		if err != nil {
			return err
		}
		fmt.Printf("collected %d stale generation(s)\n", collected)
		return nil

	case "reload":
		collected, err := client.Reload()
		if err != nil {
			return err
		}
		fmt.Printf("reloaded; collected %d stale generation(s)\n", collected)
		return nil

	default:
		flags.Usage()
		return fmt.Errorf("unknown command %q", command)
	}
}

func printStatus(client *admin.Client) error {
	status, err := client.Status()
	if err != nil {
		return err
	}

	fmt.Printf("daemon version:    %s\n", status.Version)
	fmt.Printf("generations:       %d (%d stale)\n", status.Generations, status.StaleGenerations)
	fmt.Printf("active references: %d\n", status.HeadRefs)
	fmt.Printf("domains:           %s\n", strings.Join(status.Domains, ", "))
	fmt.Printf("keylog export:     %s\n", onOff(status.KeylogEnabled))
	return nil
}

func onOff(enabled bool) string {
	if enabled {
		return "on"
	}
	return "off"
}
