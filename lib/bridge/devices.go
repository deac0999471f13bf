// Copyright 2026 The Bridgecheck Authors
// SPDX-License-Identifier: Apache-2.0

package bridge

import (
	"context"
	"fmt"
	"strings"

	"github.com/bridgecheck/bridgecheck/lib/process"
)

// StateDevice is the state of a device that accepts commands. Other
// states reported by the tool include "offline", "unauthorized",
// "recovery", and "bootloader".
const StateDevice = "device"

const devicesHeader = "List of devices attached"

// Device is one line of "devices" output. Identifiers are obtained
// fresh per enumeration and never persisted.
type Device struct {
	Serial string `json:"serial" yaml:"serial" cbor:"serial"`
	State  string `json:"state" yaml:"state" cbor:"state"`

	// Qualifiers holds the key:value pairs printed by "devices -l"
	// (usb, product, model, device, transport_id). Nil without -l.
	Qualifiers map[string]string `json:"qualifiers,omitempty" yaml:"qualifiers,omitempty" cbor:"qualifiers,omitempty"`
}

// Online reports whether the device accepts commands.
func (d Device) Online() bool {
	return d.State == StateDevice
}

// Serials projects the identifiers of devices, in order.
func Serials(devices []Device) []string {
	serials := make([]string, len(devices))
	for i, device := range devices {
		serials[i] = device.Serial
	}
	return serials
}

// ListDevices runs the tool's device-list subcommand and parses the
// result. long adds -l, which reports qualifiers for each device.
func ListDevices(ctx context.Context, invoker *process.Invoker, binary string, long bool) ([]Device, error) {
	client := NewClient(binary, invoker)
	args := []string{"devices"}
	if long {
		args = append(args, "-l")
	}
	output, err := client.call(ctx, args...)
	if err != nil {
		return nil, fmt.Errorf("listing devices: %w", err)
	}
	return ParseDevices(output)
}

// ParseDevices parses device-list output. Banner lines, the header,
// and blank lines are dropped; every other line must carry at least a
// serial and a state.
func ParseDevices(output string) ([]Device, error) {
	var devices []Device
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimRight(line, " \t\r")
		if strings.TrimSpace(line) == "" || isBannerLine(line) || strings.HasPrefix(line, devicesHeader) {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 2 {
			return nil, fmt.Errorf("malformed device line %q", line)
		}

		device := Device{Serial: fields[0], State: fields[1]}
		for _, field := range fields[2:] {
			key, value, ok := strings.Cut(field, ":")
			if !ok {
				// "devices -l" prints a bare "no permissions" note or
				// a USB path for some states; keep the state line and
				// ignore fragments that are not key:value.
				continue
			}
			if device.Qualifiers == nil {
				device.Qualifiers = make(map[string]string)
			}
			device.Qualifiers[key] = value
		}
		devices = append(devices, device)
	}
	return devices, nil
}

// isBannerLine matches the daemon's startup chatter, which the tool
// prints bracketed by asterisks.
func isBannerLine(line string) bool {
	return len(line) >= 3 && line[0] == '*' && line[len(line)-1] == '*'
}
