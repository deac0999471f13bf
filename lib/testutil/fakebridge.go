// Copyright 2026 The Bridgecheck Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// FakeDevice describes one device reported by a [FakeBridge].
type FakeDevice struct {
	Serial string
	// State defaults to "device".
	State string
}

// Bridge is a running fake bridge installation.
type Bridge struct {
	// Path is the executable to pass wherever a bridge binary is
	// expected.
	Path string

	// Root holds the device list and one filesystem per device under
	// devices/<serial>.
	Root string
}

// FakeBridge writes an executable POSIX sh emulation of the device
// bridge into a temp directory. It understands -s and -p, prints the
// daemon banner before "devices" output, and implements devices [-l],
// shell, push, pull, sync, help, version, install, root, unroot,
// wait-for-device, forward, reverse, connect, and disconnect.
//
// Shell commands run against a per-device directory: absolute device
// paths are rewritten under Root/devices/<serial>, /proc/uptime is
// synthesized, and md5/sha1sum/sha256sum are computed with the host's
// coreutils. The environment variable FAKE_BRIDGE_FAIL=<subcommand>
// makes that subcommand exit 1, FAKE_CORRUPT=<push|pull|sync> flips the
// first byte of every file that subcommand copies without changing its
// size, and FAKE_UPTIME overrides the uptime line.
//
// Skips the test on Windows.
func FakeBridge(t *testing.T, devices ...FakeDevice) *Bridge {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake bridge is a sh script")
	}

	root := t.TempDir()
	bridge := &Bridge{
		Path: filepath.Join(root, "fake-bridge"),
		Root: root,
	}

	script := strings.ReplaceAll(fakeBridgeScript, "@ROOT@", root)
	if err := os.WriteFile(bridge.Path, []byte(script), 0o755); err != nil {
		t.Fatalf("writing fake bridge: %v", err)
	}
	bridge.SetDevices(t, devices...)
	return bridge
}

// SetDevices replaces the attached device set. Device filesystems of
// removed devices are left in place.
func (b *Bridge) SetDevices(t *testing.T, devices ...FakeDevice) {
	t.Helper()
	var list strings.Builder
	for _, device := range devices {
		state := device.State
		if state == "" {
			state = "device"
		}
		list.WriteString(device.Serial + " " + state + "\n")
		if err := os.MkdirAll(b.DeviceRoot(device.Serial), 0o755); err != nil {
			t.Fatalf("creating fake device root: %v", err)
		}
	}
	if err := os.WriteFile(filepath.Join(b.Root, "devices.list"), []byte(list.String()), 0o644); err != nil {
		t.Fatalf("writing fake device list: %v", err)
	}
}

// DeviceRoot is the host directory standing in for a device's root
// filesystem.
func (b *Bridge) DeviceRoot(serial string) string {
	return filepath.Join(b.Root, "devices", serial)
}

// DevicePath maps an absolute device path onto the host.
func (b *Bridge) DevicePath(serial, remote string) string {
	return filepath.Join(b.DeviceRoot(serial), filepath.FromSlash(remote))
}

// fakeBridgeScript is the emulator. @ROOT@ is replaced with the
// installation directory.
const fakeBridgeScript = `#!/bin/sh
root='@ROOT@'
list="$root/devices.list"
serial=""
product_out=""

while [ $# -gt 0 ]; do
	case "$1" in
	-s) serial="$2"; shift 2 ;;
	-p) product_out="$2"; shift 2 ;;
	*) break ;;
	esac
done

sub="$1"
[ $# -gt 0 ] && shift

if [ -n "$FAKE_BRIDGE_FAIL" ] && [ "$FAKE_BRIDGE_FAIL" = "$sub" ]; then
	echo "error: forced failure of $sub" 1>&2
	exit 1
fi

pick_device() {
	if [ -z "$serial" ]; then
		count=$(awk 'NF' "$list" | wc -l | tr -d ' ')
		if [ "$count" -eq 0 ]; then
			echo "error: no devices/emulators found" 1>&2
			exit 1
		fi
		if [ "$count" -gt 1 ]; then
			echo "error: more than one device/emulator" 1>&2
			exit 1
		fi
		serial=$(awk 'NF { print $1; exit }' "$list")
	fi
	state=$(awk -v s="$serial" '$1 == s { print $2; exit }' "$list")
	if [ -z "$state" ]; then
		echo "error: device '$serial' not found" 1>&2
		exit 1
	fi
	if [ "$state" != "device" ]; then
		echo "error: device $state" 1>&2
		exit 1
	fi
	dev="$root/devices/$serial"
}

corrupt() {
	first=$(od -An -tx1 -N1 "$1" | tr -d ' \n')
	if [ "$first" = 41 ]; then b=B; else b=A; fi
	printf '%s' "$b" | dd of="$1" bs=1 count=1 conv=notrunc 2>/dev/null
}

map() {
	case "$1" in
	/*) printf '%s%s' "$dev" "$1" ;;
	*) printf '%s/%s' "$dev" "$1" ;;
	esac
}

digest() {
	tool="$1"
	shift
	for f in "$@"; do
		p=$(map "$f")
		if [ ! -f "$p" ]; then
			echo "$tool: $f: No such file or directory" 1>&2
			return 1
		fi
		case "$tool" in
		md5)
			if command -v md5sum >/dev/null 2>&1; then
				sum=$(md5sum < "$p" | cut -d' ' -f1)
			else
				sum=$(md5 -q "$p")
			fi
			;;
		sha1sum) sum=$(sha1sum < "$p" | cut -d' ' -f1) ;;
		sha256sum) sum=$(sha256sum < "$p" | cut -d' ' -f1) ;;
		esac
		printf '%s  %s\n' "$sum" "$f"
	done
}

run_cmd() {
	set -f
	set -- $1
	set +f
	case "$1" in
	cat)
		if [ "$2" = /proc/uptime ]; then
			echo "${FAKE_UPTIME:-4242.17 8123.55}"
		else
			cat "$(map "$2")"
		fi
		;;
	md5 | sha1sum | sha256sum)
		digest "$@"
		;;
	dd)
		shift
		in=/dev/zero out="" bs=512 count=1
		for a in "$@"; do
			case "$a" in
			if=*) in="${a#if=}" ;;
			of=*) out=$(map "${a#of=}") ;;
			bs=*) bs="${a#bs=}" ;;
			count=*) count="${a#count=}" ;;
			esac
		done
		mkdir -p "$(dirname "$out")"
		dd if="$in" of="$out" bs="$bs" count="$count" 2>/dev/null || return 1
		echo "$count+0 records in"
		echo "$count+0 records out"
		;;
	rm)
		shift
		recursive=""
		case "$1" in
		-r | -rf | -fr) recursive=1; shift ;;
		esac
		status=0
		for f in "$@"; do
			p=$(map "$f")
			if [ ! -e "$p" ]; then
				echo "rm: $f: No such file or directory" 1>&2
				status=1
				continue
			fi
			if [ -d "$p" ] && [ -z "$recursive" ]; then
				echo "rm: $f: Is a directory" 1>&2
				status=1
				continue
			fi
			rm -rf "$p"
		done
		return $status
		;;
	getprop)
		case "$2" in
		ro.build.version.sdk) echo 34 ;;
		ro.product.model) echo Fake_Device ;;
		*) cat "$dev/.props/$2" 2>/dev/null || echo ;;
		esac
		;;
	setprop)
		mkdir -p "$dev/.props"
		printf '%s\n' "$3" > "$dev/.props/$2"
		;;
	true) return 0 ;;
	false) return 1 ;;
	echo)
		shift
		echo "$@"
		;;
	*)
		echo "/system/bin/sh: $1: not found" 1>&2
		return 127
		;;
	esac
}

case "$sub" in
devices)
	echo "* daemon not running. starting it now on port 5037 *"
	echo "* daemon started successfully *"
	echo "List of devices attached"
	n=0
	while read -r s st; do
		[ -z "$s" ] && continue
		n=$((n + 1))
		if [ "$1" = "-l" ]; then
			printf '%-22s %s usb:1-%d product:fake model:Fake_Device device:generic transport_id:%d\n' "$s" "$st" "$n" "$n"
		else
			printf '%s\t%s\n' "$s" "$st"
		fi
	done < "$list"
	echo
	;;
shell)
	pick_device
	cmd="$*"
	probe='; echo "'
	base="${cmd%%"$probe"*}"
	if [ "$base" != "$cmd" ]; then
		run_cmd "$base" 2>&1
		printf '\n%s\n' "$?"
		exit 0
	fi
	run_cmd "$cmd" 2>&1
	exit $?
	;;
push)
	pick_device
	p=$(map "$2")
	if [ ! -f "$1" ]; then
		echo "error: cannot stat '$1': No such file or directory" 1>&2
		exit 1
	fi
	mkdir -p "$(dirname "$p")"
	cp "$1" "$p" || exit 1
	if [ "$FAKE_CORRUPT" = push ]; then
		corrupt "$p"
	fi
	echo "$1: 1 file pushed."
	;;
pull)
	pick_device
	p=$(map "$1")
	if [ ! -f "$p" ]; then
		echo "error: remote object '$1' does not exist" 1>&2
		exit 1
	fi
	cp "$p" "$2" || exit 1
	if [ "$FAKE_CORRUPT" = pull ]; then
		corrupt "$2"
	fi
	echo "$1: 1 file pulled."
	;;
sync)
	pick_device
	src="${product_out:-$ANDROID_PRODUCT_OUT}"
	if [ -z "$src" ]; then
		echo "error: product directory not specified; use -p" 1>&2
		exit 1
	fi
	parts="$1"
	[ -z "$parts" ] && parts="system vendor oem data"
	for part in $parts; do
		[ -d "$src/$part" ] || continue
		mkdir -p "$dev/$part"
		cp -R "$src/$part/." "$dev/$part/" || exit 1
		if [ "$FAKE_CORRUPT" = sync ]; then
			(cd "$src/$part" && find . -type f) | while read -r f; do
				corrupt "$dev/$part/$f"
			done
		fi
		echo "$src/$part/: $(find "$src/$part" -type f | wc -l | tr -d ' ') files pushed."
	done
	;;
help)
	echo "Android Debug Bridge version 1.0.41"
	echo ""
	echo "global options:"
	echo " -s SERIAL  use device with given serial"
	echo " -p PRODUCT name or path ('angler'/'out/target/product/angler')"
	;;
version)
	echo "Android Debug Bridge version 1.0.41"
	echo "Version 35.0.2-fake"
	echo "Installed as $0"
	;;
install)
	pick_device
	if [ ! -f "$1" ]; then
		echo "error: cannot stat '$1'" 1>&2
		exit 1
	fi
	echo "Success"
	;;
root)
	pick_device
	echo "restarting adbd as root"
	;;
unroot)
	pick_device
	echo "restarting adbd as non root"
	;;
wait-for-device)
	pick_device
	;;
forward | reverse)
	pick_device
	table="$root/$sub.$serial"
	touch "$table"
	case "$1" in
	--remove-all) : > "$table" ;;
	--remove) grep -v "^$2 " "$table" > "$table.tmp"; mv "$table.tmp" "$table" ;;
	--list) cat "$table" ;;
	*) echo "$1 $2" >> "$table" ;;
	esac
	;;
connect)
	echo "connected to $1"
	;;
disconnect)
	echo "disconnected $1"
	;;
*)
	echo "unknown command $sub" 1>&2
	exit 1
	;;
esac
`
