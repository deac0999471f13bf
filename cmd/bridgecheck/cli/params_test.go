// Copyright 2026 The Bridgecheck Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func TestBindFlags_BasicTypes(t *testing.T) {
	type params struct {
		Bridge    string        `flag:"bridge" desc:"bridge binary"`
		Verbose   bool          `flag:"verbose,v" desc:"enable verbose output"`
		Files     int           `flag:"files" desc:"number of files"`
		Offset    int64         `flag:"offset" desc:"byte offset"`
		Seed      uint64        `flag:"seed" desc:"payload seed"`
		Rate      float64       `flag:"rate" desc:"sampling rate"`
		Timeout   time.Duration `flag:"timeout" desc:"command timeout"`
		Scenarios []string      `flag:"scenario" desc:"scenario list"`
		Untagged  string        // no flag tag, skipped
	}

	var p params
	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	if err := BindFlags(&p, flagSet); err != nil {
		t.Fatalf("BindFlags: %v", err)
	}

	err := flagSet.Parse([]string{
		"--bridge", "/opt/sdk/adb",
		"-v",
		"--files", "32",
		"--offset", "1099511627776",
		"--seed", "18446744073709551615",
		"--rate", "0.95",
		"--timeout", "30s",
		"--scenario", "push,pull",
		"--scenario", "sync",
	})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if p.Bridge != "/opt/sdk/adb" {
		t.Errorf("Bridge = %q, want %q", p.Bridge, "/opt/sdk/adb")
	}
	if !p.Verbose {
		t.Error("Verbose = false, want true")
	}
	if p.Files != 32 {
		t.Errorf("Files = %d, want 32", p.Files)
	}
	if p.Offset != 1099511627776 {
		t.Errorf("Offset = %d, want 1099511627776", p.Offset)
	}
	if p.Seed != 18446744073709551615 {
		t.Errorf("Seed = %d, want max uint64", p.Seed)
	}
	if p.Rate != 0.95 {
		t.Errorf("Rate = %f, want 0.95", p.Rate)
	}
	if p.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want 30s", p.Timeout)
	}
	if strings.Join(p.Scenarios, " ") != "push pull sync" {
		t.Errorf("Scenarios = %v, want [push pull sync]", p.Scenarios)
	}
	if p.Untagged != "" {
		t.Errorf("Untagged = %q, want empty (should be skipped)", p.Untagged)
	}
}

func TestBindFlags_Defaults(t *testing.T) {
	type params struct {
		Bridge  string        `flag:"bridge" desc:"bridge binary" default:"adb"`
		Files   int           `flag:"files" desc:"files" default:"32"`
		Offset  int64         `flag:"offset" desc:"byte offset" default:"100"`
		Seed    uint64        `flag:"seed" desc:"seed" default:"7"`
		Rate    float64       `flag:"rate" desc:"rate" default:"0.5"`
		Timeout time.Duration `flag:"timeout" desc:"timeout" default:"10s"`
		Debug   bool          `flag:"debug" desc:"debug mode" default:"true"`
		Tags    []string      `flag:"tags" desc:"tags" default:"x,y"`
	}

	var p params
	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	if err := BindFlags(&p, flagSet); err != nil {
		t.Fatalf("BindFlags: %v", err)
	}

	if err := flagSet.Parse(nil); err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if p.Bridge != "adb" {
		t.Errorf("Bridge = %q, want %q", p.Bridge, "adb")
	}
	if p.Files != 32 {
		t.Errorf("Files = %d, want 32", p.Files)
	}
	if p.Offset != 100 {
		t.Errorf("Offset = %d, want 100", p.Offset)
	}
	if p.Seed != 7 {
		t.Errorf("Seed = %d, want 7", p.Seed)
	}
	if p.Rate != 0.5 {
		t.Errorf("Rate = %f, want 0.5", p.Rate)
	}
	if p.Timeout != 10*time.Second {
		t.Errorf("Timeout = %v, want 10s", p.Timeout)
	}
	if !p.Debug {
		t.Error("Debug = false, want true")
	}
	if len(p.Tags) != 2 || p.Tags[0] != "x" || p.Tags[1] != "y" {
		t.Errorf("Tags = %v, want [x y]", p.Tags)
	}
}

// TestParamsBinder implements FlagBinder for testing. Exported so that
// reflect can call Interface() on it when embedded.
type TestParamsBinder struct {
	Config string
	Bridge string
}

func (b *TestParamsBinder) AddFlags(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&b.Config, "config", "", "config file")
	flagSet.StringVar(&b.Bridge, "bridge", "", "bridge binary")
}

func TestBindFlags_NamedFlagBinder(t *testing.T) {
	type params struct {
		Source TestParamsBinder
		Long   bool `flag:"long" desc:"long listing"`
	}

	var p params
	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	if err := BindFlags(&p, flagSet); err != nil {
		t.Fatalf("BindFlags: %v", err)
	}

	if err := flagSet.Parse([]string{"--config", "ci.yaml", "--bridge", "/usr/bin/adb", "--long"}); err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if p.Source.Config != "ci.yaml" || p.Source.Bridge != "/usr/bin/adb" {
		t.Errorf("Source = %+v", p.Source)
	}
	if !p.Long {
		t.Error("Long = false, want true")
	}
}

func TestBindFlags_EmbeddedFlagBinder(t *testing.T) {
	type params struct {
		TestParamsBinder
		Long bool `flag:"long" desc:"long listing"`
	}

	var p params
	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	if err := BindFlags(&p, flagSet); err != nil {
		t.Fatalf("BindFlags: %v", err)
	}

	if err := flagSet.Parse([]string{"--config", "ci.yaml", "--long"}); err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if p.Config != "ci.yaml" {
		t.Errorf("Config = %q, want %q", p.Config, "ci.yaml")
	}
	if !p.Long {
		t.Error("Long = false, want true")
	}
}

func TestBindFlags_EmbeddedStructRecursion(t *testing.T) {
	type inner struct {
		Foo string `flag:"foo" desc:"foo flag"`
		Bar int    `flag:"bar" desc:"bar flag"`
	}
	type params struct {
		inner
		JSONOutput
	}

	var p params
	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	if err := BindFlags(&p, flagSet); err != nil {
		t.Fatalf("BindFlags: %v", err)
	}

	if err := flagSet.Parse([]string{"--foo", "hello", "--bar", "5", "--json"}); err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if p.Foo != "hello" || p.Bar != 5 {
		t.Errorf("inner = %+v", p.inner)
	}
	if !p.OutputJSON {
		t.Error("OutputJSON = false, want true from embedded JSONOutput")
	}
}

func TestBindFlags_Shorthand(t *testing.T) {
	type params struct {
		Report  string   `flag:"report,o" desc:"report path"`
		Serials []string `flag:"serial,s" desc:"serials"`
	}

	var p params
	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	if err := BindFlags(&p, flagSet); err != nil {
		t.Fatalf("BindFlags: %v", err)
	}

	if err := flagSet.Parse([]string{"-o", "/tmp/run.json", "-s", "emulator-5554", "-s", "R58M12"}); err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if p.Report != "/tmp/run.json" {
		t.Errorf("Report = %q, want %q", p.Report, "/tmp/run.json")
	}
	if len(p.Serials) != 2 || p.Serials[1] != "R58M12" {
		t.Errorf("Serials = %v", p.Serials)
	}
}

func TestBindFlags_Errors(t *testing.T) {
	type named struct {
		Name string `flag:"name"`
	}
	if err := BindFlags(named{}, pflag.NewFlagSet("test", pflag.ContinueOnError)); err == nil ||
		!strings.Contains(err.Error(), "params must be a pointer to a struct") {
		t.Errorf("non-pointer: error = %v", err)
	}

	s := "not a struct"
	if err := BindFlags(&s, pflag.NewFlagSet("test", pflag.ContinueOnError)); err == nil {
		t.Error("non-struct: expected error")
	}

	type badDefault struct {
		Seed uint64 `flag:"seed" default:"-1"`
	}
	if err := BindFlags(&badDefault{}, pflag.NewFlagSet("test", pflag.ContinueOnError)); err == nil {
		t.Error("bad default: expected error")
	}

	type unsupported struct {
		Sizes map[string]int `flag:"sizes"`
	}
	if err := BindFlags(&unsupported{}, pflag.NewFlagSet("test", pflag.ContinueOnError)); err == nil ||
		!strings.Contains(err.Error(), "unsupported type") {
		t.Errorf("unsupported type: error = %v", err)
	}
}

func TestFlagsFromParams(t *testing.T) {
	type params struct {
		Bridge string `flag:"bridge" desc:"bridge binary" default:"adb"`
	}

	var p params
	flagSet := FlagsFromParams("test", &p)
	if err := flagSet.Parse(nil); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if p.Bridge != "adb" {
		t.Errorf("Bridge = %q, want default %q", p.Bridge, "adb")
	}

	flagSet = FlagsFromParams("test", &p)
	if err := flagSet.Parse([]string{"--bridge", "/opt/adb", "positional"}); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if p.Bridge != "/opt/adb" {
		t.Errorf("Bridge = %q, want %q", p.Bridge, "/opt/adb")
	}
	if args := flagSet.Args(); len(args) != 1 || args[0] != "positional" {
		t.Errorf("remaining args = %v, want [positional]", args)
	}
}

func TestFlagsFromParams_Panics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic for nil input, got none")
		}
	}()
	FlagsFromParams("test", nil)
}
