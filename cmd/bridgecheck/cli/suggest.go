// Copyright 2026 The Bridgecheck Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"strings"

	"github.com/spf13/pflag"
)

// maxSuggestDistance bounds how far a typo may be from a real name
// before we stop guessing.
const maxSuggestDistance = 3

// suggestCommand returns the subcommand name closest to unknown, or ""
// when none is within maxSuggestDistance edits.
func suggestCommand(unknown string, commands []*Command) string {
	names := make([]string, 0, len(commands))
	for _, command := range commands {
		names = append(names, command.Name)
	}
	return closest(unknown, names)
}

// suggestFlag finds the first flag in args that flagSet does not define
// and returns the closest defined long flag as "--name". Only the first
// unknown flag is considered.
func suggestFlag(args []string, flagSet *pflag.FlagSet) string {
	name, ok := firstUnknownFlag(args, flagSet)
	if !ok {
		return ""
	}

	var defined []string
	flagSet.VisitAll(func(f *pflag.Flag) {
		defined = append(defined, f.Name)
	})
	if best := closest(name, defined); best != "" {
		return "--" + best
	}
	return ""
}

// firstUnknownFlag returns the bare name of the first flag argument
// before "--" that is neither a long flag nor a shorthand of flagSet.
func firstUnknownFlag(args []string, flagSet *pflag.FlagSet) (string, bool) {
	for _, arg := range args {
		if arg == "--" {
			return "", false
		}
		if len(arg) < 2 || arg[0] != '-' {
			continue
		}
		name, _, _ := strings.Cut(strings.TrimLeft(arg, "-"), "=")
		if flagSet.Lookup(name) != nil {
			continue
		}
		if len(name) == 1 && flagSet.ShorthandLookup(name) != nil {
			continue
		}
		return name, true
	}
	return "", false
}

// closest returns the candidate with the smallest edit distance to
// input, preferring the earlier candidate on ties.
func closest(input string, candidates []string) string {
	best := ""
	bestDistance := maxSuggestDistance + 1
	for _, candidate := range candidates {
		if distance := levenshtein(input, candidate); distance < bestDistance {
			best, bestDistance = candidate, distance
		}
	}
	return best
}

// levenshtein is the edit distance between a and b, counted in runes.
func levenshtein(a, b string) int {
	source, target := []rune(a), []rune(b)
	if len(source) > len(target) {
		source, target = target, source
	}

	previous := make([]int, len(source)+1)
	current := make([]int, len(source)+1)
	for i := range previous {
		previous[i] = i
	}
	for j, t := range target {
		current[0] = j + 1
		for i, s := range source {
			substitution := previous[i]
			if s != t {
				substitution++
			}
			current[i+1] = min(previous[i+1]+1, current[i]+1, substitution)
		}
		previous, current = current, previous
	}
	return previous[len(source)]
}
