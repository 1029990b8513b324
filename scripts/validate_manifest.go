//go:build ignore
// +build ignore

// validate_manifest.go validates the stdlib manifest against reality:
// every tag parses, every bundle file exists and parses, and the tag
// set matches what the interpreter's registry actually serves.
package main

import (
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/fatih/color"
	"github.com/sunholo/numfu/internal/eval"
	"github.com/sunholo/numfu/internal/parser"
	"github.com/sunholo/numfu/internal/stdlib"
)

var (
	green = color.New(color.FgGreen).SprintFunc()
	red   = color.New(color.FgRed).SprintFunc()
	bold  = color.New(color.Bold).SprintFunc()
)

func main() {
	verbose := flag.Bool("verbose", false, "Verbose output")
	flag.Parse()

	manifest, err := stdlib.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s loading stdlib manifest: %v\n", red("Error:"), err)
		os.Exit(1)
	}

	reg := eval.New(eval.DefaultOptions()).Registry()

	failures := 0
	fail := func(format string, args ...any) {
		fmt.Printf("%s %s\n", red("✗"), fmt.Sprintf(format, args...))
		failures++
	}

	fmt.Println(bold("Validating stdlib manifest"))

	seen := map[string]bool{}
	for _, entry := range manifest.Modules {
		if seen[entry.Name] {
			fail("duplicate manifest entry %q", entry.Name)
			continue
		}
		seen[entry.Name] = true

		if entry.Builtins {
			if _, ok := reg.Groups[entry.Name]; !ok {
				fail("tag %q claims a built-in group the registry does not serve", entry.Name)
				continue
			}
		}
		if entry.Bundle != "" {
			src, ok := manifest.Bundle(entry.Name)
			if !ok {
				fail("tag %q names bundle %q but the file is not embedded", entry.Name, entry.Bundle)
				continue
			}
			if _, err := parser.Parse(src, entry.Name); err != nil {
				fail("bundle %q does not parse: %v", entry.Bundle, err)
				continue
			}
		}
		if *verbose {
			fmt.Printf("%s %s\n", green("✓"), entry.Name)
		}
	}

	// Every registry group must be reachable through some manifest tag.
	var groups []string
	for name := range reg.Groups {
		groups = append(groups, name)
	}
	sort.Strings(groups)
	for _, name := range groups {
		if !seen[name] {
			fail("registry group %q has no manifest entry", name)
		}
	}

	if failures > 0 {
		fmt.Printf("\n%s %d problem(s)\n", red("FAIL:"), failures)
		os.Exit(1)
	}
	fmt.Printf("\n%s manifest matches the registry\n", green("OK:"))
}
