package main

import (
	"bytes"
	"fmt"
	"regexp"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/rolodex/internal/ui"
)

// helpRule styles every match of pattern. Submatch 1, when present, is kept
// as-is and submatch 2 is styled; otherwise the whole match is styled.
type helpRule struct {
	pattern *regexp.Regexp
	style   func(string) string
}

var helpRules = []helpRule{
	// Group and section headers ("Records:", "Flags:"). "Usage:" is left plain.
	{regexp.MustCompile(`(?m)^()((?:[A-TV-Z]|U[^s])[^\n]*:)[ \t]*$`), ui.RenderAccent},
	// Subcommand names in command listings.
	{regexp.MustCompile(`(?m)^(  )([a-z][\w-]*)(?:  )`), ui.RenderCommand},
	// Flag value types ("--name string").
	{regexp.MustCompile(`(--[\w-]+ )(string|int|bool|duration)\b`), ui.RenderMuted},
	{regexp.MustCompile(`()(\(default [^)]*\))`), ui.RenderMuted},
}

// colorizedHelpFunc returns a help function that colors cobra's usage text
// when stdout is a color terminal.
func colorizedHelpFunc() func(*cobra.Command, []string) {
	return func(cmd *cobra.Command, _ []string) {
		out := cmd.OutOrStdout()
		if !ui.ShouldUseColor() {
			_ = cmd.Usage()
			return
		}
		var buf bytes.Buffer
		cmd.SetOut(&buf)
		_ = cmd.Usage()
		cmd.SetOut(out)
		fmt.Fprint(out, colorizeHelpOutput(buf.String()))
	}
}

func colorizeHelpOutput(s string) string {
	for _, rule := range helpRules {
		s = rule.pattern.ReplaceAllStringFunc(s, func(match string) string {
			m := rule.pattern.FindStringSubmatch(match)
			if len(m) < 3 {
				return rule.style(match)
			}
			prefix, styled := m[1], m[2]
			rest := match[len(prefix)+len(styled):]
			return prefix + rule.style(styled) + rest
		})
	}
	return s
}
