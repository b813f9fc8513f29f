// Package flagx lets several independent flag sets share one command line.
//
// Each config layer only parses the flags it owns: FilterArgs strips
// everything else so flag.FlagSet.Parse never fails on a foreign flag.
package flagx

import (
	"flag"
	"io"
	"slices"
	"strings"
)

// FilterArgs returns the subset of args that belongs to allowedFlags, in
// their original order.
//
// Both "-c conf.json" and "-c=conf.json" forms are recognised, as is the
// "--name" spelling the flag package also accepts. Flags listed in boolFlags
// never consume the following argument, so "-s -a host" and "-s positional"
// keep working.
func FilterArgs(args []string, allowedFlags []string, boolFlags ...string) []string {
	out := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		name, _, inline := strings.Cut(args[i], "=")
		name = normalize(name)
		if !slices.Contains(allowedFlags, name) {
			continue
		}
		out = append(out, args[i])

		if inline || slices.Contains(boolFlags, name) {
			continue
		}
		if next := i + 1; next < len(args) && !strings.HasPrefix(args[next], "-") {
			out = append(out, args[next])
			i = next
		}
	}

	return out
}

func normalize(name string) string {
	if strings.HasPrefix(name, "--") && len(name) > 2 {
		return name[1:]
	}
	return name
}

// ConfigPath extracts the JSON config file path given with -c or -config.
// It returns "" when neither flag is present; the last occurrence wins.
func ConfigPath(args []string) string {
	var path string
	fs := flag.NewFlagSet("config-path", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&path, "c", "", "config file")
	fs.StringVar(&path, "config", "", "config file")
	_ = fs.Parse(FilterArgs(args, []string{"-c", "-config"}))
	return path
}
