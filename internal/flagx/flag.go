// Package flagx lets several independent flag sets share one command line.
// Each config loader picks out only the flags it owns, so an unknown flag
// meant for another loader never aborts parsing.
package flagx

import (
	"flag"
	"strings"
)

// FilterArgs returns the subset of args that belongs to the named flags.
//
// names are given without dashes ("c", "config"); both "-name" and "--name"
// spellings match. Supported forms:
//
//	-c conf.json
//	--config=conf.json
//
// A value is taken from the next argument only when it does not itself start
// with a dash.
func FilterArgs(args []string, names []string) []string {
	allowed := make(map[string]struct{}, len(names))
	for _, n := range names {
		allowed[strings.TrimLeft(n, "-")] = struct{}{}
	}

	filtered := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]
		if !strings.HasPrefix(arg, "-") {
			continue
		}

		name, _, hasValue := strings.Cut(strings.TrimLeft(arg, "-"), "=")
		if _, ok := allowed[name]; !ok {
			continue
		}

		filtered = append(filtered, arg)
		if hasValue {
			continue
		}
		if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			filtered = append(filtered, args[i+1])
			i++
		}
	}

	return filtered
}

// ConfigPath returns the JSON config file named by -c/-config in args, or ""
// when none is given. When both are present the last one wins.
func ConfigPath(args []string) string {
	var path string

	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.StringVar(&path, "config", "", "path to JSON config file")
	fs.StringVar(&path, "c", "", "path to JSON config file (short)")
	_ = fs.Parse(FilterArgs(args, []string{"c", "config"}))

	return path
}
