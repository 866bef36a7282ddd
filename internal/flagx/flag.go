// Package flagx holds small helpers for components that share os.Args with
// other flag consumers.
package flagx

import (
	"flag"
	"os"
	"strconv"
	"strings"
	"time"
)

// ConfigEnv names the environment variable consulted when no -c/-config flag
// is given.
const ConfigEnv = "CONFIG"

// FilterArgs returns only the allowed flags (and their values) from args.
//
// Both "-c conf.json" and "--config=conf.json" forms are recognised. A value
// is only consumed when the next token does not itself start with '-'.
func FilterArgs(args []string, allowedFlags []string) []string {
	allowed := make(map[string]struct{}, len(allowedFlags))
	for _, f := range allowedFlags {
		allowed[f] = struct{}{}
	}

	filtered := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if name, _, ok := strings.Cut(arg, "="); ok && strings.HasPrefix(arg, "-") {
			if _, ok := allowed[name]; ok {
				filtered = append(filtered, arg)
			}
			continue
		}

		if _, ok := allowed[arg]; !ok {
			continue
		}
		filtered = append(filtered, arg)
		if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			filtered = append(filtered, args[i+1])
			i++
		}
	}

	return filtered
}

// ConfigPath extracts the JSON config path given via -c or -config in args.
// When neither flag is present the CONFIG environment variable is used.
func ConfigPath(args []string) string {
	var path string

	fs := flag.NewFlagSet("json", flag.ContinueOnError)
	fs.StringVar(&path, "config", "", "Path to config file")
	fs.StringVar(&path, "c", "", "Path to config file (short)")
	_ = fs.Parse(FilterArgs(args, []string{"-c", "-config", "--config"}))

	if path == "" {
		path = os.Getenv(ConfigEnv)
	}
	return path
}

// unitDuration is a flag.Value holding a whole number of units.
type unitDuration struct {
	d    *time.Duration
	unit time.Duration
}

func (u unitDuration) String() string {
	if u.d == nil || u.unit == 0 {
		return "0"
	}
	return strconv.FormatInt(int64(*u.d/u.unit), 10)
}

func (u unitDuration) Set(s string) error {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return err
	}
	*u.d = time.Duration(n) * u.unit
	return nil
}

// DurationVar defines a flag that accepts an integer count of unit and stores
// the result in p. "-t 15" with unit time.Minute yields 15m.
func DurationVar(fs *flag.FlagSet, p *time.Duration, name string, unit time.Duration, usage string) {
	fs.Var(unitDuration{d: p, unit: unit}, name, usage)
}
