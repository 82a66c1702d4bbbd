// Package flagx lets several packages parse their own subset of os.Args
// without tripping over each other's flags.
package flagx

import (
	"flag"
	"os"
	"strings"
)

// ConfigEnv names the environment variable consulted when no config flag is given.
const ConfigEnv = "CAMPUS_CONFIG"

// FilterArgs keeps only the allowedFlags from args, together with their
// values. Both "-c conf.json" and "-config=conf.json" forms are recognized;
// a separate value is taken only if it does not look like another flag.
func FilterArgs(args []string, allowedFlags []string) []string {
	allowed := make(map[string]struct{}, len(allowedFlags))
	for _, f := range allowedFlags {
		allowed[f] = struct{}{}
	}

	filtered := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if strings.HasPrefix(arg, "-") && strings.Contains(arg, "=") {
			name, _, _ := strings.Cut(arg, "=")
			if _, ok := allowed[name]; ok {
				filtered = append(filtered, arg)
			}
			continue
		}

		if _, ok := allowed[arg]; ok {
			filtered = append(filtered, arg)
			if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				filtered = append(filtered, args[i+1])
				i++
			}
		}
	}

	return filtered
}

// ConfigFilePath returns the JSON config path from os.Args (-c or -config),
// falling back to $CAMPUS_CONFIG. Empty means no config file.
func ConfigFilePath() string {
	if p := ConfigFilePathFrom(os.Args[1:]); p != "" {
		return p
	}
	return os.Getenv(ConfigEnv)
}

// ConfigFilePathFrom extracts the -c / -config value from args, ignoring
// every other flag.
func ConfigFilePathFrom(args []string) string {
	var config string

	fs := flag.NewFlagSet("json", flag.ContinueOnError)
	fs.SetOutput(discard{})
	fs.StringVar(&config, "config", "", "Path to config file")
	fs.StringVar(&config, "c", "", "Path to config file (short)")
	_ = fs.Parse(FilterArgs(args, []string{"-c", "-config", "--config"}))

	return config
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }
