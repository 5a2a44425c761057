package featureflag

import (
	"sort"
	"strings"
)

// FeatureFlag is the set of enabled flags.
type FeatureFlag map[Flag]struct{}

// New builds the set from configured names. Names are trimmed and upper
// cased, and empty ones are ignored.
func New(flags []string) FeatureFlag {
	featureFlag := make(FeatureFlag)
	for _, f := range flags {
		f = strings.ToUpper(strings.TrimSpace(f))
		if f == "" {
			continue
		}
		featureFlag[Flag(f)] = struct{}{}
	}
	return featureFlag
}

// Enabled reports whether flag is set. It is safe to call on a nil
// FeatureFlag.
func (f FeatureFlag) Enabled(flag Flag) bool {
	_, ok := f[flag]
	return ok
}

// IfSet runs do when flag is set.
func (f FeatureFlag) IfSet(flag Flag, do func()) {
	if f.Enabled(flag) {
		do()
	}
}

// List returns the set flags in lexical order.
func (f FeatureFlag) List() []string {
	flags := make([]string, 0, len(f))
	for flag := range f {
		flags = append(flags, string(flag))
	}
	sort.Strings(flags)
	return flags
}
