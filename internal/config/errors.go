package config

import (
	"fmt"
	"strings"
)

// MissingConfigError is returned when required settings are missing.
type MissingConfigError struct {
	Section string
	Keys    []string
}

// EnvVar returns the environment variable that sets section.key.
func EnvVar(section, key string) string {
	return EnvPrefix + strings.ToUpper(section+"_"+key)
}

func (e MissingConfigError) Error() string {
	if len(e.Keys) == 0 {
		return fmt.Sprintf("%s not configured", e.Section)
	}
	vars := make([]string, 0, len(e.Keys))
	for _, k := range e.Keys {
		vars = append(vars, EnvVar(e.Section, k))
	}
	return fmt.Sprintf("%s not configured (missing %s)", e.Section, strings.Join(vars, ", "))
}
