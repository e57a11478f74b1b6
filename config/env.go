package config

import (
	"os"
	"strings"
)

// Environment represents the current runtime environment
type Environment string

const (
	Development Environment = "development"
	Test        Environment = "test"
	CI          Environment = "ci"
	Production  Environment = "production"
)

var environments = map[string]Environment{
	"development": Development,
	"dev":         Development,
	"test":        Test,
	"ci":          CI,
	"production":  Production,
	"prod":        Production,
}

// ParseEnvironment maps an ENV value to an Environment. Unknown values are reported
// as not ok and fall back to Development.
func ParseEnvironment(raw string) (Environment, bool) {
	env, ok := environments[strings.ToLower(strings.TrimSpace(raw))]
	if !ok {
		return Development, false
	}
	return env, true
}

// GetEnvironment reads ENV, with CI=true taking precedence.
func GetEnvironment() Environment {
	if os.Getenv("CI") == "true" {
		return CI
	}
	env, _ := ParseEnvironment(os.Getenv("ENV"))
	return env
}

// LoadsDotEnv reports whether a local .env file should be read.
func (e Environment) LoadsDotEnv() bool {
	return e == Development || e == Test
}

// IsProduction reports whether the config was loaded for production
func (c *Config) IsProduction() bool {
	return c.Environment == Production
}
