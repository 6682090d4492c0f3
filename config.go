package tags

import (
	"strings"

	platformerrors "github.com/jmgilman/go/errors"
	"github.com/jmgilman/go/tags/repo"
)

// Git config location of the feature gate.
const (
	ConfigSection     = "tags"
	ConfigKeyDisabled = "disabled"
)

// ConfigSource supplies the feature gate. DisableTags is called once per
// query.
type ConfigSource interface {
	DisableTags() (bool, error)
}

// StaticConfig is a ConfigSource with a fixed value.
type StaticConfig struct {
	Disabled bool
}

// DisableTags implements ConfigSource.
func (c StaticConfig) DisableTags() (bool, error) {
	return c.Disabled, nil
}

// RepoConfig reads the gate from the repository's Git config:
//
//	[tags]
//	    disabled = true
type RepoConfig struct {
	Repo *repo.Repository
}

// DisableTags implements ConfigSource. An unset option means enabled.
func (c RepoConfig) DisableTags() (bool, error) {
	value, ok, err := c.Repo.ConfigValue(ConfigSection, ConfigKeyDisabled)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}

	disabled, valid := parseGitBool(value)
	if !valid {
		return false, platformerrors.Newf(platformerrors.CodeInvalidConfig,
			"invalid boolean %q for %s.%s", value, ConfigSection, ConfigKeyDisabled)
	}

	return disabled, nil
}

// parseGitBool accepts the boolean spellings Git itself accepts.
func parseGitBool(value string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "yes", "on", "1":
		return true, true
	case "false", "no", "off", "0", "":
		return false, true
	default:
		return false, false
	}
}
