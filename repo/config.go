package repo

import "fmt"

// ConfigValue reads key from section of the repository's Git config. The
// boolean is false when the option is not set.
func (r *Repository) ConfigValue(section, key string) (string, bool, error) {
	cfg, err := r.repo.Config()
	if err != nil {
		return "", false, wrapError(err, "failed to read repository config")
	}

	if !cfg.Raw.HasSection(section) {
		return "", false, nil
	}

	s := cfg.Raw.Section(section)
	if !s.HasOption(key) {
		return "", false, nil
	}

	return s.Option(key), true, nil
}

// SetConfigValue writes key in section of the repository's Git config.
func (r *Repository) SetConfigValue(section, key, value string) error {
	cfg, err := r.repo.Config()
	if err != nil {
		return wrapError(err, "failed to read repository config")
	}

	cfg.Raw.Section(section).SetOption(key, value)

	if err := r.repo.Storer.SetConfig(cfg); err != nil {
		return wrapError(err, fmt.Sprintf("failed to write %s.%s", section, key))
	}

	return nil
}
