package models

// Config holds the full configuration surface of the hook. Every field
// has a working default so the hook runs with no config file at all.
type Config struct {
	Debug            bool         `yaml:"debug"`
	Syslog           SyslogConfig `yaml:"syslog"`
	LogFile          string       `yaml:"log_file"`
	JournalFile      string       `yaml:"journal_file"`
	EnvFile          string       `yaml:"env_file"`
	Delimiter        string       `yaml:"delimiter"`
	EmptyPlaceholder string       `yaml:"empty_placeholder"`
	ContextFields    []string     `yaml:"context_fields"`
	EventFields      []string     `yaml:"event_fields"`
}

// SyslogConfig controls the structured-logging sink.
type SyslogConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Facility string `yaml:"facility"`
}

// Default returns the configuration used when no config file exists.
func Default() Config {
	return Config{
		Syslog: SyslogConfig{
			Enabled:  true,
			Facility: "authpriv",
		},
		Delimiter:        ",",
		EmptyPlaceholder: " ",
		ContextFields:    []string{"TIME", "USER", "CLIENT_IP", "REPO"},
		EventFields:      []string{"COMMIT", "AUTHOR", "ACTION", "FILE"},
	}
}
