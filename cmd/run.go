package cmd

import (
	"io"
	"os"
	"strconv"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/hakanisaksson/githook-seclog/internal/audit"
	"github.com/hakanisaksson/githook-seclog/internal/config"
	"github.com/hakanisaksson/githook-seclog/internal/gitrepo"
	"github.com/hakanisaksson/githook-seclog/internal/hook"
	"github.com/hakanisaksson/githook-seclog/internal/session"
	"github.com/hakanisaksson/githook-seclog/pkg/errors"
	"github.com/hakanisaksson/githook-seclog/pkg/models"
)

// runHook is the post-receive entry point: load configuration, capture
// the session context, open the sinks, then stream ref-updates from in.
func runHook(in io.Reader) error {
	cfg, err := loadConfig()
	if err != nil {
		// A broken config file must not lose the audit trail; fall
		// back to defaults and say so.
		os.Stderr.WriteString("githook-seclog: " + err.Error() + ", using defaults\n")
		cfg = models.Default()
	}

	log := newLogger(cfg)
	sess := session.Load(cfg.EnvFile)

	if sess.RepoPath == "" {
		os.Stderr.WriteString(hookUsage)
		os.Exit(2)
	}
	inspector, err := gitrepo.Open(sess.RepoPath)
	if err != nil {
		os.Stderr.WriteString(hookUsage)
		os.Exit(2)
	}

	formatter := audit.NewFormatter(cfg)
	handler := errors.NewHandler()

	var sinks []audit.Sink
	if cfg.Syslog.Enabled {
		syslogSink, err := audit.NewSyslogSink(cfg.Syslog.Facility, formatter)
		if err != nil {
			log.WithError(err).Debug("syslog unavailable, continuing without it")
		} else {
			sinks = append(sinks, syslogSink)
			handler = handler.WithLogger(syslogSink.Logger())
		}
	}

	if cfg.LogFile != "" {
		fileSink, err := audit.NewFileSink(cfg.LogFile, formatter)
		if err != nil {
			handler.Handle(err)
			os.Exit(1)
		}
		sinks = append(sinks, fileSink)
	}

	if cfg.JournalFile != "" {
		journalSink, err := audit.NewJournalSink(cfg.JournalFile)
		if err != nil {
			handler.Handle(err)
		} else {
			sinks = append(sinks, journalSink)
		}
	}

	emitter := audit.NewEmitter(sinks...)
	defer emitter.Close()

	runner := hook.NewRunner(inspector, emitter, sess, log)
	if err := runner.Run(in); err != nil {
		handler.Handle(err)
		os.Exit(1)
	}
	return nil
}

const hookUsage = `githook-seclog must run inside a git repository.
Install it as hooks/post-receive of a repository (see
"githook-seclog install --help") or set GIT_DIR before invoking it.
`

// loadConfig prefers the file viper located during initConfig, then
// the package's own resolution chain. GITHOOK_SECLOG_* environment
// variables override file values either way.
func loadConfig() (models.Config, error) {
	var cfg models.Config
	var err error
	if used := viper.ConfigFileUsed(); used != "" {
		cfg, err = config.LoadFile(used)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return cfg, err
	}
	return applyEnvOverrides(cfg), nil
}

// applyEnvOverrides overlays the scalar settings viper binds through
// AutomaticEnv, e.g. GITHOOK_SECLOG_DEBUG or
// GITHOOK_SECLOG_SYSLOG_FACILITY. Unset variables leave the loaded
// values alone.
func applyEnvOverrides(cfg models.Config) models.Config {
	if v := viper.GetString("debug"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Debug = b
		}
	}
	if v := viper.GetString("log_file"); v != "" {
		cfg.LogFile = v
	}
	if v := viper.GetString("journal_file"); v != "" {
		cfg.JournalFile = v
	}
	if v := viper.GetString("env_file"); v != "" {
		cfg.EnvFile = v
	}
	if v := viper.GetString("delimiter"); v != "" {
		cfg.Delimiter = v
	}
	if v := viper.GetString("syslog.enabled"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Syslog.Enabled = b
		}
	}
	if v := viper.GetString("syslog.facility"); v != "" {
		cfg.Syslog.Facility = v
	}
	return cfg
}

func newLogger(cfg models.Config) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	if cfg.Debug {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.ErrorLevel)
	}
	return log
}
