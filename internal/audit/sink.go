package audit

import (
	"fmt"
	"io"
	"log/syslog"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	logrussyslog "github.com/sirupsen/logrus/hooks/syslog"
	"golang.org/x/sys/unix"

	"github.com/hakanisaksson/githook-seclog/internal/common"
	"github.com/hakanisaksson/githook-seclog/pkg/errors"
)

// Sink receives one ref-update's batch of events. Each batch is
// flushed independently; a crash mid-push leaves earlier batches
// intact on disk.
type Sink interface {
	Emit(sess SessionContext, events []Event) error
	Close() error
}

// Emitter fans one batch out to every open sink. With no sinks
// configured emitting is a no-op, not an error.
type Emitter struct {
	sinks []Sink
}

func NewEmitter(sinks ...Sink) *Emitter {
	return &Emitter{sinks: sinks}
}

func (e *Emitter) Emit(sess SessionContext, events []Event) error {
	for _, s := range e.sinks {
		if err := s.Emit(sess, events); err != nil {
			return err
		}
	}
	return nil
}

func (e *Emitter) Close() error {
	var firstErr error
	for _, s := range e.sinks {
		if err := s.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// FileSink appends delimited records to the audit log file. The file
// is opened once, in append mode, and an exclusive advisory lock is
// held until Close so concurrent pushes to the same file serialize
// whole-process rather than interleave lines.
type FileSink struct {
	file      *os.File
	formatter *Formatter
}

func NewFileSink(path string, formatter *Formatter) (*FileSink, error) {
	cleaned, err := common.CleanPath(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeLogFileOpen,
			fmt.Sprintf("invalid audit log path %s", path))
	}

	f, err := os.OpenFile(cleaned, os.O_APPEND|os.O_CREATE|os.O_WRONLY, common.FilePermissionNormal)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeLogFileOpen,
			fmt.Sprintf("failed to open audit log %s", cleaned))
	}

	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX); err != nil {
		f.Close()
		return nil, errors.Wrap(err, errors.ErrCodeLogFileOpen,
			fmt.Sprintf("failed to lock audit log %s", cleaned))
	}

	return &FileSink{file: f, formatter: formatter}, nil
}

func (s *FileSink) Emit(sess SessionContext, events []Event) error {
	var b strings.Builder
	for _, ev := range events {
		b.WriteString(s.formatter.FormatLine(sess, ev))
		b.WriteByte('\n')
	}
	if _, err := s.file.WriteString(b.String()); err != nil {
		return errors.Wrap(err, errors.ErrCodeLogFileWrite,
			"failed to append audit records")
	}
	return nil
}

func (s *FileSink) Close() error {
	_ = unix.Flock(int(s.file.Fd()), unix.LOCK_UN)
	return s.file.Close()
}

// SyslogSink forwards each record to syslog through a structured
// logger. The rendered message omits TIME since syslog stamps entries
// itself.
type SyslogSink struct {
	logger    *logrus.Logger
	formatter *Formatter
}

// messageFormatter renders an entry as its bare message. The syslog
// hook forwards the formatted entry verbatim, so anything beyond the
// delimited record (timestamps, logfmt keys) would corrupt the wire
// payload.
type messageFormatter struct{}

func (messageFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	return append([]byte(entry.Message), '\n'), nil
}

func newSyslogLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	logger.SetFormatter(messageFormatter{})
	return logger
}

// NewSyslogSink connects to the local syslog daemon at the given
// facility. Connection failure is returned to the caller, which treats
// the sink as unavailable rather than fatal.
func NewSyslogSink(facility string, formatter *Formatter) (*SyslogSink, error) {
	hook, err := logrussyslog.NewSyslogHook("", "", ParseFacility(facility)|syslog.LOG_INFO, "githook-seclog")
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSyslogConnect,
			"failed to connect to syslog")
	}

	logger := newSyslogLogger()
	logger.AddHook(hook)
	return &SyslogSink{logger: logger, formatter: formatter}, nil
}

func (s *SyslogSink) Emit(sess SessionContext, events []Event) error {
	for _, ev := range events {
		s.logger.Info(s.formatter.FormatSyslogLine(sess, ev))
	}
	return nil
}

func (s *SyslogSink) Close() error {
	return nil
}

// Logger exposes the underlying structured logger so error reports can
// be mirrored to syslog at error severity.
func (s *SyslogSink) Logger() *logrus.Logger {
	return s.logger
}

var facilities = map[string]syslog.Priority{
	"kern":     syslog.LOG_KERN,
	"user":     syslog.LOG_USER,
	"daemon":   syslog.LOG_DAEMON,
	"auth":     syslog.LOG_AUTH,
	"syslog":   syslog.LOG_SYSLOG,
	"cron":     syslog.LOG_CRON,
	"authpriv": syslog.LOG_AUTHPRIV,
	"ftp":      syslog.LOG_FTP,
	"local0":   syslog.LOG_LOCAL0,
	"local1":   syslog.LOG_LOCAL1,
	"local2":   syslog.LOG_LOCAL2,
	"local3":   syslog.LOG_LOCAL3,
	"local4":   syslog.LOG_LOCAL4,
	"local5":   syslog.LOG_LOCAL5,
	"local6":   syslog.LOG_LOCAL6,
	"local7":   syslog.LOG_LOCAL7,
}

// ParseFacility maps a facility name to its syslog priority, falling
// back to authpriv for unknown names.
func ParseFacility(name string) syslog.Priority {
	if p, ok := facilities[strings.ToLower(strings.TrimSpace(name))]; ok {
		return p
	}
	return syslog.LOG_AUTHPRIV
}
