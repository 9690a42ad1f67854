package audit

import (
	"strings"

	"github.com/hakanisaksson/githook-seclog/pkg/models"
)

// ContextField names a session-context column of the output line.
type ContextField string

// EventField names an event column of the output line.
type EventField string

const (
	FieldTime     ContextField = "TIME"
	FieldUser     ContextField = "USER"
	FieldClientIP ContextField = "CLIENT_IP"
	FieldRepo     ContextField = "REPO"
	FieldHost     ContextField = "HOST"

	FieldCommit EventField = "COMMIT"
	FieldAuthor EventField = "AUTHOR"
	FieldAction EventField = "ACTION"
	FieldFile   EventField = "FILE"
)

// TimeLayout is the wall-clock format of the TIME column.
const TimeLayout = "2006-01-02 15:04:05"

var (
	defaultContextFields = []ContextField{FieldTime, FieldUser, FieldClientIP, FieldRepo}
	defaultEventFields   = []EventField{FieldCommit, FieldAuthor, FieldAction, FieldFile}

	knownContextFields = map[ContextField]bool{
		FieldTime: true, FieldUser: true, FieldClientIP: true, FieldRepo: true, FieldHost: true,
	}
	knownEventFields = map[EventField]bool{
		FieldCommit: true, FieldAuthor: true, FieldAction: true, FieldFile: true,
	}
)

// Formatter renders one session context plus one event into a single
// delimited record. Field order is fixed at construction.
type Formatter struct {
	contextFields []ContextField
	eventFields   []EventField
	delimiter     string
	placeholder   string
}

// NewFormatter builds a formatter from configuration. Field-name lists
// are validated here: a list containing any unrecognized name is
// replaced wholesale by the default list, so a typo in the config
// cannot silently drop a column.
func NewFormatter(cfg models.Config) *Formatter {
	f := &Formatter{
		contextFields: defaultContextFields,
		eventFields:   defaultEventFields,
		delimiter:     cfg.Delimiter,
		placeholder:   cfg.EmptyPlaceholder,
	}
	if f.delimiter == "" {
		f.delimiter = ","
	}
	if f.placeholder == "" {
		f.placeholder = " "
	}

	if ctx, ok := parseContextFields(cfg.ContextFields); ok {
		f.contextFields = ctx
	}
	if ev, ok := parseEventFields(cfg.EventFields); ok {
		f.eventFields = ev
	}
	return f
}

// FieldCount returns the number of columns each record carries.
func (f *Formatter) FieldCount() int {
	return len(f.contextFields) + len(f.eventFields)
}

// FormatLine renders the record for the file sink, including TIME.
func (f *Formatter) FormatLine(sess SessionContext, ev Event) string {
	return f.render(sess, ev, true)
}

// FormatSyslogLine renders the record for the structured-logging sink.
// TIME is omitted since the transport timestamps natively; every other
// context field is kept.
func (f *Formatter) FormatSyslogLine(sess SessionContext, ev Event) string {
	return f.render(sess, ev, false)
}

func (f *Formatter) render(sess SessionContext, ev Event, withTime bool) string {
	tokens := make([]string, 0, f.FieldCount())
	for _, field := range f.contextFields {
		if field == FieldTime && !withTime {
			continue
		}
		tokens = append(tokens, f.orPlaceholder(f.contextValue(sess, field)))
	}
	for _, field := range f.eventFields {
		tokens = append(tokens, f.orPlaceholder(f.eventValue(ev, field)))
	}
	return strings.Join(tokens, f.delimiter)
}

func (f *Formatter) contextValue(sess SessionContext, field ContextField) string {
	switch field {
	case FieldTime:
		return sess.Time.Format(TimeLayout)
	case FieldUser:
		return sess.User
	case FieldClientIP:
		return sess.ClientIP
	case FieldRepo:
		return sess.RepoPath
	case FieldHost:
		return sess.Host
	}
	return ""
}

func (f *Formatter) eventValue(ev Event, field EventField) string {
	switch field {
	case FieldCommit:
		return ev.Commit
	case FieldAuthor:
		return ev.Author
	case FieldAction:
		return string(ev.Action)
	case FieldFile:
		return ev.File
	}
	return ""
}

func (f *Formatter) orPlaceholder(v string) string {
	if v == "" {
		return f.placeholder
	}
	return v
}

func parseContextFields(names []string) ([]ContextField, bool) {
	if len(names) == 0 {
		return nil, false
	}
	fields := make([]ContextField, 0, len(names))
	for _, name := range names {
		field := ContextField(strings.ToUpper(strings.TrimSpace(name)))
		if !knownContextFields[field] {
			return nil, false
		}
		fields = append(fields, field)
	}
	return fields, true
}

func parseEventFields(names []string) ([]EventField, bool) {
	if len(names) == 0 {
		return nil, false
	}
	fields := make([]EventField, 0, len(names))
	for _, name := range names {
		field := EventField(strings.ToUpper(strings.TrimSpace(name)))
		if !knownEventFields[field] {
			return nil, false
		}
		fields = append(fields, field)
	}
	return fields, true
}
