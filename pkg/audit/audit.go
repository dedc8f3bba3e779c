package audit

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// SDID constants for structured data IDs (RFC5424).
// 32473 is the Private Enterprise Number reserved for documentation; a
// deployment with its own PEN sets it with WithEnterpriseNumber.
const (
	DefaultPEN  = 32473
	SDIDAuth    = "auth@32473"
	SDIDSubject = "subject@32473"
	SDIDAction  = "action@32473"
	SDIDClient  = "client@32473"
)

// AppName is the RFC5424 APP-NAME of every audit message.
const AppName = "shovel-heroes"

// Syslog facility constants
const (
	FacilityAuth     = 4  // LOG_AUTH - security/authorization messages
	FacilityAuthPriv = 10 // LOG_AUTHPRIV - security/authorization messages (private)
)

// Severity levels matching syslog (RFC5424)
type Severity int

const (
	SeverityEmergency Severity = iota // 0
	SeverityAlert                     // 1
	SeverityCritical                  // 2
	SeverityError                     // 3
	SeverityWarning                   // 4
	SeverityNotice                    // 5
	SeverityInfo                      // 6
	SeverityDebug                     // 7
)

// Event represents an audit event
type Event interface {
	MessageID() string
	Message() string
	Severity() Severity
	Facility() int
	StructuredData() map[string]map[string]string
}

// Auditor records security events. Handlers and middleware depend on this
// rather than on *Logger.
type Auditor interface {
	Log(ctx context.Context, event Event)
}

// Ensure Logger implements Auditor
var _ Auditor = (*Logger)(nil)

// Logger writes audit events in RFC5424 syslog format and, when a store is
// configured, persists them to the audit_logs table.
type Logger struct {
	mu       sync.Mutex
	writer   io.Writer
	store    *Store
	errors   *zap.Logger
	hostname string
	appName  string
	pid      int
	now      func() time.Time
	disabled bool
}

// Option configures a Logger.
type Option func(*Logger)

// WithWriter sets the output writer for RFC5424 lines. A nil writer disables
// line output.
func WithWriter(w io.Writer) Option {
	return func(l *Logger) {
		l.writer = w
	}
}

// WithStore persists every event to s.
func WithStore(s *Store) Option {
	return func(l *Logger) {
		l.store = s
	}
}

// WithErrorLogger reports persistence failures to logger.
func WithErrorLogger(logger *zap.Logger) Option {
	return func(l *Logger) {
		l.errors = logger
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(l *Logger) {
		l.now = now
	}
}

// Disabled turns the logger into a no-op.
func Disabled() Option {
	return func(l *Logger) {
		l.disabled = true
	}
}

// NewLogger creates a new audit logger writing to stdout.
func NewLogger(opts ...Option) *Logger {
	hostname, _ := os.Hostname()
	l := &Logger{
		writer:   os.Stdout,
		errors:   zap.NewNop(),
		hostname: hostname,
		appName:  AppName,
		pid:      os.Getpid(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Nop returns a logger that records nothing.
func Nop() *Logger {
	return NewLogger(Disabled())
}

// Log writes an event in RFC5424 syslog format and persists it.
// Persistence errors are reported to the error logger and never returned;
// an audit outage must not fail the request being audited.
func (l *Logger) Log(ctx context.Context, event Event) {
	if l == nil || l.disabled {
		return
	}

	timestamp := l.now().UTC()

	if l.writer != nil {
		line := l.format(event, timestamp)
		l.mu.Lock()
		_, _ = io.WriteString(l.writer, line)
		l.mu.Unlock()
	}

	if l.store != nil {
		if err := l.store.Save(ctx, event, timestamp); err != nil {
			l.errors.Error("failed to save audit event",
				zap.String("msgid", event.MessageID()),
				zap.Error(err))
		}
	}
}

// format renders event as one RFC5424 line.
// Format: <PRI>VERSION TIMESTAMP HOSTNAME APP-NAME PROCID MSGID SD MSG
func (l *Logger) format(event Event, timestamp time.Time) string {
	// Calculate PRI value: facility * 8 + severity
	pri := event.Facility()*8 + int(event.Severity())

	sd := formatStructuredData(event.StructuredData())
	if sd == "" {
		sd = "-"
	}

	hostname := l.hostname
	if hostname == "" {
		hostname = "-"
	}

	return fmt.Sprintf("<%d>1 %s %s %s %d %s %s %s\n",
		pri,
		timestamp.Format("2006-01-02T15:04:05.000Z"),
		hostname,
		l.appName,
		l.pid,
		event.MessageID(),
		sd,
		event.Message(),
	)
}

// formatStructuredData formats the structured data according to RFC5424.
// SD-IDs and parameters are sorted so output is stable.
// Format: [sdid param1="value1" param2="value2"][sdid2 ...]
func formatStructuredData(sd map[string]map[string]string) string {
	if len(sd) == 0 {
		return ""
	}

	ids := make([]string, 0, len(sd))
	for sdid := range sd {
		ids = append(ids, sdid)
	}
	sort.Strings(ids)

	var b strings.Builder
	for _, sdid := range ids {
		params := sd[sdid]
		keys := make([]string, 0, len(params))
		for key := range params {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		b.WriteString("[")
		b.WriteString(sdid)
		for _, key := range keys {
			b.WriteString(" ")
			b.WriteString(key)
			b.WriteString("=")
			b.WriteString(escapeSDValue(params[key]))
		}
		b.WriteString("]")
	}
	return b.String()
}

// escapeSDValue escapes special characters in structured data values per RFC5424
func escapeSDValue(value string) string {
	// Escape backslash, double quote, and closing bracket
	value = strings.ReplaceAll(value, "\\", "\\\\")
	value = strings.ReplaceAll(value, "\"", "\\\"")
	value = strings.ReplaceAll(value, "]", "\\]")
	return "\"" + value + "\""
}
