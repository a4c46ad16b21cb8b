package logging

import (
	"encoding/json"
	"fmt"
	"time"
)

// Level identifies the severity of a record.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

func levelRank(l Level) int {
	switch l {
	case LevelDebug:
		return 0
	case LevelInfo:
		return 1
	case LevelWarn:
		return 2
	case LevelError:
		return 3
	}
	return 1
}

// levelEnabled reports whether a record at level l passes the min threshold.
func levelEnabled(min, l Level) bool {
	return levelRank(l) >= levelRank(min)
}

// RecordKind tags the shape of a record.
type RecordKind string

const (
	KindGeneral            RecordKind = "general"
	KindHTTPRequest        RecordKind = "httpRequest"
	KindHTTPResponse       RecordKind = "httpResponse"
	KindSFTPTransaction    RecordKind = "sftpTransaction"
	KindDBQueryTransaction RecordKind = "dbQueryTransaction"
)

// Message is the payload of a log call. Exactly three shapes exist: plain
// text, structured fields, and a captured error. Construct one with Text,
// Textf, Fields, or Capture; a nil Message degrades to empty text.
type Message interface {
	appendTo(r *record)
}

type textMessage string

func (m textMessage) appendTo(r *record) {
	r.message = string(m)
}

// Text wraps a plain string message.
func Text(s string) Message {
	return textMessage(s)
}

// Textf formats a plain string message.
func Textf(format string, v ...any) Message {
	return textMessage(fmt.Sprintf(format, v...))
}

type fieldsMessage map[string]any

func (m fieldsMessage) appendTo(r *record) {
	if len(m) == 0 {
		return
	}
	r.fields = make(map[string]any, len(m))
	for k, v := range m {
		if k == FieldMessage {
			if s, ok := v.(string); ok {
				r.message = s
				continue
			}
		}
		r.fields[k] = v
	}
}

// Fields wraps a structured payload. Its entries are merged into the
// record top-level; a string under "message" becomes the record message,
// and entries colliding with reserved fields are dropped.
func Fields(fields map[string]any) Message {
	return fieldsMessage(fields)
}

type errMessage struct{ err error }

func (m errMessage) appendTo(r *record) {
	if m.err == nil {
		return
	}
	r.message = m.err.Error()
	r.setError(m.err)
}

// Capture wraps an error as the message itself. The record message becomes
// the error text and the error detail is attached.
func Capture(err error) Message {
	return errMessage{err: err}
}

// ErrorDetail is the serialized form of a captured error.
type ErrorDetail struct {
	Name    string `json:"name"`
	Message string `json:"message"`
	Stack   string `json:"stack,omitempty"`
}

// Option tunes a single record.
type Option func(*recordOptions)

type recordOptions struct {
	level       Level
	hasLevel    bool
	traceID     string
	requestID   string
	err         error
	duration    time.Duration
	hasDuration bool
	startTime   time.Time
	body        any
	hasBody     bool
	fields      map[string]any
}

func applyOptions(opts []Option) *recordOptions {
	o := &recordOptions{}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o
}

// WithLevel forces the record severity, overriding any derived level such
// as the HTTP status mapping or the transaction failure rule.
func WithLevel(level Level) Option {
	return func(o *recordOptions) {
		o.level = level
		o.hasLevel = true
	}
}

// WithTraceID sets the trace id explicitly instead of reading it from the
// context or minting a fresh one.
func WithTraceID(traceID string) Option {
	return func(o *recordOptions) { o.traceID = traceID }
}

// WithRequestID sets the request id explicitly.
func WithRequestID(requestID string) Option {
	return func(o *recordOptions) { o.requestID = requestID }
}

// WithError attaches an error detail to the record. A Capture message
// takes precedence when both are present.
func WithError(err error) Option {
	return func(o *recordOptions) { o.err = err }
}

// WithDuration sets the duration explicitly; it wins over any start-time
// derivation.
func WithDuration(d time.Duration) Option {
	return func(o *recordOptions) {
		o.duration = d
		o.hasDuration = true
	}
}

// WithStartTime derives the duration as now minus start when no explicit
// duration is given.
func WithStartTime(start time.Time) Option {
	return func(o *recordOptions) { o.startTime = start }
}

// WithBody attaches a request or response body to an HTTP record.
func WithBody(body any) Option {
	return func(o *recordOptions) {
		o.body = body
		o.hasBody = true
	}
}

// WithField adds one extra top-level field. Reserved fields are dropped.
func WithField(key string, value any) Option {
	return func(o *recordOptions) {
		if o.fields == nil {
			o.fields = make(map[string]any, 4)
		}
		o.fields[key] = value
	}
}

// WithFields adds several extra top-level fields at once.
func WithFields(fields map[string]any) Option {
	return func(o *recordOptions) {
		if len(fields) == 0 {
			return
		}
		if o.fields == nil {
			o.fields = make(map[string]any, len(fields))
		}
		for k, v := range fields {
			o.fields[k] = v
		}
	}
}

// record is a normalized entry ready for an engine.
type record struct {
	kind      RecordKind
	level     Level
	message   string
	traceID   string
	requestID string
	errDetail *ErrorDetail
	errChain  []string
	errRoot   string
	duration  *int64
	payload   map[string]any
	fields    map[string]any
	extra     map[string]any
}

func newRecord(kind RecordKind, level Level, msg Message, o *recordOptions) record {
	r := record{kind: kind, level: level}
	if msg != nil {
		msg.appendTo(&r)
	}
	if o != nil {
		if o.hasLevel {
			r.level = o.level
		}
		if o.err != nil && r.errDetail == nil {
			r.setError(o.err)
		}
		if len(o.fields) > 0 {
			r.extra = o.fields
		}
	}
	return r
}

// setError captures the error detail plus the unwrap chain enrichment.
func (r *record) setError(err error) {
	chain, root := buildErrorChain(err)
	r.errDetail = &ErrorDetail{
		Name:    errName(err),
		Message: err.Error(),
		Stack:   joinChain(chain),
	}
	if len(chain) > 1 {
		r.errChain = chain
		r.errRoot = root
	}
}

// setDuration records a duration in whole milliseconds, never negative.
func (r *record) setDuration(d time.Duration) {
	ms := d.Milliseconds()
	if ms < 0 {
		ms = 0
	}
	r.duration = &ms
}

// resolveDuration applies the precedence shared by response and
// transaction records: explicit duration, then now minus start, then zero.
func (r *record) resolveDuration(o *recordOptions, stashStart time.Time) {
	switch {
	case o != nil && o.hasDuration:
		r.setDuration(o.duration)
	case !stashStart.IsZero():
		r.setDuration(time.Since(stashStart))
	case o != nil && !o.startTime.IsZero():
		r.setDuration(time.Since(o.startTime))
	default:
		zero := int64(0)
		r.duration = &zero
	}
}

// meta flattens the record into the top-level field map handed to the
// engine. Caller-supplied fields go in first so the canonical fields
// written last can never be clobbered.
func (r *record) meta(stamps map[string]string) map[string]any {
	m := make(map[string]any, len(r.fields)+len(r.extra)+len(r.payload)+len(stamps)+8)

	for k, v := range r.fields {
		if !isReservedField(k) {
			m[k] = v
		}
	}
	for k, v := range r.extra {
		if !isReservedField(k) {
			m[k] = v
		}
	}
	for k, v := range r.payload {
		m[k] = v
	}
	for k, v := range stamps {
		m[k] = v
	}

	m[FieldLogID] = NewLogID()
	m[FieldType] = string(r.kind)
	m[FieldTraceID] = r.traceID
	if r.requestID != emptyString {
		m[FieldRequestID] = r.requestID
	} else {
		m[FieldRequestID] = nil
	}
	if r.errDetail != nil {
		m[FieldError] = r.errDetail
		if len(r.errChain) > 1 {
			m[fieldErrorChain] = r.errChain
			m[fieldErrorRoot] = r.errRoot
		}
	}
	if r.duration != nil {
		m[FieldDuration] = *r.duration
	}
	return m
}

// bodyValue coerces a captured body into something an engine can encode,
// bounding string forms to max bytes.
func bodyValue(v any, max int64) any {
	switch b := v.(type) {
	case nil:
		return nil
	case string:
		return truncate(b, max)
	case []byte:
		return truncate(string(b), max)
	case json.RawMessage:
		return truncate(string(b), max)
	case error:
		return truncate(b.Error(), max)
	case fmt.Stringer:
		return truncate(b.String(), max)
	default:
		return v
	}
}
