package logging

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"
)

// MiddlewareOption tunes TraceMiddleware.
type MiddlewareOption func(*middlewareConfig)

type middlewareConfig struct {
	header      string
	ignore      patternList
	hasIgnore   bool
	logExchange bool
	captureBody bool
}

// WithIgnorePatterns replaces the configured ignore list for this
// middleware. Invalid patterns are discarded rather than failing the
// middleware.
func WithIgnorePatterns(patterns ...string) MiddlewareOption {
	return func(c *middlewareConfig) {
		c.hasIgnore = true
		if pl, err := compilePatterns(patterns); err == nil {
			c.ignore = pl
		}
	}
}

// WithTraceHeader overrides the configured trace header name for this
// middleware.
func WithTraceHeader(name string) MiddlewareOption {
	return func(c *middlewareConfig) { c.header = name }
}

// WithoutExchangeLogging keeps the trace scope and header echo but skips
// the automatic request and response records.
func WithoutExchangeLogging() MiddlewareOption {
	return func(c *middlewareConfig) { c.logExchange = false }
}

// WithRequestBodyCapture also records a bounded copy of the inbound
// request body. The body is restored so the handler reads it unchanged.
func WithRequestBodyCapture() MiddlewareOption {
	return func(c *middlewareConfig) { c.captureBody = true }
}

// TraceMiddleware returns a net/http middleware that binds every request
// to a trace scope and, by default, logs the request/response exchange.
//
// For each request it checks the ignore list (matched paths pass through
// untouched), reads the trace header or mints a fresh id, installs the id
// on the request context, and echoes it on the response. The exchange
// records share a minted request id, and the response record captures the
// status plus a bounded copy of the body through a pass-through writer
// wrap. The middleware never alters handler behavior or status.
//
// The returned value plugs directly into mux.Router.Use or plain
// http.Handler chains.
func (s *Service) TraceMiddleware(opts ...MiddlewareOption) func(http.Handler) http.Handler {
	mc := &middlewareConfig{logExchange: true}
	for _, opt := range opts {
		if opt != nil {
			opt(mc)
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ignore := mc.ignore
			if !mc.hasIgnore && s != nil {
				ignore = s.ignore
			}
			if ignore.Match(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			header := mc.header
			if header == emptyString {
				header = s.headerName()
			}

			traceID := r.Header.Get(header)
			if traceID == emptyString {
				traceID = NewTraceID()
			}
			r = r.WithContext(ContextWithTraceID(r.Context(), traceID))
			w.Header().Set(header, traceID)

			if !mc.logExchange || s == nil || !s.isInitialized.Load() {
				next.ServeHTTP(w, r)
				return
			}

			corr := Correlation{
				TraceID:   traceID,
				RequestID: NewRequestID(),
				Start:     time.Now(),
			}

			reqRec := newRecord(KindHTTPRequest, LevelInfo, nil, nil)
			reqRec.message = httpRequestMessage(r)
			reqRec.traceID = corr.TraceID
			reqRec.requestID = corr.RequestID
			reqRec.payload = s.requestPayload(r, nil)
			if mc.captureBody && s.maxBody > 0 {
				body, restored := drainBody(r.Body, s.maxBody)
				r.Body = restored
				if body != emptyString {
					reqRec.payload[fieldBody] = body
				}
			}
			s.emit(reqRec)

			rw := newResponseRecorder(w, s.maxBody)
			next.ServeHTTP(rw, r)

			respRec := newRecord(KindHTTPResponse, statusLevel(rw.status), nil, nil)
			respRec.message = fmt.Sprintf("%s %s %d", r.Method, requestURL(r), rw.status)
			respRec.traceID = corr.TraceID
			respRec.requestID = corr.RequestID
			respRec.setDuration(time.Since(corr.Start))
			payload := map[string]any{
				fieldStatusCode: rw.status,
				fieldURL:        requestURL(r),
				fieldMethod:     r.Method,
				fieldClientIP:   clientIP(r),
				fieldHeaders:    redactHeaders(w.Header()),
			}
			if rw.body.Len() > 0 {
				payload[fieldBody] = rw.capturedBody()
			}
			respRec.payload = payload
			s.emit(respRec)
		})
	}
}

// responseRecorder captures the status code and a bounded copy of the
// body while passing every write through to the wrapped writer.
type responseRecorder struct {
	http.ResponseWriter
	status      int
	body        bytes.Buffer
	limit       int64
	written     int64
	wroteHeader bool
}

func newResponseRecorder(w http.ResponseWriter, limit int64) *responseRecorder {
	return &responseRecorder{ResponseWriter: w, status: http.StatusOK, limit: limit}
}

func (r *responseRecorder) WriteHeader(code int) {
	if !r.wroteHeader {
		r.status = code
		r.wroteHeader = true
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *responseRecorder) Write(p []byte) (int, error) {
	r.wroteHeader = true
	r.written += int64(len(p))
	if remain := r.limit - int64(r.body.Len()); remain > 0 {
		if int64(len(p)) <= remain {
			r.body.Write(p)
		} else {
			r.body.Write(p[:remain])
		}
	}
	return r.ResponseWriter.Write(p)
}

// capturedBody returns the bounded body copy, marking it when the
// handler wrote past the capture limit.
func (r *responseRecorder) capturedBody() string {
	if r.written > r.limit {
		return r.body.String() + "...(truncated)"
	}
	return r.body.String()
}

func (r *responseRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Hijack lets handlers that upgrade the connection (websockets) work
// through the recorder when the underlying writer supports it.
func (r *responseRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if h, ok := r.ResponseWriter.(http.Hijacker); ok {
		return h.Hijack()
	}
	return nil, nil, errors.New("underlying ResponseWriter does not implement http.Hijacker")
}

// drainBody reads at most limit bytes from rc and returns the captured
// prefix plus a reader that replays the prefix before the remainder, so
// the original stream is observed unchanged downstream. A capture cut at
// the limit carries the same truncation marker as truncate.
func drainBody(rc io.ReadCloser, limit int64) (string, io.ReadCloser) {
	if rc == nil || rc == http.NoBody {
		return emptyString, rc
	}
	// read one past the limit so a capped body is distinguishable from a
	// complete one
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, io.LimitReader(rc, limit+1)); err != nil {
		return emptyString, rc
	}
	restored := struct {
		io.Reader
		io.Closer
	}{io.MultiReader(bytes.NewReader(buf.Bytes()), rc), rc}
	return truncate(buf.String(), limit), restored
}
