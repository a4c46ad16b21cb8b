package logging

import (
	"net/http"
	"time"
)

// TransportOption tunes a Transport.
type TransportOption func(*Transport)

// WithTransportBase sets the wrapped RoundTripper. Defaults to
// http.DefaultTransport.
func WithTransportBase(base http.RoundTripper) TransportOption {
	return func(t *Transport) { t.base = base }
}

// WithTransportHeader overrides the trace header name injected on
// outbound requests.
func WithTransportHeader(name string) TransportOption {
	return func(t *Transport) { t.header = name }
}

// WithTransportIgnore replaces the configured ignore list for this
// transport. Patterns are tested against both the request path and the
// absolute URL; matched requests pass through unlogged and untouched.
func WithTransportIgnore(patterns ...string) TransportOption {
	return func(t *Transport) {
		t.hasIgnore = true
		if pl, err := compilePatterns(patterns); err == nil {
			t.ignore = pl
		}
	}
}

// WithResponseBodyCapture also records a bounded copy of the response
// body. The body is restored so callers read it unchanged.
func WithResponseBodyCapture() TransportOption {
	return func(t *Transport) { t.captureBody = true }
}

// Transport is an http.RoundTripper that propagates the trace header on
// outbound requests and logs each exchange as a request/response pair.
//
// The trace id resolves from the request context first, then an already
// set header, then a fresh mint. The request is cloned before the header
// is injected, so callers never observe a mutated request. Transport
// failures produce a general error record and the error is returned to
// the caller unchanged.
type Transport struct {
	base        http.RoundTripper
	svc         *Service
	header      string
	ignore      patternList
	hasIgnore   bool
	captureBody bool
}

// NewTransport returns a Transport bound to the service. A nil service
// yields a pass-through transport that still injects the trace header.
func (s *Service) NewTransport(opts ...TransportOption) *Transport {
	t := &Transport{base: http.DefaultTransport, svc: s}
	for _, opt := range opts {
		if opt != nil {
			opt(t)
		}
	}
	return t
}

// Client returns an *http.Client using the transport.
func (t *Transport) Client() *http.Client {
	return &http.Client{Transport: t}
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}

	ignore := t.ignore
	if !t.hasIgnore && t.svc != nil {
		ignore = t.svc.ignore
	}
	if req.URL != nil && (ignore.Match(req.URL.Path) || ignore.Match(req.URL.String())) {
		return base.RoundTrip(req)
	}

	header := t.header
	if header == emptyString {
		header = t.svc.headerName()
	}

	traceID, _ := TraceIDFromContext(req.Context())
	if traceID == emptyString {
		traceID = req.Header.Get(header)
	}
	if traceID == emptyString {
		traceID = NewTraceID()
	}

	req = req.Clone(req.Context())
	req.Header.Set(header, traceID)

	logged := t.svc != nil && t.svc.isInitialized.Load()
	requestID := emptyString
	start := time.Now()
	if logged {
		requestID = NewRequestID()
		rec := newRecord(KindHTTPRequest, LevelInfo, nil, nil)
		rec.message = httpRequestMessage(req)
		rec.traceID = traceID
		rec.requestID = requestID
		rec.payload = t.svc.requestPayload(req, nil)
		t.svc.emit(rec)
	}

	resp, err := base.RoundTrip(req)
	if err != nil {
		if logged {
			rec := newRecord(KindGeneral, LevelError, Capture(err), nil)
			rec.message = "http request failed: " + httpRequestMessage(req)
			rec.traceID = traceID
			rec.requestID = requestID
			rec.payload = map[string]any{
				fieldURL:    requestURL(req),
				fieldMethod: req.Method,
			}
			rec.setDuration(time.Since(start))
			t.svc.emit(rec)
		}
		return nil, err
	}

	if logged {
		rec := newRecord(KindHTTPResponse, statusLevel(resp.StatusCode), nil, nil)
		rec.message = httpResponseMessage(resp)
		rec.traceID = traceID
		rec.requestID = requestID
		rec.setDuration(time.Since(start))
		payload := map[string]any{
			fieldStatusCode: resp.StatusCode,
			fieldURL:        requestURL(req),
			fieldMethod:     req.Method,
			fieldHeaders:    redactHeaders(resp.Header),
		}
		if t.captureBody && t.svc.maxBody > 0 {
			body, restored := drainBody(resp.Body, t.svc.maxBody)
			resp.Body = restored
			if body != emptyString {
				payload[fieldBody] = body
			}
		}
		rec.payload = payload
		t.svc.emit(rec)
	}
	return resp, nil
}
