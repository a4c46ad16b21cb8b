package logging

import (
	"fmt"
	"net/http"
	"time"
)

// HTTPRequest logs an HTTP request record and returns the correlation it
// minted. The correlation is stashed against the request so the paired
// HTTPResponse recovers the same identifiers; ids resolve from options
// first, then the request context, then the trace header, then fresh
// mints.
func (s *Service) HTTPRequest(req *http.Request, opts ...Option) Correlation {
	if s == nil || !s.isInitialized.Load() || req == nil {
		return Correlation{}
	}
	o := applyOptions(opts)

	corr := Correlation{Start: time.Now()}
	corr.TraceID = o.traceID
	if corr.TraceID == emptyString {
		if id, ok := TraceIDFromContext(req.Context()); ok {
			corr.TraceID = id
		}
	}
	if corr.TraceID == emptyString {
		corr.TraceID = req.Header.Get(s.headerName())
	}
	if corr.TraceID == emptyString {
		corr.TraceID = NewTraceID()
	}
	corr.RequestID = o.requestID
	if corr.RequestID == emptyString {
		corr.RequestID = NewRequestID()
	}

	s.pairs.put(req, corr)

	rec := newRecord(KindHTTPRequest, LevelInfo, nil, o)
	rec.message = httpRequestMessage(req)
	rec.traceID = corr.TraceID
	rec.requestID = corr.RequestID
	rec.payload = s.requestPayload(req, o)
	s.emit(rec)
	return corr
}

// HTTPResponse logs an HTTP response record. Correlation recovery follows
// a fixed order: the stash written by the paired HTTPRequest, then ids
// passed in options, then the request context, then fresh mints. A fresh
// mint means the pair can no longer be joined; callers relying on pairing
// should let the stash do its job.
//
// Severity derives from the status code (5xx error, 4xx warn, otherwise
// info) unless WithLevel overrides it. Duration prefers WithDuration, then
// the stashed start time, then WithStartTime, then zero.
func (s *Service) HTTPResponse(resp *http.Response, opts ...Option) {
	if s == nil || !s.isInitialized.Load() || resp == nil {
		return
	}
	o := applyOptions(opts)

	var stash Correlation
	if resp.Request != nil {
		stash, _ = s.pairs.take(resp.Request)
	}

	traceID := stash.TraceID
	requestID := stash.RequestID
	if traceID == emptyString {
		traceID = o.traceID
	}
	if requestID == emptyString {
		requestID = o.requestID
	}
	if traceID == emptyString && resp.Request != nil {
		if id, ok := TraceIDFromContext(resp.Request.Context()); ok {
			traceID = id
		}
	}
	if traceID == emptyString {
		traceID = NewTraceID()
	}
	if requestID == emptyString {
		requestID = NewRequestID()
	}

	rec := newRecord(KindHTTPResponse, statusLevel(resp.StatusCode), nil, o)
	rec.message = httpResponseMessage(resp)
	rec.traceID = traceID
	rec.requestID = requestID
	rec.resolveDuration(o, stash.Start)
	rec.payload = s.responsePayload(resp, o)
	s.emit(rec)
}

func (s *Service) requestPayload(req *http.Request, o *recordOptions) map[string]any {
	p := map[string]any{
		fieldURL:      requestURL(req),
		fieldMethod:   req.Method,
		fieldHeaders:  redactHeaders(req.Header),
		fieldClientIP: clientIP(req),
	}
	if o != nil && o.hasBody {
		p[fieldBody] = bodyValue(o.body, s.maxBody)
	}
	return p
}

func (s *Service) responsePayload(resp *http.Response, o *recordOptions) map[string]any {
	p := map[string]any{
		fieldStatusCode: resp.StatusCode,
		fieldHeaders:    redactHeaders(resp.Header),
	}
	if resp.Request != nil {
		p[fieldURL] = requestURL(resp.Request)
		p[fieldMethod] = resp.Request.Method
		if ip := clientIP(resp.Request); ip != emptyString {
			p[fieldClientIP] = ip
		}
	}
	if o != nil && o.hasBody {
		p[fieldBody] = bodyValue(o.body, s.maxBody)
	}
	return p
}

func requestURL(req *http.Request) string {
	if req == nil || req.URL == nil {
		return emptyString
	}
	return req.URL.String()
}

func httpRequestMessage(req *http.Request) string {
	return req.Method + " " + requestURL(req)
}

func httpResponseMessage(resp *http.Response) string {
	if resp.Request == nil {
		return fmt.Sprintf("response %d", resp.StatusCode)
	}
	return fmt.Sprintf("%s %s %d", resp.Request.Method, requestURL(resp.Request), resp.StatusCode)
}
