package logging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
)

// newBenchService constructs a Service with a discard engine at the given
// level. It bypasses Initialize() to avoid I/O setup and focuses on pure
// logging overhead.
func newBenchService(level Level) *Service {
	s := &Service{}
	s.engine = &ZerologEngine{logger: zerolog.New(io.Discard)}
	s.minLevel = level
	s.traceHeader = DefaultTraceHeader
	s.isInitialized.Store(true)
	return s
}

func makeWrapChain(depth int) error {
	if depth <= 0 {
		return nil
	}
	err := errors.New("root cause message")
	for i := 1; i < depth; i++ {
		err = fmt.Errorf("wrap %d: %w", i, err)
	}
	return err
}

func BenchmarkInfo_NoErr(b *testing.B) {
	s := newBenchService(LevelInfo)
	ctx := context.Background()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Info(ctx, Text("hello"), WithField("k", "v"), WithField("n", i))
	}
}

func BenchmarkInfo_Formatted(b *testing.B) {
	s := newBenchService(LevelInfo)
	ctx := context.Background()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Info(ctx, Textf("processed item %d", i))
	}
}

func BenchmarkInfo_Disabled(b *testing.B) {
	s := newBenchService(LevelError)
	ctx := context.Background()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Info(ctx, Text("hello"))
	}
}

func BenchmarkError_WrapChain3(b *testing.B) {
	s := newBenchService(LevelError)
	ctx := context.Background()
	err := makeWrapChain(3)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Error(ctx, Capture(err))
	}
}

func BenchmarkError_WrapChain6(b *testing.B) {
	s := newBenchService(LevelError)
	ctx := context.Background()
	err := makeWrapChain(6)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Error(ctx, Capture(err))
	}
}

func BenchmarkHTTPExchange(b *testing.B) {
	s := newBenchService(LevelInfo)
	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	resp := &http.Response{StatusCode: http.StatusOK, Header: http.Header{}, Request: req}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.HTTPRequest(req)
		s.HTTPResponse(resp)
	}
}

func BenchmarkParallel_Info(b *testing.B) {
	s := newBenchService(LevelInfo)
	ctx := context.Background()
	b.ReportAllocs()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			s.Info(ctx, Text("hi"), WithField("k", "v"))
		}
	})
}

func BenchmarkParallel_Error_WrapChain3(b *testing.B) {
	s := newBenchService(LevelError)
	ctx := context.Background()
	err := makeWrapChain(3)
	b.ReportAllocs()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			s.Error(ctx, Capture(err))
		}
	})
}
