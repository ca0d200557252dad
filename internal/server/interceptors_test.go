package server

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// stubHandler is a no-op gRPC handler used in interceptor tests.
func stubHandler(_ context.Context, _ any) (any, error) {
	return "ok", nil
}

var listInfo = &grpc.UnaryServerInfo{FullMethod: "/rolodex.v1.RecordsService/ListRecords"}

func TestLoggingInterceptor_PassesThrough(t *testing.T) {
	interceptor := LoggingInterceptor(discardLogger())
	resp, err := interceptor(context.Background(), nil, listInfo, stubHandler)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if resp != "ok" {
		t.Fatalf("expected 'ok', got %v", resp)
	}

	want := status.Error(codes.Internal, "failed")
	_, err = interceptor(context.Background(), nil, listInfo, func(context.Context, any) (any, error) {
		return nil, want
	})
	if !errors.Is(err, want) {
		t.Fatalf("error = %v, want the handler error", err)
	}
}

func TestRecoveryInterceptor_Panic(t *testing.T) {
	interceptor := RecoveryInterceptor(discardLogger())
	_, err := interceptor(context.Background(), nil, listInfo, func(context.Context, any) (any, error) {
		panic("boom")
	})
	if status.Code(err) != codes.Internal {
		t.Fatalf("expected Internal, got %v", status.Code(err))
	}
	if !strings.Contains(err.Error(), "internal server error") {
		t.Errorf("error = %v", err)
	}
}

func TestRecoveryInterceptor_NoPanic(t *testing.T) {
	interceptor := RecoveryInterceptor(discardLogger())
	resp, err := interceptor(context.Background(), nil, listInfo, stubHandler)
	if err != nil || resp != "ok" {
		t.Fatalf("got %v, %v", resp, err)
	}
}

func TestMetricsInterceptor_CountsByCode(t *testing.T) {
	m := NewMetrics()
	_, _ = m.MetricsInterceptor(context.Background(), nil, listInfo, stubHandler)
	_, _ = m.MetricsInterceptor(context.Background(), nil, listInfo, func(context.Context, any) (any, error) {
		return nil, status.Error(codes.InvalidArgument, "bad")
	})

	if got := testutil.ToFloat64(m.rpcs.WithLabelValues(listInfo.FullMethod, "OK")); got != 1 {
		t.Errorf("OK count = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.rpcs.WithLabelValues(listInfo.FullMethod, "InvalidArgument")); got != 1 {
		t.Errorf("InvalidArgument count = %v, want 1", got)
	}
}

func TestRequestIDInterceptor_FromMetadata(t *testing.T) {
	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("x-request-id", "req-42"))
	var got string
	_, err := RequestIDInterceptor(ctx, nil, listInfo, func(ctx context.Context, _ any) (any, error) {
		got = RequestIDFromContext(ctx)
		return nil, nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if got != "req-42" {
		t.Fatalf("request ID = %q, want req-42", got)
	}
}

func TestRequestIDInterceptor_Generated(t *testing.T) {
	var got string
	_, _ = RequestIDInterceptor(context.Background(), nil, listInfo, func(ctx context.Context, _ any) (any, error) {
		got = RequestIDFromContext(ctx)
		return nil, nil
	})
	if len(got) != 36 {
		t.Fatalf("expected a generated UUID, got %q", got)
	}
}

func TestRPCLogLevel(t *testing.T) {
	for _, tc := range []struct {
		code codes.Code
		want slog.Level
	}{
		{codes.OK, slog.LevelInfo},
		{codes.InvalidArgument, slog.LevelWarn},
		{codes.Internal, slog.LevelError},
		{codes.Unavailable, slog.LevelError},
	} {
		if got := rpcLogLevel(tc.code); got != tc.want {
			t.Errorf("rpcLogLevel(%s) = %v, want %v", tc.code, got, tc.want)
		}
	}
}
