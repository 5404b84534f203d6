package metadata

import (
	"context"
	"errors"
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

func TestRequestIDContextHelpers(t *testing.T) {
	if RequestIDFromContext(nil) != "" {
		t.Fatal("expected empty request id for nil context")
	}
	ctx := WithRequestID(nil, "req-1")
	if got := RequestIDFromContext(ctx); got != "req-1" {
		t.Fatalf("request id = %q, want req-1", got)
	}
}

func TestFirstMetadataValue(t *testing.T) {
	md := metadata.MD{"X-Sect-Ascension-Request-Id": {"bad\n", "req-2"}}
	if got := FirstMetadataValue(md, RequestIDHeader); got != "req-2" {
		t.Fatalf("value = %q, want req-2", got)
	}
	if got := FirstMetadataValue(nil, RequestIDHeader); got != "" {
		t.Fatalf("value = %q, want empty", got)
	}
}

func TestSessionIDFromContext(t *testing.T) {
	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs(SessionIDHeader, "s1"))
	if got := SessionIDFromContext(ctx); got != "s1" {
		t.Fatalf("session id = %q, want s1", got)
	}
	if got := SessionIDFromContext(context.Background()); got != "" {
		t.Fatalf("session id = %q, want empty", got)
	}
}

// headerStream satisfies grpc.ServerTransportStream for SetHeader.
type headerStream struct {
	grpc.ServerTransportStream
	header metadata.MD
}

func (s *headerStream) Method() string { return "/sect.v1.SectService/GetSession" }

func (s *headerStream) SetHeader(md metadata.MD) error {
	s.header = metadata.Join(s.header, md)
	return nil
}

func TestUnaryServerInterceptorKeepsIncomingID(t *testing.T) {
	stream := &headerStream{}
	ctx := grpc.NewContextWithServerTransportStream(
		metadata.NewIncomingContext(context.Background(), metadata.Pairs(RequestIDHeader, "req-in")),
		stream,
	)
	var seen string
	_, err := UnaryServerInterceptor(func() (string, error) { return "generated", nil })(ctx, nil, &grpc.UnaryServerInfo{},
		func(ctx context.Context, req any) (any, error) {
			seen = RequestIDFromContext(ctx)
			return nil, nil
		})
	if err != nil {
		t.Fatalf("intercept: %v", err)
	}
	if seen != "req-in" {
		t.Fatalf("request id = %q, want req-in", seen)
	}
	if got := stream.header.Get(RequestIDHeader); len(got) != 1 || got[0] != "req-in" {
		t.Fatalf("response header = %v, want [req-in]", got)
	}
}

func TestUnaryServerInterceptorGeneratesID(t *testing.T) {
	ctx := grpc.NewContextWithServerTransportStream(context.Background(), &headerStream{})
	var seen string
	_, err := UnaryServerInterceptor(func() (string, error) { return "generated", nil })(ctx, nil, &grpc.UnaryServerInfo{},
		func(ctx context.Context, req any) (any, error) {
			seen = RequestIDFromContext(ctx)
			return nil, nil
		})
	if err != nil {
		t.Fatalf("intercept: %v", err)
	}
	if seen != "generated" {
		t.Fatalf("request id = %q, want generated", seen)
	}

	_, err = UnaryServerInterceptor(func() (string, error) { return "", errors.New("no entropy") })(ctx, nil, &grpc.UnaryServerInfo{},
		func(ctx context.Context, req any) (any, error) { return nil, nil })
	if err == nil {
		t.Fatal("expected generator failure")
	}
}
