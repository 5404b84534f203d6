// Package interceptors holds the unary interceptors of the game server.
package interceptors

import (
	"context"
	"log"
	"strings"

	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/louisbranch/sect.ascension/internal/platform/telemetry"
	grpcmeta "github.com/louisbranch/sect.ascension/internal/services/game/api/grpc/metadata"
	"github.com/louisbranch/sect.ascension/internal/services/game/storage"
)

const healthPrefix = "/grpc.health.v1.Health/"

// AuditInterceptor records a telemetry event for each unary call. Calls in
// readMethods are recorded as reads, everything else as writes. Health checks
// are not recorded.
func AuditInterceptor(store storage.TelemetryStore, readMethods map[string]bool) grpc.UnaryServerInterceptor {
	emitter := telemetry.NewEmitter(store)
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		resp, err := handler(ctx, req)
		if store == nil || strings.HasPrefix(info.FullMethod, healthPrefix) {
			return resp, err
		}

		kind := "write"
		eventName := telemetry.EventRPCWrite
		if readMethods[info.FullMethod] {
			kind = "read"
			eventName = telemetry.EventRPCRead
		}

		severity := telemetry.SeverityInfo
		code := codes.OK
		if err != nil {
			severity = telemetry.SeverityError
			if st, ok := status.FromError(err); ok {
				code = st.Code()
			}
		}

		var traceID, spanID string
		if sc := trace.SpanFromContext(ctx).SpanContext(); sc.IsValid() {
			traceID = sc.TraceID().String()
			spanID = sc.SpanID().String()
		}

		emitErr := emitter.Emit(ctx, storage.TelemetryEvent{
			EventName: eventName,
			Severity:  string(severity),
			SessionID: sessionID(ctx, req, resp),
			RequestID: grpcmeta.RequestIDFromContext(ctx),
			TraceID:   traceID,
			SpanID:    spanID,
			Attributes: map[string]any{
				"method":      info.FullMethod,
				"method_kind": kind,
				"code":        code.String(),
			},
		})
		if emitErr != nil {
			log.Printf("audit emit %s: %v", info.FullMethod, emitErr)
		}
		return resp, err
	}
}

// sessionID prefers the request body, then the response (CreateSession),
// then the metadata hint.
func sessionID(ctx context.Context, req, resp any) string {
	for _, msg := range []any{req, resp} {
		if s, ok := msg.(*structpb.Struct); ok {
			if v := strings.TrimSpace(s.GetFields()["session_id"].GetStringValue()); v != "" {
				return v
			}
		}
	}
	return grpcmeta.SessionIDFromContext(ctx)
}
