package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var errBusy = New(CodeDiscipleBusy, "disciple is busy")

func TestIsMatchesByCode(t *testing.T) {
	decorated := WrapWithMetadata(CodeDiscipleBusy, "disciple is busy", map[string]string{"disciple_id": "d1"}, fmt.Errorf("task t1"))
	wrapped := fmt.Errorf("assign: %w", decorated)

	if !errors.Is(wrapped, errBusy) {
		t.Fatal("decorated error should match its sentinel")
	}
	if errors.Is(wrapped, New(CodeTaskFull, "full")) {
		t.Fatal("different code should not match")
	}
	if got := GetCode(wrapped); got != CodeDiscipleBusy {
		t.Fatalf("code = %s, want %s", got, CodeDiscipleBusy)
	}
	if got := GetCode(errors.New("plain")); got != CodeUnknown {
		t.Fatalf("code = %s, want %s", got, CodeUnknown)
	}
	if decorated.Error() != "disciple is busy: task t1" {
		t.Fatalf("message = %q", decorated.Error())
	}
}

func TestWithMetadataCopies(t *testing.T) {
	md := map[string]string{"task_id": "t1"}
	err := WithMetadata(CodeTaskFull, "task is full", md)
	md["task_id"] = "t2"
	if err.Metadata["task_id"] != "t1" {
		t.Fatalf("metadata = %v, want a copy", err.Metadata)
	}
}

func TestHandleError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code codes.Code
	}{
		{"engine", WithMetadata(CodeSectNotFound, "sect not found", map[string]string{"session_id": "s1"}), codes.NotFound},
		{"precondition", errBusy, codes.FailedPrecondition},
		{"canceled", fmt.Errorf("resolve: %w", context.Canceled), codes.Canceled},
		{"deadline", context.DeadlineExceeded, codes.DeadlineExceeded},
		{"other", errors.New("disk on fire"), codes.Internal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := status.Convert(HandleError(tt.err))
			if st.Code() != tt.code {
				t.Fatalf("code = %s, want %s", st.Code(), tt.code)
			}
		})
	}
	if HandleError(nil) != nil {
		t.Fatal("nil error should stay nil")
	}
}

func TestHandleErrorCarriesErrorInfo(t *testing.T) {
	err := HandleError(WithMetadata(CodeSectNotFound, "sect not found", map[string]string{"session_id": "s1"}))
	st := status.Convert(err)
	if len(st.Details()) != 1 {
		t.Fatalf("details = %d, want 1", len(st.Details()))
	}
	info, ok := st.Details()[0].(*errdetails.ErrorInfo)
	if !ok {
		t.Fatalf("detail = %T, want ErrorInfo", st.Details()[0])
	}
	if info.GetReason() != string(CodeSectNotFound) || info.GetMetadata()["session_id"] != "s1" {
		t.Fatalf("info = %v", info)
	}
}

func TestCodeFromStatus(t *testing.T) {
	if got := CodeFromStatus(HandleError(errBusy)); got != CodeDiscipleBusy {
		t.Fatalf("code = %s, want %s", got, CodeDiscipleBusy)
	}
	if got := CodeFromStatus(status.Error(codes.Unavailable, "down")); got != "Unavailable" {
		t.Fatalf("code = %s, want Unavailable", got)
	}
	if got := CodeFromStatus(errors.New("plain")); got != CodeUnknown {
		t.Fatalf("code = %s, want %s", got, CodeUnknown)
	}
}

func TestGRPCCodeMapping(t *testing.T) {
	tests := map[Code]codes.Code{
		CodeDiscipleNotFound:      codes.NotFound,
		CodeInvalidFilter:         codes.InvalidArgument,
		CodeInsufficientResources: codes.FailedPrecondition,
		CodeGameOver:              codes.FailedPrecondition,
		CodeCostOverflow:          codes.OutOfRange,
		CodeUnknown:               codes.Internal,
	}
	for code, want := range tests {
		if got := code.GRPCCode(); got != want {
			t.Fatalf("%s.GRPCCode() = %s, want %s", code, got, want)
		}
	}
}
