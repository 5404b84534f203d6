package errors

import (
	"context"
	"errors"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ToGRPCStatus renders e as a status whose ErrorInfo reason is the code.
func (e *Error) ToGRPCStatus() error {
	st := status.New(e.Code.GRPCCode(), e.Message)
	detailed, err := st.WithDetails(&errdetails.ErrorInfo{
		Reason:   string(e.Code),
		Domain:   Domain,
		Metadata: e.Metadata,
	})
	if err != nil {
		return st.Err()
	}
	return detailed.Err()
}

// HandleError converts err for a gRPC response. Engine errors keep their
// code, context errors keep theirs, and anything else becomes an opaque
// Internal status.
func HandleError(err error) error {
	if err == nil {
		return nil
	}
	var appErr *Error
	switch {
	case errors.As(err, &appErr):
		return appErr.ToGRPCStatus()
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		return status.Error(codes.Internal, "an unexpected error occurred")
	}
}

// CodeFromStatus recovers the engine code a client received. It returns the
// ErrorInfo reason when present, the gRPC code name for other statuses, and
// CodeUnknown for errors that are not statuses.
func CodeFromStatus(err error) Code {
	st, ok := status.FromError(err)
	if !ok || err == nil {
		return CodeUnknown
	}
	for _, detail := range st.Details() {
		if info, ok := detail.(*errdetails.ErrorInfo); ok && info.GetDomain() == Domain {
			return Code(info.GetReason())
		}
	}
	return Code(st.Code().String())
}
