// Package sect implements the sect.v1.SectService gRPC API.
//
// The service has no generated stubs. Its descriptor is written by hand and
// every message is a google.protobuf.Struct, whose fields follow the
// snake_case records of the application package. Domain errors become gRPC
// statuses with an ErrorInfo detail carrying the error code.
package sect
