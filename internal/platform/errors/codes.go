// Package errors provides structured error handling for engine and transport
// boundaries.
package errors

import "google.golang.org/grpc/codes"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Lookup errors
	CodeSectNotFound     Code = "SECT_NOT_FOUND"
	CodeDiscipleNotFound Code = "DISCIPLE_NOT_FOUND"
	CodeTaskNotFound     Code = "TASK_NOT_FOUND"
	CodeBuildingNotFound Code = "BUILDING_NOT_FOUND"
	CodeHeritageNotFound Code = "HERITAGE_NOT_FOUND"

	// Assignment errors
	CodeDiscipleBusy       Code = "DISCIPLE_BUSY"
	CodeTaskFull           Code = "TASK_FULL"
	CodeTaskClosed         Code = "TASK_CLOSED"
	CodeTaskNotAssigned    Code = "TASK_NOT_ASSIGNED"
	CodeDiscipleUnsuitable Code = "DISCIPLE_UNSUITABLE"
	CodeOutOfRange         Code = "OUT_OF_RANGE"

	// Progression errors
	CodePrerequisiteUnmet     Code = "PREREQUISITE_UNMET"
	CodeAlreadyBuilt          Code = "ALREADY_BUILT"
	CodeBuildingDuplicate     Code = "BUILDING_DUPLICATE"
	CodeBuildingInvalidParent Code = "BUILDING_INVALID_PARENT"
	CodeCostOverflow          Code = "COST_OVERFLOW"
	CodeInsufficientResources Code = "INSUFFICIENT_RESOURCES"
	CodeNotReady              Code = "NOT_READY"

	// Item errors
	CodeOutOfStock  Code = "OUT_OF_STOCK"
	CodeUnknownPill Code = "UNKNOWN_PILL"

	// Turn errors
	CodeTurnPhase Code = "TURN_PHASE"
	CodeGameOver  Code = "GAME_OVER"

	// Input errors
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	CodeInvalidFilter   Code = "INVALID_FILTER"
)

// GRPCCode maps domain codes to gRPC status codes.
func (c Code) GRPCCode() codes.Code {
	switch c {
	// InvalidArgument - validation failures, bad input
	case CodeInvalidArgument,
		CodeInvalidFilter,
		CodeUnknownPill,
		CodeBuildingDuplicate,
		CodeBuildingInvalidParent:
		return codes.InvalidArgument

	// FailedPrecondition - state doesn't allow operation
	case CodeDiscipleBusy,
		CodeTaskFull,
		CodeTaskClosed,
		CodeTaskNotAssigned,
		CodeDiscipleUnsuitable,
		CodeOutOfRange,
		CodePrerequisiteUnmet,
		CodeAlreadyBuilt,
		CodeInsufficientResources,
		CodeNotReady,
		CodeOutOfStock,
		CodeTurnPhase,
		CodeGameOver:
		return codes.FailedPrecondition

	// NotFound - referenced entity does not exist
	case CodeSectNotFound,
		CodeDiscipleNotFound,
		CodeTaskNotFound,
		CodeBuildingNotFound,
		CodeHeritageNotFound:
		return codes.NotFound

	// OutOfRange - arithmetic limits
	case CodeCostOverflow:
		return codes.OutOfRange

	default:
		return codes.Internal
	}
}
