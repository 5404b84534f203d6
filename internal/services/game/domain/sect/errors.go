package sect

import apperrors "github.com/louisbranch/sect.ascension/internal/platform/errors"

var (
	ErrDiscipleNotFound = apperrors.New(apperrors.CodeDiscipleNotFound, "disciple not found")
	ErrTaskNotFound     = apperrors.New(apperrors.CodeTaskNotFound, "task not found")
	ErrBuildingNotFound = apperrors.New(apperrors.CodeBuildingNotFound, "building not found")
	ErrHeritageNotFound = apperrors.New(apperrors.CodeHeritageNotFound, "heritage not found")
	ErrDiscipleBusy     = apperrors.New(apperrors.CodeDiscipleBusy, "disciple is busy")
	ErrNotAssigned      = apperrors.New(apperrors.CodeTaskNotAssigned, "disciple is not assigned to task")
	ErrUnsuitable       = apperrors.New(apperrors.CodeDiscipleUnsuitable, "disciple is unsuitable for task")
	ErrOutOfRange       = apperrors.New(apperrors.CodeOutOfRange, "disciple cannot reach task")
	ErrPrerequisite     = apperrors.New(apperrors.CodePrerequisiteUnmet, "prerequisite unmet")
	ErrAlreadyBuilt     = apperrors.New(apperrors.CodeAlreadyBuilt, "building already built")
	ErrCostOverflow     = apperrors.New(apperrors.CodeCostOverflow, "building cost overflow")
	ErrInsufficient     = apperrors.New(apperrors.CodeInsufficientResources, "insufficient resources")
	ErrNotReady         = apperrors.New(apperrors.CodeNotReady, "disciple is not ready for tribulation")
	ErrOutOfStock       = apperrors.New(apperrors.CodeOutOfStock, "pill out of stock")
	ErrUnknownPill      = apperrors.New(apperrors.CodeUnknownPill, "unknown pill")
	ErrTurnPhase        = apperrors.New(apperrors.CodeTurnPhase, "operation not allowed in this turn phase")
	ErrGameOver         = apperrors.New(apperrors.CodeGameOver, "game is over")
	ErrInvalidArgument  = apperrors.New(apperrors.CodeInvalidArgument, "invalid argument")
)

func notFound(base *apperrors.Error, key, id string) error {
	return apperrors.WithMetadata(base.Code, base.Message+": "+id, map[string]string{key: id})
}

func failed(base *apperrors.Error, metadata map[string]string, cause error) error {
	return apperrors.WrapWithMetadata(base.Code, base.Message, metadata, cause)
}
