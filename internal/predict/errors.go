package predict

import "errors"

// Domain errors for prediction construction and combination.
var (
	// ErrNoParamIDs indicates neither parameter ids nor a dimension was given.
	ErrNoParamIDs = errors.New("predict: parameter ids or dimension required")

	// ErrNoOutputIDs indicates neither output ids nor a dimension was given.
	ErrNoOutputIDs = errors.New("predict: output ids or dimension required")

	// ErrDuplicateID indicates a repeated parameter or output id.
	ErrDuplicateID = errors.New("predict: duplicate id")

	// ErrDimensionMismatch indicates a vector of the wrong length for this
	// prediction's parameter or output space.
	ErrDimensionMismatch = errors.New("predict: dimension mismatch")

	// ErrParamMismatch indicates two predictions with different parameter
	// ids or defaults were combined.
	ErrParamMismatch = errors.New("predict: predictions have different parameter spaces")

	// ErrNotBare indicates a reparametrization of an already reparametrized
	// prediction.
	ErrNotBare = errors.New("predict: not in bare parametrization")

	// ErrLogOfNonPositive indicates log reparametrization with a
	// non-positive default parameter.
	ErrLogOfNonPositive = errors.New("predict: log reparametrization requires positive defaults")

	// ErrUnknownErrorModel indicates an unrecognized error-bar model kind.
	ErrUnknownErrorModel = errors.New("predict: unknown error model")
)
