package models

// Error types attached with errors.WithType. They are stable strings used as
// metric labels and wire error codes.
const (
	ErrTypeConfiguration       = "configuration_error"
	ErrTypeDegenerateDirection = "degenerate_direction"
	ErrTypeMeshMismatch        = "mesh_mismatch"
	ErrTypeMsgUnknown          = "unknown_msg"
	ErrTypeMsgInvalid          = "invalid_request"
	ErrTypeMsgSkip             = "msg_skip"
	ErrTypeInternal            = "internal_error"
)
