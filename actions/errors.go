package actions

import "fmt"

// MissingRequiredFieldError reports a classified block payload that lacks
// a field the block type makes mandatory (or carries it with a wrong type).
type MissingRequiredFieldError struct {
	BlockType string
	Key       string
}

func (e *MissingRequiredFieldError) Error() string {
	return fmt.Sprintf("block %s: missing required field %q", e.BlockType, e.Key)
}
