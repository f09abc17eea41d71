package groups

import (
	"fmt"

	"github.com/bahikhata-erp/bahikhata/internal/masterdata/shared"
)

func validate(group Group) error {
	if group.Name == "" {
		return fmt.Errorf("%w: name", shared.ErrRequiredField)
	}
	if !group.Type.Valid() {
		return fmt.Errorf("%w: unknown group type %q", shared.ErrValidation, group.Type)
	}
	return nil
}
