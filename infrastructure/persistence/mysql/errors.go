package mysql

import (
	"errors"

	"ordersvc/domain/shared"
)

// wrapError classifies a GORM/driver failure as a persistence error.
// Domain errors pass through untouched; the driver error stays reachable
// through errors.As for retry classification.
func wrapError(entity, operation string, err error) error {
	if err == nil {
		return nil
	}
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		return err
	}
	return shared.NewPersistenceError(entity, operation, err)
}
