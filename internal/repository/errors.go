package repository

import (
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// ErrDuplicate reports an insert rejected by a unique constraint.
var ErrDuplicate = errors.New("duplicate record")

const uniqueViolation pq.ErrorCode = "23505"

// writeError wraps a failed write, tagging unique violations with ErrDuplicate.
func writeError(op string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return fmt.Errorf("%s: %w: %w", op, ErrDuplicate, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
