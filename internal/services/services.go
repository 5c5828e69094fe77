package services

import (
	"database/sql"
	"errors"
	"fmt"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrOrderCancelled = errors.New("order already cancelled")
	ErrOrderExists    = errors.New("an active order already exists for this quotation, supplier and fulfillment level")
)

// notFound maps sql.ErrNoRows onto ErrNotFound and passes other errors through.
func notFound(err error, what, id string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %q: %w", what, id, ErrNotFound)
	}
	return err
}

func isNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
