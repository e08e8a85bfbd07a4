package store

import (
	"database/sql"
	"errors"
	"fmt"

	"warehouse-service/internal/models"

	"github.com/lib/pq"
)

// PostgreSQL error codes the store classifies
const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
	pqCheckViolation      = "23514"
	pqNotNullViolation    = "23502"
	pqStringTooLong       = "22001"
	pqInvalidText         = "22P02"
	pqNumericOutOfRange   = "22003"
)

// mapError translates driver errors raised by inserts and updates into the
// shared error taxonomy. A foreign key violation on a write means the
// referenced row does not exist.
func mapError(err error) error {
	return classify(err, models.ErrInvalidReference)
}

// mapDeleteError is mapError for deletes, where a foreign key violation
// means the row is still referenced.
func mapDeleteError(err error) error {
	return classify(err, models.ErrConflict)
}

func classify(err error, onForeignKey error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return models.ErrNotFound
	}

	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}

	switch pqErr.Code {
	case pqUniqueViolation:
		return fmt.Errorf("%w: %s", models.ErrConflict, detail(pqErr))
	case pqForeignKeyViolation:
		return fmt.Errorf("%w: %s", onForeignKey, detail(pqErr))
	case pqCheckViolation, pqNotNullViolation, pqStringTooLong, pqInvalidText, pqNumericOutOfRange:
		return fmt.Errorf("%w: %s", models.ErrValidation, detail(pqErr))
	}
	return err
}

// isPrimaryKeyConflict reports whether err is a duplicate id in table.
func isPrimaryKeyConflict(err error, table string) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation && pqErr.Constraint == table+"_pkey"
}

func detail(e *pq.Error) string {
	if e.Detail != "" {
		return e.Detail
	}
	return e.Message
}
