// Package repository holds the GORM-backed data access for every table.
package repository

import (
	"errors"

	"gorm.io/gorm"
)

// notFound translates gorm.ErrRecordNotFound into the given domain error.
func notFound(err error, domainErr error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domainErr
	}
	return err
}
