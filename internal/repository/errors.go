package repository

import (
	"errors"

	"autolavado/internal/apierror"

	"gorm.io/gorm"
)

// notFound translates GORM's sentinel into the API taxonomy.
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apierror.ErrNoEncontrado
	}
	return err
}

// conn returns tx when the caller runs inside a transaction.
func conn(db, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return db
}
