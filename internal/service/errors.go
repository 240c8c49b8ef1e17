package service

import "errors"

var (
	ErrValidation      = errors.New("validation")        // 400
	ErrNotFound        = errors.New("not found")         // 404
	ErrConflict        = errors.New("conflict")          // 409
	ErrForbidden       = errors.New("forbidden")         // 403
	ErrOutOfStock      = errors.New("out of stock")      // 400
	ErrProductNotFound = errors.New("product not found") // 400, checkout line does not resolve
)
