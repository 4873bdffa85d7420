package service

import "errors"

var (
	ErrValidation    = errors.New("validation")     // 400
	ErrNotFound      = errors.New("not found")      // 404
	ErrStockConflict = errors.New("stock conflict") // 409
	ErrStateConflict = errors.New("state conflict") // 409
	ErrOwnership     = errors.New("forbidden")      // 403
)
