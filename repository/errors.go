package repository

import "errors"

var (
	ErrEquipmentNotFound = errors.New("equipment not found")
	ErrQuoteNotFound     = errors.New("quote request not found")
	// ErrQuoteDeleted is returned when an operation needs an active quote but it is soft-deleted
	ErrQuoteDeleted = errors.New("quote request is deleted")
	// ErrQuoteNotDeleted is returned by Restore and PermanentlyDelete on an active quote
	ErrQuoteNotDeleted = errors.New("quote request is not deleted")
	ErrInvalidStatus   = errors.New("invalid quote status")
	ErrInvalidInput    = errors.New("invalid input")
)
