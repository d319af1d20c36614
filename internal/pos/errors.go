package pos

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrUnauthorized is returned on bad login credentials
var ErrUnauthorized = errors.New("invalid username or password")

// ValidationError marks a malformed or incomplete request
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Invalid builds a ValidationError
func Invalid(format string, args ...interface{}) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a ValidationError
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// InsufficientStockError rejects an operation that would drive a
// product's stock below zero
type InsufficientStockError struct {
	ProductID uint
	Name      string
	Stock     int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("Stock not enough for product id %d", e.ProductID)
}

// IsInsufficientStock reports whether err is an InsufficientStockError
func IsInsufficientStock(err error) bool {
	var se *InsufficientStockError
	return errors.As(err, &se)
}

// InsufficientPaymentError rejects a cash checkout where the received
// amount does not cover the net total
type InsufficientPaymentError struct {
	Due      decimal.Decimal
	Received decimal.Decimal
}

func (e *InsufficientPaymentError) Error() string {
	return fmt.Sprintf("Received amount %s is less than total %s", e.Received, e.Due)
}

// IsInsufficientPayment reports whether err is an InsufficientPaymentError
func IsInsufficientPayment(err error) bool {
	var pe *InsufficientPaymentError
	return errors.As(err, &pe)
}
