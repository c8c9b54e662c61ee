package domain

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

const (
	MaxNameLength = 100
	MaxSKULength  = 50
)

// MaxPrice is the largest value a decimal(10,2) column holds.
var MaxPrice = decimal.RequireFromString("99999999.99")

var skuPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

const (
	CodeRequired         = "required"
	CodeTooLong          = "too_long"
	CodeInvalidNumber    = "invalid_number"
	CodeNotPositive      = "not_positive"
	CodeInvalidPrecision = "invalid_precision"
	CodeTooLarge         = "too_large"
	CodeInvalidFormat    = "invalid_format"
)

// ValidateCreate checks a create payload. The SKU is required.
func ValidateCreate(req CreateRequest) error {
	if err := validateCommon(req.Name, req.Price); err != nil {
		return err
	}
	return validateSKU(req.SKU)
}

// ValidateUpdate checks an update payload. Name and price follow the create
// rules; the SKU is only checked when present.
func ValidateUpdate(req UpdateRequest) error {
	if err := validateCommon(req.Name, req.Price); err != nil {
		return err
	}
	if req.SKU == nil {
		return nil
	}
	return validateSKU(req.SKU)
}

func validateCommon(name *string, price *float64) error {
	if name == nil || strings.TrimSpace(*name) == "" {
		return newValidationError("name", CodeRequired, "Product name cannot be empty")
	}
	if utf8.RuneCountInString(*name) > MaxNameLength {
		return newValidationError("name", CodeTooLong, "Product name cannot exceed 100 characters")
	}

	if price == nil {
		return newValidationError("price", CodeRequired, "Price is required")
	}
	p := *price
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return newValidationError("price", CodeInvalidNumber, "Price must be a valid number")
	}
	if p <= 0 {
		return newValidationError("price", CodeNotPositive, "Price must be greater than zero")
	}
	if decimalPlaces(p) > 2 {
		return newValidationError("price", CodeInvalidPrecision, "Price can have at most 2 decimal places")
	}
	if decimal.NewFromFloat(p).GreaterThan(MaxPrice) {
		return newValidationError("price", CodeTooLarge, "Price cannot exceed 99999999.99")
	}
	return nil
}

func validateSKU(sku *string) error {
	if sku == nil || strings.TrimSpace(*sku) == "" {
		return newValidationError("sku", CodeRequired, "SKU cannot be empty")
	}
	if utf8.RuneCountInString(*sku) > MaxSKULength {
		return newValidationError("sku", CodeTooLong, "SKU cannot exceed 50 characters")
	}
	if !skuPattern.MatchString(*sku) {
		return newValidationError("sku", CodeInvalidFormat, "SKU can only contain letters, numbers, hyphens and underscores")
	}
	return nil
}

// decimalPlaces counts the digits after the point in the shortest decimal
// representation of v, so 9.99 has two and 9.999 has three.
func decimalPlaces(v float64) int {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if i := strings.IndexByte(s, '.'); i >= 0 {
		return len(s) - i - 1
	}
	return 0
}
