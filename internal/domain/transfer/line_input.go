package transfer

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/erp/stocktransfer/internal/domain/shared"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func inputValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// LineInput is one requested transfer line, validated before it reaches the core
type LineInput struct {
	ProductID          uuid.UUID `validate:"required"`
	VariationID        uuid.UUID `validate:"required"`
	Quantity           decimal.Decimal
	UnitPrice          decimal.Decimal
	LotNoLineID        *uuid.UUID
	SubUnitID          *uuid.UUID
	BaseUnitMultiplier decimal.Decimal
	EnableStock        bool
}

func (in LineInput) multiplier() decimal.Decimal {
	if in.BaseUnitMultiplier.IsPositive() {
		return in.BaseUnitMultiplier
	}
	return decimal.NewFromInt(1)
}

// BaseQuantity returns the requested quantity in base units
func (in LineInput) BaseQuantity() decimal.Decimal {
	return in.Quantity.Mul(in.multiplier())
}

// PairInput carries the header fields and lines of a transfer
type PairInput struct {
	OriginLocationID      uuid.UUID `validate:"required"`
	DestinationLocationID uuid.UUID `validate:"required"`
	RefNo                 string    `validate:"max=64"`
	TransactionDate       time.Time `validate:"required"`
	Status                Status    `validate:"required"`
	ShippingCharges       decimal.Decimal
	AdditionalNotes       string      `validate:"max=2000"`
	Lines                 []LineInput `validate:"required,min=1,dive"`
}

// Validate checks the input shape and the numeric rules the tag set cannot express
func (in PairInput) Validate() error {
	if err := inputValidator().Struct(in); err != nil {
		return toValidationError(err)
	}
	if in.OriginLocationID == in.DestinationLocationID {
		return NewValidationError("origin and destination locations must differ")
	}
	if !in.Status.IsValid() {
		return NewValidationError("unknown transfer status %q", in.Status)
	}
	if in.ShippingCharges.IsNegative() {
		return NewValidationError("shipping charges cannot be negative")
	}
	return ValidateLines(in.Lines)
}

// ValidateLines checks quantities, prices and variation uniqueness
func ValidateLines(lines []LineInput) error {
	if len(lines) == 0 {
		return NewValidationError("at least one line is required")
	}
	seen := make(map[uuid.UUID]bool, len(lines))
	for i, l := range lines {
		if err := inputValidator().Struct(l); err != nil {
			return toValidationError(err)
		}
		if !l.Quantity.IsPositive() {
			return NewValidationError("line %d: quantity must be positive", i+1)
		}
		if l.UnitPrice.IsNegative() {
			return NewValidationError("line %d: unit price cannot be negative", i+1)
		}
		if l.BaseUnitMultiplier.IsNegative() {
			return NewValidationError("line %d: base unit multiplier cannot be negative", i+1)
		}
		if seen[l.VariationID] {
			return NewValidationError("line %d: variation %s appears more than once", i+1, l.VariationID)
		}
		seen[l.VariationID] = true
	}
	return nil
}

func toValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return shared.NewDomainError(shared.CodeValidation, err.Error())
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s failed on %s", fe.Namespace(), fe.Tag()))
	}
	return shared.NewDomainError(shared.CodeValidation, strings.Join(parts, "; "))
}
