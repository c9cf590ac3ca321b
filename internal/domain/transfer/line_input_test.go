package transfer

import (
	"testing"

	"github.com/erp/stocktransfer/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestValidateLines(t *testing.T) {
	variation := uuid.New()

	tests := []struct {
		name    string
		lines   []LineInput
		wantErr string
	}{
		{name: "valid", lines: []LineInput{newTestLine(variation, 1)}},
		{name: "empty", lines: nil, wantErr: "at least one line"},
		{
			name: "missing variation",
			lines: []LineInput{{
				ProductID: uuid.New(),
				Quantity:  decimal.NewFromInt(1),
			}},
			wantErr: "VariationID",
		},
		{
			name:    "zero quantity",
			lines:   []LineInput{newTestLine(variation, 0)},
			wantErr: "quantity must be positive",
		},
		{
			name:    "duplicate variation",
			lines:   []LineInput{newTestLine(variation, 1), newTestLine(variation, 2)},
			wantErr: "appears more than once",
		},
		{
			name: "negative price",
			lines: func() []LineInput {
				l := newTestLine(variation, 1)
				l.UnitPrice = decimal.NewFromInt(-1)
				return []LineInput{l}
			}(),
			wantErr: "unit price",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateLines(tt.lines)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.True(t, shared.HasCode(err, shared.CodeValidation))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestPairInput_Validate(t *testing.T) {
	in := newTestInput(newTestLine(uuid.New(), 1))
	in.OriginLocationID = uuid.Nil

	err := in.Validate()
	assert.True(t, shared.HasCode(err, shared.CodeValidation))
	assert.Contains(t, err.Error(), "OriginLocationID")
}
