package validator

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cartItemRequest struct {
	ProductID string `json:"product_id" validate:"required,notblank,max=64"`
	Quantity  int    `json:"quantity" validate:"gte=1,lte=99"`
}

func TestValidate_Success(t *testing.T) {
	assert.NoError(t, Validate(cartItemRequest{ProductID: "1", Quantity: 2}))
}

func TestValidate_FieldsUseJSONNames(t *testing.T) {
	err := Validate(cartItemRequest{Quantity: 0})

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	fields := valErr.Fields()
	assert.Equal(t, "is required", fields["product_id"])
	assert.Equal(t, "must be greater than or equal to 1", fields["quantity"])
}

func TestValidate_NotBlank(t *testing.T) {
	err := Validate(cartItemRequest{ProductID: "   ", Quantity: 1})

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, "must not be blank", valErr.Fields()["product_id"])
}

func TestValidate_UpperBound(t *testing.T) {
	err := Validate(cartItemRequest{ProductID: "1", Quantity: 100})

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Contains(t, valErr.Fields()["quantity"], "99")
	assert.Contains(t, valErr.Error(), "field 'quantity'")
}

func TestVar(t *testing.T) {
	assert.NoError(t, Var("en", "oneof=en ar"))
	assert.Error(t, Var("fr", "oneof=en ar"))
}

func TestDecodeAndValidate(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"valid", `{"product_id":"7","quantity":3}`, ""},
		{"malformed", `{"product_id":`, "decode request body"},
		{"unknown field", `{"product_id":"7","quantity":1,"price":0}`, "decode request body"},
		{"invalid", `{"product_id":"7","quantity":0}`, "field 'quantity'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var dst cartItemRequest
			err := DecodeAndValidate(req, &dst)
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.Equal(t, "7", dst.ProductID)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
