package middleware

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestValidateAmount(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		positive bool
		wantType string
	}{
		{name: "cents accepted", amount: "30.00", positive: true},
		{name: "trailing zero beyond cents accepted", amount: "1.290", positive: true},
		{name: "sub-cent rejected", amount: "0.001", positive: true, wantType: "cents"},
		{name: "zero rejected when positive", amount: "0", positive: true, wantType: "gt"},
		{name: "negative rejected when positive", amount: "-5", positive: true, wantType: "gt"},
		{name: "zero balance accepted", amount: "0.00", positive: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ValidateAmount("amount", decimal.RequireFromString(tt.amount), tt.positive)
			if tt.wantType == "" {
				if got != nil {
					t.Errorf("expected no error, got %+v", got)
				}
				return
			}
			if got == nil || got.Type != tt.wantType {
				t.Errorf("expected %s error, got %+v", tt.wantType, got)
			}
		})
	}
}

func TestValidateRequest(t *testing.T) {
	type request struct {
		Name string `validate:"required,alphanum"`
	}
	if errs := ValidateRequest(request{Name: "kovax"}); errs != nil {
		t.Errorf("expected no errors, got %+v", errs)
	}
	errs := ValidateRequest(request{})
	if len(errs) != 1 || errs[0].Type != "required" {
		t.Errorf("expected required error, got %+v", errs)
	}
}
