package config

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestEngineConfigValidate(t *testing.T) {
	t.Parallel()

	valid := EngineConfig{Currency: "USD", TaxRate: "0.08", QueueBuffer: 8}
	if err := valid.validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cases := []EngineConfig{
		{Currency: "XXX", TaxRate: "0", QueueBuffer: 8},
		{Currency: "USD", TaxRate: "1.5", QueueBuffer: 8},
		{Currency: "USD", TaxRate: "-0.1", QueueBuffer: 8},
		{Currency: "USD", TaxRate: "abc", QueueBuffer: 8},
		{Currency: "USD", TaxRate: "0", QueueBuffer: 0},
	}
	for _, cfg := range cases {
		if err := cfg.validate(); err == nil {
			t.Fatalf("expected error for %+v", cfg)
		}
	}
}

func TestTaxRateDecimal(t *testing.T) {
	t.Parallel()

	cfg := EngineConfig{TaxRate: "0.0825"}
	if !cfg.TaxRateDecimal().Equal(decimal.RequireFromString("0.0825")) {
		t.Fatalf("unexpected tax rate: %s", cfg.TaxRateDecimal())
	}
}
