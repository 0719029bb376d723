package scenario

import (
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func flatStrategy(rate string) Strategy {
	r := decimal.RequireFromString(rate)
	return func(in Input) Result {
		income := SumNumeric(in.Income)
		deductions := SumNumeric(in.Deductions)
		taxable := TaxableIncome(income, deductions)
		return newResult(income, deductions, taxable, taxable.Mul(r))
	}
}

func TestRegistry_UnknownKeyFallsBackToDefault(t *testing.T) {
	reg := NewDefaultRegistry()
	in := Input{Income: map[string]any{"salary": 4000.0}}

	assert.Equal(t, DefaultStrategy(in), reg.Calculate("atlantis-2099", in))
	assert.Equal(t, DefaultStrategy(in), reg.Calculate("", in))
}

func TestRegistry_RegisteredKeyWins(t *testing.T) {
	reg := NewRegistryBuilder().
		Register("fi-2024", flatStrategy("0.10")).
		Build()
	in := Input{Income: map[string]any{"salary": 1000.0}}

	assertDecimal(t, "100", reg.Calculate("fi-2024", in).EstimatedTax)
	assertDecimal(t, "250", reg.Calculate("default", in).EstimatedTax)
	assert.Equal(t, []string{"default", "fi-2024"}, reg.Keys())
}

func TestRegistry_OverrideDefault(t *testing.T) {
	reg := NewRegistryBuilder().
		Register(DefaultKey, flatStrategy("0.5")).
		Build()
	in := Input{Income: map[string]any{"salary": 1000.0}}

	assertDecimal(t, "500", reg.Calculate("unknown", in).EstimatedTax)
}

func TestRegistry_LastRegistrationWins(t *testing.T) {
	reg := NewRegistryBuilder().
		Register("x", flatStrategy("0.1")).
		Register("x", flatStrategy("0.2")).
		Register("x", nil).
		Build()
	in := Input{Income: map[string]any{"salary": 1000.0}}

	assertDecimal(t, "200", reg.Calculate("x", in).EstimatedTax)
}

func TestRegistry_ImmutableAfterBuild(t *testing.T) {
	b := NewRegistryBuilder()
	reg := b.Build()
	b.Register("late", flatStrategy("0.9"))

	in := Input{Income: map[string]any{"salary": 1000.0}}
	assertDecimal(t, "250", reg.Calculate("late", in).EstimatedTax)
	assert.Equal(t, []string{"default"}, reg.Keys())
}

func TestRegistry_NilRegistry(t *testing.T) {
	var reg *Registry
	in := Input{Income: map[string]any{"salary": 1000.0}}

	require.NotNil(t, reg.Lookup("anything"))
	assertDecimal(t, "250", reg.Calculate("anything", in).EstimatedTax)
	assert.Nil(t, reg.Keys())
}

func TestRegistry_ConcurrentCalculate(t *testing.T) {
	reg := NewRegistryBuilder().Register("fi-2024", flatStrategy("0.2")).Build()
	in := Input{Income: map[string]any{"salary": 1000.0}}
	want := reg.Calculate("fi-2024", in)

	var wg sync.WaitGroup
	results := make([]Result, 32)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = reg.Calculate("fi-2024", in)
		}(i)
	}
	wg.Wait()

	for _, got := range results {
		assert.Equal(t, want, got)
	}
}
