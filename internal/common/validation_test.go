package common

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestValidatorRules(t *testing.T) {
	t.Run("required", func(t *testing.T) {
		assert.Nil(t, Required("f", "value"))
		assert.NotNil(t, Required("f", ""))
		assert.NotNil(t, Required("f", "   "))
		assert.NotNil(t, Required("f", nil))
		assert.NotNil(t, Required("f", (*string)(nil)))
	})

	t.Run("uuid", func(t *testing.T) {
		assert.Nil(t, UUID("f", uuid.New().String()))
		assert.NotNil(t, UUID("f", "not-a-uuid"))
		assert.NotNil(t, UUID("f", 42))
	})

	t.Run("country code", func(t *testing.T) {
		assert.Nil(t, CountryCode("f", "US"))
		assert.NotNil(t, CountryCode("f", "USA"))
		assert.NotNil(t, CountryCode("f", "us"))

		valid := "DE"
		assert.Nil(t, CountryCode("f", &valid))
		assert.Nil(t, CountryCode("f", (*string)(nil)), "absent optional value passes")
	})

	t.Run("currency code", func(t *testing.T) {
		assert.Nil(t, CurrencyCode("f", "USD"))
		assert.NotNil(t, CurrencyCode("f", "usd"))
		assert.NotNil(t, CurrencyCode("f", "DOLLARS"))
	})

	t.Run("confidence", func(t *testing.T) {
		assert.Nil(t, Confidence("f", 0.0))
		assert.Nil(t, Confidence("f", 1.0))
		assert.NotNil(t, Confidence("f", -0.1))
		assert.NotNil(t, Confidence("f", 1.5))

		score := 0.75
		assert.Nil(t, Confidence("f", &score))
		assert.Nil(t, Confidence("f", (*float64)(nil)), "absent optional value passes")
	})
}

func TestValidatorCollectsErrors(t *testing.T) {
	v := NewValidator()
	v.Field("name", "", Required)
	v.Field("country", "USA", CountryCode)
	v.Field("score", 0.9, Confidence)

	assert.True(t, v.HasErrors())
	assert.Len(t, v.Errors(), 2)
	assert.Contains(t, v.ErrorMessage(), "name")
	assert.Contains(t, v.ErrorMessage(), "country")

	err := ValidateAndReturnError(v)
	assert.Error(t, err)
}

func TestValidatorCleanPass(t *testing.T) {
	v := NewValidator()
	v.Field("name", "Nike", Required)
	v.Field("country", "US", CountryCode)

	assert.False(t, v.HasErrors())
	assert.NoError(t, v.Error())
	assert.NoError(t, ValidateAndReturnError(v))
}
