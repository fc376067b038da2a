package customvalidator

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newValidator(t *testing.T) *validator.Validate {
	t.Helper()
	v := validator.New()
	require.NoError(t, RegisterCustomValidations(v))
	return v
}

func TestRegionCode(t *testing.T) {
	v := newValidator(t)

	for _, ok := range []string{"DU", "KH", "SOGD", "DU-12", "RRP-A"} {
		assert.NoError(t, v.Var(ok, "region_code"), ok)
	}
	for _, bad := range []string{"du", "D", "DUSHANBE1", "DU_12", "12"} {
		assert.Error(t, v.Var(bad, "region_code"), bad)
	}
}

func TestCategoryTag(t *testing.T) {
	v := newValidator(t)

	for _, ok := range []string{"housing_law", "inheritance_law", "family"} {
		assert.NoError(t, v.Var(ok, "category_tag"), ok)
	}
	for _, bad := range []string{"Housing Law", "housing-law", "HOUSING", ""} {
		assert.Error(t, v.Var(bad, "category_tag"), bad)
	}
}

func TestClockTime(t *testing.T) {
	v := newValidator(t)

	for _, ok := range []string{"00:00", "09:30", "23:59"} {
		assert.NoError(t, v.Var(ok, "hhmm_time"), ok)
	}
	for _, bad := range []string{"24:00", "9:30", "12:60", "noon"} {
		assert.Error(t, v.Var(bad, "hhmm_time"), bad)
	}
}
