package customvalidator

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

// RegisterCustomValidations registers the dispatch-specific validation rules
// on the given validator instance.
func RegisterCustomValidations(v *validator.Validate) error {
	if err := v.RegisterValidation("region_code", isRegionCode); err != nil {
		return err
	}
	if err := v.RegisterValidation("category_tag", isCategoryTag); err != nil {
		return err
	}
	if err := v.RegisterValidation("hhmm_time", isClockTime); err != nil {
		return err
	}
	return nil
}

var (
	regionRe   = regexp.MustCompile(`^[A-Z]{2,5}(-[A-Z0-9]{1,4})?$`)
	categoryRe = regexp.MustCompile(`^[a-z][a-z0-9_]{1,40}$`)
	clockRe    = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)
)

// isRegionCode accepts short upper-case region identifiers such as "DU" or "KHJ-02".
func isRegionCode(fl validator.FieldLevel) bool {
	return regionRe.MatchString(fl.Field().String())
}

// isCategoryTag accepts snake_case category tags such as "family_law".
func isCategoryTag(fl validator.FieldLevel) bool {
	return categoryRe.MatchString(fl.Field().String())
}

func isClockTime(fl validator.FieldLevel) bool {
	return clockRe.MatchString(fl.Field().String())
}
