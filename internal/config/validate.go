package config

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/vango-dev/floatkit/internal/errors"
	"github.com/vango-dev/floatkit/pkg/geom"
)

var (
	validatorOnce sync.Once
	validateInst  *validator.Validate

	metricNamePattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)
)

func validatorInstance() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New()

		_ = v.RegisterValidation("placement", func(fl validator.FieldLevel) bool {
			_, err := geom.ParsePlacement(fl.Field().String())
			return err == nil
		})

		_ = v.RegisterValidation("duration", func(fl validator.FieldLevel) bool {
			d, err := time.ParseDuration(fl.Field().String())
			return err == nil && d >= 0
		})

		_ = v.RegisterValidation("metric_name", func(fl validator.FieldLevel) bool {
			return metricNamePattern.MatchString(fl.Field().String())
		})

		validateInst = v
	})

	return validateInst
}

// Validate checks the configuration. Failures are F022 errors naming the
// first offending field.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("F022").WithDetail("configuration is nil")
	}
	if err := validatorInstance().Struct(c); err != nil {
		return convertValidationError(err)
	}
	return nil
}

// convertValidationError normalizes validator errors into F022.
func convertValidationError(err error) error {
	if ves, ok := err.(validator.ValidationErrors); ok {
		ve := ves[0]
		field := jsonFieldName(ve)
		return errors.New("F022").
			WithDetail(fmt.Sprintf("%s failed validation for tag '%s' (got %q)", field, ve.Tag(), fmt.Sprint(ve.Value()))).
			Wrap(err)
	}
	return errors.New("F022").Wrap(err)
}

// jsonFieldName turns "Config.Tooltip.GroupDelay" into "tooltip.groupDelay".
func jsonFieldName(fe validator.FieldError) string {
	parts := strings.Split(fe.StructNamespace(), ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	for i, p := range parts {
		if p != "" {
			parts[i] = strings.ToLower(p[:1]) + p[1:]
		}
	}
	return strings.Join(parts, ".")
}
