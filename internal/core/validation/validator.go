package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rafaelleal24/catalog/internal/core/dto"
	"github.com/rafaelleal24/catalog/internal/core/serviceerrors"
)

const (
	nonNegativeIntTag = "nonnegative_int"

	MsgRequired          = "required"
	MsgMustBeNonNegative = "must be non negative"
	msgInvalid           = "invalid value"
)

var integerPattern = regexp.MustCompile(`^[-+]?[0-9]+$`)

var ErrInvalidPrice = errors.New("price must be a non negative integer")

// ParsePrice parses price form text as a base 10 integer. Leading zeros are
// accepted; decimals, exponents and values that overflow int64 are rejected.
func ParsePrice(raw string) (int64, error) {
	if !integerPattern.MatchString(raw) {
		return 0, ErrInvalidPrice
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || value < 0 {
		return 0, ErrInvalidPrice
	}
	return value, nil
}

// Validator checks a create-product submission and collects every failure.
type Validator struct {
	validate  *validator.Validate
	fileRules []Rule
}

func NewValidator(allowedTypes []string, maxBytes int64) *Validator {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("form"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	mustRegister(validate, nonNegativeIntTag, func(fl validator.FieldLevel) bool {
		_, err := ParsePrice(fl.Field().String())
		return err == nil
	})

	return &Validator{
		validate:  validate,
		fileRules: []Rule{FileTypes(allowedTypes...), FileSize(maxBytes)},
	}
}

func mustRegister(validate *validator.Validate, tag string, fn validator.Func) {
	if err := validate.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %q validation: %v", tag, err))
	}
}

func (v *Validator) Validate(request *dto.CreateProductRequest) error {
	if request == nil {
		return serviceerrors.NewInvalidRequestError("empty request")
	}

	fields := v.validateFields(request)

	// type and size have nothing to inspect without a file
	if missing := FileRequired(request.Image); missing != nil {
		fields = append(fields, *missing)
	} else {
		for _, rule := range v.fileRules {
			if fieldErr := rule(request.Image); fieldErr != nil {
				fields = append(fields, *fieldErr)
			}
		}
	}

	if len(fields) > 0 {
		return serviceerrors.NewValidationError(fields)
	}
	return nil
}

func (v *Validator) validateFields(request *dto.CreateProductRequest) []serviceerrors.FieldError {
	err := v.validate.Struct(request)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return []serviceerrors.FieldError{{Field: "form", Msg: err.Error(), Location: bodyLocation}}
	}

	fields := make([]serviceerrors.FieldError, 0, len(validationErrs))
	for _, fe := range validationErrs {
		fields = append(fields, serviceerrors.FieldError{
			Field:    fe.Field(),
			Msg:      messageFor(fe.Tag()),
			Location: bodyLocation,
			Value:    fe.Value(),
		})
	}
	return fields
}

func messageFor(tag string) string {
	switch tag {
	case "required":
		return MsgRequired
	case nonNegativeIntTag:
		return MsgMustBeNonNegative
	default:
		return msgInvalid
	}
}
