package validation

import (
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/dlclark/regexp2"
	d "github.com/fjod/go_cart/shop-service/domain"
	"github.com/go-playground/validator/v10"
)

// Patterns accepted by the checkout form. They are matched against the whole value.
const (
	NamePattern       = `^[^0-9_!¡?÷?¿/\\+=@#$%ˆ&*(){}|~<>;:[\]]{2,}$`
	ApartmentPattern  = `[1-9]\d*(\s*[-/]\s*[1-9]\d*)?(\s?[a-zA-Z])?`
	PostalCodePattern = `^[a-z0-9][a-z0-9\- ]{0,10}[a-z0-9]$`
	PhonePattern      = `(?<!\w)(\(?(\+|00)?48\)?)?[ -]?\d{3}[ -]?\d{3}[ -]?\d{3}(?!\w)`
)

const matchTimeout = 100 * time.Millisecond

var requiredMessages = map[string]string{
	"first_name":     "First name is required.",
	"last_name":      "Last name is required.",
	"street":         "The street name is required.",
	"apartment":      "The building / flat number is required.",
	"city":           "The name of the city is required.",
	"postal_code":    "Zip code is required.",
	"phone":          "A mobile number is required.",
	"email":          "E-mail address is required.",
	"payment_method": "Payment method is required.",
}

var formatMessages = map[string]string{
	"first_name":  "Wrong name format.",
	"last_name":   "Wrong name format.",
	"street":      "Wrong street name format.",
	"apartment":   "Incorrect format of the building / apartment number.",
	"city":        "Wrong format of the city name.",
	"postal_code": "Wrong postal code format.",
	"phone":       "Invalid mobile number format.",
	"email":       "Invalid e-mail address format.",
}

type CheckoutValidator struct {
	validate *validator.Validate
}

func NewCheckoutValidator() (*CheckoutValidator, error) {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonFieldName)

	patterns := map[string]*regexp2.Regexp{
		"person_name": fullMatch(NamePattern, regexp2.None),
		"apartment":   fullMatch(ApartmentPattern, regexp2.None),
		"postal_code": fullMatch(PostalCodePattern, regexp2.IgnoreCase),
		"phone_pl":    fullMatch(PhonePattern, regexp2.None),
	}
	for tag, re := range patterns {
		if err := v.RegisterValidation(tag, matches(re)); err != nil {
			return nil, err
		}
	}

	return &CheckoutValidator{validate: v}, nil
}

// Validate returns nil when the input is acceptable.
func (c *CheckoutValidator) Validate(input *d.CheckoutInput) d.FieldErrors {
	if input == nil {
		return d.FieldErrors{"input": "Checkout data is required."}
	}

	err := c.validate.Struct(input)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return d.FieldErrors{"input": err.Error()}
	}

	fieldErrors := make(d.FieldErrors, len(verrs))
	for _, fe := range verrs {
		fieldErrors[fe.Field()] = message(fe.Field(), fe.Tag())
	}
	return fieldErrors
}

func message(field, tag string) string {
	if tag == "required" {
		if msg, ok := requiredMessages[field]; ok {
			return msg
		}
		return "This field is required."
	}
	if msg, ok := formatMessages[field]; ok {
		return msg
	}
	return "Invalid value."
}

func fullMatch(pattern string, opts regexp2.RegexOptions) *regexp2.Regexp {
	re := regexp2.MustCompile(`^(?:`+pattern+`)$`, opts)
	re.MatchTimeout = matchTimeout
	return re
}

func matches(re *regexp2.Regexp) validator.Func {
	return func(fl validator.FieldLevel) bool {
		ok, err := re.MatchString(fl.Field().String())
		return err == nil && ok
	}
}

func jsonFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "" || name == "-" {
		return fld.Name
	}
	return name
}
