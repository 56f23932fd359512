package domain

type CheckoutInput struct {
	FirstName     string `json:"first_name" validate:"required,person_name"`
	LastName      string `json:"last_name" validate:"required,person_name"`
	Street        string `json:"street" validate:"required,person_name"`
	Apartment     string `json:"apartment" validate:"required,apartment"`
	City          string `json:"city" validate:"required,person_name"`
	PostalCode    string `json:"postal_code" validate:"required,postal_code"`
	Phone         string `json:"phone" validate:"required,phone_pl"`
	Email         string `json:"email" validate:"required,email"`
	PaymentMethod string `json:"payment_method" validate:"required"`
}

type CheckoutRequest struct {
	UserID string
	Input  CheckoutInput
}

// FieldErrors maps an input field (json name) to a user facing message.
type FieldErrors map[string]string

type CheckoutOutcome string

const (
	OutcomeCatalog CheckoutOutcome = "catalog"
	OutcomeForm    CheckoutOutcome = "form"
	OutcomeSummary CheckoutOutcome = "summary"
	OutcomeFailed  CheckoutOutcome = "failed"
)

// Redirect returns the page a client should navigate to for the outcome.
func (o CheckoutOutcome) Redirect(orderID string) string {
	switch o {
	case OutcomeCatalog:
		return "/products"
	case OutcomeForm:
		return "/checkout"
	case OutcomeSummary:
		return "/orders/" + orderID
	default:
		return "/checkout/failed"
	}
}

func (o CheckoutOutcome) String() string {
	return string(o)
}

type CheckoutResult struct {
	Outcome     CheckoutOutcome
	Cart        *Cart
	Order       *Order
	FieldErrors FieldErrors
}
