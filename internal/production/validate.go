package production

import (
	"errors"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Validation limits.
const (
	MaxProductNameLength = 100
	MinQuantityKg        = 0.1
	MinUsernameLength    = 3
	MinPasswordLength    = 4
)

// User-facing validation messages.
const (
	MsgRequired       = "Este campo é obrigatório"
	MsgInvalidNumber  = "Deve ser um número válido"
	MsgMinQuantity    = "A quantidade deve ser maior que 0"
	MsgProductTooLong = "O nome do produto deve ter no máximo 100 caracteres"
	MsgSelectProduct  = "Selecione um produto"
	MsgInvalidProduct = "Selecione um produto válido"
	MsgShortUsername  = "O nome de usuário deve ter pelo menos 3 caracteres"
	MsgShortPassword  = "A senha deve ter pelo menos 4 caracteres"
	MsgInvalidDate    = "Data inválida, use AAAA-MM-DD"
	MsgStartAfterEnd  = "A data inicial deve ser anterior à data final"
)

// ErrUnknownShift is returned by ParseShift.
var ErrUnknownShift = errors.New("unknown shift")

// ValidationError reports the first invalid field of an input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// Entry is a processed production entry.
type Entry struct {
	Product    string
	QuantityKg float64
}

// Validate checks the entry.
func (e Entry) Validate() error {
	name := strings.TrimSpace(e.Product)
	switch {
	case name == "":
		return &ValidationError{Field: "product", Message: MsgRequired}
	case utf8.RuneCountInString(name) > MaxProductNameLength:
		return &ValidationError{Field: "product", Message: MsgProductTooLong}
	case e.QuantityKg < MinQuantityKg:
		return &ValidationError{Field: "quantityKg", Message: MsgMinQuantity}
	}
	return nil
}

// EntryForm is the raw production-entry form input.
type EntryForm struct {
	ProductID  string
	QuantityKg string
}

// Parse validates the form and converts it. The product id must be a UUID.
func (f EntryForm) Parse() (productID string, quantityKg float64, err error) {
	id := strings.TrimSpace(f.ProductID)
	if id == "" {
		return "", 0, &ValidationError{Field: "productId", Message: MsgSelectProduct}
	}
	if _, err := uuid.Parse(id); err != nil {
		return "", 0, &ValidationError{Field: "productId", Message: MsgInvalidProduct}
	}
	qty, err := ParseQuantity(f.QuantityKg)
	if err != nil {
		return "", 0, err
	}
	return id, qty, nil
}

// ParseQuantity parses a kilogram amount typed by a user. A decimal comma
// is accepted.
func ParseQuantity(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, &ValidationError{Field: "quantityKg", Message: MsgRequired}
	}
	qty, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
	if err != nil {
		return 0, &ValidationError{Field: "quantityKg", Message: MsgInvalidNumber}
	}
	if qty < MinQuantityKg {
		return 0, &ValidationError{Field: "quantityKg", Message: MsgMinQuantity}
	}
	return qty, nil
}

// Credentials are login form values.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Validate checks the login form. The username is trimmed; the password is not.
func (c Credentials) Validate() error {
	user := strings.TrimSpace(c.Username)
	switch {
	case user == "":
		return &ValidationError{Field: "username", Message: MsgRequired}
	case utf8.RuneCountInString(user) < MinUsernameLength:
		return &ValidationError{Field: "username", Message: MsgShortUsername}
	case c.Password == "":
		return &ValidationError{Field: "password", Message: MsgRequired}
	case utf8.RuneCountInString(c.Password) < MinPasswordLength:
		return &ValidationError{Field: "password", Message: MsgShortPassword}
	}
	return nil
}
