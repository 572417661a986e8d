package serverutils

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"docmind-be/internal/apperror"
)

var validate = validator.New()

// ValidateRequest runs struct tag validation and reports violations as client
// input errors so the error handler maps them to 400.
func ValidateRequest(req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if ok := errors.As(err, &verrs); !ok {
		return err
	}

	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
	}
	return apperror.NewClientInput("invalid request: %s", strings.Join(fields, ", "))
}
