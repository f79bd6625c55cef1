package validate

import (
	"errors"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/google/uuid"
)

var validate *validator.Validate

var translator ut.Translator

func init() {

	validate = validator.New()

	// Report fields by the names the dashboard sends.
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	translator, _ = ut.New(en.New(), en.New()).GetTranslator("en")
	en_translations.RegisterDefaultTranslations(validate, translator)
}

// Check validates val's struct tags and returns the first failure as a
// readable error. Failures inside slices name the element, as in
// "items[0].quantity must be 0 or greater".
func Check(val any) error {
	err := validate.Struct(val)
	if err == nil {
		return nil
	}

	var verrors validator.ValidationErrors
	if !errors.As(err, &verrors) {
		return err
	}
	if len(verrors) < 1 {
		return nil
	}

	fe := verrors[0]
	msg := fe.Translate(translator)

	// Namespace starts with the Go type name of val.
	path := fe.Namespace()
	if i := strings.IndexByte(path, '.'); i >= 0 {
		path = path[i+1:]
	}
	if path != fe.Field() && strings.HasPrefix(msg, fe.Field()) {
		msg = path + strings.TrimPrefix(msg, fe.Field())
	}

	return errors.New(msg)
}

func GenerateID() string {
	return uuid.NewString()
}

// CheckID accepts catalog ids, which are positive decimal integers.
func CheckID(id string) error {
	n, err := strconv.Atoi(id)
	if err != nil || n < 1 || strconv.Itoa(n) != id {
		return errors.New("ID is not in its proper form")
	}
	return nil
}
