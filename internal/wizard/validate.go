package wizard

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationError reports the fields that block a stage.
type ValidationError struct {
	Stage  Stage    `json:"stage"`
	Fields []string `json:"fields"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: missing or invalid %s", e.Stage, strings.Join(e.Fields, ", "))
}

var phonePattern = regexp.MustCompile(`^\+?[0-9]{7,15}$`)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		s := strings.NewReplacer(" ", "", "-", "").Replace(fl.Field().String())
		return phonePattern.MatchString(s)
	})
	return v
}

// fieldErrors flattens validator output into field names, prefixed for
// nested records.
func fieldErrors(err error, prefix string) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		if err != nil {
			return []string{strings.TrimSuffix(prefix, ".")}
		}
		return nil
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, prefix+fe.Field())
	}
	return fields
}

func (w *Wizard) checkSelection() []string {
	d := w.draft
	if d.Category == "" && len(d.Seats) == 0 {
		return []string{"selection"}
	}
	if n := d.SeatCount(); n < 1 || n > w.maxSeats {
		return []string{"quantity"}
	}
	return nil
}

func (w *Wizard) checkContact() []string {
	d := w.draft
	fields := fieldErrors(w.validate.Struct(d.Contact), "")
	if len(d.Guests) != d.GuestsRequired() {
		fields = append(fields, "guests")
	}
	for i, g := range d.Guests {
		fields = append(fields, fieldErrors(w.validate.Struct(g), fmt.Sprintf("guests[%d].", i))...)
	}
	return fields
}

// check runs the validator of stage and returns a *ValidationError or nil.
func (w *Wizard) check(stage Stage) error {
	var fields []string
	switch stage {
	case StageSeatSelection:
		fields = w.checkSelection()
	case StageAddOns:
		// always valid
	case StageContactDetails:
		fields = w.checkContact()
	case StageReviewAndPay:
		for _, s := range []Stage{StageSeatSelection, StageAddOns, StageContactDetails} {
			if err := w.check(s); err != nil {
				return err
			}
		}
	}
	if len(fields) > 0 {
		return &ValidationError{Stage: stage, Fields: fields}
	}
	return nil
}
