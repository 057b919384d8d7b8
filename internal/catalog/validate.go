package catalog

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/go-multierror"

	inderrors "github.com/Aman-CERP/indsearch/internal/errors"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks every record and the uniqueness of IDs. All problems are
// reported together.
func Validate(inds []*Indicator) error {
	var result *multierror.Error
	seen := make(map[string]string, len(inds))

	for _, ind := range inds {
		if ind == nil {
			result = multierror.Append(result, fmt.Errorf("nil record"))
			continue
		}
		if err := validate.Struct(ind); err != nil {
			result = multierror.Append(result, fmt.Errorf("%s: %s", ind.ID, describe(err)))
		}
		if first, dup := seen[ind.ID]; dup {
			result = multierror.Append(result, inderrors.New(inderrors.ErrCodeDuplicateID,
				fmt.Sprintf("%s: keys %q and %q collide after lower-casing", ind.ID, first, ind.Key), nil))
			continue
		}
		seen[ind.ID] = ind.Key
	}

	if result == nil {
		return nil
	}
	result.ErrorFormat = listFormat
	return inderrors.ValidationError("catalog validation failed", result).
		WithDetail("invalid_records", strconv.Itoa(len(result.Errors)))
}

// describe turns validator field errors into "field is required" phrases.
func describe(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			parts = append(parts, field+" is required")
		case "min":
			parts = append(parts, fmt.Sprintf("%s needs at least %s entry", field, fe.Param()))
		default:
			parts = append(parts, fmt.Sprintf("%s fails %s", field, fe.Tag()))
		}
	}
	return strings.Join(parts, ", ")
}

func listFormat(errs []error) string {
	lines := make([]string, len(errs))
	for i, err := range errs {
		lines[i] = "* " + err.Error()
	}
	return strings.Join(lines, "\n")
}
