package server

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"car-evaluator/models"
)

const defaultScrapePages = 3

var validate = newValidator()

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// ScrapeRequest is the body of POST /api/scrape.
type ScrapeRequest struct {
	Make    string `json:"make" validate:"required"`
	Model   string `json:"model" validate:"required"`
	PriceTo int    `json:"price_to" validate:"gte=0"`
	Pages   *int   `json:"pages" validate:"omitnil,gte=1,lte=50"`
}

// Validate validates the ScrapeRequest using the validator.
func (r *ScrapeRequest) Validate() error {
	r.Make = strings.TrimSpace(r.Make)
	r.Model = strings.TrimSpace(r.Model)
	return validationError(validate.Struct(r))
}

// PageCount returns the requested page count or the default.
func (r *ScrapeRequest) PageCount() int {
	if r.Pages == nil {
		return defaultScrapePages
	}
	return *r.Pages
}

// AnalyzeRequest is the body of POST /api/analyze.
type AnalyzeRequest struct {
	InputCar *models.InputCar  `json:"input_car" validate:"required"`
	Listings []*models.Listing `json:"listings" validate:"required,min=1"`
}

// Validate validates the AnalyzeRequest using the validator.
// Missing reference fields are not checked here: the analysis reports them as data.
func (r *AnalyzeRequest) Validate() error {
	return validationError(validate.Struct(r))
}

// validationError turns validator output into a single client-facing message.
func validationError(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("missing %s", fe.Field()))
		case "min":
			msgs = append(msgs, fmt.Sprintf("%s must not be empty", fe.Field()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s must be %s %s", fe.Field(), fe.Tag(), fe.Param()))
		}
	}
	return errors.New(strings.Join(msgs, "; "))
}
