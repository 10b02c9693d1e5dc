package handlers

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// YearQuery is the query of the map views
type YearQuery struct {
	Year *int `validate:"omitempty,gte=1900,lte=2100"`
}

// StateQuery is the query of the turnout heatmap
type StateQuery struct {
	State string `validate:"max=100"`
}

// LocateQuery is the query of the point lookup
type LocateQuery struct {
	Lat  *float64 `validate:"required,gte=-90,lte=90"`
	Lng  *float64 `validate:"required,gte=-180,lte=180"`
	Year *int     `validate:"omitempty,gte=1900,lte=2100"`
}

// queryParser decodes query strings into the structs above and validates them
type queryParser struct {
	validate *validator.Validate
}

func newQueryParser() *queryParser {
	return &queryParser{validate: validator.New()}
}

// parameterError names the offending parameter
type parameterError struct {
	name string
	err  error
}

func (e *parameterError) Error() string {
	return fmt.Sprintf("%s: %v", e.name, e.err)
}

func (p *queryParser) year(values url.Values) (YearQuery, error) {
	var q YearQuery
	year, err := optionalInt(values, "year")
	if err != nil {
		return q, err
	}
	q.Year = year
	return q, p.check(q)
}

func (p *queryParser) state(values url.Values) (StateQuery, error) {
	q := StateQuery{State: strings.TrimSpace(values.Get("state"))}
	return q, p.check(q)
}

func (p *queryParser) locate(values url.Values) (LocateQuery, error) {
	var q LocateQuery
	var err error
	if q.Lat, err = optionalFloat(values, "lat"); err != nil {
		return q, err
	}
	if q.Lng, err = optionalFloat(values, "lng"); err != nil {
		return q, err
	}
	if q.Year, err = optionalInt(values, "year"); err != nil {
		return q, err
	}
	return q, p.check(q)
}

func (p *queryParser) check(v interface{}) error {
	err := p.validate.Struct(v)
	if err == nil {
		return nil
	}
	if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
		fe := errs[0]
		return &parameterError{
			name: strings.ToLower(fe.Field()),
			err:  fmt.Errorf("failed %q validation", fe.Tag()),
		}
	}
	return err
}

func optionalInt(values url.Values, name string) (*int, error) {
	raw := strings.TrimSpace(values.Get(name))
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, &parameterError{name: name, err: fmt.Errorf("%q is not an integer", raw)}
	}
	return &n, nil
}

func optionalFloat(values url.Values, name string) (*float64, error) {
	raw := strings.TrimSpace(values.Get(name))
	if raw == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, &parameterError{name: name, err: fmt.Errorf("%q is not a number", raw)}
	}
	return &f, nil
}
