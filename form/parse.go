package form

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"custseg/pipeline"
)

// Parse reads a form submission. Missing fields keep their default value.
// The returned customer holds everything that parsed, so the page can be
// re-rendered with the user's input next to the error.
func Parse(values url.Values) (pipeline.Customer, error) {
	c := Defaults()
	for _, f := range fields {
		raw := strings.TrimSpace(values.Get(f.Key))
		if raw == "" {
			continue
		}
		if f.Kind == KindChoice {
			edu, err := pipeline.ParseEducation(raw)
			if err != nil {
				return c, &ParseError{Field: f.Name, Value: raw, Err: err}
			}
			c.Education = edu
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			return c, &ParseError{Field: f.Name, Value: raw, Err: err}
		}
		f.set(&c, v)
	}
	return c, CheckBounds(c)
}

// DecodeJSON reads an API submission. The body is checked against the
// field schema first; absent fields keep their default value.
func DecodeJSON(body []byte) (pipeline.Customer, error) {
	if err := ValidateJSON(body); err != nil {
		return pipeline.Customer{}, err
	}
	c := Defaults()
	if err := json.Unmarshal(body, &c); err != nil {
		return pipeline.Customer{}, &ParseError{Field: "body", Value: truncate(string(body), 64), Err: err}
	}
	if _, err := pipeline.EducationCode(c.Education); err != nil {
		return c, &ParseError{Field: pipeline.FieldEducation, Value: string(c.Education), Err: err}
	}
	return c, CheckBounds(c)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return fmt.Sprintf("%s...", s[:n])
}
