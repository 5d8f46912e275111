package form

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// SchemaError lists the problems found in an API submission.
type SchemaError struct {
	Problems []string
}

func (e *SchemaError) Error() string {
	return "invalid submission: " + strings.Join(e.Problems, "; ")
}

var submissionSchema = mustCompile(buildSchema())

// Schema returns the JSON schema API submissions are checked against.
func Schema() map[string]any {
	return buildSchema()
}

func buildSchema() map[string]any {
	props := make(map[string]any, len(fields))
	for _, f := range fields {
		if f.Kind == KindChoice {
			props[f.Key] = map[string]any{
				"type":        "string",
				"enum":        f.Options,
				"description": f.Name,
			}
			continue
		}
		// lower bounds are left to the pipeline's negativity check
		prop := map[string]any{
			"type":        "integer",
			"description": f.Name,
		}
		if f.Max != nil {
			prop["maximum"] = *f.Max
		}
		props[f.Key] = prop
	}
	return map[string]any{
		"$schema":              "http://json-schema.org/draft-07/schema#",
		"type":                 "object",
		"properties":           props,
		"additionalProperties": false,
	}
}

func mustCompile(schema map[string]any) *gojsonschema.Schema {
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(schema))
	if err != nil {
		panic(fmt.Sprintf("form: invalid submission schema: %v", err))
	}
	return compiled
}

// ValidateJSON checks a raw API body against the submission schema.
func ValidateJSON(body []byte) error {
	result, err := submissionSchema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return &ParseError{Field: "body", Value: truncate(string(body), 64), Err: err}
	}
	if result.Valid() {
		return nil
	}
	problems := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		problems = append(problems, e.String())
	}
	return &SchemaError{Problems: problems}
}
