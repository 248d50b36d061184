package validation

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// MovieCreateSchema defines the JSON schema for POST /api/movies bodies.
var MovieCreateSchema = `{
	"type": "object",
	"properties": {
		"title": {"type": "string", "minLength": 1, "maxLength": 200},
		"year": {"type": "integer", "minimum": 1888, "maximum": 2100},
		"genre": {"type": "string", "minLength": 1, "maxLength": 80},
		"rating": {"type": ["number", "null"], "minimum": 0, "maximum": 10}
	},
	"required": ["title", "year", "genre"]
}`

// MovieUpdateSchema defines the JSON schema for PUT /api/movies/{id} bodies.
// Every field is optional; only rating may be null.
var MovieUpdateSchema = `{
	"type": "object",
	"properties": {
		"title": {"type": "string", "minLength": 1, "maxLength": 200},
		"year": {"type": "integer", "minimum": 1888, "maximum": 2100},
		"genre": {"type": "string", "minLength": 1, "maxLength": 80},
		"rating": {"type": ["number", "null"], "minimum": 0, "maximum": 10}
	}
}`

var (
	movieCreateSchema = mustCompile(MovieCreateSchema)
	movieUpdateSchema = mustCompile(MovieUpdateSchema)
)

func mustCompile(schema string) *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schema))
	if err != nil {
		panic(fmt.Sprintf("invalid JSON schema: %v", err))
	}
	return s
}

// ValidateMovieCreate validates a create request body.
func ValidateMovieCreate(body []byte) *RequestValidationError {
	return ValidateDocument(movieCreateSchema, body)
}

// ValidateMovieUpdate validates an update request body.
func ValidateMovieUpdate(body []byte) *RequestValidationError {
	return ValidateDocument(movieUpdateSchema, body)
}

// ValidateDocument validates a JSON document against schema. Malformed JSON
// is reported as a single json_invalid error on the body.
func ValidateDocument(schema *gojsonschema.Schema, body []byte) *RequestValidationError {
	result, err := schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return NewError([]string{"body"}, "JSON decode error", "json_invalid")
	}
	if result.Valid() {
		return nil
	}

	verr := &RequestValidationError{}
	for _, desc := range result.Errors() {
		verr.errors = append(verr.errors, FieldError{
			Loc:  schemaLoc(desc),
			Msg:  desc.Description(),
			Type: desc.Type(),
		})
	}
	verr.sort()
	return verr
}

// rootField is what gojsonschema reports as the field of document-level errors.
const rootField = "(root)"

// schemaLoc returns the location an error refers to. Required errors are
// reported on the parent object with the missing key in the details.
func schemaLoc(desc gojsonschema.ResultError) []string {
	if prop, ok := desc.Details()["property"].(string); ok && prop != "" {
		return []string{"body", prop}
	}
	if field := desc.Field(); field != rootField {
		return []string{"body", field}
	}
	return []string{"body"}
}
