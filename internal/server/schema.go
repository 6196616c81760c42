package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Write payloads for devices and combos are validated against JSON schemas
// before decoding; unknown-shape input is rejected instead of trusting field
// presence.

var deviceAddSchema = mustSchema(`{
	"type": "object",
	"additionalProperties": false,
	"properties": {
		"name":      {"type": "string"},
		"url":       {"type": "string", "minLength": 1},
		"authToken": {"type": "string"},
		"sshHost":   {"type": "string", "minLength": 1},
		"sshRoot":   {"type": "string"},
		"icon":      {"type": "string"}
	},
	"oneOf": [
		{"required": ["name", "url"], "not": {"required": ["sshHost"]}},
		{"required": ["sshHost"], "not": {"required": ["url"]}}
	]
}`)

var deviceUpdateSchema = mustSchema(`{
	"type": "object",
	"additionalProperties": false,
	"minProperties": 1,
	"properties": {
		"name":      {"type": "string"},
		"url":       {"type": "string"},
		"authToken": {"type": "string"},
		"sshRoot":   {"type": "string"},
		"icon":      {"type": "string"},
		"enabled":   {"type": "boolean"}
	}
}`)

var comboAddSchema = mustSchema(`{
	"type": "object",
	"additionalProperties": false,
	"required": ["name", "deviceIds"],
	"properties": {
		"name":      {"type": "string", "minLength": 1},
		"icon":      {"type": "string"},
		"deviceIds": {"type": "array", "minItems": 1, "items": {"type": "string", "minLength": 1}}
	}
}`)

var comboUpdateSchema = mustSchema(`{
	"type": "object",
	"additionalProperties": false,
	"minProperties": 1,
	"properties": {
		"name":      {"type": "string"},
		"icon":      {"type": "string"},
		"deviceIds": {"type": "array", "items": {"type": "string", "minLength": 1}}
	}
}`)

var settingsUpdateSchema = mustSchema(`{
	"type": "object",
	"additionalProperties": false,
	"properties": {
		"localName": {"type": "string"},
		"localIcon": {"type": "string"}
	}
}`)

func mustSchema(src string) *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic(err)
	}
	return s
}

// decodeValidated reads the body, checks it against schema and unmarshals it
// into v. The returned error message is suitable for a 400 response.
func decodeValidated(r *http.Request, schema *gojsonschema.Schema, v any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		return errors.New("unreadable request body")
	}
	result, err := schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return errors.New("malformed request body")
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return errors.New(strings.Join(msgs, "; "))
	}
	return json.Unmarshal(body, v)
}
