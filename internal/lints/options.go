package lints

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-viper/mapstructure/v2"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ErrInvalidOptions is returned when a rule's options do not match its schema.
var ErrInvalidOptions = errors.New("invalid rule options")

const asyncAwaitOptionsSchema = `{
	"type": "object",
	"properties": {
		"checkMissingAwait": {"type": "boolean", "default": true},
		"checkExtraAwait": {"type": "boolean", "default": true}
	},
	"additionalProperties": false
}`

var asyncAwaitSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	return compileSchema(AsyncAwaitRuleName+".schema.json", asyncAwaitOptionsSchema)
})

func compileSchema(url, schema string) (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource(url, strings.NewReader(schema)); err != nil {
		return nil, fmt.Errorf("adding schema %s: %w", url, err)
	}
	return compiler.Compile(url)
}

// validateOptions checks raw against schema. raw usually comes from YAML,
// so it is normalized through JSON first to get plain JSON value types.
func validateOptions(schema *jsonschema.Schema, raw map[string]any) error {
	data, err := json.Marshal(raw)
	if err != nil {
		return err
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	return schema.Validate(doc)
}

// DecodeAsyncAwaitOptions validates and decodes the options object of the
// async-await rule. Missing fields keep their defaults.
func DecodeAsyncAwaitOptions(raw map[string]any) (AsyncAwaitOptions, error) {
	opts := DefaultAsyncAwaitOptions()
	if len(raw) == 0 {
		return opts, nil
	}

	schema, err := asyncAwaitSchema()
	if err != nil {
		return opts, err
	}
	if err := validateOptions(schema, raw); err != nil {
		return opts, fmt.Errorf("%w for %s: %w", ErrInvalidOptions, AsyncAwaitRuleName, err)
	}

	if err := mapstructure.Decode(raw, &opts); err != nil {
		return opts, fmt.Errorf("decoding %s options: %w", AsyncAwaitRuleName, err)
	}
	return opts, nil
}

// OptionsMap is the inverse of DecodeAsyncAwaitOptions, used to write
// configuration files.
func (o AsyncAwaitOptions) OptionsMap() map[string]any {
	return map[string]any{
		"checkMissingAwait": o.CheckMissingAwait,
		"checkExtraAwait":   o.CheckExtraAwait,
	}
}
