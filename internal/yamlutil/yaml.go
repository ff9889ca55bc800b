// Package yamlutil is the YAML decoding seam for config parsing. Callers
// never import the YAML library directly, so it can be swapped in one place.
package yamlutil

import (
	"errors"
	"fmt"

	"github.com/goccy/go-yaml"
)

// MaxInputSize caps decoded input. Config files anywhere near this size are
// a mistake, not a use case.
const MaxInputSize = 1 << 20

var (
	ErrEmptyInput  = errors.New("yamlutil: empty input")
	ErrInputTooBig = errors.New("yamlutil: input exceeds size cap")
	ErrNilTarget   = errors.New("yamlutil: nil decode target")
)

// Decode decodes data into target, ignoring unknown fields.
func Decode(data []byte, target any) error {
	return decode(data, target, false)
}

// DecodeStrict decodes data into target and rejects unknown fields, so a
// typoed config key fails loudly instead of silently using defaults.
func DecodeStrict(data []byte, target any) error {
	return decode(data, target, true)
}

func decode(data []byte, target any, strict bool) error {
	switch {
	case len(data) == 0:
		return ErrEmptyInput
	case len(data) > MaxInputSize:
		return fmt.Errorf("%w: %d bytes (cap %d)", ErrInputTooBig, len(data), MaxInputSize)
	case target == nil:
		return ErrNilTarget
	}

	var opts []yaml.DecodeOption
	if strict {
		opts = append(opts, yaml.Strict())
	}
	if err := yaml.UnmarshalWithOptions(data, target, opts...); err != nil {
		return fmt.Errorf("yamlutil: %w", err)
	}
	return nil
}
