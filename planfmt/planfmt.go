// Package planfmt encodes and decodes placement Plans as JSON or YAML.
package planfmt

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/pkg/errors"
	"go.gazette.dev/rackplan/codecs"
	"go.gazette.dev/rackplan/placement"
	"gopkg.in/yaml.v2"
)

// Format is an encoding of Plans.
type Format string

const (
	JSON Format = "json"
	YAML Format = "yaml"
)

// Validate returns an error if the Format is not known.
func (f Format) Validate() error {
	switch f {
	case JSON, YAML:
		return nil
	default:
		return fmt.Errorf("unknown format %q (expected json or yaml)", string(f))
	}
}

// ContentType returns the MIME type of the Format.
func (f Format) ContentType() string {
	if f == YAML {
		return "application/yaml"
	}
	return "application/json"
}

// FormatForPath returns the Format implied by the extension of |p|, after
// removing any compression extension. Paths which aren't YAML are JSON.
func FormatForPath(p string) Format {
	var _, stripped = codecs.CodecForPath(p)

	switch strings.ToLower(path.Ext(stripped)) {
	case ".yaml", ".yml":
		return YAML
	default:
		return JSON
	}
}

// Encode |v| to |w| in Format. JSON is indented by four spaces.
func Encode(w io.Writer, v interface{}, f Format) error {
	switch f {
	case JSON:
		var enc = json.NewEncoder(w)
		enc.SetIndent("", "    ")
		return errors.WithMessage(enc.Encode(v), "encoding JSON")
	case YAML:
		var enc = yaml.NewEncoder(w)
		if err := enc.Encode(v); err != nil {
			return errors.WithMessage(err, "encoding YAML")
		}
		return errors.WithMessage(enc.Close(), "encoding YAML")
	default:
		return f.Validate()
	}
}

// Marshal returns the Format encoding of |v|.
func Marshal(v interface{}, f Format) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, v, f); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode a Plan from |r| in Format.
func Decode(r io.Reader, f Format) (*placement.Plan, error) {
	var plan = new(placement.Plan)

	switch f {
	case JSON:
		if err := json.NewDecoder(r).Decode(plan); err != nil {
			return nil, errors.WithMessage(err, "decoding JSON")
		}
	case YAML:
		if err := yaml.NewDecoder(r).Decode(plan); err != nil {
			return nil, errors.WithMessage(err, "decoding YAML")
		}
	default:
		return nil, f.Validate()
	}
	return plan, nil
}

// DecodePath decodes a Plan from |r|, which holds the content of |p|.
// The codec and Format are inferred from extensions of |p|.
func DecodePath(r io.Reader, p string) (*placement.Plan, error) {
	var codec, _ = codecs.CodecForPath(p)

	var dec, err = codecs.NewCodecReader(r, codec)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	return Decode(dec, FormatForPath(p))
}
