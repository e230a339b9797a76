package patternfile

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ohler55/ojg"
	"github.com/ohler55/ojg/oj"
	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"
)

// Format is a document encoding.
type Format string

// Supported formats. FormatAuto picks one from the file extension.
const (
	FormatAuto    Format = "auto"
	FormatYAML    Format = "yaml"
	FormatJSON    Format = "json"
	FormatMsgpack Format = "msgpack"
)

// ErrUnknownFormat is returned for formats other than the supported ones.
var ErrUnknownFormat = errors.New("unknown document format")

// ParseFormat validates name as a format. The empty string is FormatAuto.
func ParseFormat(name string) (Format, error) {
	switch format := Format(strings.ToLower(strings.TrimSpace(name))); format {
	case "":
		return FormatAuto, nil
	case FormatAuto, FormatYAML, FormatJSON, FormatMsgpack:
		return format, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
}

// ForPath resolves FormatAuto from path's extension. Unknown extensions are YAML, which
// also accepts JSON documents.
func (f Format) ForPath(path string) Format {
	if f != FormatAuto && f != "" {
		return f
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".msgpack", ".mpk", ".mp":
		return FormatMsgpack
	default:
		return FormatYAML
	}
}

// decodeTree decodes data into generic maps, slices and scalars.
func decodeTree(data []byte, format Format) (any, error) {
	var tree any

	var err error

	switch format {
	case FormatJSON:
		// oj.Parse keeps integer literals as int64.
		tree, err = oj.Parse(data)
	case FormatMsgpack:
		err = msgpack.Unmarshal(data, &tree)
	case FormatYAML, FormatAuto, "":
		err = yaml.Unmarshal(data, &tree)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", format, err)
	}

	return tree, nil
}

// encodeTree is the inverse of decodeTree.
func encodeTree(tree any, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		return []byte(oj.JSON(tree, &ojg.Options{Indent: 2, Sort: true}) + "\n"), nil
	case FormatMsgpack:
		data, err := msgpack.Marshal(tree)
		if err != nil {
			return nil, fmt.Errorf("encoding msgpack: %w", err)
		}

		return data, nil
	case FormatYAML, FormatAuto, "":
		data, err := yaml.Marshal(tree)
		if err != nil {
			return nil, fmt.Errorf("encoding yaml: %w", err)
		}

		return data, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}
