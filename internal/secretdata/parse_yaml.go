package secretdata

import (
	"bufio"
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ParseYAML parses a single YAML document, flattens nested mappings with
// "." separators (list nodes are disallowed — mapping of scalars only at
// the leaves), and stringifies scalar values the way
// scalaric-sops-operator's convertToDecryptedData does for its decrypted
// map[string]interface{} tree. Commented-out subtrees are invisible to the
// YAML parser, so a second pass scans the raw bytes for "#"-prefixed
// "key:" lines and records those as disabled entries with an empty value.
func ParseYAML(fileName string, data []byte) ([]Entry, error) {
	var root map[string]interface{}
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, &ParseError{File: fileName, Reason: err.Error()}
	}

	flat := make(map[string]string)
	if err := flatten("", root, flat, fileName); err != nil {
		return nil, err
	}

	disabledKeys := scanDisabledKeys(data)

	entries := make([]Entry, 0, len(flat)+len(disabledKeys))
	for k, v := range flat {
		entries = append(entries, Entry{
			LogicalKey: k,
			RawValue:   v,
			Enabled:    true,
			OriginFile: fileName,
		})
	}
	for k := range disabledKeys {
		if _, ok := flat[k]; ok {
			// An enabled occurrence elsewhere in the file wins; a
			// commented line for an otherwise-active key is not a
			// meaningful disable.
			continue
		}
		entries = append(entries, Entry{
			LogicalKey: k,
			RawValue:   "",
			Enabled:    false,
			OriginFile: fileName,
		})
	}
	return entries, nil
}

// flatten walks a decoded YAML mapping tree, joining keys with "." and
// stringifying scalar leaves. A list value at any depth is rejected per
// spec §4.2 ("list nodes are disallowed").
func flatten(prefix string, node map[string]interface{}, out map[string]string, fileName string) error {
	for k, v := range node {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch val := v.(type) {
		case map[string]interface{}:
			if err := flatten(key, val, out, fileName); err != nil {
				return err
			}
		case []interface{}:
			return &ParseError{File: fileName, Reason: fmt.Sprintf("list node at %q is not allowed", key)}
		case nil:
			out[key] = ""
		default:
			out[key] = stringifyScalar(val)
		}
	}
	return nil
}

// stringifyScalar renders a decoded YAML scalar as its canonical string
// form, mirroring the scalar-stringification switch in
// scalaric-sops-operator's convertToDecryptedData.
func stringifyScalar(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", t)
	}
}

// disabledKeyLine matches "#" followed by a "key:" prefix, at any
// indentation, used to recover commented-out top-level-style keys the YAML
// decoder itself cannot see.
var disabledKeyLine = regexp.MustCompile(`^\s*#\s*([A-Za-z0-9_.\-]+)\s*:`)

// scanDisabledKeys scans raw bytes for commented "key:" lines per spec
// §4.2. Nesting below a disabled key is not resolved structurally — only
// the literal dotted-or-bare key token on the commented line is recorded,
// since YAML comments carry no reliable indentation-to-flattened-path
// mapping once the surrounding structure is gone.
func scanDisabledKeys(data []byte) map[string]struct{} {
	keys := make(map[string]struct{})
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if m := disabledKeyLine.FindStringSubmatch(line); m != nil {
			keys[strings.TrimSpace(m[1])] = struct{}{}
		}
	}
	return keys
}
