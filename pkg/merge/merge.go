// Package merge implements structural, field-level merging of mod
// configuration content. It backs the Merge resolution strategy: the
// winner's values are kept as-is and the loser only contributes keys
// the winner does not define. Content that cannot be parsed
// structurally is rejected so the resolver can fall back to a
// precedence-based strategy.
package merge

import (
	"encoding/json"
	"path"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"modfuse/pkg/errors"
)

// Files merges two versions of the file at relPath. The format is
// sniffed from the extension. Returns ErrUnmergeable for binary or
// unrecognized formats.
func Files(relPath string, winner, loser []byte) ([]byte, error) {
	switch strings.ToLower(path.Ext(relPath)) {
	case ".yaml", ".yml":
		return mergeYAML(winner, loser)
	case ".json":
		return mergeJSON(winner, loser)
	case ".toml":
		return mergeTOML(winner, loser)
	case ".xml":
		return mergeXML(winner, loser)
	default:
		return nil, errors.Newf(errors.ErrUnmergeable,
			"no structural merger for %q", relPath)
	}
}

// Mergeable reports whether the path's format has a structural merger.
func Mergeable(relPath string) bool {
	switch strings.ToLower(path.Ext(relPath)) {
	case ".yaml", ".yml", ".json", ".toml", ".xml":
		return true
	default:
		return false
	}
}

func mergeYAML(winner, loser []byte) ([]byte, error) {
	w, err := decodeMapping(winner, "winner yaml", yamlDecode)
	if err != nil {
		return nil, err
	}
	l, err := decodeMapping(loser, "loser yaml", yamlDecode)
	if err != nil {
		return nil, err
	}
	return yaml.Marshal(mergeMaps(w, l))
}

func mergeJSON(winner, loser []byte) ([]byte, error) {
	w, err := decodeMapping(winner, "winner json", jsonDecode)
	if err != nil {
		return nil, err
	}
	l, err := decodeMapping(loser, "loser json", jsonDecode)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(mergeMaps(w, l), "", "  ")
}

func mergeTOML(winner, loser []byte) ([]byte, error) {
	w, err := decodeMapping(winner, "winner toml", tomlDecode)
	if err != nil {
		return nil, err
	}
	l, err := decodeMapping(loser, "loser toml", tomlDecode)
	if err != nil {
		return nil, err
	}
	return toml.Marshal(mergeMaps(w, l))
}

func yamlDecode(data []byte, out *map[string]interface{}) error {
	return yaml.Unmarshal(data, out)
}

func jsonDecode(data []byte, out *map[string]interface{}) error {
	return json.Unmarshal(data, out)
}

func tomlDecode(data []byte, out *map[string]interface{}) error {
	return toml.Unmarshal(data, out)
}

// decodeMapping parses content into a string-keyed mapping, rejecting
// scalars and null documents so the caller can fall back.
func decodeMapping(data []byte, what string, decode func([]byte, *map[string]interface{}) error) (map[string]interface{}, error) {
	var m map[string]interface{}
	if err := decode(data, &m); err != nil {
		return nil, errors.Wrapf(err, errors.ErrUnmergeable, "%s is not a structured mapping", what)
	}
	if m == nil {
		return nil, errors.Newf(errors.ErrUnmergeable, "%s is not a structured mapping", what)
	}
	return m, nil
}

// mergeMaps fills keys absent from winner with the loser's values.
// Nested maps are merged recursively; on scalar or type clashes the
// winner's value stands.
func mergeMaps(winner, loser map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(winner)+len(loser))
	for k, v := range winner {
		out[k] = v
	}
	for k, lv := range loser {
		wv, exists := out[k]
		if !exists {
			out[k] = lv
			continue
		}
		wm, wok := asMap(wv)
		lm, lok := asMap(lv)
		if wok && lok {
			out[k] = mergeMaps(wm, lm)
		}
	}
	return out
}

// asMap normalizes the map types the different decoders produce.
func asMap(v interface{}) (map[string]interface{}, bool) {
	switch m := v.(type) {
	case map[string]interface{}:
		return m, true
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(m))
		for k, val := range m {
			ks, ok := k.(string)
			if !ok {
				return nil, false
			}
			out[ks] = val
		}
		return out, true
	default:
		return nil, false
	}
}
