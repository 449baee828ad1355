package generation

import (
	"encoding/json"
	"fmt"
	"strings"
)

// CheckJSON verifies that content parses as JSON and structurally
// matches the given schema example: objects must contain at least the
// schema's keys, and array elements must match the schema array's first
// element. Primitive values are not compared, only shape. The model is
// re-prompted when this check fails, so the error message names the
// first offending path.
func CheckJSON(content, schema string) error {
	var want any
	if err := json.Unmarshal([]byte(schema), &want); err != nil {
		return fmt.Errorf("invalid schema: %w", err)
	}

	var got any
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &got); err != nil {
		return fmt.Errorf("%w: not valid JSON: %v", ErrInvalidResponse, err)
	}

	if err := matchShape(got, want, "$"); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return nil
}

func matchShape(got, want any, path string) error {
	switch w := want.(type) {
	case map[string]any:
		g, ok := got.(map[string]any)
		if !ok {
			return fmt.Errorf("%s: expected object, got %T", path, got)
		}
		for key, wv := range w {
			gv, ok := g[key]
			if !ok {
				return fmt.Errorf("%s: missing key %q", path, key)
			}
			if err := matchShape(gv, wv, path+"."+key); err != nil {
				return err
			}
		}
	case []any:
		g, ok := got.([]any)
		if !ok {
			return fmt.Errorf("%s: expected array, got %T", path, got)
		}
		if len(w) == 0 {
			return nil
		}
		for i, gv := range g {
			if err := matchShape(gv, w[0], fmt.Sprintf("%s[%d]", path, i)); err != nil {
				return err
			}
		}
	}
	return nil
}
