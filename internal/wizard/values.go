package wizard

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/imyashkale/helmwizard/internal/models"
)

var (
	ErrInvalidJSON = errors.New("invalid JSON mapping")
	ErrCastFailed  = errors.New("value does not match variable type")
)

// ParseJSONValues parses a JSON object of variable values. Anything other than
// an object is rejected so that an import is applied completely or not at all.
func ParseJSONValues(raw string) (map[string]interface{}, error) {
	var values map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	if values == nil {
		return nil, fmt.Errorf("%w: expected an object", ErrInvalidJSON)
	}
	return values, nil
}

// EnvValues converts parsed .env pairs into a value map
func EnvValues(env map[string]string) map[string]interface{} {
	values := make(map[string]interface{}, len(env))
	for k, v := range env {
		values[k] = v
	}
	return values
}

// MergeValues returns a new map holding dst overlaid with src
func MergeValues(dst, src map[string]interface{}) map[string]interface{} {
	merged := make(map[string]interface{}, len(dst)+len(src))
	for k, v := range dst {
		merged[k] = v
	}
	for k, v := range src {
		merged[k] = v
	}
	return merged
}

// CastValue coerces v to the given variable type
func CastValue(v interface{}, t models.VarType) (interface{}, error) {
	switch t {
	case models.VarTypeNumber:
		return toNumber(v)
	case models.VarTypeBoolean:
		return toBool(v)
	}
	return v, nil
}

// CastValues coerces every value with a known definition to its declared type.
// Values without a definition pass through unchanged.
func CastValues(values map[string]interface{}, defs []models.VarDef) (map[string]interface{}, error) {
	out := make(map[string]interface{}, len(values))
	for k, v := range values {
		def, ok := FindDef(defs, k)
		if !ok {
			out[k] = v
			continue
		}
		cast, err := CastValue(v, def.Type)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", k, err)
		}
		out[k] = cast
	}
	return out, nil
}

// MissingRequired lists required keys whose value is absent or empty, in definition order
func MissingRequired(defs []models.VarDef, values map[string]interface{}) []string {
	var missing []string
	for _, d := range defs {
		if !d.Required {
			continue
		}
		v, ok := values[d.Key]
		if !ok || v == nil || v == "" {
			missing = append(missing, d.Key)
		}
	}
	return missing
}

// FormatValue renders a value the way it is substituted into a template
func FormatValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case json.Number:
		return val.String()
	}
	return fmt.Sprint(v)
}

func toNumber(v interface{}) (interface{}, error) {
	switch val := v.(type) {
	case nil:
		return float64(0), nil
	case float64:
		return val, nil
	case float32:
		return float64(val), nil
	case int:
		return float64(val), nil
	case int64:
		return float64(val), nil
	case bool:
		if val {
			return float64(1), nil
		}
		return float64(0), nil
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return float64(0), nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("%w: %q is not a number", ErrCastFailed, val)
		}
		return f, nil
	}
	return nil, fmt.Errorf("%w: %T is not a number", ErrCastFailed, v)
}

func toBool(v interface{}) (interface{}, error) {
	switch val := v.(type) {
	case nil:
		return false, nil
	case bool:
		return val, nil
	case float64:
		return val != 0, nil
	case int:
		return val != 0, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "true", "1", "yes", "on":
			return true, nil
		case "false", "0", "no", "off", "":
			return false, nil
		}
		return nil, fmt.Errorf("%w: %q is not a boolean", ErrCastFailed, val)
	}
	return nil, fmt.Errorf("%w: %T is not a boolean", ErrCastFailed, v)
}
