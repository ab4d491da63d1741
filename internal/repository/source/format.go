package source

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const datetimeLayout = "2006-01-02 15:04:05"

// TypeName returns the short runtime type name used in profile schema lines.
func TypeName(v any) string {
	switch v.(type) {
	case nil, primitive.Null, primitive.Undefined:
		return "NoneType"
	case int, int32, int64:
		return "int"
	case float32, float64:
		return "float"
	case string:
		return "str"
	case bool:
		return "bool"
	case primitive.ObjectID:
		return "ObjectId"
	case primitive.DateTime, time.Time:
		return "datetime"
	case bson.D, bson.M, map[string]any:
		return "dict"
	case bson.A, []any:
		return "list"
	case primitive.Binary, []byte:
		return "bytes"
	case primitive.Decimal128:
		return "Decimal128"
	case primitive.Timestamp:
		return "Timestamp"
	case primitive.Regex:
		return "Regex"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// FormatValue renders a sample value the way it reads in a profile.
// Strings are printed bare at the top level and quoted when nested.
func FormatValue(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return repr(v)
}

func repr(v any) string {
	switch x := v.(type) {
	case nil, primitive.Null, primitive.Undefined:
		return "None"
	case string:
		return "'" + strings.ReplaceAll(x, "'", `\'`) + "'"
	case bool:
		if x {
			return "True"
		}
		return "False"
	case int:
		return strconv.Itoa(x)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case int64:
		return strconv.FormatInt(x, 10)
	case float32:
		return formatFloat(float64(x))
	case float64:
		return formatFloat(x)
	case primitive.ObjectID:
		return x.Hex()
	case primitive.DateTime:
		return formatTime(x.Time())
	case time.Time:
		return formatTime(x)
	case primitive.Decimal128:
		return x.String()
	case primitive.Binary:
		return fmt.Sprintf("b%q", x.Data)
	case []byte:
		return fmt.Sprintf("b%q", x)
	case bson.D:
		parts := make([]string, 0, len(x))
		for _, e := range x {
			parts = append(parts, repr(e.Key)+": "+repr(e.Value))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case bson.M:
		parts := make([]string, 0, len(x))
		for k, val := range x {
			parts = append(parts, repr(k)+": "+repr(val))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case bson.A:
		return reprList(x)
	case []any:
		return reprList(x)
	default:
		return fmt.Sprint(v)
	}
}

func reprList(items []any) string {
	parts := make([]string, 0, len(items))
	for _, it := range items {
		parts = append(parts, repr(it))
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	format := byte('g')
	if abs := math.Abs(f); abs == 0 || (abs >= 1e-4 && abs < 1e16) {
		format = 'f'
	}
	s := strconv.FormatFloat(f, format, -1, 64)
	if !strings.ContainsAny(s, ".en") {
		s += ".0"
	}
	return s
}

func formatTime(t time.Time) string {
	t = t.UTC()
	if t.Nanosecond() == 0 {
		return t.Format(datetimeLayout)
	}
	return t.Format(datetimeLayout + ".000000")
}
