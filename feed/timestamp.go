package feed

import (
	"strconv"
	"time"

	"github.com/araddon/dateparse"
)

// The store has accumulated three generations of time encodings: epoch
// seconds, epoch milliseconds, and ISO strings (sometimes wrapped in a
// {date: ...} envelope by the legacy serializer). No field is reliable in
// isolation, so every read goes through the sanity-window heuristic below.
//
// A raw number can't be split on magnitude alone (a pre-2001 millisecond
// value is smaller than 1e12); instead a value is taken in the unit that
// lands it between 2000-01-01 and 2100-01-01.
const (
	saneEpochSecMin int64 = 946684800  // 2000-01-01 UTC
	saneEpochSecMax int64 = 4102444800 // 2100-01-01 UTC
)

// NormalizeSeconds converts any stored time representation to epoch
// seconds. It is total: unparseable or implausible input yields the current
// time, never an error.
func NormalizeSeconds(raw interface{}) int64 {
	if t, ok := normalizeTime(raw); ok {
		return t.Unix()
	}
	return time.Now().Unix()
}

// NormalizeMillis converts any stored time representation to epoch
// milliseconds. Same heuristic and fallback as NormalizeSeconds.
func NormalizeMillis(raw interface{}) int64 {
	if t, ok := normalizeTime(raw); ok {
		return t.UnixMilli()
	}
	return time.Now().UnixMilli()
}

func normalizeTime(raw interface{}) (time.Time, bool) {
	switch v := raw.(type) {
	case nil:
		return time.Time{}, false
	case map[string]interface{}:
		// legacy serializer envelope: {date: ...} or {$date: ...}
		if inner, ok := v["date"]; ok {
			return normalizeTime(inner)
		}
		if inner, ok := v["$date"]; ok {
			return normalizeTime(inner)
		}
		return time.Time{}, false
	case time.Time:
		if v.IsZero() {
			return time.Time{}, false
		}
		return v, true
	case int:
		return normalizeEpoch(int64(v))
	case int32:
		return normalizeEpoch(int64(v))
	case int64:
		return normalizeEpoch(v)
	case float64:
		return normalizeEpoch(int64(v))
	case string:
		if v == "" {
			return time.Time{}, false
		}
		if n, err := strconv.ParseFloat(v, 64); err == nil {
			return normalizeEpoch(int64(n))
		}
		if t, err := dateparse.ParseAny(v); err == nil {
			return t, true
		}
		return time.Time{}, false
	default:
		return time.Time{}, false
	}
}

// normalizeEpoch decides whether n is epoch seconds or milliseconds. The
// two plausibility windows do not overlap, so the probe order does not
// matter.
func normalizeEpoch(n int64) (time.Time, bool) {
	if n >= saneEpochSecMin && n <= saneEpochSecMax {
		return time.Unix(n, 0), true
	}
	if sec := n / 1000; sec >= saneEpochSecMin && sec <= saneEpochSecMax {
		return time.UnixMilli(n), true
	}
	return time.Time{}, false
}
