package feed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeEpochSeconds(t *testing.T) {
	// 2021-05-30 06:00:25 UTC
	assert.Equal(t, int64(1622354425), NormalizeSeconds(int64(1622354425)))
	assert.Equal(t, int64(1622354425), NormalizeSeconds(float64(1622354425)))
	assert.Equal(t, int64(1622354425), NormalizeSeconds("1622354425"))
}

func TestNormalizeEpochMillis(t *testing.T) {
	assert.Equal(t, int64(1622354425000), NormalizeMillis(int64(1622354425000)))
	// seconds in, millis out
	assert.Equal(t, int64(1622354425000), NormalizeMillis(int64(1622354425)))
	// millis in, seconds out
	assert.Equal(t, int64(1622354425), NormalizeSeconds(int64(1622354425000)))
}

func TestNormalizeEnvelope(t *testing.T) {
	assert.Equal(t, int64(1622354425000), NormalizeMillis(map[string]interface{}{"date": int64(1622354425000)}))
	assert.Equal(t, int64(1622354425000), NormalizeMillis(map[string]interface{}{"$date": "1622354425"}))
	// nested envelope
	assert.Equal(t, int64(1622354425), NormalizeSeconds(map[string]interface{}{
		"date": map[string]interface{}{"$date": int64(1622354425)},
	}))
}

func TestNormalizeTimeValues(t *testing.T) {
	ts := time.Date(2021, 5, 30, 6, 0, 25, 0, time.UTC)
	assert.Equal(t, ts.Unix(), NormalizeSeconds(ts))
	assert.Equal(t, ts.UnixMilli(), NormalizeMillis(ts))
	assert.Equal(t, ts.Unix(), NormalizeSeconds("2021-05-30T06:00:25Z"))
}

func TestNormalizeFallsBackToNow(t *testing.T) {
	cases := []interface{}{
		nil,
		"",
		"not a date at all %%%",
		int64(12345), // pre-2000 either way
		int64(0),
		map[string]interface{}{"unrelated": 1},
		struct{}{},
	}
	for _, raw := range cases {
		before := time.Now().Unix()
		got := NormalizeSeconds(raw)
		after := time.Now().Unix()
		require.GreaterOrEqual(t, got, before, "input %v", raw)
		require.LessOrEqual(t, got, after, "input %v", raw)
	}
}

func TestNormalizeIsTotal(t *testing.T) {
	// every output lands in the sanity window, whatever the input
	inputs := []interface{}{
		int64(1622354425), int64(1622354425000), "2021-05-30", "garbage", nil,
		float64(99), map[string]interface{}{"date": nil},
	}
	for _, raw := range inputs {
		sec := NormalizeSeconds(raw)
		assert.GreaterOrEqual(t, sec, saneEpochSecMin, "input %v", raw)
		assert.LessOrEqual(t, sec, saneEpochSecMax, "input %v", raw)
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	normalized := NormalizeMillis(int64(1622354425))
	assert.Equal(t, normalized, NormalizeMillis(normalized))

	sec := NormalizeSeconds(int64(1622354425000))
	assert.Equal(t, sec, NormalizeSeconds(sec))
}
