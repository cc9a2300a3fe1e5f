package convert

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestStrictNumber(t *testing.T) {
	t.Run("numbers and numeric strings", func(t *testing.T) {
		values := gjson.Parse(`[70, "80.5", " 65 ", -3e1]`).Array()
		want := []float64{70, 80.5, 65, -30}
		for i, v := range values {
			got, err := StrictNumber(v)
			require.NoError(t, err)
			assert.Equal(t, want[i], got)
		}
	})

	t.Run("rejects non numeric input", func(t *testing.T) {
		for _, raw := range []string{`"abc"`, `""`, `null`, `true`, `[1]`, `{"a":1}`} {
			_, err := StrictNumber(gjson.Parse(raw))
			assert.ErrorIs(t, err, ErrNotNumeric, raw)
		}
	})

	t.Run("rejects non finite strings", func(t *testing.T) {
		for _, raw := range []string{`"NaN"`, `"Infinity"`, `"-inf"`} {
			_, err := StrictNumber(gjson.Parse(raw))
			assert.ErrorIs(t, err, ErrNonFinite, raw)
		}
	})
}

func TestLooseNumber(t *testing.T) {
	assert.Equal(t, 0.0, LooseNumber(gjson.Parse(`null`)))
	assert.Equal(t, 0.0, LooseNumber(gjson.Parse(`"  "`)))
	assert.Equal(t, 1.0, LooseNumber(gjson.Parse(`true`)))
	assert.Equal(t, 72.25, LooseNumber(gjson.Parse(`"72.25"`)))
	assert.True(t, math.IsInf(LooseNumber(gjson.Parse(`"-Infinity"`)), -1))
	assert.True(t, math.IsNaN(LooseNumber(gjson.Parse(`"abc"`))))
	assert.True(t, math.IsNaN(LooseNumber(gjson.Parse(`"nan"`))))
	assert.True(t, math.IsNaN(LooseNumber(gjson.Parse(`{"x":1}`))))
}
