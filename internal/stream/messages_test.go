package stream

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivanzxc/go-realtime-vitals/internal/signal"
)

func TestDecodeRateUpdate(t *testing.T) {
	u, err := DecodeRateUpdate([]byte(`{"hr": 110}`))
	require.NoError(t, err)

	got := u.Apply(signal.DefaultRates())
	assert.Equal(t, signal.Rates{HeartRate: 110, RespRate: 18}, got)

	_, err = DecodeRateUpdate([]byte(`{}`))
	assert.ErrorIs(t, err, signal.ErrInvalidParameter)

	_, err = DecodeRateUpdate([]byte(`not json`))
	assert.Error(t, err)
}

func TestVitalsMsgJSON(t *testing.T) {
	b := testBundle(t)
	src := uuid.New()

	data, err := Marshal(NewVitalsMsg(b, src))
	require.NoError(t, err)

	var back VitalsMsg
	require.NoError(t, Unmarshal(data, &back))
	assert.Equal(t, src.String(), back.Source)
	assert.Equal(t, b.Seq, back.Seq)
	assert.Equal(t, b.Vitals, back.Vitals)
	assert.Equal(t, "120/80 (93)", back.Display["nibp"])
}
