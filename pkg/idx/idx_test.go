package idx_test

import (
	"testing"
	"time"

	"github.com/aussiebroadwan/aipface/pkg/idx"
	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	id := idx.New()
	require.False(t, id.IsZero())

	_, err := ulid.ParseStrict(id.String())
	require.NoError(t, err)
}

func TestZero(t *testing.T) {
	require.True(t, idx.Zero.IsZero())
}

func TestOrdering(t *testing.T) {
	a := idx.NewAt(time.Unix(1, 0).UTC())
	b := idx.NewAt(time.Unix(2, 0).UTC())

	require.Less(t, a.String(), b.String())
}

func TestNewAtEmbedsTime(t *testing.T) {
	tm := time.Unix(1700000000, 0).UTC()
	u := ulid.MustParseStrict(idx.NewAt(tm).String())

	require.Equal(t, ulid.Timestamp(tm), u.Time())
}
