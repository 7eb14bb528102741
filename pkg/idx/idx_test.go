package idx_test

import (
	"testing"
	"time"

	"github.com/aussiebroadwan/tenancy/pkg/idx"
	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/require"
)

func TestNewIsCanonicalULID(t *testing.T) {
	id := idx.New()
	require.Len(t, id.String(), ulid.EncodedSize)

	_, err := ulid.ParseStrict(id.String())
	require.NoError(t, err)
	require.NotEqual(t, id, idx.New())
}

func TestOrdering(t *testing.T) {
	a := idx.NewAt(time.Unix(1, 0))
	b := idx.NewAt(time.Unix(2, 0))

	// ULIDs sort by time, which the store relies on for tie breaks
	require.Less(t, a.String(), b.String())
}

func TestNewAtStampsTime(t *testing.T) {
	tm := time.Unix(1700000000, 0).UTC()
	u, err := ulid.ParseStrict(idx.NewAt(tm).String())
	require.NoError(t, err)
	require.WithinDuration(t, tm, ulid.Time(u.Time()), time.Millisecond)
}
