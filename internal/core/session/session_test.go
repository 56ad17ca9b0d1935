package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMemoryStore_MissingIsAnonymous(t *testing.T) {
	s := NewMemoryStore(time.Hour)
	st, err := s.Load(context.Background(), "nope")
	require.NoError(t, err)
	require.False(t, st.Authenticated())
	require.Zero(t, st.UserID())
}

func TestMemoryStore_SaveLoad(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(time.Hour)

	st := &State{}
	st.SetStateToken("ABC")
	st.SetIdentity(&Identity{UserID: 7, Username: "Bob", Provider: "google", AccessToken: "tok"})
	st.AddFlash("hello")
	require.True(t, st.Dirty())
	require.NoError(t, s.Save(ctx, "sid", st))

	got, err := s.Load(ctx, "sid")
	require.NoError(t, err)
	require.False(t, got.Dirty())
	require.Equal(t, "ABC", got.StateToken)
	require.Equal(t, uint(7), got.UserID())
	require.Equal(t, "tok", got.Identity.AccessToken)
	require.Equal(t, []string{"hello"}, got.PopFlashes())
	require.Nil(t, got.PopFlashes())

	require.NoError(t, s.Delete(ctx, "sid"))
	got, err = s.Load(ctx, "sid")
	require.NoError(t, err)
	require.Empty(t, got.StateToken)
}

func TestMemoryStore_Expires(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(time.Minute)
	now := time.Now()
	s.now = func() time.Time { return now }
	require.NoError(t, s.Save(ctx, "sid", &State{StateToken: "X"}))

	s.now = func() time.Time { return now.Add(2 * time.Minute) }
	got, err := s.Load(ctx, "sid")
	require.NoError(t, err)
	require.Empty(t, got.StateToken)
}

func TestMemoryStore_EmptySID(t *testing.T) {
	s := NewMemoryStore(time.Hour)
	_, err := s.Load(context.Background(), "")
	require.ErrorIs(t, err, ErrEmptySID)
	require.ErrorIs(t, s.Save(context.Background(), "", &State{}), ErrEmptySID)
}

func TestClearIdentity_KeepsStateToken(t *testing.T) {
	st := &State{StateToken: "T", Identity: &Identity{UserID: 1}}
	st.ClearIdentity()
	require.False(t, st.Authenticated())
	require.Equal(t, "T", st.StateToken)
}

func TestEncodeDecode_OmitsAnonymousIdentity(t *testing.T) {
	b, err := encode(&State{StateToken: "T"})
	require.NoError(t, err)
	require.JSONEq(t, `{"state":"T"}`, string(b))

	st, err := decode(b)
	require.NoError(t, err)
	require.Nil(t, st.Identity)
}
