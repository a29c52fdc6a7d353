package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSignedURLSignerGenerateAndParse(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Hour)
	token, expiresAt, err := signer.Generate("session-1", "session-1/class-3.pdf")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	file, err := signer.Parse(token)
	require.NoError(t, err)
	require.Equal(t, "session-1", file.Owner)
	require.Equal(t, "session-1/class-3.pdf", file.Path)
	require.WithinDuration(t, expiresAt, file.ExpiresAt, time.Second)
}

func TestSignedURLSignerExpired(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Minute)
	token, _, err := signer.Generate("session-1", "a.csv")
	require.NoError(t, err)

	signer.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	_, err = signer.Parse(token)
	require.Error(t, err)
}

func TestSignedURLSignerTampered(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Hour)
	token, _, err := signer.Generate("session-1", "a.csv")
	require.NoError(t, err)

	other := NewSignedURLSigner("other", time.Hour)
	_, err = other.Parse(token)
	require.Error(t, err)
	_, err = signer.Parse("garbage")
	require.Error(t, err)
}

func TestLocalStorageRoundTrip(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	name, err := store.Save("session-1/grid.csv", []byte("a,b\n"))
	require.NoError(t, err)
	data, err := store.Read(name)
	require.NoError(t, err)
	require.Equal(t, "a,b\n", string(data))

	_, err = store.Save("../escape.csv", []byte("x"))
	require.Error(t, err)

	require.NoError(t, store.Delete(name))
	_, err = store.Read(name)
	require.Error(t, err)
}
