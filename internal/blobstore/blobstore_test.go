package blobstore

import (
	"context"
	"io"
	"net/url"
	"path"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDiskStore(t *testing.T) {
	ctx := context.Background()

	newStore := func(t *testing.T) *DiskStore {
		store, err := NewDiskStore(t.TempDir(), "http://media.test/")
		require.NoError(t, err)
		return store
	}

	storedName := func(t *testing.T, publicURL string) string {
		u, err := url.Parse(publicURL)
		require.NoError(t, err)
		return path.Base(u.Path)
	}

	t.Run("save and open round trip", func(t *testing.T) {
		store := newStore(t)

		publicURL, err := store.Save(ctx, "bike.PNG", strings.NewReader("image bytes"))

		require.NoError(t, err)
		require.True(t, strings.HasPrefix(publicURL, "http://media.test/"))
		require.True(t, strings.HasSuffix(publicURL, ".png"), "extension should be kept lowercased")

		f, err := store.Open(ctx, storedName(t, publicURL))
		require.NoError(t, err)
		defer f.Close() // nolint:errcheck

		content, err := io.ReadAll(f)
		require.NoError(t, err)
		require.Equal(t, "image bytes", string(content))
	})

	t.Run("saved names do not repeat", func(t *testing.T) {
		store := newStore(t)

		first, err := store.Save(ctx, "bike.png", strings.NewReader("one"))
		require.NoError(t, err)
		second, err := store.Save(ctx, "bike.png", strings.NewReader("two"))
		require.NoError(t, err)

		require.NotEqual(t, first, second)
	})

	t.Run("delete", func(t *testing.T) {
		store := newStore(t)

		publicURL, err := store.Save(ctx, "bike.png", strings.NewReader("image bytes"))
		require.NoError(t, err)
		name := storedName(t, publicURL)

		err = store.Delete(ctx, name)
		require.NoError(t, err)

		_, err = store.Open(ctx, name)
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("unknown name", func(t *testing.T) {
		store := newStore(t)

		_, err := store.Open(ctx, "nope.png")
		require.ErrorIs(t, err, ErrNotFound)

		err = store.Delete(ctx, "nope.png")
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("path-like names rejected", func(t *testing.T) {
		store := newStore(t)

		_, err := store.Open(ctx, "../secrets.txt")
		require.ErrorIs(t, err, ErrNotFound)

		err = store.Delete(ctx, "../secrets.txt")
		require.ErrorIs(t, err, ErrNotFound)
	})
}
