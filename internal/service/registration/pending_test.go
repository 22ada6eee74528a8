package registration

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/secondhandhub/marketplace/internal/models"
)

func Test_PendingStore(t *testing.T) {
	t.Parallel()

	t.Run("put get remove", func(t *testing.T) {
		s := NewPendingStore()

		s.Put(models.PendingRegistration{Username: "nina", Email: "nina@example.com"})

		record, ok := s.Get("nina@example.com")
		require.True(t, ok)
		require.Equal(t, "nina", record.Username)
		require.False(t, record.CreatedAt.IsZero(), "created at should be set on put")

		s.Remove("nina@example.com")
		_, ok = s.Get("nina@example.com")
		require.False(t, ok)
		require.Equal(t, 0, s.Len())
	})

	t.Run("put overwrites by email", func(t *testing.T) {
		s := NewPendingStore()

		s.Put(models.PendingRegistration{Username: "nina", Email: "nina@example.com"})
		s.Put(models.PendingRegistration{Username: "nina-renamed", Email: "nina@example.com"})

		record, _ := s.Get("nina@example.com")
		require.Equal(t, "nina-renamed", record.Username)
		require.Equal(t, 1, s.Len())
	})

	t.Run("explicit created at kept", func(t *testing.T) {
		s := NewPendingStore()
		created := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

		s.Put(models.PendingRegistration{Email: "nina@example.com", CreatedAt: created})

		record, _ := s.Get("nina@example.com")
		require.Equal(t, created, record.CreatedAt)
	})

	t.Run("safe for concurrent use", func(t *testing.T) {
		s := NewPendingStore()

		var wg sync.WaitGroup
		for i := range 50 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				email := fmt.Sprintf("user%d@example.com", i)
				s.Put(models.PendingRegistration{Username: "user", Email: email})
				_, _ = s.Get(email)
			}()
		}
		wg.Wait()

		require.Equal(t, 50, s.Len())
	})
}
