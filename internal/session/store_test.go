package session

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/kisses-noo/rpp-lab/internal/domain"
)

func TestGetCreatesIdleSession(t *testing.T) {
	s := NewStore()

	sess := s.Get("u1")
	assert.Equal(t, "u1", sess.UserID)
	assert.Equal(t, domain.StateIdle, sess.State)
	assert.Empty(t, sess.Fields)
	assert.Equal(t, int64(0), sess.Version)
}

func TestCompareAndSetBumpsVersion(t *testing.T) {
	s := NewStore()

	sess := s.Get("u1")
	sess.State = domain.StateAwaitName
	sess.Fields["currency_name"] = "USD"

	assert.NoError(t, s.CompareAndSet("u1", sess.Version, sess))

	got := s.Get("u1")
	assert.Equal(t, int64(1), got.Version)
	assert.Equal(t, domain.StateAwaitName, got.State)
	assert.Equal(t, "USD", got.Fields["currency_name"])
}

func TestCompareAndSetRejectsStaleVersion(t *testing.T) {
	s := NewStore()

	first := s.Get("u1")
	second := s.Get("u1")

	assert.NoError(t, s.CompareAndSet("u1", first.Version, first))

	// The interleaved turn read the same version; its write must lose.
	err := s.CompareAndSet("u1", second.Version, second)
	assert.ErrorIs(t, err, ErrVersionConflict)
}

func TestGetReturnsACopy(t *testing.T) {
	s := NewStore()

	sess := s.Get("u1")
	sess.Fields["leak"] = "x"

	again := s.Get("u1")
	assert.Empty(t, again.Fields, "mutating a returned session must not affect the store")
}

func TestExpireStaleResetsOnlyStaleDialogues(t *testing.T) {
	now := time.Now()
	s := NewStore()
	s.now = func() time.Time { return now }

	// u1 is mid-workflow and stale, u2 is mid-workflow and fresh, u3 idle.
	for _, id := range []string{"u1", "u2", "u3"} {
		sess := s.Get(id)
		if id != "u3" {
			sess.State = domain.StateAwaitAmount
			sess.Fields["sum"] = "10"
		}
		if err := s.CompareAndSet(id, 0, sess); err != nil {
			t.Fatalf("seed %s: %v", id, err)
		}
	}

	s.now = func() time.Time { return now.Add(30 * time.Minute) }
	// Refresh u2 so only u1 goes stale.
	fresh := s.Get("u2")
	if err := s.CompareAndSet("u2", fresh.Version, fresh); err != nil {
		t.Fatalf("refresh u2: %v", err)
	}

	s.now = func() time.Time { return now.Add(40 * time.Minute) }
	assert.Equal(t, 1, s.ExpireStale(20*time.Minute))

	u1 := s.Get("u1")
	assert.Equal(t, domain.StateIdle, u1.State)
	assert.Empty(t, u1.Fields)

	u2 := s.Get("u2")
	assert.Equal(t, domain.StateAwaitAmount, u2.State)
}

func TestExpiryBumpsVersion(t *testing.T) {
	now := time.Now()
	s := NewStore()
	s.now = func() time.Time { return now }

	sess := s.Get("u1")
	sess.State = domain.StateAwaitDate
	if err := s.CompareAndSet("u1", 0, sess); err != nil {
		t.Fatal(err)
	}
	stale := s.Get("u1")

	s.now = func() time.Time { return now.Add(time.Hour) }
	s.ExpireStale(time.Minute)

	// A turn computed against the pre-expiry session must lose.
	err := s.CompareAndSet("u1", stale.Version, stale)
	assert.ErrorIs(t, err, ErrVersionConflict)
}

func TestConcurrentTurnsSerializePerUser(t *testing.T) {
	s := NewStore()
	const turns = 50

	var wg sync.WaitGroup
	for i := 0; i < turns; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				sess := s.Get("u1")
				if err := s.CompareAndSet("u1", sess.Version, sess); err == nil {
					return
				}
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(turns), s.Get("u1").Version)
}
