package session

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func newTestRegistry(t *testing.T) (*Registry, func(d time.Duration)) {
	t.Helper()
	r := NewRegistry(30 * time.Minute)
	base := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	now := base
	r.nowFunc = func() time.Time { return now }
	advance := func(d time.Duration) { now = now.Add(d) }
	return r, advance
}

func TestSlidingExpiry(t *testing.T) {
	r, advance := newTestRegistry(t)
	userID := uuid.New()

	r.Create(userID, "tok")

	// touch di menit ke-29 menggeser window
	advance(29 * time.Minute)
	r.Touch(userID)

	advance(1 * time.Minute) // t=30m sejak create, 1m sejak touch
	assert.True(t, r.IsValid(userID), "window harus bergeser setelah Touch")

	// tanpa touch lagi, idle 31 menit → invalid + evicted
	advance(31 * time.Minute)
	assert.False(t, r.IsValid(userID))
	assert.Equal(t, 0, r.Len(), "IsValid harus meng-evict sesi expired (lazy)")

	// query berikutnya tetap tidak menemukan sesi
	assert.False(t, r.IsValid(userID))
}

func TestSingleSessionPerUser(t *testing.T) {
	r, _ := newTestRegistry(t)
	userID := uuid.New()

	r.Create(userID, "tok-1")
	s2 := r.Create(userID, "tok-2")

	assert.Equal(t, 1, r.Len(), "login kedua menimpa sesi pertama")
	assert.True(t, r.IsValid(userID))
	assert.Equal(t, "tok-2", s2.Token)
}

func TestTouchUnknownUserIsNoop(t *testing.T) {
	r, _ := newTestRegistry(t)
	r.Touch(uuid.New())
	assert.Equal(t, 0, r.Len())
}

func TestRemoveIsUnconditional(t *testing.T) {
	r, _ := newTestRegistry(t)
	userID := uuid.New()

	r.Remove(userID) // belum ada sesi, tetap tidak error

	r.Create(userID, "tok")
	r.Remove(userID)
	assert.False(t, r.IsValid(userID))
}

func TestSweepExpired(t *testing.T) {
	r, advance := newTestRegistry(t)

	stale := uuid.New()
	fresh := uuid.New()

	r.Create(stale, "a")
	advance(31 * time.Minute)
	r.Create(fresh, "b")

	n := r.SweepExpired()
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, r.Len())
	assert.True(t, r.IsValid(fresh))
	assert.False(t, r.IsValid(stale))
}

func TestSweeperStop(t *testing.T) {
	r := NewRegistry(time.Minute)
	stop := r.StartSweeper(10 * time.Millisecond)
	stop()
	stop() // idempotent
}
