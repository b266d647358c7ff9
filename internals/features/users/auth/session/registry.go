// file: internals/features/users/auth/session/registry.go
package session

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultTimeout: idle window sesi (sliding, dihitung dari aktivitas terakhir).
const DefaultTimeout = 30 * time.Minute

// DefaultSweepInterval: jeda sweep background untuk sesi yang tidak pernah di-query.
const DefaultSweepInterval = 5 * time.Minute

type Session struct {
	UserID       uuid.UUID
	Token        string
	CreatedAt    time.Time
	LastActivity time.Time
}

// Registry menyimpan maksimal satu sesi aktif per user, in-memory
// (tidak bertahan melewati restart proses). Semua operasi aman dipanggil
// konkuren; tidak ada yang mengembalikan error — sesi yang tidak ada
// adalah kondisi valid, bukan kegagalan.
type Registry struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*Session
	timeout  time.Duration

	nowFunc func() time.Time // injectable untuk test
}

func NewRegistry(timeout time.Duration) *Registry {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Registry{
		sessions: make(map[uuid.UUID]*Session),
		timeout:  timeout,
		nowFunc:  time.Now,
	}
}

// Create membuat sesi baru untuk user; sesi lama (kalau ada) tertimpa
// begitu saja — login baru meng-invalidate login sebelumnya, bukan error.
func (r *Registry) Create(userID uuid.UUID, token string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.nowFunc()
	s := &Session{
		UserID:       userID,
		Token:        token,
		CreatedAt:    now,
		LastActivity: now,
	}
	r.sessions[userID] = s
	return s
}

// IsValid: sesi ada dan idle-nya belum melewati timeout. Kalau sudah
// lewat, sesi langsung di-evict di sini juga (lazy expiry) — sweep
// background hanya redundansi untuk sesi yang tidak pernah di-query.
func (r *Registry) IsValid(userID uuid.UUID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[userID]
	if !ok {
		return false
	}
	if r.nowFunc().Sub(s.LastActivity) > r.timeout {
		delete(r.sessions, userID)
		return false
	}
	return true
}

// Touch menggeser window idle; no-op kalau sesi tidak ada.
func (r *Registry) Touch(userID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[userID]; ok {
		s.LastActivity = r.nowFunc()
	}
}

// Remove: logout eksplisit; selalu berhasil.
func (r *Registry) Remove(userID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, userID)
}

// SweepExpired meng-evict semua sesi yang idle-nya melewati timeout,
// return jumlah yang dibuang.
func (r *Registry) SweepExpired() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.nowFunc()
	n := 0
	for id, s := range r.sessions {
		if now.Sub(s.LastActivity) > r.timeout {
			delete(r.sessions, id)
			n++
		}
	}
	return n
}

// Len: jumlah sesi yang tersimpan (termasuk yang expired tapi belum di-sweep).
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// StartSweeper menjalankan sweep tiap interval sampai stop dipanggil.
// Dipanggil sekali saat proses start; jangan diduplikasi.
func (r *Registry) StartSweeper(interval time.Duration) (stop func()) {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	done := make(chan struct{})
	ticker := time.NewTicker(interval)

	go func() {
		for {
			select {
			case <-ticker.C:
				if n := r.SweepExpired(); n > 0 {
					log.Printf("[CLEANUP] %d sesi kadaluarsa dihapus", n)
				}
			case <-done:
				ticker.Stop()
				return
			}
		}
	}()

	var once sync.Once
	return func() { once.Do(func() { close(done) }) }
}
