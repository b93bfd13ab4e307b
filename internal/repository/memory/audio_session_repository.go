package memory

import (
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

// MaxSessionBytes bounds one voice session buffer (~25MB, the ASR upload limit)
const MaxSessionBytes = 25 * 1024 * 1024

// AudioSessionRepository buffers streamed audio per voice session.
// Abandoned buffers expire after 30 minutes.
type AudioSessionRepository struct {
	cache *cache.Cache
	mu    sync.Mutex
}

func NewAudioSessionRepository() *AudioSessionRepository {
	return &AudioSessionRepository{
		cache: cache.New(30*time.Minute, 5*time.Minute),
	}
}

// Create starts an empty buffer, replacing any previous one
func (r *AudioSessionRepository) Create(sessionID string) {
	r.cache.Set(sessionID, []byte{}, cache.DefaultExpiration)
}

// AddChunk appends audio and returns the buffered size.
// ok is false when the chunk would overflow MaxSessionBytes.
func (r *AudioSessionRepository) AddChunk(sessionID string, chunk []byte) (size int, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var buf []byte
	if x, found := r.cache.Get(sessionID); found {
		buf = x.([]byte)
	}
	if len(buf)+len(chunk) > MaxSessionBytes {
		return len(buf), false
	}
	buf = append(buf, chunk...)
	r.cache.Set(sessionID, buf, cache.DefaultExpiration)
	return len(buf), true
}

// Take returns the buffered audio and leaves an empty buffer behind
func (r *AudioSessionRepository) Take(sessionID string) []byte {
	r.mu.Lock()
	defer r.mu.Unlock()

	x, found := r.cache.Get(sessionID)
	if !found {
		return nil
	}
	r.cache.Set(sessionID, []byte{}, cache.DefaultExpiration)
	return x.([]byte)
}

func (r *AudioSessionRepository) Delete(sessionID string) {
	r.cache.Delete(sessionID)
}

// Count reports live sessions
func (r *AudioSessionRepository) Count() int {
	return r.cache.ItemCount()
}
