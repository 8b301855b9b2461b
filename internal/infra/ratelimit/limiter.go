package ratelimit

import (
	"sync"
	"time"
)

// Limiter decideix si una petició d'un client es pot atendre ara.
// Implementacions: finestra lliscant en memòria (per defecte) o Redis
// quan cal compartir el comptador entre instàncies.
type Limiter interface {
	Allow(id string) bool
}

// SlidingWindow compta les peticions de cada client dins de la finestra
// dels últims `window`. Una petició rebutjada no es registra.
type SlidingWindow struct {
	mu     sync.Mutex
	hits   map[string][]time.Time
	limit  int
	window time.Duration
	now    func() time.Time
}

func NewSlidingWindow(limit int, window time.Duration) *SlidingWindow {
	sw := &SlidingWindow{
		hits:   make(map[string][]time.Time),
		limit:  limit,
		window: window,
		now:    time.Now,
	}

	go sw.cleanup()
	return sw
}

// Allow fa el check-and-record sencer sota el mutex, així la decisió
// i el registre són atòmics encara que el servidor atengui peticions
// en paral·lel.
func (sw *SlidingWindow) Allow(id string) bool {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	now := sw.now()
	cutoff := now.Add(-sw.window)

	kept := sw.hits[id][:0]
	for _, t := range sw.hits[id] {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}

	if len(kept) >= sw.limit {
		sw.hits[id] = kept
		return false
	}

	sw.hits[id] = append(kept, now)
	return true
}

func (sw *SlidingWindow) cleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		sw.mu.Lock()
		cutoff := sw.now().Add(-sw.window * 2)
		for id, times := range sw.hits {
			if len(times) == 0 || times[len(times)-1].Before(cutoff) {
				delete(sw.hits, id)
			}
		}
		sw.mu.Unlock()
	}
}
