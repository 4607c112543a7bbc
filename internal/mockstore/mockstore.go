// Package mockstore is an in-memory stand-in for the Remote Food Store.
// It speaks the same REST contract as the hosted mock API and stores
// request bodies verbatim, so inconsistent record shapes survive a round trip.
package mockstore

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// Store holds raw records in insertion order.
type Store struct {
	mu       sync.RWMutex
	resource string
	order    []string
	records  map[string]map[string]any
	failures map[string]int
	calls    map[string]int
	logger   *slog.Logger
	router   chi.Router
}

// New creates an empty store serving /{resource}.
func New(resource string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		resource: strings.Trim(resource, "/"),
		records:  make(map[string]map[string]any),
		failures: make(map[string]int),
		calls:    make(map[string]int),
		logger:   logger,
	}

	r := chi.NewRouter()
	r.Route("/"+s.resource, func(r chi.Router) {
		r.Get("/", s.list)
		r.Post("/", s.create)
		r.Get("/{id}", s.get)
		r.Put("/{id}", s.replace)
		r.Delete("/{id}", s.remove)
	})
	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Store) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.calls[r.Method]++
	if n := s.failures[r.Method]; n != 0 {
		if n > 0 {
			s.failures[r.Method] = n - 1
		}
		s.mu.Unlock()
		http.Error(w, "injected failure", http.StatusInternalServerError)
		return
	}
	s.mu.Unlock()

	s.router.ServeHTTP(w, r)
}

// Seed inserts raw records. Records without an id get one assigned.
func (s *Store) Seed(records ...map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range records {
		s.insertLocked(copyRecord(rec))
	}
}

// FailNext makes the next n requests with the given method fail with 500.
// A negative n fails every request until Reset.
func (s *Store) FailNext(method string, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method] = n
}

// Reset clears injected failures and call counters.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = make(map[string]int)
	s.calls = make(map[string]int)
}

// Calls returns how many requests with the given method reached the store.
func (s *Store) Calls(method string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.calls[method]
}

// Record returns a copy of the stored record.
func (s *Store) Record(id string) (map[string]any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[id]
	if !ok {
		return nil, false
	}
	return copyRecord(rec), true
}

// Len returns the number of stored records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

func (s *Store) list(w http.ResponseWriter, r *http.Request) {
	name := strings.ToLower(r.URL.Query().Get("name"))

	s.mu.RLock()
	out := make([]map[string]any, 0, len(s.order))
	for _, id := range s.order {
		rec := s.records[id]
		if name != "" {
			recName, _ := rec["name"].(string)
			if !strings.Contains(strings.ToLower(recName), name) {
				continue
			}
		}
		out = append(out, copyRecord(rec))
	}
	s.mu.RUnlock()

	// The hosted mock answers an unmatched filter with 404.
	if name != "" && len(out) == 0 {
		s.writeJSON(w, http.StatusNotFound, "Not found")
		return
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Store) get(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.Record(chi.URLParam(r, "id"))
	if !ok {
		s.writeJSON(w, http.StatusNotFound, "Not found")
		return
	}
	s.writeJSON(w, http.StatusOK, rec)
}

func (s *Store) create(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeJSON(w, http.StatusBadRequest, "Invalid body")
		return
	}
	delete(body, "id")

	s.mu.Lock()
	rec := s.insertLocked(body)
	out := copyRecord(rec)
	s.mu.Unlock()

	s.writeJSON(w, http.StatusCreated, out)
}

// replace merges top-level fields; nested objects are replaced whole.
func (s *Store) replace(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeJSON(w, http.StatusBadRequest, "Invalid body")
		return
	}

	s.mu.Lock()
	rec, ok := s.records[id]
	if !ok {
		s.mu.Unlock()
		s.writeJSON(w, http.StatusNotFound, "Not found")
		return
	}
	for k, v := range body {
		if k == "id" {
			continue
		}
		rec[k] = v
	}
	out := copyRecord(rec)
	s.mu.Unlock()

	s.writeJSON(w, http.StatusOK, out)
}

func (s *Store) remove(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	rec, ok := s.records[id]
	if ok {
		delete(s.records, id)
		for i, existing := range s.order {
			if existing == id {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
	}
	s.mu.Unlock()

	if !ok {
		s.writeJSON(w, http.StatusNotFound, "Not found")
		return
	}
	s.writeJSON(w, http.StatusOK, rec)
}

func (s *Store) insertLocked(rec map[string]any) map[string]any {
	id, _ := rec["id"].(string)
	if id == "" {
		id = uuid.NewString()
		rec["id"] = id
	}
	if _, exists := s.records[id]; !exists {
		s.order = append(s.order, id)
	}
	s.records[id] = rec
	return rec
}

func (s *Store) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to encode mock store response", "error", err)
	}
}

// copyRecord deep-copies nested maps so callers cannot mutate stored state.
func copyRecord(rec map[string]any) map[string]any {
	out := make(map[string]any, len(rec))
	for k, v := range rec {
		if nested, ok := v.(map[string]any); ok {
			out[k] = copyRecord(nested)
			continue
		}
		out[k] = v
	}
	return out
}
