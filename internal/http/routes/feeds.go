package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sabbir-tanvir/storefront/cache"
)

type feedInfo struct {
	Name      string      `json:"name"`
	FetchedAt *time.Time  `json:"fetched_at"`
	Stats     cache.Stats `json:"stats"`
}

func (s *Server) handleProducts(w http.ResponseWriter, r *http.Request) {
	s.serveFeed(w, r, FeedProducts)
}

func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	s.serveFeed(w, r, chi.URLParam(r, "name"))
}

func (s *Server) serveFeed(w http.ResponseWriter, r *http.Request, name string) {
	f, ok := s.Feeds.Get(name)
	if !ok {
		writeError(w, r, http.StatusNotFound, "unknown feed "+name)
		return
	}
	limit, force, err := listParams(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	// the feed never fails; on backend trouble it serves stale or empty data
	writeJSON(w, r, http.StatusOK, f.Items(r.Context(), limit, force))
}

func (s *Server) handleFeedPeek(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	f, ok := s.Feeds.Get(name)
	if !ok {
		writeError(w, r, http.StatusNotFound, "unknown feed "+name)
		return
	}
	limit, _, err := listParams(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	items, ok := f.Peek(limit)
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, r, http.StatusOK, items)
}

func (s *Server) handleFeedList(w http.ResponseWriter, r *http.Request) {
	names := s.Feeds.List()
	out := make([]feedInfo, 0, len(names))
	for _, name := range names {
		f, ok := s.Feeds.Get(name)
		if !ok {
			continue
		}
		info := feedInfo{Name: name, Stats: f.Stats()}
		if at := f.FetchedAt(); !at.IsZero() {
			info.FetchedAt = &at
		}
		out = append(out, info)
	}
	writeJSON(w, r, http.StatusOK, out)
}

func (s *Server) handleFeedInvalidate(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	f, ok := s.Feeds.Get(name)
	if !ok {
		writeError(w, r, http.StatusNotFound, "unknown feed "+name)
		return
	}
	f.Invalidate()
	w.WriteHeader(http.StatusNoContent)
}
