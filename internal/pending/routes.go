package pending

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

// DefaultWaitTimeout bounds /api/pending/wait when no timeout is given.
const DefaultWaitTimeout = 10 * time.Second

// maxWaitTimeout keeps long-polls below the server's write timeout.
const maxWaitTimeout = 60 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Status is the JSON body returned by the pending endpoints.
type Status struct {
	Count   int      `json:"count"`
	Pending []string `json:"pending,omitempty"`
}

// RegisterRoutes mounts the registry endpoints under /api/pending.
func RegisterRoutes(r chi.Router, reg *Registry) {
	r.Route("/api/pending", func(r chi.Router) {
		r.Get("/", handleStatus(reg))
		r.Get("/wait", handleWait(reg))
		r.Get("/watch", handleWatch(reg))
		r.Post("/{id}", handleBegin(reg))
		r.Delete("/{id}", handleEnd(reg))
	})
}

func handleStatus(reg *Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ids := reg.Pending()
		writeJSON(w, http.StatusOK, Status{Count: len(ids), Pending: ids})
	}
}

func handleBegin(reg *Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathParam(w, r, "id")
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, Status{Count: reg.Begin(id)})
	}
}

func handleEnd(reg *Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathParam(w, r, "id")
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, Status{Count: reg.End(id)})
	}
}

func handleWait(reg *Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		timeout := DefaultWaitTimeout
		if v := r.URL.Query().Get("timeout"); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil || d < 0 {
				http.Error(w, "invalid timeout", http.StatusBadRequest)
				return
			}
			timeout = d
		}
		if timeout > maxWaitTimeout {
			timeout = maxWaitTimeout
		}

		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		if err := reg.WaitIdle(ctx); err != nil {
			writeJSON(w, http.StatusRequestTimeout, Status{Count: reg.Count(), Pending: reg.Pending()})
			return
		}
		writeJSON(w, http.StatusOK, Status{Count: 0})
	}
}

// handleWatch streams the pending count over a websocket: once on
// connect and again after every change.
func handleWatch(reg *Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.WithError(err).Warn("pending: websocket upgrade")
			return
		}
		defer conn.Close()

		ch, cancel := reg.Subscribe()
		defer cancel()

		// The reader only exists to notice the client going away.
		closed := make(chan struct{})
		go func() {
			defer close(closed)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
						log.WithError(err).Warn("pending: websocket read")
					}
					return
				}
			}
		}()

		if err := conn.WriteJSON(Status{Count: reg.Count()}); err != nil {
			return
		}
		for {
			select {
			case <-closed:
				return
			case n, ok := <-ch:
				if !ok {
					return
				}
				if err := conn.WriteJSON(Status{Count: n}); err != nil {
					return
				}
			}
		}
	}
}

// pathParam returns the decoded URL parameter name. chi matches on the
// escaped path whenever the request has one, so the segment may still
// carry percent escapes. A bad escape is answered with 400.
func pathParam(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	v := chi.URLParam(r, name)
	if r.URL.RawPath == "" {
		return v, true
	}
	decoded, err := url.PathUnescape(v)
	if err != nil {
		http.Error(w, "invalid "+name, http.StatusBadRequest)
		return "", false
	}
	return decoded, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
