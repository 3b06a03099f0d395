package webutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// maxBody caps POST bodies on the helper routes.
const maxBody = 1 << 20

// RegisterRoutes mounts the helper endpoints under /api/util.
func RegisterRoutes(r chi.Router, site Site) {
	r.Route("/api/util", func(r chi.Router) {
		r.Get("/image-url", handleImageURL(site))
		r.Get("/increment-filename", handleIncrementFilename)
		r.Get("/encode", handleEncode)
		r.Post("/query-string", handleJoin(BuildQueryString))
		r.Post("/window-options", handleJoin(BuildWindowOptions))
		r.Post("/strip-html", handleStripHTML)
	})
}

func handleImageURL(site Site) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		image := q.Get("image")
		if image == "" {
			http.Error(w, "image is required", http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{
			"url": ImageURL(site, image, q.Get("component")),
		})
	}
}

func handleIncrementFilename(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	name := q.Get("name")
	if name == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}
	ignore, _ := strconv.ParseBool(q.Get("ignore_extension"))
	writeJSON(w, http.StatusOK, map[string]string{
		"name": IncrementFilename(name, ignore),
	})
}

func handleEncode(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"value": EncodeURIComponent(r.URL.Query().Get("s")),
	})
}

// handleJoin decodes an ordered JSON array of {"name","value"} params and
// answers with join(params).
func handleJoin(join func([]Param) string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
		if err != nil {
			http.Error(w, "reading body", http.StatusBadRequest)
			return
		}
		dec := json.NewDecoder(bytes.NewReader(body))
		dec.UseNumber()
		var params []Param
		if err := dec.Decode(&params); err != nil {
			http.Error(w, "body must be a JSON array of {name, value}", http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"value": join(params)})
	}
}

func handleStripHTML(w http.ResponseWriter, r *http.Request) {
	var req struct {
		HTML string `json:"html"`
	}
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBody)).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"value": StripHTML(req.HTML)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
