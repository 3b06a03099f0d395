package catalog

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ziadkadry99/pageutil/internal/webutil"
)

// keyedParamPrefix marks query parameters that fill {$a->KEY}.
const keyedParamPrefix = "a."

// StringResponse is the JSON body returned for a single string.
type StringResponse struct {
	Identifier string `json:"identifier"`
	Component  string `json:"component"`
	Value      string `json:"value"`
	Format     string `json:"format"`
}

// stringRequest is the POST body: {"a": <anything>, "format": "html"}.
type stringRequest struct {
	A      json.RawMessage `json:"a"`
	Format string          `json:"format"`
}

// RegisterRoutes mounts the catalog endpoints under /api/strings. Extra
// middleware (request tracking) wraps the whole group.
func RegisterRoutes(r chi.Router, t *Table, middlewares ...func(http.Handler) http.Handler) {
	r.Route("/api/strings", func(r chi.Router) {
		r.Use(middlewares...)
		r.Get("/", handleComponents(t))
		r.Get("/{component}", handleComponent(t))
		r.Get("/{component}/{identifier}", handleGet(t))
		r.Post("/{component}/{identifier}", handlePost(t))
	})
}

func handleComponents(t *Table) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, t.Components())
	}
}

func handleComponent(t *Table) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		component, ok := pathParam(w, r, "component")
		if !ok {
			return
		}
		m := t.Component(component)
		if m == nil {
			http.Error(w, "unknown component", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, m)
	}
}

func handleGet(t *Table) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		component, identifier, ok := stringParams(w, r)
		if !ok {
			return
		}
		q := r.URL.Query()
		respond(w, t, component, identifier, SubstitutionFromQuery(q), q.Get("format"))
	}
}

func handlePost(t *Table) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		component, identifier, ok := stringParams(w, r)
		if !ok {
			return
		}
		var req stringRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		sub, err := DecodeSubstitution(req.A)
		if err != nil {
			http.Error(w, "invalid substitution", http.StatusBadRequest)
			return
		}
		respond(w, t, component, identifier, sub, req.Format)
	}
}

func respond(w http.ResponseWriter, t *Table, component, identifier string, sub Substitution, format string) {
	resp := StringResponse{Identifier: identifier, Component: component, Format: "text"}

	switch format {
	case "", "text":
		resp.Value = t.GetString(identifier, component, sub)
	case "plain":
		resp.Value = webutil.StripHTML(t.GetString(identifier, component, sub))
		resp.Format = "plain"
	case "html":
		html, err := t.RenderHTML(identifier, component, sub)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		resp.Value = html
		resp.Format = "html"
	default:
		http.Error(w, "format must be text, plain or html", http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// SubstitutionFromQuery reads a substitution from query parameters:
// "a" gives a Scalar, "a.KEY" parameters give a Keyed, neither gives
// None. A Scalar wins when both forms are present.
func SubstitutionFromQuery(q url.Values) Substitution {
	if q.Has("a") {
		return Scalar(q.Get("a"))
	}

	var keyed Keyed
	for name, vals := range q {
		if !strings.HasPrefix(name, keyedParamPrefix) || len(vals) == 0 {
			continue
		}
		if keyed == nil {
			keyed = make(Keyed)
		}
		keyed[strings.TrimPrefix(name, keyedParamPrefix)] = vals[0]
	}
	if keyed == nil {
		return None{}
	}
	return keyed
}

func stringParams(w http.ResponseWriter, r *http.Request) (component, identifier string, ok bool) {
	if component, ok = pathParam(w, r, "component"); !ok {
		return "", "", false
	}
	if identifier, ok = pathParam(w, r, "identifier"); !ok {
		return "", "", false
	}
	return component, identifier, true
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
