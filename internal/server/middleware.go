package server

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type ctxKey int

const ctxKeyEngine ctxKey = iota

func engineMiddleware(engines *Registry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			spec, err := engines.Get(chi.URLParam(r, "engine"))
			if err != nil {
				writeError(w, http.StatusNotFound, "engine not found")
				return
			}

			ctx := context.WithValue(r.Context(), ctxKeyEngine, spec)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func engineFrom(r *http.Request) EngineSpec {
	return r.Context().Value(ctxKeyEngine).(EngineSpec)
}
