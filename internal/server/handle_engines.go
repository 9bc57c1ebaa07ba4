package server

import "net/http"

type EnginesResponse struct {
	Engines []string `json:"engines"`
}

func handleListEngines(engines *Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, EnginesResponse{Engines: engines.Names()})
	}
}
