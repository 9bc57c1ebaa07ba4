package server

import (
	"encoding/json"
	"net/http"

	openapi "github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi3"

	"github.com/playperu/minigames/internal/handler/health"
	"github.com/playperu/minigames/internal/minigame"
)

// ErrorResponse is returned for all error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

type playPath struct {
	Engine string `path:"engine" description:"Engine family, e.g. quiz or sentence-order."`
}

type livePath struct {
	CreationID string `path:"creationID" description:"Game creation ID from INIT_GAME."`
}

func newOpenAPISpec() *openapi3.Spec {
	r := openapi3.NewReflector()
	r.Spec.Info.Title = "Mini-games API"
	r.Spec.Info.Version = "0.1.0"
	r.Spec.Info.WithDescription("Engine host for embedded mini-games. Sessions run over a websocket " +
		"carrying {type, payload} envelopes: INIT_GAME and USER_* from the host, " +
		"ENGINE_READY, VIEW_STATE, LIVE_ANSWER, LIVE_FINISH and GAME_COMPLETE from the engine.")

	// GET /healthz
	getHealthz, _ := r.NewOperationContext(http.MethodGet, "/healthz")
	getHealthz.SetSummary("Health check")
	getHealthz.SetDescription("Returns the health status of the engine registry and the live relay.")
	getHealthz.AddRespStructure(health.Response{}, openapi.WithHTTPStatus(http.StatusOK))
	getHealthz.AddRespStructure(health.Response{}, openapi.WithHTTPStatus(http.StatusServiceUnavailable))
	_ = r.AddOperation(getHealthz)

	// GET /api/engines
	getEngines, _ := r.NewOperationContext(http.MethodGet, "/api/engines")
	getEngines.SetSummary("List engines")
	getEngines.SetDescription("Returns the engine families that can be played.")
	getEngines.AddRespStructure(EnginesResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(getEngines)

	// GET /ws/play/{engine}
	getPlay, _ := r.NewOperationContext(http.MethodGet, "/ws/play/{engine}")
	getPlay.SetSummary("Play session")
	getPlay.SetDescription("Upgrades to a WebSocket running one engine session. " +
		"Send INIT_GAME with a game creation, then USER_ENTER and answers. " +
		"The engine answers with envelopes, GAME_COMPLETE being the authoritative result.")
	getPlay.AddReqStructure(playPath{})
	getPlay.AddRespStructure(minigame.GameComplete{}, openapi.WithHTTPStatus(http.StatusSwitchingProtocols))
	getPlay.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getPlay)

	// GET /api/live/{creationID}/events
	getLive, _ := r.NewOperationContext(http.MethodGet, "/api/live/{creationID}/events")
	getLive.SetSummary("Live event stream")
	getLive.SetDescription("Server-Sent Events stream of LIVE_ANSWER, LIVE_FINISH and GAME_COMPLETE " +
		"for every session of a creation. Best effort: slow clients miss events.")
	getLive.AddReqStructure(livePath{})
	getLive.AddRespStructure(LiveEvent{}, openapi.WithHTTPStatus(http.StatusOK),
		openapi.WithContentType("text/event-stream"))
	getLive.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusServiceUnavailable))
	_ = r.AddOperation(getLive)

	return r.Spec
}

func handleOpenAPI() http.HandlerFunc {
	spec := newOpenAPISpec()
	data, _ := json.MarshalIndent(spec, "", "  ")

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}
