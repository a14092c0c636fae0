// Package api exposes the ingestion core over HTTP and WebSocket.
// Fetchers submit records through it; read endpoints serve the
// reconciled state back.
package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/zeno-studio/zeno-indexer/internal/domain"
	"github.com/zeno-studio/zeno-indexer/internal/ingest"
	"github.com/zeno-studio/zeno-indexer/internal/storage"
)

// Server routes HTTP requests to the ingestion service.
type Server struct {
	service *ingest.Service
	logger  *log.Logger
}

// NewServer creates a new API server around the service.
func NewServer(service *ingest.Service, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{service: service, logger: logger}
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	mux.HandleFunc("POST /v1/chains", s.handleAddChain)
	mux.HandleFunc("GET /v1/chains", s.handleListChains)

	mux.HandleFunc("POST /v1/identities", s.handleResolveIdentity)

	mux.HandleFunc("POST /v1/metadata", s.handleSubmitMetadata)
	mux.HandleFunc("GET /v1/metadata", s.handleGetMetadata)

	mux.HandleFunc("POST /v1/market", s.handleSubmitSnapshot)
	mux.HandleFunc("GET /v1/market/{token_id}", s.handleGetSnapshot)

	mux.HandleFunc("POST /v1/prices", s.handleSubmitPricePoint)
	mux.HandleFunc("GET /v1/prices/{symbol}/ring", s.handleGetPriceRing)
	mux.HandleFunc("GET /v1/prices/{symbol}/daily", s.handleGetDailySeries)

	mux.HandleFunc("POST /v1/ledger", s.handleSubmitLedger)
	mux.HandleFunc("GET /v1/ledger/{kind}/{key}", s.handleGetLedger)

	mux.HandleFunc("PUT /v1/hotset", s.handleRefreshHotSet)
	mux.HandleFunc("GET /v1/hotset", s.handleListHotSet)

	mux.HandleFunc("GET /v1/feed", s.handleFeed)

	return mux
}

func (s *Server) handleAddChain(w http.ResponseWriter, r *http.Request) {
	var req ChainRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.service.AddChain(r.Context(), req.ChainID, req.Name); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListChains(w http.ResponseWriter, r *http.Request) {
	chains, err := s.service.ListChains(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	out := make([]ChainResponse, 0, len(chains))
	for _, c := range chains {
		out = append(out, toChainResponse(c))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleResolveIdentity(w http.ResponseWriter, r *http.Request) {
	var req IdentityRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	entity, err := s.service.ResolveIdentity(r.Context(),
		domain.EntityKind(req.Kind), req.Address, req.ChainID, req.Symbol, req.Name)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toEntityResponse(entity))
}

func (s *Server) handleSubmitMetadata(w http.ResponseWriter, r *http.Request) {
	var req MetadataPatchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	outcome, err := s.service.SubmitMetadata(r.Context(), req.toDomain())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toMergeOutcomeResponse(outcome))
}

func (s *Server) handleGetMetadata(w http.ResponseWriter, r *http.Request) {
	address := r.URL.Query().Get("address")
	chainID, err := strconv.ParseInt(r.URL.Query().Get("chain_id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.New("chain_id must be an integer"))
		return
	}
	m, err := s.service.GetMetadata(r.Context(), address, chainID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toMetadataResponse(m))
}

func (s *Server) handleSubmitSnapshot(w http.ResponseWriter, r *http.Request) {
	var req SnapshotRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.service.SubmitMarketSnapshot(r.Context(), req.toDomain()); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := s.service.GetMarketSnapshot(r.Context(), r.PathValue("token_id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSnapshotResponse(snap))
}

func (s *Server) handleSubmitPricePoint(w http.ResponseWriter, r *http.Request) {
	var req PricePointRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	outcome, err := s.service.SubmitPricePoint(r.Context(), req.Symbol, req.TimestampMs, req.Price)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAppendOutcomeResponse(outcome))
}

func (s *Server) handleGetPriceRing(w http.ResponseWriter, r *http.Request) {
	ring, err := s.service.GetPriceRing(r.Context(), r.PathValue("symbol"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, PriceRingResponse{Symbol: ring.Symbol, Points: ring.Points})
}

func (s *Server) handleGetDailySeries(w http.ResponseWriter, r *http.Request) {
	series, err := s.service.GetDailySeries(r.Context(), r.PathValue("symbol"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	out := make([]DailyPriceResponse, 0, len(series))
	for _, d := range series {
		out = append(out, toDailyPriceResponse(d))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleSubmitLedger(w http.ResponseWriter, r *http.Request) {
	var req LedgerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	result, err := s.service.SubmitLedgerRecord(r.Context(),
		domain.LedgerKind(req.Kind), req.Key, req.Payload)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	status := http.StatusOK
	if result.Inserted {
		status = http.StatusCreated
	}
	writeJSON(w, status, LedgerPutResponse{Inserted: result.Inserted})
}

func (s *Server) handleGetLedger(w http.ResponseWriter, r *http.Request) {
	record, err := s.service.GetLedgerRecord(r.Context(),
		domain.LedgerKind(r.PathValue("kind")), r.PathValue("key"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toLedgerResponse(record))
}

func (s *Server) handleRefreshHotSet(w http.ResponseWriter, r *http.Request) {
	var req []HotSetEntryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	entries := make([]*domain.HotSetEntry, 0, len(req))
	for i := range req {
		entries = append(entries, req[i].toDomain())
	}
	if err := s.service.RefreshHotSet(r.Context(), entries); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListHotSet(w http.ResponseWriter, r *http.Request) {
	entries, err := s.service.ListHotSet(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	out := make([]HotSetEntryRequest, 0, len(entries))
	for _, e := range entries {
		out = append(out, toHotSetEntryResponse(e))
	}
	writeJSON(w, http.StatusOK, out)
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

// writeServiceError maps core errors to HTTP status codes. Anything not
// recognized is treated as a storage-layer failure.
func writeServiceError(w http.ResponseWriter, err error) {
	writeError(w, statusFor(err), err)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, storage.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, storage.ErrIdentityConflict),
		errors.Is(err, storage.ErrVersionConflict):
		return http.StatusConflict
	default:
		return http.StatusServiceUnavailable
	}
}
