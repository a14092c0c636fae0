package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/zeno-studio/zeno-indexer/internal/domain"
)

// The feed endpoint multiplexes ingestion operations over one
// WebSocket connection, so fetchers can stream records without
// per-record HTTP overhead. Frames are JSON request/response pairs
// correlated by id.

const (
	feedWriteTimeout = 10 * time.Second
	feedReadTimeout  = 60 * time.Second
	feedPingInterval = 30 * time.Second
)

var feedUpgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
}

// FeedRequest is one inbound frame on the feed connection.
type FeedRequest struct {
	ID   uint64          `json:"id"`
	Op   string          `json:"op"`
	Data json.RawMessage `json:"data"`
}

// FeedResponse is the reply to one FeedRequest, matched by ID.
type FeedResponse struct {
	ID    uint64 `json:"id"`
	OK    bool   `json:"ok"`
	Data  any    `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	conn, err := feedUpgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Printf("feed upgrade: %v", err)
		return
	}
	defer conn.Close()

	var writeMu sync.Mutex
	writeFrame := func(resp FeedResponse) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		conn.SetWriteDeadline(time.Now().Add(feedWriteTimeout))
		return conn.WriteJSON(resp)
	}

	conn.SetReadDeadline(time.Now().Add(feedReadTimeout))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(feedReadTimeout))
		return nil
	})

	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(feedPingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				writeMu.Lock()
				conn.SetWriteDeadline(time.Now().Add(feedWriteTimeout))
				conn.WriteMessage(websocket.PingMessage, nil)
				writeMu.Unlock()
			}
		}
	}()

	for {
		var req FeedRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Printf("feed read: %v", err)
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(feedReadTimeout))

		data, err := s.dispatchFeed(r.Context(), &req)
		resp := FeedResponse{ID: req.ID, OK: err == nil, Data: data}
		if err != nil {
			resp.Error = err.Error()
		}
		if err := writeFrame(resp); err != nil {
			s.logger.Printf("feed write: %v", err)
			return
		}
	}
}

// dispatchFeed executes one feed operation against the service.
func (s *Server) dispatchFeed(ctx context.Context, req *FeedRequest) (any, error) {
	switch req.Op {
	case "submit_metadata":
		var body MetadataPatchRequest
		if err := json.Unmarshal(req.Data, &body); err != nil {
			return nil, fmt.Errorf("decode %s: %w", req.Op, err)
		}
		outcome, err := s.service.SubmitMetadata(ctx, body.toDomain())
		if err != nil {
			return nil, err
		}
		return toMergeOutcomeResponse(outcome), nil

	case "submit_snapshot":
		var body SnapshotRequest
		if err := json.Unmarshal(req.Data, &body); err != nil {
			return nil, fmt.Errorf("decode %s: %w", req.Op, err)
		}
		if err := s.service.SubmitMarketSnapshot(ctx, body.toDomain()); err != nil {
			return nil, err
		}
		return nil, nil

	case "submit_price":
		var body PricePointRequest
		if err := json.Unmarshal(req.Data, &body); err != nil {
			return nil, fmt.Errorf("decode %s: %w", req.Op, err)
		}
		outcome, err := s.service.SubmitPricePoint(ctx, body.Symbol, body.TimestampMs, body.Price)
		if err != nil {
			return nil, err
		}
		return toAppendOutcomeResponse(outcome), nil

	case "submit_ledger":
		var body LedgerRequest
		if err := json.Unmarshal(req.Data, &body); err != nil {
			return nil, fmt.Errorf("decode %s: %w", req.Op, err)
		}
		result, err := s.service.SubmitLedgerRecord(ctx, domain.LedgerKind(body.Kind), body.Key, body.Payload)
		if err != nil {
			return nil, err
		}
		return LedgerPutResponse{Inserted: result.Inserted}, nil

	case "resolve_identity":
		var body IdentityRequest
		if err := json.Unmarshal(req.Data, &body); err != nil {
			return nil, fmt.Errorf("decode %s: %w", req.Op, err)
		}
		entity, err := s.service.ResolveIdentity(ctx,
			domain.EntityKind(body.Kind), body.Address, body.ChainID, body.Symbol, body.Name)
		if err != nil {
			return nil, err
		}
		return toEntityResponse(entity), nil

	case "refresh_hotset":
		var body []HotSetEntryRequest
		if err := json.Unmarshal(req.Data, &body); err != nil {
			return nil, fmt.Errorf("decode %s: %w", req.Op, err)
		}
		entries := make([]*domain.HotSetEntry, 0, len(body))
		for i := range body {
			entries = append(entries, body[i].toDomain())
		}
		if err := s.service.RefreshHotSet(ctx, entries); err != nil {
			return nil, err
		}
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown op %q", req.Op)
	}
}
