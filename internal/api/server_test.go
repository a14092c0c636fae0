package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeno-studio/zeno-indexer/internal/ingest"
	"github.com/zeno-studio/zeno-indexer/internal/storage/memory"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	clock := int64(1700000000000)
	svc := ingest.NewService(ingest.ServiceOptions{
		Chains:    memory.NewChainStore(),
		Entities:  memory.NewEntityStore(),
		Metadata:  memory.NewMetadataStore(),
		Snapshots: memory.NewMarketSnapshotStore(),
		Rings:     memory.NewPriceRingStore(),
		Daily:     memory.NewPriceDailyStore(),
		Ledger:    memory.NewLedgerStore(),
		HotSet:    memory.NewHotSetStore(),
		Now: func() int64 {
			clock += 1000
			return clock
		},
	})
	require.NoError(t, svc.AddChain(context.Background(), 1, "ethereum"))

	ts := httptest.NewServer(NewServer(svc, nil).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, method, url string, body any) (*http.Response, []byte) {
	t.Helper()

	var buf io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		buf = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, url, buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)

	resp, body := doJSON(t, http.MethodGet, ts.URL+"/health", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", string(body))
}

func TestChains(t *testing.T) {
	ts := newTestServer(t)

	resp, _ := doJSON(t, http.MethodPost, ts.URL+"/v1/chains", ChainRequest{ChainID: 137, Name: "polygon"})
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, body := doJSON(t, http.MethodGet, ts.URL+"/v1/chains", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var chains []ChainResponse
	require.NoError(t, json.Unmarshal(body, &chains))
	assert.Len(t, chains, 2)
}

func TestResolveIdentity(t *testing.T) {
	ts := newTestServer(t)

	req := IdentityRequest{Kind: "token", Address: "0xAbC", ChainID: 1, Symbol: "FOO", Name: "Foo"}
	resp, body := doJSON(t, http.MethodPost, ts.URL+"/v1/identities", req)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var first EntityResponse
	require.NoError(t, json.Unmarshal(body, &first))
	assert.Equal(t, "0xabc", first.Address)
	assert.NotZero(t, first.EntityID)

	_, body = doJSON(t, http.MethodPost, ts.URL+"/v1/identities", req)
	var second EntityResponse
	require.NoError(t, json.Unmarshal(body, &second))
	assert.Equal(t, first.EntityID, second.EntityID)
}

func TestMetadataRoundTrip(t *testing.T) {
	ts := newTestServer(t)

	patch := map[string]any{
		"source": "onchain", "address": "0xabc", "chain_id": 1,
		"symbol": "FOO", "decimals": 18,
	}
	resp, body := doJSON(t, http.MethodPost, ts.URL+"/v1/metadata", patch)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var outcome MergeOutcomeResponse
	require.NoError(t, json.Unmarshal(body, &outcome))
	assert.True(t, outcome.Created)
	assert.ElementsMatch(t, []string{"symbol", "decimals"}, outcome.Applied)

	resp, body = doJSON(t, http.MethodGet, ts.URL+"/v1/metadata?address=0xABC&chain_id=1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var m MetadataResponse
	require.NoError(t, json.Unmarshal(body, &m))
	require.NotNil(t, m.Symbol)
	assert.Equal(t, "FOO", *m.Symbol)
	require.NotNil(t, m.Decimals)
	assert.Equal(t, 18, *m.Decimals)
	assert.Equal(t, "onchain", m.FieldSources["symbol"])
	// Name was never submitted and must not appear as set
	assert.Nil(t, m.Name)
}

func TestMetadata_AbsentKeysStayUnset(t *testing.T) {
	ts := newTestServer(t)

	doJSON(t, http.MethodPost, ts.URL+"/v1/metadata", map[string]any{
		"source": "curated", "address": "0xabc", "chain_id": 1, "name": "Foo Token",
	})
	// Second patch omits name entirely; the stored name must survive
	doJSON(t, http.MethodPost, ts.URL+"/v1/metadata", map[string]any{
		"source": "onchain", "address": "0xabc", "chain_id": 1, "symbol": "FOO",
	})

	_, body := doJSON(t, http.MethodGet, ts.URL+"/v1/metadata?address=0xabc&chain_id=1", nil)
	var m MetadataResponse
	require.NoError(t, json.Unmarshal(body, &m))
	require.NotNil(t, m.Name)
	assert.Equal(t, "Foo Token", *m.Name)
	require.NotNil(t, m.Symbol)
	assert.Equal(t, "FOO", *m.Symbol)
}

func TestMarketSnapshot(t *testing.T) {
	ts := newTestServer(t)

	mcap := 408_000_000_000.0
	resp, _ := doJSON(t, http.MethodPost, ts.URL+"/v1/market", SnapshotRequest{
		TokenID: "ethereum", Symbol: "eth", Name: "Ethereum", MarketCap: &mcap,
	})
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, body := doJSON(t, http.MethodGet, ts.URL+"/v1/market/ethereum", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var snap SnapshotRequest
	require.NoError(t, json.Unmarshal(body, &snap))
	require.NotNil(t, snap.MarketCap)
	assert.Equal(t, mcap, *snap.MarketCap)
	assert.Nil(t, snap.MaxSupply)

	resp, _ = doJSON(t, http.MethodGet, ts.URL+"/v1/market/unknown", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestPriceEndpoints(t *testing.T) {
	ts := newTestServer(t)

	base := int64(1700000000000)
	for i := 0; i < 3; i++ {
		resp, body := doJSON(t, http.MethodPost, ts.URL+"/v1/prices", PricePointRequest{
			Symbol: "ETH", TimestampMs: base + int64(i)*1000, Price: 3400.0 + float64(i),
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var outcome AppendOutcomeResponse
		require.NoError(t, json.Unmarshal(body, &outcome))
		assert.False(t, outcome.RingDropped)
		assert.True(t, outcome.DailyUpdated)
	}

	resp, body := doJSON(t, http.MethodGet, ts.URL+"/v1/prices/ETH/ring", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var ring PriceRingResponse
	require.NoError(t, json.Unmarshal(body, &ring))
	assert.Len(t, ring.Points, 3)

	resp, body = doJSON(t, http.MethodGet, ts.URL+"/v1/prices/ETH/daily", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var daily []DailyPriceResponse
	require.NoError(t, json.Unmarshal(body, &daily))
	require.Len(t, daily, 1)
	assert.Equal(t, "2023-11-14", daily[0].Day)
	assert.Equal(t, 3402.0, daily[0].Price)
}

func TestLedgerEndpoints(t *testing.T) {
	ts := newTestServer(t)

	resp, body := doJSON(t, http.MethodPost, ts.URL+"/v1/ledger", LedgerRequest{
		Kind: "block", Key: "18000000", Payload: json.RawMessage(`{"hash":"0xaa"}`),
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var put LedgerPutResponse
	require.NoError(t, json.Unmarshal(body, &put))
	assert.True(t, put.Inserted)

	// Replay returns 200 with inserted=false
	resp, body = doJSON(t, http.MethodPost, ts.URL+"/v1/ledger", LedgerRequest{
		Kind: "block", Key: "18000000", Payload: json.RawMessage(`{"hash":"0xbb"}`),
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &put))
	assert.False(t, put.Inserted)

	resp, body = doJSON(t, http.MethodGet, ts.URL+"/v1/ledger/block/18000000", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var record LedgerResponse
	require.NoError(t, json.Unmarshal(body, &record))
	assert.JSONEq(t, `{"hash":"0xaa"}`, string(record.Payload))
}

func TestHotSetEndpoints(t *testing.T) {
	ts := newTestServer(t)

	entries := []HotSetEntryRequest{
		{Rank: 2, TokenID: "ethereum", Symbol: "ETH", Name: "Ethereum"},
		{Rank: 1, TokenID: "bitcoin", Symbol: "BTC", Name: "Bitcoin"},
	}
	resp, _ := doJSON(t, http.MethodPut, ts.URL+"/v1/hotset", entries)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, body := doJSON(t, http.MethodGet, ts.URL+"/v1/hotset", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list []HotSetEntryRequest
	require.NoError(t, json.Unmarshal(body, &list))
	require.Len(t, list, 2)
	assert.Equal(t, "bitcoin", list[0].TokenID)
	assert.NotZero(t, list[0].LastSynced)
}

func TestErrorMapping(t *testing.T) {
	ts := newTestServer(t)

	cases := []struct {
		name   string
		method string
		path   string
		body   any
		status int
	}{
		{"invalid_patch", http.MethodPost, "/v1/metadata",
			map[string]any{"source": "forum", "address": "0xabc", "chain_id": 1}, http.StatusBadRequest},
		{"unknown_chain_identity", http.MethodPost, "/v1/identities",
			IdentityRequest{Kind: "token", Address: "0xabc", ChainID: 999, Symbol: "S", Name: "N"}, http.StatusBadRequest},
		{"metadata_not_found", http.MethodGet, "/v1/metadata?address=0xmissing&chain_id=1", nil, http.StatusNotFound},
		{"bad_chain_id_param", http.MethodGet, "/v1/metadata?address=0xabc&chain_id=abc", nil, http.StatusBadRequest},
		{"malformed_body", http.MethodPost, "/v1/prices", nil, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, body := doJSON(t, tc.method, ts.URL+tc.path, tc.body)
			assert.Equal(t, tc.status, resp.StatusCode, "body: %s", body)

			var e errorResponse
			require.NoError(t, json.Unmarshal(body, &e))
			assert.NotEmpty(t, e.Error)
		})
	}
}

func TestUnknownRoute(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(fmt.Sprintf("%s/v1/nope", ts.URL))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
