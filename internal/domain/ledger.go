package domain

import (
	"fmt"
	"strings"
)

// LedgerKind selects the raw ledger table a record belongs to.
type LedgerKind string

// Ledger record kinds
const (
	LedgerBlock       LedgerKind = "block"
	LedgerTransaction LedgerKind = "transaction"
	LedgerEvent       LedgerKind = "event"
)

// LedgerRecord is an immutable raw chain artifact stored verbatim.
// Keyed by a natural, globally unique key: block number, transaction
// hash, or event id. Once written it is never updated or deleted; a
// replayed write with a known key is a successful no-op.
type LedgerRecord struct {
	Kind      LedgerKind
	Key       string // natural key, normalized (lower-cased hashes)
	Payload   []byte // raw JSON document as delivered by the fetcher
	CreatedAt int64  // record creation timestamp (ms)
}

// EventKey builds the natural key of an event log: tx hash + log index.
func EventKey(txHash string, logIndex int) string {
	return fmt.Sprintf("%s:%d", strings.ToLower(txHash), logIndex)
}
