package store

import (
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/echomasterleague/league-bot/internal/metrics"
	"github.com/echomasterleague/league-bot/internal/sheets"
)

var (
	ErrWorksheetNotRegistered = errors.New("worksheet not registered with store")
	ErrRecordNotFound         = errors.New("record not found")
	ErrDuplicateRecordID      = errors.New("record id already present in worksheet")
)

// Consecutive flush failures after which a worksheet is marked degraded.
const degradedThreshold = 3

type opKind int

const (
	opInsert opKind = iota
	opUpdate
	opDelete
)

// pendingOp is one enqueued mutation. For inserts and updates row holds the
// full serialized record; for deletes it is nil.
type pendingOp struct {
	kind     opKind
	recordID string
	row      []string
}

// worksheetState tracks one cached worksheet. grid is the live view:
// the last flushed snapshot with all pending ops applied in order.
type worksheetState struct {
	ws        sheets.Worksheet
	grid      sheets.Grid
	fetchedAt time.Time
	pending   []pendingOp
	failures  int
	degraded  bool
}

// Store is the per-worksheet snapshot cache and deferred write queue. All
// mutations go through it; the flusher drains the queues against the backend.
type Store struct {
	mu     sync.Mutex
	states map[string]*worksheetState

	ttl         time.Duration
	readLimiter *rate.Limiter
	writeLimit  *rate.Limiter
	refreshes   singleflight.Group
	metrics     metrics.Metrics
}
