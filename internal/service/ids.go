package service

import (
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
)

const receiptNumberPrefix = "RCP-"

// IDGenerator mints every identifier the core hands out.
type IDGenerator interface {
	NewPaymentID() string
	NewTransactionReference() string
	NewReceiptID() string
	// NewReceiptNumber returns RCP-<n> where n is the millisecond epoch of
	// at, bumped so that successive numbers strictly increase.
	NewReceiptNumber(at time.Time) string
}

type DefaultIDGenerator struct {
	mu         sync.Mutex
	lastMillis int64
}

func NewIDGenerator() *DefaultIDGenerator {
	return &DefaultIDGenerator{}
}

func (g *DefaultIDGenerator) NewPaymentID() string { return uuid.NewString() }

func (g *DefaultIDGenerator) NewTransactionReference() string { return "txn_" + uuid.NewString() }

func (g *DefaultIDGenerator) NewReceiptID() string { return uuid.NewString() }

func (g *DefaultIDGenerator) NewReceiptNumber(at time.Time) string {
	g.mu.Lock()
	defer g.mu.Unlock()

	ms := at.UnixMilli()
	if ms <= g.lastMillis {
		ms = g.lastMillis + 1
	}
	g.lastMillis = ms
	return receiptNumberPrefix + strconv.FormatInt(ms, 10)
}
