package service

import (
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receiptMillis(t *testing.T, number string) int64 {
	t.Helper()
	require.True(t, strings.HasPrefix(number, "RCP-"), number)
	n, err := strconv.ParseInt(strings.TrimPrefix(number, "RCP-"), 10, 64)
	require.NoError(t, err)
	return n
}

func TestReceiptNumber_StrictlyIncreasing(t *testing.T) {
	g := NewIDGenerator()
	at := time.UnixMilli(1_700_000_000_000)

	first := g.NewReceiptNumber(at)
	assert.Equal(t, "RCP-1700000000000", first)

	// Same instant and an earlier clock both still move forward.
	second := g.NewReceiptNumber(at)
	third := g.NewReceiptNumber(at.Add(-time.Second))
	assert.Equal(t, int64(1_700_000_000_001), receiptMillis(t, second))
	assert.Equal(t, int64(1_700_000_000_002), receiptMillis(t, third))
}

func TestReceiptNumber_ConcurrentUnique(t *testing.T) {
	g := NewIDGenerator()
	at := time.Now()

	var (
		mu   sync.Mutex
		seen = map[string]bool{}
		wg   sync.WaitGroup
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n := g.NewReceiptNumber(at)
			mu.Lock()
			seen[n] = true
			mu.Unlock()
		}()
	}
	wg.Wait()
	assert.Len(t, seen, 50)
}

func TestIDGenerator_Formats(t *testing.T) {
	g := NewIDGenerator()
	assert.NotEqual(t, g.NewPaymentID(), g.NewPaymentID())
	assert.True(t, strings.HasPrefix(g.NewTransactionReference(), "txn_"))
	assert.Len(t, g.NewReceiptID(), 36)
}
