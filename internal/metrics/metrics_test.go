package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordGenerate(t *testing.T) {
	okBefore := testutil.ToFloat64(BOMsGenerated.WithLabelValues("tsv", "ok"))
	partsBefore := testutil.ToFloat64(PartsConsolidated)
	warnBefore := testutil.ToFloat64(WarningsTotal)

	RecordGenerate("tsv", "ok", 6, 2, 20*time.Millisecond)

	assert.Equal(t, okBefore+1, testutil.ToFloat64(BOMsGenerated.WithLabelValues("tsv", "ok")))
	assert.Equal(t, partsBefore+6, testutil.ToFloat64(PartsConsolidated))
	assert.Equal(t, warnBefore+2, testutil.ToFloat64(WarningsTotal))
	assert.GreaterOrEqual(t, testutil.CollectAndCount(GenerateDuration), 1)
}

func TestRecordGenerate_ErrorStatus(t *testing.T) {
	before := testutil.ToFloat64(BOMsGenerated.WithLabelValues("pdf", "error"))
	RecordGenerate("pdf", "error", 0, 0, time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(BOMsGenerated.WithLabelValues("pdf", "error")))
}
