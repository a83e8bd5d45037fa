package verimail_test

import (
	"context"
	"net"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verimail/verimail"
	"github.com/verimail/verimail/types"
)

func TestValidateBatchDeduplication(t *testing.T) {
	v := newTestValidator()

	batch := v.ValidateBatch(context.Background(), []string{"x@y.com", "X@Y.COM", "bad"}, nil)
	assert.Equal(t, 3, batch.Total)
	assert.Equal(t, 2, batch.Processed)
	assert.Equal(t, 1, batch.DuplicatesRemoved)
	assert.Empty(t, batch.Errors)

	sum := 0
	for _, n := range batch.Summary.StatusBreakdown {
		sum += n
	}
	assert.Equal(t, batch.Processed, sum)
}

func TestValidateBatchPreservesOrder(t *testing.T) {
	v := newTestValidator()
	inputs := []string{"john.doe@gmail.com", "bad", "x@y.com", "user@10minutemail.com"}

	batch := v.ValidateBatch(context.Background(), inputs, nil)
	require.Len(t, batch.Results, len(inputs))
	for i, in := range inputs {
		assert.Equal(t, in, batch.Results[i].Email)
	}
}

func TestValidateBatchDedupOff(t *testing.T) {
	v := newTestValidator()
	off := false

	batch := v.ValidateBatch(context.Background(), []string{"x@y.com", "x@y.com"}, &types.Options{Deduplicate: &off})
	assert.Equal(t, 2, batch.Processed)
	assert.Equal(t, 0, batch.DuplicatesRemoved)
}

func TestValidateBatchSkipsSMTPByDefault(t *testing.T) {
	v := newTestValidator()

	batch := v.ValidateBatch(context.Background(), []string{"john.doe@gmail.com"}, nil)
	require.Len(t, batch.Results, 1)
	assert.NotContains(t, batch.Results[0].ChecksPerformed, "smtp")

	on := true
	nocache := false
	batch = v.ValidateBatch(context.Background(), []string{"john.doe@gmail.com"},
		&types.Options{CheckSMTP: &on, EnableCache: &nocache})
	assert.Contains(t, batch.Results[0].ChecksPerformed, "smtp")
}

func TestValidateBatchUsesResultCache(t *testing.T) {
	v := newTestValidator()
	ctx := context.Background()

	first := v.ValidateBatch(ctx, []string{"x@y.com"}, nil)
	second := v.ValidateBatch(ctx, []string{"x@y.com"}, nil)

	require.Len(t, second.Results, 1)
	assert.Equal(t, first.Results[0].Status, second.Results[0].Status)
	assert.Equal(t, first.Results[0].Score, second.Results[0].Score)
}

func TestValidateBatchSummary(t *testing.T) {
	v := newTestValidator()
	inputs := []string{
		"a@10minutemail.com",
		"b@10minutemail.com",
		"x@y.com",
	}

	batch := v.ValidateBatch(context.Background(), inputs, nil)
	assert.Equal(t, 2, batch.Summary.DisposableCount)
	assert.Equal(t, 2, batch.Summary.StatusBreakdown[types.StatusRisky])
	require.NotEmpty(t, batch.Summary.TopDomains)
	assert.Equal(t, "10minutemail.com", batch.Summary.TopDomains[0].Domain)
	assert.Equal(t, 2, batch.Summary.TopDomains[0].Count)

	found := false
	for _, rec := range batch.Summary.Recommendations {
		if strings.Contains(strings.ToLower(rec), "disposable") {
			found = true
		}
	}
	assert.True(t, found, "expected a disposable-ratio recommendation")
}

func TestValidateBatchIsolatesPanics(t *testing.T) {
	v := verimail.New().
		WithResolver(panicResolver{}).
		WithDialer(acceptAllSMTP)
	nocache := false

	batch := v.ValidateBatch(context.Background(),
		[]string{"a@example.com", "b@example.com"},
		&types.Options{EnableCache: &nocache})

	require.Len(t, batch.Results, 2)
	for _, res := range batch.Results {
		assert.Equal(t, verimail.StatusError, res.Status)
		assert.Contains(t, res.Reason, "internal error")
	}
	assert.Len(t, batch.Errors, 2)
}

// panicResolver blows up on every lookup to exercise worker isolation.
type panicResolver struct{}

func (panicResolver) LookupHost(ctx context.Context, host string) ([]string, error) {
	panic("resolver crashed")
}

func (panicResolver) LookupMX(ctx context.Context, name string) ([]*net.MX, error) {
	panic("resolver crashed")
}

func (panicResolver) LookupTXT(ctx context.Context, name string) ([]string, error) {
	panic("resolver crashed")
}
