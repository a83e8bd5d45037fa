package verimail

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/verimail/verimail/monitoring"
	"github.com/verimail/verimail/types"
)

const (
	topDomainsLimit    = 10
	commonReasonsLimit = 5
)

// ValidateBatch validates a collection of addresses. Duplicates are
// removed case-insensitively (unless disabled), work proceeds in
// chunks with bounded concurrency and a pacing delay between chunks,
// and per-address failures never fail the batch. Results preserve the
// input order of the deduplicated list.
func (v *Validator) ValidateBatch(ctx context.Context, emails []string, opts *types.Options) types.BatchResult {
	start := time.Now()
	r := v.resolveOptions(opts, true)

	unique := emails
	if r.dedup {
		unique = dedupe(emails)
	}

	results := make([]types.ValidationResult, len(unique))
	var (
		mu   sync.Mutex
		errs []types.BatchError
	)

	for chunkStart := 0; chunkStart < len(unique); chunkStart += r.batchSize {
		chunkEnd := chunkStart + r.batchSize
		if chunkEnd > len(unique) {
			chunkEnd = len(unique)
		}

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(v.cfg.MaxConcurrent)
		for i := chunkStart; i < chunkEnd; i++ {
			i := i
			g.Go(func() error {
				res, err := v.validateOne(gctx, unique[i], r)
				if err != nil {
					mu.Lock()
					errs = append(errs, types.BatchError{Email: unique[i], Error: err.Error()})
					mu.Unlock()
				}
				results[i] = res
				return nil
			})
		}
		_ = g.Wait() // workers never return errors, failures land in results

		// Pacing between chunks keeps remote servers from seeing bursts.
		if chunkEnd < len(unique) && v.cfg.BatchDelay > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(v.cfg.BatchDelay):
			}
		}
	}

	monitoring.RecordBatch(len(unique))

	return types.BatchResult{
		Total:             len(emails),
		Processed:         len(unique),
		DuplicatesRemoved: len(emails) - len(unique),
		Results:           results,
		Errors:            errs,
		ValidationTimeMs:  time.Since(start).Milliseconds(),
		Summary:           summarize(results),
	}
}

// validateOne wraps a single validation with the bulk result cache and
// panic isolation. The returned error is non-nil only for the panic
// path; the result always carries a usable record.
func (v *Validator) validateOne(ctx context.Context, email string, r resolved) (res types.ValidationResult, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("internal error: %v", p)
			res = types.ValidationResult{
				Email:  email,
				Status: types.StatusError,
				Reason: err.Error(),
			}
		}
	}()

	key := "bulk:" + strings.ToLower(strings.TrimSpace(email))
	if r.enableCache && v.results != nil {
		var cached types.ValidationResult
		if cacheErr := v.results.Get(ctx, key, &cached); cacheErr == nil {
			monitoring.RecordCacheHit("bulk")
			return cached, nil
		}
		monitoring.RecordCacheMiss("bulk")
	}

	res = v.validate(ctx, email, r)

	if r.enableCache && v.results != nil {
		// Best effort: a failed cache write must not fail the address.
		_ = v.results.Set(ctx, key, res, bulkCacheTTL)
	}
	return res, nil
}

func dedupe(emails []string) []string {
	seen := make(map[string]struct{}, len(emails))
	out := make([]string, 0, len(emails))
	for _, e := range emails {
		key := strings.ToLower(strings.TrimSpace(e))
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, e)
	}
	return out
}

// summarize aggregates a finished batch.
func summarize(results []types.ValidationResult) types.BatchSummary {
	summary := types.BatchSummary{
		StatusBreakdown: make(map[types.Status]int),
	}
	domains := make(map[string]int)
	reasons := make(map[string]int)
	scoreTotal := 0

	for i := range results {
		res := &results[i]
		summary.StatusBreakdown[res.Status]++
		if res.Disposable {
			summary.DisposableCount++
		}
		if res.TypoDetected {
			summary.TypoCount++
		}
		scoreTotal += res.Score
		if at := strings.LastIndexByte(res.Email, '@'); at >= 0 && at < len(res.Email)-1 {
			domains[strings.ToLower(res.Email[at+1:])]++
		}
		if res.Reason != "" {
			reasons[res.Reason]++
		}
	}
	if len(results) > 0 {
		summary.AverageScore = float64(scoreTotal) / float64(len(results))
	}

	summary.TopDomains = topCounts(domains, topDomainsLimit, func(k string, n int) types.DomainCount {
		return types.DomainCount{Domain: k, Count: n}
	})
	summary.CommonReasons = topCounts(reasons, commonReasonsLimit, func(k string, n int) types.ReasonCount {
		return types.ReasonCount{Reason: k, Count: n}
	})
	summary.Recommendations = recommend(summary, len(results))
	return summary
}

// topCounts turns a frequency map into the n most frequent entries,
// ties broken alphabetically so the output is deterministic.
func topCounts[T any](m map[string]int, n int, mk func(string, int) T) []T {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if m[keys[i]] != m[keys[j]] {
			return m[keys[i]] > m[keys[j]]
		}
		return keys[i] < keys[j]
	})
	if len(keys) > n {
		keys = keys[:n]
	}
	out := make([]T, 0, len(keys))
	for _, k := range keys {
		out = append(out, mk(k, m[k]))
	}
	return out
}

// recommend derives list-hygiene advice from the batch ratios.
func recommend(s types.BatchSummary, processed int) []string {
	if processed == 0 {
		return nil
	}
	var recs []string
	if ratio(s.DisposableCount, processed) > 0.10 {
		recs = append(recs, "High share of disposable addresses; consider blocking throwaway domains at the point of collection")
	}
	if ratio(s.TypoCount, processed) > 0.10 {
		recs = append(recs, "Many addresses look mistyped; showing a did-you-mean prompt at signup would recover most of them")
	}
	if ratio(s.StatusBreakdown[types.StatusInvalid], processed) > 0.30 {
		recs = append(recs, "Over 30% of the list is invalid; re-collect or re-confirm these addresses before sending")
	}
	if ratio(s.StatusBreakdown[types.StatusError], processed) > 0.05 {
		recs = append(recs, "Several addresses failed with internal errors; retry the batch later")
	}
	return recs
}

func ratio(n, total int) float64 {
	return float64(n) / float64(total)
}
