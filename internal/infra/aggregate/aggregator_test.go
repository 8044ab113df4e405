//go:build !integration

package aggregate

import (
	"reflect"
	"testing"

	"profile-scout/internal/domain/ports/adapter"

	"github.com/rs/zerolog"
)

func newTestAggregator() *Aggregator {
	nop := zerolog.Nop()
	return New(&nop)
}

func TestAggregate(t *testing.T) {
	t.Run("splits found and not found preserving order", func(t *testing.T) {
		agg := newTestAggregator()
		records := []adapter.ProbeRecord{
			{Username: "alice", Site: "site1", Status: "found", URL: "https://site1/alice"},
			{Username: "alice", Site: "site2", Status: "not_found"},
		}

		res := agg.Aggregate("job-1", records, []string{"alice"})

		if len(res.FoundProfiles) != 1 || res.FoundProfiles[0].Site != "site1" {
			t.Fatalf("unexpected found list: %+v", res.FoundProfiles)
		}
		if res.FoundProfiles[0].URL != "https://site1/alice" {
			t.Errorf("expected URL to carry through, got %q", res.FoundProfiles[0].URL)
		}
		if len(res.NotFoundProfiles) != 1 || res.NotFoundProfiles[0].Site != "site2" {
			t.Fatalf("unexpected not-found list: %+v", res.NotFoundProfiles)
		}
		if res.TotalSitesChecked != 2 {
			t.Errorf("expected 2 sites checked, got %d", res.TotalSitesChecked)
		}
	})

	t.Run("every pair lands in exactly one list", func(t *testing.T) {
		agg := newTestAggregator()
		records := []adapter.ProbeRecord{
			{Username: "bob", Site: "a", Status: "found", URL: "u1"},
			{Username: "bob", Site: "b", Status: "not_found"},
			{Username: "carol", Site: "a", Status: "not_found"},
			{Username: "carol", Site: "c", Status: "found", URL: "u2"},
		}

		res := agg.Aggregate("job-1", records, []string{"bob", "carol"})

		type pair struct{ u, s string }
		placed := map[pair]int{}
		for _, p := range res.FoundProfiles {
			placed[pair{p.Username, p.Site}]++
		}
		for _, p := range res.NotFoundProfiles {
			placed[pair{p.Username, p.Site}]++
		}
		if len(placed) != 4 {
			t.Fatalf("expected 4 distinct pairs, got %d", len(placed))
		}
		for k, n := range placed {
			if n != 1 {
				t.Errorf("pair %v appears %d times", k, n)
			}
		}
		if res.TotalSitesChecked != len(res.FoundProfiles)+len(res.NotFoundProfiles) {
			t.Error("total_sites_checked does not match list sizes")
		}
	})

	t.Run("duplicate pair keeps the first occurrence", func(t *testing.T) {
		agg := newTestAggregator()
		records := []adapter.ProbeRecord{
			{Username: "alice", Site: "site1", Status: "found", URL: "first"},
			{Username: "alice", Site: "site1", Status: "not_found"},
			{Username: "alice", Site: "site1", Status: "found", URL: "third"},
		}

		res := agg.Aggregate("job-1", records, []string{"alice"})

		if res.TotalSitesChecked != 1 {
			t.Fatalf("expected 1 site checked, got %d", res.TotalSitesChecked)
		}
		if len(res.FoundProfiles) != 1 || res.FoundProfiles[0].URL != "first" {
			t.Errorf("expected first occurrence to win, got %+v", res.FoundProfiles)
		}
	})

	t.Run("records for unknown usernames are dropped", func(t *testing.T) {
		agg := newTestAggregator()
		records := []adapter.ProbeRecord{
			{Username: "alice", Site: "site1", Status: "found", URL: "u"},
			{Username: "mallory", Site: "site1", Status: "found", URL: "u"},
		}

		res := agg.Aggregate("job-1", records, []string{"alice"})

		if res.TotalSitesChecked != 1 {
			t.Errorf("expected the foreign record to be dropped, got %d pairs", res.TotalSitesChecked)
		}
	})

	t.Run("username with zero records is not an error", func(t *testing.T) {
		agg := newTestAggregator()
		res := agg.Aggregate("job-1", nil, []string{"ghost"})

		if res.TotalSitesChecked != 0 {
			t.Errorf("expected 0 sites checked, got %d", res.TotalSitesChecked)
		}
		if res.FoundProfiles == nil || res.NotFoundProfiles == nil {
			t.Error("lists must be empty, not nil, for stable serialization")
		}
	})

	t.Run("same input always yields the same document", func(t *testing.T) {
		agg := newTestAggregator()
		records := []adapter.ProbeRecord{
			{Username: "a", Site: "s3", Status: "found", URL: "u3"},
			{Username: "b", Site: "s1", Status: "not_found"},
			{Username: "a", Site: "s2", Status: "found", URL: "u2"},
			{Username: "b", Site: "s4", Status: "not_found"},
		}

		first := agg.Aggregate("job-1", records, []string{"a", "b"})
		for i := 0; i < 10; i++ {
			again := agg.Aggregate("job-1", records, []string{"a", "b"})
			again.SearchedAt = first.SearchedAt
			if !reflect.DeepEqual(first, again) {
				t.Fatalf("aggregation is not deterministic: %+v vs %+v", first, again)
			}
		}
	})
}
