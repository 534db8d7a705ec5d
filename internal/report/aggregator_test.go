package report

import (
	"path/filepath"
	"sync"
	"testing"
)

func TestAggregatorReportsSubmissionOrder(t *testing.T) {
	agg := NewAggregator(3)
	// Record out of completion order.
	for _, idx := range []int{2, 0, 1} {
		err := agg.Record(JobResult{
			Index:     idx,
			InputPath: filepath.Join("in", "doc"+string(rune('a'+idx))+".pdf"),
			Status:    StatusSuccess,
		})
		if err != nil {
			t.Fatalf("Record(%d) failed: %v", idx, err)
		}
	}

	results := agg.Results()
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for i, res := range results {
		if res.Index != i {
			t.Fatalf("result %d has index %d", i, res.Index)
		}
	}
}

func TestAggregatorRejectsDuplicateIndex(t *testing.T) {
	agg := NewAggregator(2)
	if err := agg.Record(JobResult{Index: 0, Status: StatusFailed}); err != nil {
		t.Fatal(err)
	}
	if err := agg.Record(JobResult{Index: 0, Status: StatusSuccess}); err == nil {
		t.Fatal("expected duplicate index to be rejected")
	}
	if err := agg.Record(JobResult{Index: 5, Status: StatusSuccess}); err == nil {
		t.Fatal("expected out-of-range index to be rejected")
	}
}

func TestAggregatorSummaryAndLastOutputDir(t *testing.T) {
	agg := NewAggregator(4)
	records := []JobResult{
		{Index: 0, Status: StatusSuccess, OutputPath: filepath.Join("out", "a.pdf")},
		{Index: 1, Status: StatusSkipped},
		{Index: 2, Status: StatusFailed, Message: "wrong password"},
		{Index: 3, Status: StatusSuccess, OutputPath: filepath.Join("out", "sub", "b.pdf")},
	}
	for _, rec := range records {
		if err := agg.Record(rec); err != nil {
			t.Fatal(err)
		}
	}

	summary := agg.Summary()
	if summary.Total != 4 || summary.Succeeded != 2 || summary.Skipped != 1 || summary.Failed != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if summary.LastOutputDir != filepath.Join("out", "sub") {
		t.Fatalf("unexpected last output dir: %q", summary.LastOutputDir)
	}
}

func TestAggregatorConcurrentRecords(t *testing.T) {
	const total = 100
	agg := NewAggregator(total)

	var wg sync.WaitGroup
	for i := 0; i < total; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			if err := agg.Record(JobResult{Index: idx, Status: StatusSuccess}); err != nil {
				t.Errorf("Record(%d): %v", idx, err)
			}
		}(i)
	}
	wg.Wait()

	if got := agg.Completed(); got != total {
		t.Fatalf("expected %d completed, got %d", total, got)
	}
	results := agg.Results()
	if len(results) != total {
		t.Fatalf("expected %d results, got %d", total, len(results))
	}
	for i, res := range results {
		if res.Index != i {
			t.Fatalf("result %d out of order: index %d", i, res.Index)
		}
	}
}
