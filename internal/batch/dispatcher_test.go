package batch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"docforge/internal/logging"
	"docforge/internal/outpath"
	"docforge/internal/passwords"
	"docforge/internal/report"
	"docforge/internal/services"
	"docforge/internal/transform"
)

// testEngine mirrors the on-disk fake used by the executor tests: protected
// files carry a "locked:<password>:" prefix.
type testEngine struct{}

func (testEngine) IsEncrypted(path string) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, services.Wrap(services.ErrTransform, "pdf", "open", path, err)
	}
	return strings.HasPrefix(string(data), "locked:"), nil
}

func (testEngine) Decrypt(src, dst, password string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	rest, ok := strings.CutPrefix(string(data), "locked:"+password+":")
	if !ok {
		return services.Wrap(services.ErrTransform, "pdf", "decrypt", "incorrect password", nil)
	}
	return os.WriteFile(dst, []byte(rest), 0o644)
}

func (testEngine) Encrypt(src, dst, password string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, []byte("locked:"+password+":"+string(data)), 0o644)
}

func (testEngine) Merge(inputs []string, dst string) error {
	var parts []string
	for _, input := range inputs {
		data, err := os.ReadFile(input)
		if err != nil {
			return err
		}
		parts = append(parts, string(data))
	}
	return os.WriteFile(dst, []byte(strings.Join(parts, "\n")), 0o644)
}

func (testEngine) Validate(path, password string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	content := string(data)
	if strings.HasPrefix(content, "locked:") && !strings.HasPrefix(content, "locked:"+password+":") {
		return services.Wrap(services.ErrTransform, "pdf", "validate", "incorrect password", nil)
	}
	return nil
}

// trackingHost fails the test if two conversions ever overlap.
type trackingHost struct {
	active int32
	calls  int32
}

func (h *trackingHost) Available() error { return nil }

func (h *trackingHost) Convert(_ context.Context, inputPath, outputDir string) (string, error) {
	if atomic.AddInt32(&h.active, 1) > 1 {
		return "", errors.New("conversion host entered concurrently")
	}
	defer atomic.AddInt32(&h.active, -1)
	atomic.AddInt32(&h.calls, 1)
	time.Sleep(2 * time.Millisecond)

	base := filepath.Base(inputPath)
	out := filepath.Join(outputDir, strings.TrimSuffix(base, filepath.Ext(base))+".pdf")
	if err := os.WriteFile(out, []byte("pdf"), 0o644); err != nil {
		return "", err
	}
	return out, nil
}

func writeBatchFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestDispatcherDecryptBatchKeepsSubmissionOrder(t *testing.T) {
	dir := t.TempDir()
	outDir := filepath.Join(dir, "out")

	const total = 100
	inputs := make([]string, total)
	for i := range inputs {
		inputs[i] = filepath.Join(dir, "in", fmt.Sprintf("doc-%03d.pdf", i))
		writeBatchFile(t, inputs[i], "locked:shared:body")
	}

	d := NewDispatcher(testEngine{}, &trackingHost{}, logging.NewNop())
	outcome, err := d.Run(context.Background(), Request{
		Operation: report.OpDecrypt,
		Inputs:    inputs,
		Resolver:  passwords.Resolver{Common: "shared"},
		Policy:    outpath.Policy{Mode: outpath.Flatten, OutputRoot: outDir},
		Workers:   4,
	}, nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(outcome.Results) != total {
		t.Fatalf("got %d results, want %d", len(outcome.Results), total)
	}
	for i, res := range outcome.Results {
		if res.Index != i {
			t.Fatalf("result %d carries index %d, order broken", i, res.Index)
		}
		if res.InputPath != inputs[i] {
			t.Fatalf("result %d is for %s, want %s", i, res.InputPath, inputs[i])
		}
		if res.Status != report.StatusSuccess {
			t.Fatalf("result %d: status %s (%s)", i, res.Status, res.Message)
		}
	}
	if outcome.Summary.Succeeded != total {
		t.Fatalf("summary counts %d successes, want %d", outcome.Summary.Succeeded, total)
	}
	if outcome.Summary.LastOutputDir != outDir {
		t.Fatalf("last output dir = %q, want %q", outcome.Summary.LastOutputDir, outDir)
	}
}

func TestDispatcherIsolatesPerFileFailures(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.pdf")
	bad := filepath.Join(dir, "bad.pdf")
	missing := filepath.Join(dir, "missing.pdf")
	writeBatchFile(t, good, "locked:pw:body")
	writeBatchFile(t, bad, "locked:other:body")

	d := NewDispatcher(testEngine{}, &trackingHost{}, logging.NewNop())
	outcome, err := d.Run(context.Background(), Request{
		Operation: report.OpDecrypt,
		Inputs:    []string{good, bad, missing},
		Resolver:  passwords.Resolver{Common: "pw"},
		Policy:    outpath.Policy{Mode: outpath.Flatten, OutputRoot: filepath.Join(dir, "out")},
		Workers:   2,
	}, nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := []report.Status{report.StatusSuccess, report.StatusFailed, report.StatusFailed}
	for i, res := range outcome.Results {
		if res.Status != want[i] {
			t.Fatalf("result %d: status %s (%s), want %s", i, res.Status, res.Message, want[i])
		}
	}
	if outcome.Summary.Failed != 2 || outcome.Summary.Succeeded != 1 {
		t.Fatalf("summary = %+v", outcome.Summary)
	}
}

func TestDispatcherUnresolvedPasswordIsConfigurationFailure(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "a.pdf")
	writeBatchFile(t, input, "locked:pw:body")

	d := NewDispatcher(testEngine{}, &trackingHost{}, logging.NewNop())
	outcome, err := d.Run(context.Background(), Request{
		Operation: report.OpDecrypt,
		Inputs:    []string{input},
		Policy:    outpath.Policy{Mode: outpath.Flatten, OutputRoot: filepath.Join(dir, "out")},
	}, nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	res := outcome.Results[0]
	if res.Status != report.StatusFailed {
		t.Fatalf("status = %s, want failed", res.Status)
	}
	if !strings.Contains(res.Message, "no password") {
		t.Fatalf("message %q does not explain the missing password", res.Message)
	}
}

func TestDispatcherSerializesConversionLane(t *testing.T) {
	dir := t.TempDir()
	inputs := make([]string, 8)
	for i := range inputs {
		inputs[i] = filepath.Join(dir, fmt.Sprintf("doc-%d.docx", i))
		writeBatchFile(t, inputs[i], "word")
	}

	host := &trackingHost{}
	d := NewDispatcher(testEngine{}, host, logging.NewNop())
	outcome, err := d.Run(context.Background(), Request{
		Operation: report.OpConvert,
		Inputs:    inputs,
		Policy:    outpath.Policy{Mode: outpath.Flatten, OutputRoot: filepath.Join(dir, "out"), TargetExt: ".pdf"},
		Workers:   8,
	}, nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	for i, res := range outcome.Results {
		if res.Status != report.StatusSuccess {
			t.Fatalf("result %d: status %s (%s)", i, res.Status, res.Message)
		}
	}
	if got := atomic.LoadInt32(&host.calls); got != int32(len(inputs)) {
		t.Fatalf("host ran %d conversions, want %d", got, len(inputs))
	}
}

func TestDispatcherMergeProducesSingleResult(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.pdf")
	b := filepath.Join(dir, "b.pdf")
	writeBatchFile(t, a, "first")
	writeBatchFile(t, b, "second")
	out := filepath.Join(dir, "merged.pdf")

	d := NewDispatcher(testEngine{}, &trackingHost{}, logging.NewNop())
	outcome, err := d.Run(context.Background(), Request{
		Operation:   report.OpMerge,
		Inputs:      []string{a, b},
		MergeOutput: out,
	}, nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(outcome.Results) != 1 {
		t.Fatalf("got %d results, want one aggregate result", len(outcome.Results))
	}
	if outcome.Results[0].Status != report.StatusSuccess {
		t.Fatalf("merge failed: %s", outcome.Results[0].Message)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read merged output: %v", err)
	}
	if string(data) != "first\nsecond" {
		t.Fatalf("merged content = %q", data)
	}
}

func TestDispatcherCancellationSkipsRemaining(t *testing.T) {
	dir := t.TempDir()
	inputs := make([]string, 20)
	for i := range inputs {
		inputs[i] = filepath.Join(dir, fmt.Sprintf("doc-%02d.pdf", i))
		writeBatchFile(t, inputs[i], "locked:pw:body")
	}

	ctx, cancel := context.WithCancel(context.Background())
	d := NewDispatcher(testEngine{}, &trackingHost{}, logging.NewNop())
	outcome, err := d.Run(ctx, Request{
		Operation: report.OpDecrypt,
		Inputs:    inputs,
		Resolver:  passwords.Resolver{Common: "pw"},
		Policy:    outpath.Policy{Mode: outpath.Flatten, OutputRoot: filepath.Join(dir, "out")},
		Workers:   1,
	}, func(p Progress) {
		if p.Completed == 1 {
			cancel()
		}
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() error = %v, want context.Canceled", err)
	}

	if len(outcome.Results) != len(inputs) {
		t.Fatalf("got %d results, want one per submitted file", len(outcome.Results))
	}
	if outcome.Summary.Skipped == 0 {
		t.Fatal("cancellation produced no skipped results")
	}
	for _, res := range outcome.Results {
		if res.Status == report.StatusSkipped && !strings.Contains(res.Message, "cancelled") {
			t.Fatalf("skipped result message %q does not mention cancellation", res.Message)
		}
	}
}

func TestRunJobSkipsWhenCancelledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := NewDispatcher(testEngine{}, &trackingHost{}, logging.NewNop())
	ran := false
	result := d.runJob(ctx, func(context.Context, transform.Job) report.JobResult {
		ran = true
		return report.JobResult{Status: report.StatusFailed, Message: "context canceled"}
	}, transform.Job{Index: 3, InputPath: "a.pdf"})

	if ran {
		t.Fatal("executor ran after cancellation")
	}
	if result.Status != report.StatusSkipped {
		t.Fatalf("status = %s, want %s", result.Status, report.StatusSkipped)
	}
	if !strings.Contains(result.Message, "cancelled") {
		t.Fatalf("message %q does not mention cancellation", result.Message)
	}
	if result.Index != 3 || result.InputPath != "a.pdf" {
		t.Fatalf("job identity lost: %+v", result)
	}
}

func TestDispatcherFlattenDuplicateBasenames(t *testing.T) {
	dir := t.TempDir()
	outDir := filepath.Join(dir, "out")
	inputs := []string{
		filepath.Join(dir, "north", "doc.pdf"),
		filepath.Join(dir, "south", "doc.pdf"),
	}
	writeBatchFile(t, inputs[0], "locked:pw:north body")
	writeBatchFile(t, inputs[1], "locked:pw:south body")

	d := NewDispatcher(testEngine{}, &trackingHost{}, logging.NewNop())
	outcome, err := d.Run(context.Background(), Request{
		Operation: report.OpDecrypt,
		Inputs:    inputs,
		Resolver:  passwords.Resolver{Common: "pw"},
		Policy:    outpath.Policy{Mode: outpath.Flatten, OutputRoot: outDir},
		Overwrite: true,
		Workers:   2,
	}, nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	for _, res := range outcome.Results {
		if res.Status != report.StatusSuccess {
			t.Fatalf("result %d: %s (%s)", res.Index, res.Status, res.Message)
		}
	}
	got, err := os.ReadFile(filepath.Join(outDir, "doc.pdf"))
	if err != nil {
		t.Fatal(err)
	}
	if s := string(got); s != "north body" && s != "south body" {
		t.Fatalf("output is neither input's content: %q", s)
	}
}

func TestDispatcherValidatesRequests(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "a.pdf")
	writeBatchFile(t, input, "body")
	policy := outpath.Policy{Mode: outpath.Flatten, OutputRoot: dir}

	tests := []struct {
		name string
		req  Request
	}{
		{"no inputs", Request{Operation: report.OpDecrypt, Policy: policy}},
		{"unknown operation", Request{Operation: "shred", Inputs: []string{input}, Policy: policy}},
		{"merge without output", Request{Operation: report.OpMerge, Inputs: []string{input, input}}},
		{"merge single input", Request{Operation: report.OpMerge, Inputs: []string{input}, MergeOutput: filepath.Join(dir, "m.pdf")}},
		{"reencrypt without password", Request{Operation: report.OpReEncrypt, Inputs: []string{input}, Policy: policy}},
		{"too many workers", Request{Operation: report.OpDecrypt, Inputs: []string{input}, Policy: policy, Workers: 1000}},
	}

	d := NewDispatcher(testEngine{}, &trackingHost{}, logging.NewNop())
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := d.Run(context.Background(), tc.req, nil); !errors.Is(err, services.ErrValidation) {
				t.Fatalf("Run() error = %v, want validation error", err)
			}
		})
	}
}
