package transform

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"docforge/internal/services"
)

// fakeEngine models protected PDFs as files whose content is
// "locked:<password>:<body>". It keeps the same failure classification as
// the real engine so executors can be tested without real documents.
type fakeEngine struct{}

func (fakeEngine) read(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", services.Wrap(services.ErrTransform, "pdf", "open", path, err)
	}
	return string(data), nil
}

func (e fakeEngine) IsEncrypted(path string) (bool, error) {
	content, err := e.read(path)
	if err != nil {
		return false, err
	}
	return strings.HasPrefix(content, "locked:"), nil
}

func (e fakeEngine) Decrypt(src, dst, password string) error {
	content, err := e.read(src)
	if err != nil {
		return err
	}
	rest, ok := strings.CutPrefix(content, "locked:"+password+":")
	if !ok {
		return services.Wrap(services.ErrTransform, "pdf", "decrypt", "incorrect password", nil)
	}
	return os.WriteFile(dst, []byte(rest), 0o644)
}

func (e fakeEngine) Encrypt(src, dst, password string) error {
	content, err := e.read(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, []byte("locked:"+password+":"+content), 0o644)
}

func (e fakeEngine) Merge(inputs []string, dst string) error {
	var parts []string
	for _, input := range inputs {
		content, err := e.read(input)
		if err != nil {
			return err
		}
		parts = append(parts, content)
	}
	return os.WriteFile(dst, []byte(strings.Join(parts, "\n")), 0o644)
}

func (e fakeEngine) Validate(path, password string) error {
	content, err := e.read(path)
	if err != nil {
		return err
	}
	if strings.HasPrefix(content, "locked:") {
		if !strings.HasPrefix(content, "locked:"+password+":") {
			return services.Wrap(services.ErrTransform, "pdf", "validate", "incorrect password", nil)
		}
		content = strings.TrimPrefix(content, "locked:"+password+":")
	}
	if strings.Contains(content, "corrupt") {
		return services.Wrap(services.ErrTransform, "pdf", "validate", "damaged document", nil)
	}
	return nil
}

// fakeHost converts by writing a marker body with the .pdf extension.
type fakeHost struct {
	failWith error
}

func (h fakeHost) Available() error { return nil }

func (h fakeHost) Convert(_ context.Context, inputPath, outputDir string) (string, error) {
	if h.failWith != nil {
		return "", h.failWith
	}
	base := filepath.Base(inputPath)
	out := filepath.Join(outputDir, strings.TrimSuffix(base, filepath.Ext(base))+".pdf")
	content := fmt.Sprintf("pdf-from:%s", base)
	if err := os.WriteFile(out, []byte(content), 0o644); err != nil {
		return "", err
	}
	return out, nil
}

func writeDoc(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func readDoc(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}
