package document

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"docforge/internal/services"
)

// PDFCPUEngine implements Engine on top of the pdfcpu library.
type PDFCPUEngine struct{}

// NewPDFCPUEngine returns the pdfcpu-backed PDF capability.
func NewPDFCPUEngine() *PDFCPUEngine {
	return &PDFCPUEngine{}
}

var _ Engine = (*PDFCPUEngine)(nil)

func (e *PDFCPUEngine) IsEncrypted(path string) (bool, error) {
	_, err := api.ReadContextFile(path)
	if err == nil {
		return false, nil
	}
	if isWrongPassword(err) {
		return true, nil
	}
	return false, services.Wrap(services.ErrTransform, "pdf", "open",
		fmt.Sprintf("cannot open %s", path), err)
}

func (e *PDFCPUEngine) Decrypt(src, dst, password string) error {
	conf := model.NewDefaultConfiguration()
	conf.UserPW = password
	conf.OwnerPW = password
	if err := api.DecryptFile(src, dst, conf); err != nil {
		if isWrongPassword(err) {
			return services.Wrap(services.ErrTransform, "pdf", "decrypt",
				"incorrect password", err)
		}
		return services.Wrap(services.ErrTransform, "pdf", "decrypt", src, err)
	}
	return nil
}

func (e *PDFCPUEngine) Encrypt(src, dst, password string) error {
	conf := model.NewDefaultConfiguration()
	conf.UserPW = password
	conf.OwnerPW = password
	if err := api.EncryptFile(src, dst, conf); err != nil {
		return services.Wrap(services.ErrTransform, "pdf", "encrypt", src, err)
	}
	return nil
}

func (e *PDFCPUEngine) Merge(inputs []string, dst string) error {
	conf := model.NewDefaultConfiguration()
	if err := api.MergeCreateFile(inputs, dst, false, conf); err != nil {
		return services.Wrap(services.ErrTransform, "pdf", "merge", dst, err)
	}
	return nil
}

func (e *PDFCPUEngine) Validate(path, password string) error {
	conf := model.NewDefaultConfiguration()
	conf.UserPW = password
	conf.OwnerPW = password
	if err := api.ValidateFile(path, conf); err != nil {
		if isWrongPassword(err) {
			return services.Wrap(services.ErrTransform, "pdf", "validate",
				"incorrect password", err)
		}
		return services.Wrap(services.ErrTransform, "pdf", "validate", path, err)
	}
	return nil
}

func isWrongPassword(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, pdfcpu.ErrWrongPassword) {
		return true
	}
	return strings.Contains(err.Error(), "please provide the correct password")
}
