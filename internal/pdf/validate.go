package pdf

import (
	"errors"
	"fmt"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/0xn0va/slh-sh/internal/document"
)

// Validate reads and validates the file in relaxed mode and returns its page
// count.
func Validate(path string) (pages int, err error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, fmt.Errorf("%w: %s", document.ErrNotFound, path)
		}
		return 0, err
	}
	defer f.Close()

	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("validating %s: %v", path, p)
		}
	}()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadValidateAndOptimize(f, conf)
	if err != nil {
		return 0, fmt.Errorf("pdfcpu read: %w", err)
	}
	return ctx.PageCount, nil
}
