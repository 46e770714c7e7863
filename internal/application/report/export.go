package report

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/bryanwahyu/datascope/internal/domain/analytics"
)

// ExportEntry is the archive path of the payload document.
const ExportEntry = "analytics/analytics.json"

// ExportName is the download name for a dataset's analytics archive.
func ExportName(filename string) string {
	return strings.TrimSuffix(filename, ".csv") + "_analytics.zip"
}

// Export writes a zip archive holding the payload for filename as
// analytics/analytics.json. Nothing is written to w when loading fails.
func (s *Service) Export(ctx context.Context, filename string, w io.Writer) error {
	p, err := s.Source.Load(ctx, filename)
	if err != nil {
		return fmt.Errorf("load payload %s: %w", filename, err)
	}
	doc, err := analytics.Encode(p)
	if err != nil {
		return fmt.Errorf("encode payload %s: %w", filename, err)
	}

	zw := zip.NewWriter(w)
	f, err := zw.CreateHeader(&zip.FileHeader{
		Name:     ExportEntry,
		Method:   zip.Deflate,
		Modified: s.Clock.Now(),
	})
	if err != nil {
		return err
	}
	if _, err := f.Write(doc); err != nil {
		return err
	}
	return zw.Close()
}
