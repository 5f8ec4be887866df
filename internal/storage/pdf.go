package storage

import (
	"bytes"
	"errors"
	"io"

	"github.com/gabriel-vasile/mimetype"
	"github.com/pdfcpu/pdfcpu/pkg/api"
)

const PDFMimeType = "application/pdf"

var ErrNotPDF = errors.New("only PDF allowed")

func init() {
	// Keep pdfcpu from writing a config directory under $HOME.
	api.DisableConfigDir()
}

// SniffPDF reads the head of r and checks it is a PDF by content, not by the
// client-supplied name. The returned reader replays the sniffed bytes.
func SniffPDF(r io.Reader) (io.Reader, error) {
	head := make([]byte, 3072)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, err
	}
	head = head[:n]

	if !mimetype.Detect(head).Is(PDFMimeType) {
		return nil, ErrNotPDF
	}
	return io.MultiReader(bytes.NewReader(head), r), nil
}

// PageCount returns the number of pages in the PDF at path, or 0 when the
// document cannot be parsed.
func PageCount(path string) (n int) {
	defer func() {
		if recover() != nil {
			n = 0
		}
	}()
	n, err := api.PageCountFile(path)
	if err != nil {
		return 0
	}
	return n
}
