package document

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// PDFReader reads embedded images through pdfcpu
type PDFReader struct {
	file  *os.File
	ctx   *model.Context
	cache map[int][]byte
}

func newConfiguration() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidateLinks = false
	conf.Offline = true
	conf.Cmd = model.EXTRACTIMAGES
	return conf
}

// Open checks that path is a regular file and parses it.
// The returned reader holds the file open until Close is called.
func Open(path string) (*PDFReader, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%w: %s is not a regular file", ErrFileNotFound, path)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDocumentRead, err)
	}

	slog.Debug("Parsing PDF", "path", path, "size_bytes", info.Size())

	ctx, err := api.ReadValidateAndOptimize(file, newConfiguration())
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("%w: %v", ErrDocumentRead, err)
	}

	slog.Debug("PDF parsed", "path", path, "pages", ctx.PageCount)

	return &PDFReader{
		file:  file,
		ctx:   ctx,
		cache: make(map[int][]byte),
	}, nil
}

// PageCount returns the number of pages in the document
func (r *PDFReader) PageCount() int {
	return r.ctx.PageCount
}

// PageImages lists the images of a zero-based page ordered by object number.
// Each image is extracted on its own, so one broken stream only sets Err on
// its own ref.
func (r *PDFReader) PageImages(pageIndex int) ([]ImageRef, error) {
	if pageIndex < 0 || pageIndex >= r.ctx.PageCount {
		return nil, fmt.Errorf("page %d out of range", pageIndex)
	}
	if r.ctx.Optimize == nil {
		return nil, errors.New("document has no image index")
	}
	if pageIndex >= len(r.ctx.Optimize.PageImages) {
		return nil, nil
	}

	objNrs := pdfcpu.ImageObjNrs(r.ctx, pageIndex+1)
	sort.Ints(objNrs)

	refs := make([]ImageRef, 0, len(objNrs))
	for _, objNr := range objNrs {
		ref := ImageRef{ID: objNr, Mask: r.softMask(objNr)}
		ref.Data, ref.Err = r.pageImage(pageIndex, objNr)
		if ref.Err != nil {
			slog.Debug("Failed to extract image", "page", pageIndex, "object", objNr, "err", ref.Err)
		}
		refs = append(refs, ref)
	}

	return refs, nil
}

// Resolve returns the encoded bytes of an image object, including soft masks
// that never appear in a page's resources.
func (r *PDFReader) Resolve(id int) ([]byte, error) {
	if data, ok := r.cache[id]; ok {
		return data, nil
	}

	sd, err := r.streamDict(id)
	if err != nil {
		return nil, err
	}

	return r.extract(sd, fmt.Sprintf("obj%d", id), id)
}

func (r *PDFReader) pageImage(pageIndex, objNr int) ([]byte, error) {
	if data, ok := r.cache[objNr]; ok {
		return data, nil
	}

	obj, ok := r.ctx.Optimize.ImageObjects[objNr]
	if !ok || obj == nil || obj.ImageDict == nil {
		return nil, fmt.Errorf("image object %d not found", objNr)
	}

	return r.extract(obj.ImageDict, obj.ResourceNames[pageIndex], objNr)
}

func (r *PDFReader) extract(sd *types.StreamDict, resourceID string, objNr int) (data []byte, err error) {
	defer func() {
		if v := recover(); v != nil {
			data, err = nil, fmt.Errorf("failed to extract image object %d: %v", objNr, v)
		}
	}()

	img, err := pdfcpu.ExtractImage(r.ctx, sd, false, resourceID, objNr, false)
	if err != nil {
		return nil, fmt.Errorf("failed to extract image object %d: %w", objNr, err)
	}
	if img == nil || img.Reader == nil {
		return nil, fmt.Errorf("%w: image object %d", ErrUnsupportedImage, objNr)
	}

	data, err = io.ReadAll(img)
	if err != nil {
		return nil, fmt.Errorf("failed to read image object %d: %w", objNr, err)
	}
	r.cache[objNr] = data

	return data, nil
}

// Close releases the underlying file
func (r *PDFReader) Close() error {
	r.cache = nil
	return r.file.Close()
}

func (r *PDFReader) streamDict(objNr int) (*types.StreamDict, error) {
	entry, ok := r.ctx.Table[objNr]
	if !ok || entry == nil || entry.Free || entry.Object == nil {
		return nil, fmt.Errorf("object %d not found", objNr)
	}
	sd, ok := entry.Object.(types.StreamDict)
	if !ok {
		return nil, fmt.Errorf("object %d is not a stream", objNr)
	}
	return &sd, nil
}

func (r *PDFReader) softMask(objNr int) int {
	sd, err := r.streamDict(objNr)
	if err != nil {
		return 0
	}
	ir := sd.IndirectRefEntry("SMask")
	if ir == nil {
		return 0
	}
	return ir.ObjectNumber.Value()
}
