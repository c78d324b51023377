// Package pipeline runs the extraction flows: it enumerates a document,
// filters and deduplicates its images, and either lays them out on a
// contact sheet or saves them to a folder.
package pipeline

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/debug"

	"github.com/lehigh-university-libraries/pdfimages/internal/config"
	"github.com/lehigh-university-libraries/pdfimages/internal/contactsheet"
	"github.com/lehigh-university-libraries/pdfimages/internal/dedup"
	"github.com/lehigh-university-libraries/pdfimages/internal/document"
	"github.com/lehigh-university-libraries/pdfimages/internal/raster"
)

// SheetName is the file written next to the document by Preview
const SheetName = "thumbnail_sheet.png"

// LogFunc receives one human-readable line per pipeline event
type LogFunc func(line string)

// OpenFunc opens a document for reading
type OpenFunc func(path string) (document.Reader, error)

func openPDF(path string) (document.Reader, error) {
	r, err := document.Open(path)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// Pipeline holds validated options. Each call to Preview or Extract gets
// its own run state, so a Pipeline can be reused.
type Pipeline struct {
	opts config.Options
	log  LogFunc

	// Open is used to open documents, document.Open by default
	Open OpenFunc
}

// New validates opts and creates a pipeline. A nil log discards diagnostics.
func New(opts config.Options, log LogFunc) (*Pipeline, error) {
	if err := opts.Validate(); err != nil {
		return nil, &Error{Kind: KindInput, Stage: "configure", Err: err}
	}
	if log == nil {
		log = func(string) {}
	}
	return &Pipeline{
		opts: opts,
		log:  log,
		Open: openPDF,
	}, nil
}

// SavedImage describes one file written by Extract
type SavedImage struct {
	Page        int
	Image       int
	Path        string
	SizeKiB     float64
	Width       int
	Height      int
	HasMask     bool
	Fingerprint string
}

// Result summarizes an extract run
type Result struct {
	OutputDir  string
	Accepted   int
	Saved      []SavedImage
	TooSmall   int
	Duplicates int
	Warnings   []Warning
}

// Skipped returns the number of accepted images that could not be saved
func (r *Result) Skipped() int {
	return len(r.Warnings)
}

// run is the state of a single Preview or Extract call
type run struct {
	log     LogFunc
	reader  document.Reader
	tracker *dedup.Tracker
	filter  *Filter
	compose *Compositor

	tooSmall   int
	duplicates int
	warnings   []Warning
}

func (p *Pipeline) newRun(stage, pdfPath string) (*run, error) {
	if pdfPath == "" {
		return nil, &Error{Kind: KindInput, Stage: stage, Err: ErrNoDocument}
	}

	hasher, err := dedup.NewHasher(p.opts.PHashSize)
	if err != nil {
		return nil, &Error{Kind: KindInput, Stage: stage, Err: err}
	}

	reader, err := p.Open(pdfPath)
	if err != nil {
		kind := KindDocument
		if errors.Is(err, document.ErrFileNotFound) {
			kind = KindInput
		}
		return nil, &Error{Kind: kind, Stage: "open document", Err: err}
	}

	tracker := dedup.NewTracker(p.opts.PHashThreshold)
	tracker.Reset()

	return &run{
		log:     p.log,
		reader:  reader,
		tracker: tracker,
		filter:  NewFilter(p.opts, tracker, hasher),
		compose: NewCompositor(reader),
	}, nil
}

func (r *run) close() {
	if err := r.reader.Close(); err != nil {
		slog.Warn("Failed to close document", "err", err)
	}
	r.tracker.Reset()
}

func (r *run) logf(format string, args ...any) {
	r.log(fmt.Sprintf(format, args...))
}

func (r *run) warn(rec document.ImageRecord, stage string, err error) {
	w := Warning{Page: rec.Page, Image: rec.Sequence, Stage: stage, Err: err}
	r.warnings = append(r.warnings, w)
	r.log(w.String())
	slog.Warn("Skipping image", "page", rec.Page, "image", rec.Sequence, "stage", stage, "kind", w.Kind(), "err", err)
}

// enumerator walks the document, logging the image count of each page
func (r *run) enumerator() *document.Enumerator {
	e := document.NewEnumerator(r.reader)
	e.OnPage = func(pageIndex, count int) {
		if count == 0 {
			r.logf("No images found on page %d", pageIndex)
			return
		}
		r.logf("Found %d images on page %d", count, pageIndex)
	}
	return e
}

// accept runs the filter on rec and logs the decision.
// ok is false when the record is dropped for any reason.
func (r *run) accept(rec document.ImageRecord) (Verdict, bool) {
	r.logf("Size of processed image is %.2f KB", rec.SizeKiB())

	verdict, err := r.filter.Accept(rec, func() (image.Image, error) {
		return raster.Decode(rec.Data)
	})
	if err != nil {
		r.warn(rec, "fingerprint", err)
		return Verdict{}, false
	}

	switch verdict.Decision {
	case TooSmall:
		r.tooSmall++
		r.logf("Skipping image %d on page %d. Too small", rec.Sequence, rec.Page)
		return verdict, false
	case Duplicate:
		r.duplicates++
		r.logf("Skipping image %d on page %d. Duplicate", rec.Sequence, rec.Page)
		return verdict, false
	}
	return verdict, true
}

func recoverRun(stage string, err *error) {
	if v := recover(); v != nil {
		slog.Error("Recovered from panic", "stage", stage, "panic", v, "stack", string(debug.Stack()))
		*err = &Error{Kind: KindUnexpected, Stage: stage, Err: fmt.Errorf("panic: %v", v)}
	}
}

// Preview builds a contact sheet of every accepted image, largest first,
// and saves it as SheetName in the document's directory.
func (p *Pipeline) Preview(pdfPath string) (sheetPath string, err error) {
	defer recoverRun("preview", &err)

	r, err := p.newRun("preview", pdfPath)
	if err != nil {
		return "", err
	}
	defer r.close()

	slog.Info("Building preview", "path", pdfPath)

	var thumbs []contactsheet.Thumbnail
	for rec, err := range r.enumerator().Records() {
		if err != nil {
			return "", &Error{Kind: KindDocument, Stage: "enumerate images", Err: err}
		}
		if rec.Err != nil {
			r.warn(rec, "extract", rec.Err)
			continue
		}

		verdict, ok := r.accept(rec)
		if !ok {
			continue
		}

		img := verdict.Image
		if img == nil {
			img, err = raster.Decode(rec.Data)
			if err != nil {
				r.warn(rec, "decode", err)
				continue
			}
		}
		thumbs = append(thumbs, contactsheet.Thumbnail{
			Image:   raster.Thumbnail(img, contactsheet.CellSize),
			SizeKiB: rec.SizeKiB(),
		})
	}

	if len(thumbs) == 0 {
		r.log("No images found in the PDF")
		return "", &Error{Kind: KindDocument, Stage: "preview", Err: ErrNoImages}
	}

	contactsheet.SortBySize(thumbs)
	sheet, err := contactsheet.Layout(thumbs)
	if err != nil {
		return "", &Error{Kind: KindUnexpected, Stage: "layout thumbnails", Err: err}
	}

	sheetPath = filepath.Join(filepath.Dir(pdfPath), SheetName)
	if err := raster.Save(sheet, sheetPath); err != nil {
		return "", &Error{Kind: KindUnexpected, Stage: "save thumbnail sheet", Err: err}
	}

	r.logf("Thumbnail sheet created at: %s", sheetPath)
	slog.Info("Preview written", "path", sheetPath, "thumbnails", len(thumbs))
	return sheetPath, nil
}

// Extract saves every accepted image into outputDir, in document order,
// as page_<page>-image_<n>.png. An image that fails to extract, compose or
// save is recorded as a warning and skipped.
func (p *Pipeline) Extract(pdfPath, outputDir string) (result *Result, err error) {
	defer recoverRun("extract", &err)

	if outputDir == "" {
		return nil, &Error{Kind: KindInput, Stage: "extract", Err: ErrNoOutputFolder}
	}

	r, err := p.newRun("extract", pdfPath)
	if err != nil {
		return nil, err
	}
	defer r.close()

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, &Error{Kind: KindInput, Stage: "create output folder", Err: fmt.Errorf("failed to create output folder: %w", err)}
	}

	slog.Info("Extracting images", "path", pdfPath, "output", outputDir)

	result = &Result{OutputDir: outputDir}
	for rec, err := range r.enumerator().Records() {
		if err != nil {
			return nil, &Error{Kind: KindDocument, Stage: "enumerate images", Err: err}
		}

		r.logf("Extracting image %d on page %d", rec.Sequence, rec.Page)
		if rec.Err != nil {
			r.warn(rec, "extract", rec.Err)
			continue
		}
		verdict, ok := r.accept(rec)
		if !ok {
			continue
		}
		result.Accepted++

		if rec.HasMask() {
			r.logf("Mask found for image %d", rec.Sequence)
		}
		img := verdict.Image
		if img == nil || rec.HasMask() {
			img, err = r.compose.Compose(rec)
			if err != nil {
				r.warn(rec, "compose", err)
				continue
			}
		}

		name := fmt.Sprintf("page_%d-image_%d.png", rec.Page, rec.Sequence)
		path := filepath.Join(outputDir, name)
		if err := raster.Save(img, path); err != nil {
			r.warn(rec, "save", err)
			continue
		}

		saved := SavedImage{
			Page:    rec.Page,
			Image:   rec.Sequence,
			Path:    path,
			SizeKiB: rec.SizeKiB(),
			Width:   img.Bounds().Dx(),
			Height:  img.Bounds().Dy(),
			HasMask: rec.HasMask(),
		}
		if verdict.Fingerprint.Bits() > 0 {
			saved.Fingerprint = verdict.Fingerprint.String()
		}
		result.Saved = append(result.Saved, saved)
		slog.Debug("Saved image", "page", rec.Page, "image", rec.Sequence, "path", path)
	}

	result.TooSmall = r.tooSmall
	result.Duplicates = r.duplicates
	result.Warnings = r.warnings

	r.logf("Image extraction completed. %d saved, %d too small, %d duplicates, %d skipped",
		len(result.Saved), result.TooSmall, result.Duplicates, result.Skipped())
	for _, w := range result.Warnings {
		r.logf("Skipped image %d on page %d: %v", w.Image, w.Page, w.Err)
	}

	return result, nil
}
