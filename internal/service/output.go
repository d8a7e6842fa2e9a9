package service

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/mmcdole/cachegen/internal/domain"
)

// ArchiveExtension is appended to the user-supplied archive name
const ArchiveExtension = ".zip"

// OutputService writes processed entries to disk
type OutputService struct {
	state   domain.StateStore
	history domain.HistoryStore
	logger  *slog.Logger
	now     func() time.Time
}

// NewOutputService creates a new OutputService.
// history may be nil to skip journaling.
func NewOutputService(state domain.StateStore, history domain.HistoryStore, logger *slog.Logger) *OutputService {
	if logger == nil {
		logger = slog.Default()
	}
	return &OutputService{
		state:   state,
		history: history,
		logger:  logger,
		now:     time.Now,
	}
}

// Save writes every entry according to req.
// Entries copied before a failure are left in place.
func (s *OutputService) Save(ctx context.Context, entries []domain.CacheEntry, req domain.SaveRequest) (domain.SaveResult, error) {
	if len(entries) == 0 {
		return domain.SaveResult{}, domain.ErrEmptySelection
	}
	if req.Directory == "" {
		return domain.SaveResult{}, domain.ErrCancelled
	}

	var (
		result domain.SaveResult
		err    error
	)
	switch req.Mode {
	case domain.ModeIndividual:
		result, err = s.saveIndividual(ctx, entries, req.Directory)
	case domain.ModePack:
		if req.ArchiveName == "" {
			return domain.SaveResult{}, domain.ErrCancelled
		}
		result, err = s.savePack(ctx, entries, req.Directory, req.ArchiveName)
	default:
		return domain.SaveResult{}, fmt.Errorf("%w: %d", domain.ErrUnknownMode, int(req.Mode))
	}
	if err != nil {
		s.logger.Warn("save failed", "mode", req.Mode.String(), "error", err)
		return result, err
	}

	outDir := req.Directory
	if req.Mode == domain.ModePack {
		outDir = filepath.Dir(result.Destination)
	}
	if s.state != nil {
		if err := s.state.SetLastDir(domain.StateOutputDir, outDir); err != nil {
			s.logger.Warn("failed to remember output directory", "dir", outDir, "error", err)
		}
	}

	s.record(result, entries)

	s.logger.Info("save complete",
		"batch", result.BatchID,
		"mode", result.Mode.String(),
		"destination", result.Destination,
		"written", result.Written)

	return result, nil
}

// saveIndividual copies each source to <dir>/<derived name>
func (s *OutputService) saveIndividual(ctx context.Context, entries []domain.CacheEntry, dir string) (domain.SaveResult, error) {
	result := domain.SaveResult{
		BatchID:     newBatchID(),
		Mode:        domain.ModeIndividual,
		Destination: dir,
	}

	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		outPath := filepath.Join(dir, e.DerivedName)
		n, err := copyFile(e.SourcePath, outPath)
		if err != nil {
			return result, err
		}

		result.Written++
		result.Bytes += n
		s.logger.Debug("copied entry", "source", e.SourcePath, "dest", outPath, "bytes", n)
	}

	return result, nil
}

// copyFile copies src to dst verbatim, creating dst's parent directories.
// %5c sequences in dst are ordinary characters, not separators.
func copyFile(src, dst string) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", domain.ErrUnreadableSource, err)
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return 0, fmt.Errorf("%w: %w", domain.ErrWriteFailure, err)
	}

	out, err := os.Create(dst)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", domain.ErrWriteFailure, err)
	}

	n, err := io.Copy(out, in)
	if err != nil {
		out.Close()
		return n, fmt.Errorf("%w: copy %s: %w", domain.ErrWriteFailure, src, err)
	}
	if err := out.Close(); err != nil {
		return n, fmt.Errorf("%w: %w", domain.ErrWriteFailure, err)
	}
	return n, nil
}

// savePack builds the archive in memory and writes it in one operation
func (s *OutputService) savePack(ctx context.Context, entries []domain.CacheEntry, dir, name string) (domain.SaveResult, error) {
	archivePath := filepath.Join(dir, name+ArchiveExtension)
	result := domain.SaveResult{
		BatchID:     newBatchID(),
		Mode:        domain.ModePack,
		Destination: archivePath,
	}

	data, written, size, err := s.buildArchive(ctx, entries)
	if err != nil {
		return result, err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return result, fmt.Errorf("%w: %w", domain.ErrWriteFailure, err)
	}
	if err := os.WriteFile(archivePath, data, 0644); err != nil {
		return result, fmt.Errorf("%w: %w", domain.ErrWriteFailure, err)
	}

	result.Written = written
	result.Bytes = size
	return result, nil
}

// buildArchive returns the ZIP bytes, the number of entries stored and
// their uncompressed size. A derived name already in the archive is skipped:
// equal names imply equal content.
func (s *OutputService) buildArchive(ctx context.Context, entries []domain.CacheEntry) ([]byte, int, int64, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	seen := make(map[string]bool, len(entries))
	var (
		written int
		size    int64
	)

	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, 0, 0, err
		}
		if seen[e.DerivedName] {
			s.logger.Debug("skipping duplicate archive entry", "name", e.DerivedName)
			continue
		}
		seen[e.DerivedName] = true

		n, err := addToArchive(zw, e)
		if err != nil {
			return nil, 0, 0, err
		}
		written++
		size += n
	}

	if err := zw.Close(); err != nil {
		return nil, 0, 0, fmt.Errorf("%w: finalize archive: %w", domain.ErrWriteFailure, err)
	}
	return buf.Bytes(), written, size, nil
}

func addToArchive(zw *zip.Writer, e domain.CacheEntry) (int64, error) {
	in, err := os.Open(e.SourcePath)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", domain.ErrUnreadableSource, err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", domain.ErrUnreadableSource, err)
	}

	w, err := zw.CreateHeader(&zip.FileHeader{
		Name:     e.DerivedName,
		Method:   zip.Deflate,
		Modified: info.ModTime(),
	})
	if err != nil {
		return 0, fmt.Errorf("%w: %w", domain.ErrWriteFailure, err)
	}

	n, err := io.Copy(w, in)
	if err != nil {
		return n, fmt.Errorf("%w: read %s: %w", domain.ErrUnreadableSource, e.SourcePath, err)
	}
	return n, nil
}

// record journals a completed save. Failures are logged, not returned:
// the files are already on disk.
func (s *OutputService) record(result domain.SaveResult, entries []domain.CacheEntry) {
	if s.history == nil {
		return
	}

	batch := domain.Batch{
		ID:          result.BatchID,
		Mode:        result.Mode,
		Destination: result.Destination,
		CreatedAt:   s.now(),
		Entries:     append([]domain.CacheEntry(nil), entries...),
	}
	if err := s.history.RecordBatch(batch); err != nil {
		s.logger.Warn("failed to record batch", "batch", batch.ID, "error", err)
	}
}

// newBatchID generates a time-ordered batch ID using UUID v7
func newBatchID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to timestamp if UUID generation fails
		return fmt.Sprintf("batch-%d", time.Now().UnixNano())
	}
	return id.String()
}
