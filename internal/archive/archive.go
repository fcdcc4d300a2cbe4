package archive

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/atelier-labs/fitroom/internal/imaging"
	"github.com/atelier-labs/fitroom/internal/models"
)

// Record is one archived history entry. Image bytes are written as separate
// files; the record carries metadata only.
type Record struct {
	ID        string `parquet:"id" json:"id"`
	MimeType  string `parquet:"mime_type" json:"mime_type"`
	Aspect    string `parquet:"aspect" json:"aspect"`
	Favorite  bool   `parquet:"favorite" json:"favorite"`
	CreatedAt string `parquet:"created_at" json:"created_at"`
	SizeBytes int64  `parquet:"size_bytes" json:"size_bytes"`
	Filename  string `parquet:"filename" json:"filename"`
}

// Export writes the history entries to outDir: decoded image files under
// images/ plus a metadata file in the requested format (parquet or jsonl).
func Export(entries []models.NormalizedImage, outDir, format string) error {
	if len(entries) == 0 {
		return fmt.Errorf("history is empty, nothing to export")
	}

	imagesDir := filepath.Join(outDir, "images")
	if err := os.MkdirAll(imagesDir, 0755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}

	records := make([]Record, 0, len(entries))
	for _, entry := range entries {
		data, err := imaging.Bytes(entry)
		if err != nil {
			slog.Warn("Skipping history entry with undecodable payload", "id", entry.ID, "err", err)
			continue
		}

		filename := entry.ID + "." + imaging.Subtype(entry.MimeType)
		if err := os.WriteFile(filepath.Join(imagesDir, filename), data, 0644); err != nil {
			return fmt.Errorf("failed to write image file: %w", err)
		}

		records = append(records, Record{
			ID:        entry.ID,
			MimeType:  entry.MimeType,
			Aspect:    string(entry.Aspect),
			Favorite:  entry.Favorite,
			CreatedAt: createdAt(entry.ID),
			SizeBytes: int64(len(data)),
			Filename:  filename,
		})
	}

	if len(records) == 0 {
		return fmt.Errorf("no exportable history entries")
	}

	switch format {
	case "parquet":
		return writeParquet(filepath.Join(outDir, "history.parquet"), records)
	case "jsonl", "json":
		return writeJSONL(filepath.Join(outDir, "history.jsonl"), records)
	default:
		return fmt.Errorf("unsupported export format: %s (supported: parquet, jsonl)", format)
	}
}

func writeParquet(path string, records []Record) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create parquet file: %w", err)
	}
	defer file.Close()

	writer := parquet.NewGenericWriter[Record](file)
	if _, err := writer.Write(records); err != nil {
		return fmt.Errorf("failed to write parquet rows: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}

	slog.Info("History archived", "path", path, "records", len(records))
	return nil
}

func writeJSONL(path string, records []Record) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create jsonl file: %w", err)
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	for _, record := range records {
		if err := enc.Encode(record); err != nil {
			return fmt.Errorf("failed to write jsonl record: %w", err)
		}
	}

	slog.Info("History archived", "path", path, "records", len(records))
	return nil
}

// createdAt derives the creation timestamp from a millisecond id. Ids that
// don't parse keep an empty timestamp rather than inventing one.
func createdAt(id string) string {
	ms, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return ""
	}
	return time.UnixMilli(ms).UTC().Format(time.RFC3339)
}
