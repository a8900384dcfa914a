package validation

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrNotScoreSheet is returned for paths the parser cannot read
var ErrNotScoreSheet = errors.New("not a score sheet")

// sheetExtensions lists the extensions the score-sheet parser understands
var sheetExtensions = map[string]bool{
	".csv":  true,
	".txt":  true,
	".xlsx": true,
	".xlsm": true,
}

// FileValidator checks score-sheet inputs and report output locations
// before a batch run starts
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger: logger,
	}
}

// ValidateOutputDirectory ensures output directory exists or can be created
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	testFile := filepath.Join(dir, ".write_test")
	file, err := os.Create(testFile)
	if err != nil {
		v.logger.Error("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("output directory %s is not writable: %w", dir, err)
	}
	file.Close()
	os.Remove(testFile)

	v.logger.Debug("Output directory validated",
		slog.String("directory", dir))
	return nil
}

// ValidateFile checks if a specific file exists and is readable
func (v *FileValidator) ValidateFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		v.logger.Error("File does not exist",
			slog.String("file", path))
		return fmt.Errorf("file %s does not exist", path)
	}
	if err != nil {
		return fmt.Errorf("failed to stat file %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory, not a file", path)
	}
	if info.Size() == 0 {
		return fmt.Errorf("file %s is empty", path)
	}

	file, err := os.Open(path)
	if err != nil {
		v.logger.Error("File is not readable",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return fmt.Errorf("file %s is not readable: %w", path, err)
	}
	file.Close()

	v.logger.Debug("File validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// ValidateScoreSheet checks that path is a readable CSV or workbook that is
// not an Excel lock file
func (v *FileValidator) ValidateScoreSheet(path string) error {
	ext := strings.ToLower(filepath.Ext(path))
	if !sheetExtensions[ext] {
		return fmt.Errorf("%w: %s (extension %q)", ErrNotScoreSheet, path, ext)
	}
	if strings.HasPrefix(filepath.Base(path), "~$") {
		return fmt.Errorf("%w: %s is a temporary Excel file", ErrNotScoreSheet, path)
	}
	return v.ValidateFile(path)
}

// ExpandInputs resolves command-line inputs into score sheets. Files are
// validated as given; directories contribute every score sheet they hold
// directly, in name order. Lock files inside directories are skipped.
func (v *FileValidator) ExpandInputs(inputs []string) ([]string, error) {
	var sheets []string
	for _, input := range inputs {
		info, err := os.Stat(input)
		if err != nil || !info.IsDir() {
			if err := v.ValidateScoreSheet(input); err != nil {
				return nil, err
			}
			sheets = append(sheets, input)
			continue
		}

		found, err := v.sheetsIn(input)
		if err != nil {
			return nil, err
		}
		if len(found) == 0 {
			v.logger.Warn("No score sheets found in directory",
				slog.String("directory", input))
		}
		sheets = append(sheets, found...)
	}
	return sheets, nil
}

func (v *FileValidator) sheetsIn(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var sheets []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), "~$") {
			continue
		}
		if !sheetExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		path := filepath.Join(dir, e.Name())
		if err := v.ValidateFile(path); err != nil {
			return nil, err
		}
		sheets = append(sheets, path)
	}
	sort.Strings(sheets)

	v.logger.Info("Input directory scanned",
		slog.String("directory", dir),
		slog.Int("files_found", len(sheets)))
	return sheets, nil
}
