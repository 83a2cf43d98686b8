package scenario

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sort"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
)

// DefaultExtensions are the file extensions treated as scenario files when
// none are configured.
var DefaultExtensions = []string{".yaml", ".yml"}

// extensionSet is read-only once built.
type extensionSet map[string]bool

func newExtensionSet(exts []string) extensionSet {
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	set := make(extensionSet, len(exts))
	for _, ext := range exts {
		set[ext] = true
	}
	return set
}

func (s extensionSet) matches(path string) bool {
	return s[filepath.Ext(path)]
}

// Collect expands paths into the sorted list of scenario files they name.
// Directories are walked recursively for files with one of exts, or
// DefaultExtensions when exts is empty.
func Collect(paths, exts []string) ([]string, error) {
	return newExtensionSet(exts).collect(paths)
}

func (s extensionSet) collect(paths []string) ([]string, error) {
	var files []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("error accessing %s: %w", path, err)
		}
		if !info.IsDir() {
			files = append(files, path)
			continue
		}
		err = filepath.Walk(path, func(filePath string, fileInfo os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if !fileInfo.IsDir() && s.matches(filePath) {
				files = append(files, filePath)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("error walking directory %s: %w", path, err)
		}
	}
	sort.Strings(files)
	return files, nil
}

// RunFile loads and runs one scenario file. A file that cannot be loaded
// yields a Result carrying the error.
func RunFile(ctx context.Context, runner *Runner, path string) Result {
	s, err := Load(path)
	if err != nil {
		return Result{Name: filepath.Base(path), Path: path, Err: err}
	}
	return runner.Run(ctx, s)
}

// RunPaths runs every scenario named by paths, expanded with the runner's
// extensions. With more than one file a
// progress bar is drawn on progress, which may be nil to disable it.
// Results keep the order of Collect.
func RunPaths(ctx context.Context, logger *zap.Logger, runner *Runner, paths []string, progress io.Writer) ([]Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	files, err := runner.extensions.collect(paths)
	if err != nil {
		return nil, err
	}
	if len(files) == 1 {
		return []Result{RunFile(ctx, runner, files[0])}, nil
	}

	var bar *progressbar.ProgressBar
	if progress != nil {
		bar = progressbar.NewOptions(len(files),
			progressbar.OptionSetWriter(progress),
			progressbar.OptionSetDescription("scenarios"),
			progressbar.OptionEnableColorCodes(true),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "[green]=[reset]",
				SaucerHead:    "[green]>[reset]",
				SaucerPadding: " ",
				BarStart:      "[",
				BarEnd:        "]",
			}))
	}

	results := make([]Result, len(files))
	done := make(chan int, len(files))

	// limit the number of workers
	sem := make(chan struct{}, runtime.NumCPU())

	started := 0
	for i, file := range files {
		select {
		case <-ctx.Done():
			for range started {
				<-done
			}
			return nil, ctx.Err()
		case sem <- struct{}{}:
		}
		started++
		go func(i int, fp string) {
			defer func() { <-sem }()
			results[i] = RunFile(ctx, runner, fp)
			if results[i].Err != nil {
				logger.Error("Error running scenario", zap.String("file", fp), zap.Error(results[i].Err))
			}
			done <- i
		}(i, file)
	}

	for range started {
		<-done
		if bar != nil {
			_ = bar.Add(1)
		}
	}
	if bar != nil {
		_ = bar.Finish()
		fmt.Fprintln(progress)
	}
	return results, nil
}
