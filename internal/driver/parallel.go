package driver

import (
	"context"
	"io/fs"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"jsphp/internal/config"
	"jsphp/internal/diag"
	"jsphp/internal/observ"
	"jsphp/internal/source"
	"jsphp/internal/token"
	"jsphp/internal/trace"
)

// SourceExt is the extension TokenizeDir picks up.
const SourceExt = ".js"

// TokenizeDirResult содержит результат токенизации одного файла
type TokenizeDirResult struct {
	Path   string        // путь к файлу
	FileID source.FileID // ID файла в FileSet; при ошибке загрузки пустой виртуальный файл
	Loaded bool
	Tokens []token.Token
	Bag    *diag.Bag
	Err    error // scan failure
	Cached bool
	Timing *observ.Report
}

// skipDirs are never descended into.
var skipDirs = map[string]bool{
	"node_modules": true,
	".git":         true,
	"vendor":       true,
}

// ListSourceFiles возвращает отсортированный список всех *.js файлов в директории
func ListSourceFiles(dir string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && skipDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(path, SourceExt) {
			files = append(files, path)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	// Сортируем для детерминированного порядка
	sort.Strings(files)
	return files, nil
}

// TokenizeDir токенизирует все *.js файлы в директории параллельно.
// Results follow the sorted file order regardless of scheduling.
// A load failure becomes an IO4001 diagnostic in that file's bag.
func TokenizeDir(ctx context.Context, dir string, cfg config.Config, opts Options) (*source.FileSet, []TokenizeDirResult, error) {
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeRun, "tokenize-dir", trace.SpanFrom(ctx))
	defer span.End("")
	span.Set("dir", dir)

	files, err := ListSourceFiles(dir)
	if err != nil {
		return nil, nil, err
	}
	fileSet := source.NewFileSetWithBase(dir)
	if len(files) == 0 {
		return fileSet, nil, nil
	}
	span.Set("files", strconv.Itoa(len(files)))

	// Builder errors are the same for every file; fail once up front.
	if _, err := cfg.Builder(); err != nil {
		return nil, nil, err
	}

	// FileSet не потокобезопасен, поэтому загружаем последовательно.
	loadSpan := trace.Begin(tracer, trace.ScopePhase, "load", span.ID())
	fileIDs := make([]source.FileID, len(files))
	loadErrors := make(map[int]error)
	loadTimes := make([]time.Duration, len(files))
	for i, path := range files {
		emit(opts.Progress, Event{File: path, Stage: StageLoad, Status: StatusQueued})
		start := time.Now()
		fileID, err := fileSet.Load(path)
		loadTimes[i] = time.Since(start)
		if err != nil {
			// пустой виртуальный файл, чтобы диагностике было к чему привязаться
			loadErrors[i] = err
			fileIDs[i] = fileSet.AddVirtual(path, nil)
			continue
		}
		fileIDs[i] = fileID
	}
	loadSpan.End(strconv.Itoa(len(files)) + " files")

	// Настраиваем параллелизм
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	// Результаты (индексы уникальны для каждой горутины, мьютекс не нужен)
	results := make([]TokenizeDirResult, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))

	for i, path := range files {
		g.Go(func() error {
			// Проверка отмены
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			started := time.Now()
			bag := diag.NewBag(opts.maxDiagnostics())

			if loadErr, hadError := loadErrors[i]; hadError {
				results[i] = TokenizeDirResult{Path: path, FileID: fileIDs[i], Bag: bag}
				bag.Add(diag.Diagnostic{
					Severity: diag.SevError,
					Code:     diag.IOLoadFileError,
					Message:  "failed to load file: " + loadErr.Error(),
					Primary:  source.Span{File: fileIDs[i]},
				})
				emit(opts.Progress, Event{File: path, Stage: StageLoad, Status: StatusError, Err: loadErr, Elapsed: time.Since(started)})
				return nil
			}

			fileSpan := trace.Begin(tracer, trace.ScopeFile, path, span.ID())
			parent := span.ID()
			if fileSpan != nil {
				parent = fileSpan.ID()
			}
			timer := observ.NewTimer()
			timer.Record("load", loadTimes[i], "")

			stage := StageLex
			if opts.Cache != nil {
				stage = StageCache
			}
			emit(opts.Progress, Event{File: path, Stage: stage, Status: StatusWorking})
			out, err := tokenizeFile(gctx, parent, fileSet.Get(fileIDs[i]), cfg, opts.Cache, bag, timer)
			if err != nil {
				fileSpan.End("config error")
				return err
			}
			res := TokenizeDirResult{
				Path:   path,
				FileID: fileIDs[i],
				Loaded: true,
				Tokens: out.tokens,
				Bag:    bag,
				Err:    out.err,
				Cached: out.cached,
			}
			if opts.Timings {
				report := timer.Report()
				res.Timing = &report
				reportScanTimings(bag, fileIDs[i], newScanSummary(path, out, report))
			}
			// Сохраняем результат (мьютекс не нужен, индекс i уникален)
			results[i] = res

			status := StatusDone
			if out.err != nil {
				status = StatusError
			}
			emit(opts.Progress, Event{
				File:    path,
				Stage:   StageLex,
				Status:  status,
				Err:     out.err,
				Elapsed: time.Since(started),
				Tokens:  len(out.tokens),
				Cached:  out.cached,
			})
			fileSpan.End(string(status))
			return nil
		})
	}

	// Ждём завершения всех горутин
	if err := g.Wait(); err != nil {
		return fileSet, results, err
	}
	return fileSet, results, nil
}
