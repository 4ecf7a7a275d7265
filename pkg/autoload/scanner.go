package autoload

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	autoerrors "github.com/vango-dev/autovhost/internal/errors"
	"github.com/vango-dev/autovhost/pkg/vhost"
)

// Scan binds every domain directory found directly under the base folder.
//
// Entries are visited in lexical order and bound concurrently. Only a
// failure to read the base folder fails the scan; per-entry problems are
// recorded in the report and the remaining entries still bind.
func (a *Autoloader) Scan(ctx context.Context, router vhost.Mounter, settings *ScanSettings) (*Report, error) {
	if !vhost.IsMountable(router) {
		return nil, autoerrors.New(autoerrors.CodeMissingRouter)
	}
	router, _ = a.useRouter(router)

	s := settings.withDefaults()
	if abs, err := filepath.Abs(s.BaseFolder); err == nil {
		s.BaseFolder = abs
	}
	base := s.BaseFolder

	ctx, span := a.tracer.Start(ctx, "autoload.Scan", trace.WithAttributes(
		attribute.String("autoload.base_folder", base),
	))
	defer span.End()

	report := newReport(base)

	entries, err := os.ReadDir(base)
	if err != nil {
		scanErr := autoerrors.New(autoerrors.CodeDirectoryUnreadable).WithPath(base).Wrap(err)
		span.RecordError(scanErr)
		span.SetStatus(codes.Error, "directory unreadable")
		a.metrics.observeScan(nil, scanErr)
		a.logger.Error("scan failed", "base", base, "error", scanErr)
		return nil, scanErr
	}

	report.Outcomes = make([]Outcome, len(entries))

	var g errgroup.Group
	g.SetLimit(a.concurrency)
	for i, entry := range entries {
		g.Go(func() error {
			report.Outcomes[i] = a.LoadEntry(ctx, router, entry.Name(), &s)
			return nil
		})
	}
	_ = g.Wait()

	report.Duration = time.Since(report.StartedAt)
	span.SetAttributes(
		attribute.Int("autoload.entries", len(report.Outcomes)),
		attribute.Int("autoload.mounted", report.Mounted()),
	)
	a.metrics.observeScan(report, nil)
	a.logger.Info("scan complete",
		"base", base,
		"scan_id", report.ID.String(),
		"bound", len(report.Bound()),
		"fallback", len(report.Fallback()),
		"skipped", len(report.Skipped()),
		"failed", len(report.Failed()),
		"duration", report.Duration,
	)
	return report, nil
}

// LoadEntry binds the directory name under the scan base folder when it
// looks like a domain directory, that is a readable directory holding a
// readable main file.
func (a *Autoloader) LoadEntry(ctx context.Context, router vhost.Mounter, name string, settings *ScanSettings) Outcome {
	s := settings.withDefaults()
	out := Outcome{Name: name}
	dir := filepath.Join(s.BaseFolder, name)

	info, err := os.Stat(dir)
	switch {
	case err != nil:
		out.Status = StatusSkipped
		out.Err = autoerrors.New(autoerrors.CodeEntryUnreadable).WithDomain(name).WithPath(dir).Wrap(err)
	case !info.IsDir():
		out.Status = StatusSkipped
		out.Err = autoerrors.New(autoerrors.CodeNotADirectory).WithDomain(name).WithPath(dir)
	}
	if out.Err != nil {
		a.logger.Debug("entry skipped", "entry", name, "reason", autoerrors.CodeOf(out.Err))
		return out
	}

	main := filepath.Join(dir, DefaultMainFile+a.resolver.suffix())
	if !a.resolver.probe(main) {
		out.Status = StatusSkipped
		out.Err = autoerrors.New(autoerrors.CodeMainFileUnreadable).WithDomain(name).WithPath(main)
		a.logger.Debug("entry skipped", "entry", name, "reason", autoerrors.CodeOf(out.Err))
		return out
	}

	conf, err := a.Bind(ctx, &Request{
		Domain:     name,
		BaseFolder: s.BaseFolder,
		Debug:      s.Debug,
		FromScan:   true,
	}, router)
	out.Confirmation = conf
	out.Err = err
	switch autoerrors.CodeOf(err) {
	case "":
		out.Status = StatusBound
	case autoerrors.CodeModuleNotFound, autoerrors.CodeExportNotFound, autoerrors.CodeModuleLoadFailed:
		out.Status = StatusFallback
	default:
		out.Status = StatusFailed
	}
	return out
}
