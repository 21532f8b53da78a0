package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/GriffinCanCode/AgentOS/webcore/internal/shared/id"
	"github.com/GriffinCanCode/AgentOS/webcore/internal/web"
	"github.com/GriffinCanCode/AgentOS/webcore/internal/window"
	"go.uber.org/zap"
)

// downloadJob is a fetched response waiting to be shown in its target
type downloadJob struct {
	id          id.JobID
	opener      *window.Window
	target      string
	url         string
	description string
	resp        *web.Response
	// page is what the opener showed when the job was queued
	page window.Page
}

// Download fetches req now and queues the response for target, resolved
// against opener when the queue is flushed. A fragment-only navigation of
// an existing target is applied immediately and queues nothing.
func (p *Pipeline) Download(ctx context.Context, opener *window.Window, target string, req *web.Request, description string) (id.JobID, error) {
	if opener == nil {
		opener = p.windows.Current()
	}
	if req.URL().Scheme == "javascript" {
		return "", &web.MalformedRequestError{Input: req.URLString(), Reason: "javascript URL cannot be downloaded"}
	}
	if win, _ := p.windows.Resolve(opener, target); win != nil {
		if pg := p.anchorOnly(win, req); pg != nil {
			win.History().Add(pg.URL())
			return "", nil
		}
	}

	p.mu.Lock()
	for _, j := range p.downloads {
		if j.opener == opener && j.target == target && j.url == req.URLString() {
			p.mu.Unlock()
			p.log.Debug("download already queued", zap.String("job", j.id.String()), zap.String("url", j.url))
			return j.id, nil
		}
	}
	p.mu.Unlock()

	resp, err := p.LoadResponse(ctx, req)
	if err != nil {
		return "", fmt.Errorf("download %s: %w", description, err)
	}

	job := &downloadJob{
		id:          id.NewJobID(),
		opener:      opener,
		target:      target,
		url:         req.URLString(),
		description: description,
		resp:        resp,
		page:        opener.Page(),
	}
	opener.Jobs().Add()

	p.mu.Lock()
	p.downloads = append(p.downloads, job)
	n := len(p.downloads)
	p.mu.Unlock()
	p.metrics.SetDownloadsQueued(n)

	p.log.Debug("download queued",
		zap.String("job", job.id.String()),
		zap.String("url", job.url),
		zap.String("target", target),
		zap.String("description", description))
	return job.id, nil
}

// PendingDownloads returns the number of queued downloads
func (p *Pipeline) PendingDownloads() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.downloads)
}

// ApplyDownloads materializes every queued download in queue order. Jobs
// whose opener closed or moved to another page are discarded as stale.
// It returns the number of pages created.
func (p *Pipeline) ApplyDownloads(ctx context.Context) (int, error) {
	p.mu.Lock()
	jobs := p.downloads
	p.downloads = nil
	p.mu.Unlock()
	p.metrics.SetDownloadsQueued(0)

	applied := 0
	var errs []error
	for _, job := range jobs {
		job.opener.Jobs().Done()
		log := p.log.With(zap.String("job", job.id.String()), zap.String("url", job.url))

		if job.opener.IsClosed() || job.opener.Page() != job.page {
			log.Debug("discarding stale download", zap.String("description", job.description))
			p.releaseUnlessCached(job.resp)
			p.metrics.RecordDownloadApplied("stale")
			continue
		}

		win, name := p.windows.Resolve(job.opener, job.target)
		if win == nil {
			win = p.windows.OpenTopLevel(name, job.opener)
		}
		if _, err := p.materialize(ctx, win, job.resp, true, log); err != nil {
			errs = append(errs, fmt.Errorf("apply %s: %w", job.description, err))
			p.metrics.RecordDownloadApplied("failed")
			continue
		}
		applied++
		p.metrics.RecordDownloadApplied("applied")
	}
	return applied, errors.Join(errs...)
}
