package pipeline

import (
	"context"
	"fmt"

	"school-job-scout/internal/config"
	"school-job-scout/internal/database"
	"school-job-scout/internal/dedup"
	"school-job-scout/internal/notify"

	"go.uber.org/zap"
)

// RunCloud delegates change detection to the JobStore: rows it reports as
// not yet notified are the new ones. A status email goes out on every run.
func (r *Runner) RunCloud(ctx context.Context, districts []config.District) (out Outcome, err error) {
	if r.Store == nil {
		return out, fmt.Errorf("cloud run needs a job store")
	}
	log := r.logger()

	source := r.RunSource
	if source == "" {
		source = "cli"
	}
	out.RunID, err = r.Store.CreateRun(ctx, source)
	if err != nil {
		return out, err
	}
	log = log.With(zap.String("run_id", out.RunID))
	log.Info("🚀 started scrape run")

	defer func() {
		if err == nil {
			return
		}
		finishCtx := context.WithoutCancel(ctx)
		if ferr := r.Store.FinishRun(finishCtx, out.RunID, database.RunResult{Status: database.RunFailed, Error: err.Error()}); ferr != nil {
			log.Error("❌ failed to record run failure", zap.Error(ferr))
		}
	}()

	out.Discovered, out.Jobs, err = r.discover(ctx, districts)
	if err != nil {
		return out, err
	}

	stored, err := r.Store.UpsertJobs(ctx, out.Jobs)
	if err != nil {
		return out, err
	}
	ids := make([]string, 0, len(stored))
	for _, s := range stored {
		out.New = append(out.New, s.Job)
		ids = append(ids, s.ID)
	}
	log.Info("🆕 change detection", zap.Int("total", len(out.Jobs)), zap.Int("new", len(out.New)))

	current := make([]string, 0, len(out.Jobs))
	for _, j := range out.Jobs {
		current = append(current, dedup.Key(j))
	}
	inactive, err := r.Store.MarkMissingInactive(ctx, dedup.NewKeySet(current...))
	if err != nil {
		return out, err
	}
	if inactive > 0 {
		log.Info("📦 marked missing jobs inactive", zap.Int("count", inactive))
	}

	out.Notified = r.notifyCloud(ctx, out)
	delivered := false
	for _, res := range out.Notified {
		n := database.Notification{RunID: out.RunID, Channel: res.Channel, JobsCount: len(out.New), Success: res.Err == nil}
		if res.Err != nil {
			n.Error = res.Err.Error()
		} else {
			delivered = true
		}
		if lerr := r.Store.LogNotification(ctx, n); lerr != nil {
			log.Warn("⚠️ failed to log notification", zap.String("channel", res.Channel), zap.Error(lerr))
		}
	}
	if delivered && len(ids) > 0 {
		if err = r.Store.MarkNotified(ctx, ids); err != nil {
			return out, err
		}
	}

	err = r.Store.FinishRun(ctx, out.RunID, database.RunResult{
		Status:    database.RunSuccess,
		TotalJobs: len(out.Jobs),
		NewJobs:   len(out.New),
	})
	if err != nil {
		return out, err
	}
	log.Info("🏁 scrape run completed", zap.Int("total", len(out.Jobs)), zap.Int("new", len(out.New)))
	return out, nil
}

func (r *Runner) notifyCloud(ctx context.Context, out Outcome) []notify.Result {
	var results []notify.Result
	if r.Status != nil {
		results = append(results, notify.Result{
			Channel: notify.ChannelEmail,
			Err:     r.Status.SendStatus(ctx, len(out.Jobs), out.New),
		})
	} else {
		r.logger().Info("ℹ️ status email not configured")
	}
	if r.Notifier != nil && len(out.New) > 0 {
		results = append(results, r.Notifier.Send(ctx, out.New, len(out.Jobs))...)
	}
	return results
}

var _ StatusSender = (*notify.Email)(nil)
var _ Notifier = (*notify.Multi)(nil)
