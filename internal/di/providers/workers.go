package providers

import (
	"context"
	"time"

	"github.com/samber/do/v2"

	"github.com/gamedash/gamedash-server/internal/logger"
)

// StoreGCJob periodically compacts the badger value log. Expired cache
// entries only free disk space once their value log files are rewritten.
type StoreGCJob struct {
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (j *StoreGCJob) Shutdown() error {
	j.cancel()
	return nil
}

// ProvideStoreGCJob provides the periodic value log compaction job.
func ProvideStoreGCJob(i do.Injector) (*StoreGCJob, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		ticker := time.NewTicker(gcInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				start := time.Now()
				storeHandle.RunGC()
				log.Debug("Value log GC finished", "duration", time.Since(start))
			case <-ctx.Done():
				return
			}
		}
	}()

	log.Info("Store GC job started", "interval", gcInterval)

	return &StoreGCJob{cancel: cancel}, nil
}
