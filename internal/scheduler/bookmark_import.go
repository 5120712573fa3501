package scheduler

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/MrSnakeDoc/marks/internal/domain"
	"github.com/MrSnakeDoc/marks/internal/logger"
	"github.com/MrSnakeDoc/marks/internal/sources/homepage"
)

// ImportResult summarizes one import run.
type ImportResult struct {
	Read     int `json:"read"`
	Inserted int `json:"inserted"`
	Skipped  int `json:"skipped"`
	Failed   int `json:"failed"`
}

// BookmarkImporter copies bookmarks from a YAML file into one user's
// collection. URLs the user already has are skipped, so reruns are harmless.
type BookmarkImporter struct {
	loader        *homepage.Loader
	mapper        *homepage.Mapper
	remote        domain.RemoteStore
	userID        string
	logger        logger.Logger
	interval      time.Duration
	manualTrigger <-chan struct{}

	mu       sync.Mutex // one run at a time
	stopCh   chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// NewBookmarkImporter creates a new bookmark importer
func NewBookmarkImporter(
	bookmarkFile string,
	userID string,
	remote domain.RemoteStore,
	log logger.Logger,
	interval time.Duration,
	manualTrigger <-chan struct{},
) *BookmarkImporter {
	return &BookmarkImporter{
		loader:        homepage.NewLoader(bookmarkFile),
		mapper:        homepage.NewMapper(),
		remote:        remote,
		userID:        userID,
		logger:        log.With(logger.String("user_id", userID)),
		interval:      interval,
		manualTrigger: manualTrigger,
		stopCh:        make(chan struct{}),
		done:          make(chan struct{}),
	}
}

// Start imports once, then again on every tick and manual trigger
func (bi *BookmarkImporter) Start(ctx context.Context) error {
	if _, err := bi.Import(ctx); err != nil {
		close(bi.done)
		return fmt.Errorf("initial bookmark import failed: %w", err)
	}

	ticker := time.NewTicker(bi.interval)
	go func() {
		defer close(bi.done)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if _, err := bi.Import(ctx); err != nil {
					bi.logger.Error("failed to import bookmarks",
						logger.Error(err))
				}
			case <-bi.manualTrigger:
				bi.logger.Info("manual bookmark import triggered")
				if _, err := bi.Import(ctx); err != nil {
					bi.logger.Error("failed to import bookmarks",
						logger.Error(err))
				}
			case <-bi.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the importer and waits for its goroutine
func (bi *BookmarkImporter) Stop() {
	bi.stopOnce.Do(func() { close(bi.stopCh) })
	<-bi.done
}

// Import loads the file and inserts the drafts whose URL is new for the user.
// A failed insert is logged and counted; the run continues.
func (bi *BookmarkImporter) Import(ctx context.Context) (ImportResult, error) {
	bi.mu.Lock()
	defer bi.mu.Unlock()

	var res ImportResult
	bi.logger.Info("importing bookmarks", logger.String("file", bi.loader.Path()))

	config, err := bi.loader.Load()
	if err != nil {
		return res, fmt.Errorf("failed to load bookmarks: %w", err)
	}

	drafts, err := bi.mapper.MapDrafts(config)
	if err != nil {
		return res, fmt.Errorf("failed to map bookmarks: %w", err)
	}
	res.Read = len(drafts)

	existing, err := bi.remote.Fetch(ctx, bi.userID)
	if err != nil {
		return res, fmt.Errorf("failed to fetch existing bookmarks: %w", err)
	}

	seen := make(map[string]bool, len(existing)+len(drafts))
	for _, b := range existing {
		seen[urlKey(b.URL)] = true
	}

	for _, d := range drafts {
		key := urlKey(d.URL)
		if seen[key] {
			res.Skipped++
			continue
		}
		seen[key] = true

		if _, err := bi.remote.Insert(ctx, bi.userID, d); err != nil {
			res.Failed++
			bi.logger.Warn("failed to import bookmark",
				logger.String("url", d.URL),
				logger.Error(err))
			continue
		}
		res.Inserted++
	}

	bi.logger.Info("bookmark import completed",
		logger.Int("read", res.Read),
		logger.Int("inserted", res.Inserted),
		logger.Int("skipped", res.Skipped),
		logger.Int("failed", res.Failed))

	return res, nil
}

// urlKey compares URLs ignoring case and a trailing slash.
func urlKey(u string) string {
	return strings.TrimSuffix(strings.ToLower(strings.TrimSpace(u)), "/")
}
