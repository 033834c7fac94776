package learned

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"polybot/internal/logger"
	"polybot/internal/risk"

	"github.com/fsnotify/fsnotify"
	"github.com/tidwall/gjson"
)

// ChangeListener fires after a successful reload of the learned parameters.
type ChangeListener func(risk.LearnedParameters)

// Registry tracks a file of externally learned take-profit/stop-loss values
// ({"take_profit_pct": 0.03, "stop_loss_pct": 0.015}) and hot-reloads it.
// External learning engines rewrite the file; this side only reads.
type Registry struct {
	path string

	mu        sync.RWMutex
	current   risk.LearnedParameters
	loaded    bool
	listeners []ChangeListener
}

func NewRegistry(path string) (*Registry, error) {
	if path == "" {
		return nil, fmt.Errorf("learned parameters path cannot be empty")
	}
	r := &Registry{path: filepath.Clean(path)}
	if err := r.reload(); err != nil {
		// A missing file just means nothing has been learned yet.
		if !os.IsNotExist(err) {
			return nil, err
		}
		logger.Debugf("learned parameters file not present yet: %s", r.path)
	}
	return r, nil
}

// OnChange registers a listener; it fires on every successful reload.
func (r *Registry) OnChange(fn ChangeListener) {
	if fn == nil {
		return
	}
	r.mu.Lock()
	r.listeners = append(r.listeners, fn)
	r.mu.Unlock()
}

// Current returns the last successfully loaded parameters.
func (r *Registry) Current() (risk.LearnedParameters, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current, r.loaded
}

// Watch blocks until ctx is done, reloading on file changes. Reload errors
// keep the last good values.
func (r *Registry) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// Watch the directory: editors and learners typically replace the file.
	if err := watcher.Add(filepath.Dir(r.path)); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != r.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if err := r.reload(); err != nil {
				logger.Warnf("reloading learned parameters failed: %v", err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warnf("learned parameters watcher error: %v", err)
		}
	}
}

func (r *Registry) reload() error {
	data, err := os.ReadFile(r.path)
	if err != nil {
		return err
	}
	params, err := parseLearned(data)
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.current = params
	r.loaded = true
	listeners := append([]ChangeListener(nil), r.listeners...)
	r.mu.Unlock()

	logger.Infof("learned parameters loaded tp=%.4f sl=%.4f from %s",
		params.TakeProfitPct, params.StopLossPct, r.path)
	for _, fn := range listeners {
		fn(params)
	}
	return nil
}

func parseLearned(data []byte) (risk.LearnedParameters, error) {
	if !gjson.ValidBytes(data) {
		return risk.LearnedParameters{}, fmt.Errorf("learned parameters file is not valid json")
	}
	parsed := gjson.ParseBytes(data)
	params := risk.LearnedParameters{
		TakeProfitPct: parsed.Get("take_profit_pct").Float(),
		StopLossPct:   parsed.Get("stop_loss_pct").Float(),
	}
	if params.TakeProfitPct <= 0 && params.StopLossPct <= 0 {
		return risk.LearnedParameters{}, fmt.Errorf("learned parameters file has no usable fields")
	}
	if params.TakeProfitPct < 0 || params.TakeProfitPct > 1 || params.StopLossPct < 0 || params.StopLossPct > 1 {
		return risk.LearnedParameters{}, fmt.Errorf("learned parameters out of range: tp=%v sl=%v",
			params.TakeProfitPct, params.StopLossPct)
	}
	return params, nil
}
