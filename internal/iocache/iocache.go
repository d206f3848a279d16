// Package iocache persists run history and caches external tool output.
package iocache

import (
	"fmt"
	"sync"

	"github.com/huangsam/rcqm/internal/contract"
	"github.com/huangsam/rcqm/schema"
)

// CacheStoreManager manages the tool cache and the history store.
type CacheStoreManager struct {
	sync.RWMutex // Protects the store pointers during initialization
	tool         contract.CacheStore
	history      contract.HistoryStore
}

var _ contract.CacheManager = &CacheStoreManager{} // Compile-time check

// Global Manager instance for main logic.
var (
	Manager   = &CacheStoreManager{}
	initOnce  sync.Once
	closeOnce sync.Once
)

// GetToolStore returns the tool output CacheStore.
func (mgr *CacheStoreManager) GetToolStore() contract.CacheStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.tool
}

// GetHistoryStore returns the run HistoryStore.
func (mgr *CacheStoreManager) GetHistoryStore() contract.HistoryStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.history
}

// InitStores initializes the global manager with the tool cache and history stores.
// An empty or none backend still yields a no-op store.
func InitStores(cacheBackend schema.DatabaseBackend, cacheConnStr string, historyBackend schema.DatabaseBackend, historyConnStr string) error {
	var initErr error

	initOnce.Do(func() {
		toolStore, err := NewCacheStore(toolCacheTable, cacheBackend, cacheConnStr)
		if err != nil {
			initErr = fmt.Errorf("failed to initialize tool caching: %w", err)
			return
		}

		historyStore, err := NewHistoryStore(historyBackend, historyConnStr)
		if err != nil {
			_ = toolStore.Close()
			initErr = fmt.Errorf("failed to initialize history store: %w", err)
			return
		}

		Manager.Lock()
		defer Manager.Unlock()
		Manager.tool = toolStore
		Manager.history = historyStore
	})

	return initErr
}

// CloseStores should be called on application shutdown.
func CloseStores() {
	closeOnce.Do(func() {
		Manager.Lock()
		defer Manager.Unlock()
		if Manager.tool != nil {
			_ = Manager.tool.Close()
		}
		if Manager.history != nil {
			_ = Manager.history.Close()
		}
	})
}
