// Package bufferpool implements the buffer pool manager: a fixed-size
// array of frames mediating between the table-page layer and the disk
// manager, backed by an LRU-K replacer for victim selection.
package bufferpool

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/sourcegraph/conc/pool"

	"github.com/relcore/relcore/internal/dberr"
	"github.com/relcore/relcore/internal/replacer"
	"github.com/relcore/relcore/internal/storage"
)

var logDebugPrefix = "bufferpool: "

// frameMeta tracks per-frame state: which page it holds and how many
// pinners are currently using it.
type frameMeta struct {
	page     *storage.TablePage
	pinCount int
}

// Pool owns pool_size frames, each holding at most one resident page.
type Pool struct {
	mu        sync.Mutex
	disk      storage.DiskManager
	replacer  *replacer.LRUK
	poolSize  int
	frames    []*frameMeta        // index is FrameID; nil means unassigned
	pageTable map[storage.PageID]replacer.FrameID
	freeList  []replacer.FrameID
}

// New constructs a Pool of poolSize frames over disk, using an LRU-K
// replacer with the given K for eviction.
func New(poolSize int, replacerK int, disk storage.DiskManager) *Pool {
	free := make([]replacer.FrameID, poolSize)
	for i := range free {
		free[i] = replacer.FrameID(i)
	}
	return &Pool{
		disk:      disk,
		replacer:  replacer.New(poolSize, replacer.WithK(replacerK)),
		poolSize:  poolSize,
		frames:    make([]*frameMeta, poolSize),
		pageTable: make(map[storage.PageID]replacer.FrameID),
		freeList:  free,
	}
}

// Size returns the number of frames in the pool.
func (p *Pool) Size() int { return p.poolSize }

// victimLocked returns a frame ready to receive a new page: popped from
// the free list, or evicted (flushing it first if dirty). The caller
// must hold p.mu.
func (p *Pool) victimLocked() (replacer.FrameID, bool, error) {
	if n := len(p.freeList); n > 0 {
		frame := p.freeList[n-1]
		p.freeList = p.freeList[:n-1]
		return frame, true, nil
	}
	frame, ok := p.replacer.Evict()
	if !ok {
		return 0, false, nil
	}
	var evictedPageID storage.PageID
	for pid, fid := range p.pageTable {
		if fid == frame {
			evictedPageID = pid
			break
		}
	}
	meta := p.frames[frame]
	if meta.page.IsDirty() {
		slog.Debug(logDebugPrefix+"flushing dirty victim before reuse", "pageID", evictedPageID, "frame", frame)
		if err := p.disk.WritePage(evictedPageID, meta.page.Serialize()); err != nil {
			return 0, false, err
		}
		meta.page.SetDirty(false)
	}
	delete(p.pageTable, evictedPageID)
	p.frames[frame] = nil
	return frame, true, nil
}

// NewPage allocates a fresh page on disk, installs it pinned into a
// frame, and returns its handle and id.
func (p *Pool) NewPage() (*storage.TablePage, storage.PageID, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	frame, ok, err := p.victimLocked()
	if err != nil {
		return nil, storage.InvalidPageID, err
	}
	if !ok {
		return nil, storage.InvalidPageID, nil
	}

	pageID, err := p.disk.AllocatePage()
	if err != nil {
		p.freeList = append(p.freeList, frame)
		return nil, storage.InvalidPageID, err
	}
	page := storage.NewTablePage(pageID, storage.InvalidPageID)

	p.frames[frame] = &frameMeta{page: page, pinCount: 1}
	p.pageTable[pageID] = frame
	if err := p.replacer.RecordAccess(frame, replacer.AccessLookup); err != nil {
		return nil, storage.InvalidPageID, err
	}
	if err := p.replacer.SetEvictable(frame, false); err != nil {
		return nil, storage.InvalidPageID, err
	}
	slog.Debug(logDebugPrefix+"new page", "pageID", pageID, "frame", frame)
	return page, pageID, nil
}

// FetchPage returns the handle for pageID, pinning it, loading it from
// disk into a frame first if it is not already resident. Returns
// (nil, false) if no frame could be freed.
func (p *Pool) FetchPage(pageID storage.PageID) (*storage.TablePage, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if frame, ok := p.pageTable[pageID]; ok {
		meta := p.frames[frame]
		meta.pinCount++
		if err := p.replacer.RecordAccess(frame, replacer.AccessLookup); err != nil {
			return nil, false, err
		}
		if err := p.replacer.SetEvictable(frame, false); err != nil {
			return nil, false, err
		}
		return meta.page, true, nil
	}

	frame, ok, err := p.victimLocked()
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}

	buf, err := p.disk.ReadPage(pageID)
	if err != nil {
		p.freeList = append(p.freeList, frame)
		return nil, false, err
	}
	page, err := storage.DeserializeTablePage(buf)
	if err != nil {
		p.freeList = append(p.freeList, frame)
		return nil, false, err
	}

	p.frames[frame] = &frameMeta{page: page, pinCount: 1}
	p.pageTable[pageID] = frame
	if err := p.replacer.RecordAccess(frame, replacer.AccessLookup); err != nil {
		return nil, false, err
	}
	if err := p.replacer.SetEvictable(frame, false); err != nil {
		return nil, false, err
	}
	slog.Debug(logDebugPrefix+"fetched page from disk", "pageID", pageID, "frame", frame)
	return page, true, nil
}

// UnpinPage decrements pageID's pin count, merging in isDirty (once
// dirty always dirty until flushed). Marks the frame evictable once
// the pin count reaches zero. Panics if pageID is not resident, per
// the fatal-on-unknown-page contract shared with FlushPage/DeletePage.
func (p *Pool) UnpinPage(pageID storage.PageID, isDirty bool) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	frame, ok := p.pageTable[pageID]
	if !ok {
		panic(fmt.Sprintf("bufferpool: unpin of unknown page %d", pageID))
	}
	meta := p.frames[frame]
	if meta.pinCount == 0 {
		return false
	}
	meta.pinCount--
	if isDirty {
		meta.page.SetDirty(true)
	}
	if meta.pinCount == 0 {
		if err := p.replacer.SetEvictable(frame, true); err != nil {
			slog.Error(logDebugPrefix+"set evictable after unpin", "pageID", pageID, "err", err)
		}
	}
	return true
}

// FlushPage writes pageID's bytes to disk unconditionally and clears
// its dirty bit. Panics if pageID is not resident.
func (p *Pool) FlushPage(pageID storage.PageID) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.flushLocked(pageID)
}

func (p *Pool) flushLocked(pageID storage.PageID) error {
	frame, ok := p.pageTable[pageID]
	if !ok {
		panic(fmt.Sprintf("bufferpool: flush of unknown page %d", pageID))
	}
	meta := p.frames[frame]
	if err := p.disk.WritePage(pageID, meta.page.Serialize()); err != nil {
		return err
	}
	meta.page.SetDirty(false)
	return nil
}

// FlushAllPages flushes every resident page, one goroutine per page.
// Each goroutine holds the pool mutex for its whole flush, so the disk
// writes themselves happen one at a time.
func (p *Pool) FlushAllPages() error {
	p.mu.Lock()
	pageIDs := make([]storage.PageID, 0, len(p.pageTable))
	for pid := range p.pageTable {
		pageIDs = append(pageIDs, pid)
	}
	p.mu.Unlock()

	wp := pool.New().WithErrors().WithMaxGoroutines(p.poolSize)
	for _, pid := range pageIDs {
		pid := pid
		wp.Go(func() error {
			p.mu.Lock()
			defer p.mu.Unlock()
			if _, ok := p.pageTable[pid]; !ok {
				return nil // evicted concurrently, nothing to flush
			}
			return p.flushLocked(pid)
		})
	}
	if err := wp.Wait(); err != nil {
		return dberr.Wrap(dberr.KindIO, "bufferpool: flush all pages", err)
	}
	return nil
}

// DeletePage removes pageID from the pool and deallocates it on disk.
// Returns false if the page is pinned. Panics if pageID is not resident.
func (p *Pool) DeletePage(pageID storage.PageID) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	frame, ok := p.pageTable[pageID]
	if !ok {
		panic(fmt.Sprintf("bufferpool: delete of unknown page %d", pageID))
	}
	meta := p.frames[frame]
	if meta.pinCount > 0 {
		return false, nil
	}
	delete(p.pageTable, pageID)
	p.frames[frame] = nil
	if err := p.replacer.Remove(frame); err != nil {
		slog.Debug(logDebugPrefix+"remove from replacer on delete (frame was not evictable yet)", "pageID", pageID, "err", err)
	}
	if err := p.disk.DeallocatePage(pageID); err != nil {
		return false, err
	}
	p.freeList = append(p.freeList, frame)
	return true, nil
}
