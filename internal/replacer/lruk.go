// Package replacer implements the LRU-K frame-eviction policy used by
// the buffer pool to choose a victim frame.
package replacer

import (
	"math"

	"github.com/relcore/relcore/internal/dberr"
)

// FrameID identifies a buffer-pool frame.
type FrameID int

// AccessType classifies why a frame was touched. The replacer's choice
// of victim does not depend on it; the buffer pool passes AccessLookup
// for every access.
type AccessType int

const (
	AccessUnknown AccessType = iota
	AccessLookup
	AccessScan
	AccessIndex
)

const infiniteDistance = math.MaxInt64

type node struct {
	history     []int64 // oldest at front, bounded to k entries
	evictable   bool
}

func (n *node) backwardKDistance(k int, currentTimestamp int64) int64 {
	if len(n.history) != k {
		return infiniteDistance
	}
	return currentTimestamp - n.history[0]
}

func (n *node) mostRecent() int64 { return n.history[len(n.history)-1] }

// LRUK tracks per-frame access history and selects eviction victims by
// largest backward K-distance, tie-broken by least-recent last access.
type LRUK struct {
	nodes            map[FrameID]*node
	currentTimestamp int64
	currSize         int
	maxSize          int
	k                int
}

// Option configures an LRUK at construction.
type Option func(*LRUK)

// WithK sets the number of accesses tracked per frame before its
// backward distance becomes finite. Default 2.
func WithK(k int) Option {
	return func(r *LRUK) { r.k = k }
}

// New constructs an LRUK replacer over numFrames frames.
func New(numFrames int, opts ...Option) *LRUK {
	r := &LRUK{
		nodes:   make(map[FrameID]*node),
		maxSize: numFrames,
		k:       2,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RecordAccess appends the current timestamp to frame's history,
// evicting the oldest entry once the history holds k entries, and
// advances the global timestamp. Unknown frames are created
// non-evictable. Fails if frame >= the replacer's frame count.
func (r *LRUK) RecordAccess(frame FrameID, _ AccessType) error {
	if int(frame) >= r.maxSize {
		return dberr.New(dberr.KindInvalidInput, "replacer: invalid frame id")
	}
	n, ok := r.nodes[frame]
	if !ok {
		n = &node{}
		r.nodes[frame] = n
	}
	if len(n.history) < r.k {
		n.history = append(n.history, r.currentTimestamp)
	} else {
		n.history = append(n.history[1:], r.currentTimestamp)
	}
	r.currentTimestamp++
	return nil
}

// SetEvictable flips frame's evictable bit, adjusting curr_size.
// Idempotent. Fails if frame is unknown.
func (r *LRUK) SetEvictable(frame FrameID, evictable bool) error {
	n, ok := r.nodes[frame]
	if !ok {
		return dberr.New(dberr.KindInvalidInput, "replacer: unknown frame id")
	}
	if n.evictable == evictable {
		return nil
	}
	n.evictable = evictable
	if evictable {
		r.currSize++
	} else {
		r.currSize--
	}
	return nil
}

// Evict removes and returns the evictable frame with the largest
// backward K-distance (infinite for frames with fewer than k
// accesses), ties broken by least-recent last access. Returns
// (0, false) if no frame is evictable.
func (r *LRUK) Evict() (FrameID, bool) {
	var (
		victim    FrameID
		found     bool
		bestDist  int64 = -1
		bestRecent int64 = math.MaxInt64
	)
	for frame, n := range r.nodes {
		if !n.evictable {
			continue
		}
		dist := n.backwardKDistance(r.k, r.currentTimestamp)
		recent := n.mostRecent()
		switch {
		case dist > bestDist:
			bestDist, bestRecent, victim, found = dist, recent, frame, true
		case dist == bestDist && recent < bestRecent:
			bestRecent, victim, found = recent, frame, true
		}
	}
	if !found {
		return 0, false
	}
	delete(r.nodes, victim)
	r.currSize--
	return victim, true
}

// Remove erases frame's history outright, independent of its backward
// distance. A no-op if frame is unknown. Fails if frame is present but
// not evictable.
func (r *LRUK) Remove(frame FrameID) error {
	n, ok := r.nodes[frame]
	if !ok {
		return nil
	}
	if !n.evictable {
		return dberr.New(dberr.KindInternal, "replacer: cannot remove a non-evictable frame")
	}
	delete(r.nodes, frame)
	r.currSize--
	return nil
}

// Size returns the number of evictable frames tracked.
func (r *LRUK) Size() int { return r.currSize }
