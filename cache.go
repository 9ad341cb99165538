// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package pageview

import "github.com/gogpu/pageview/internal/cache"

// PageKey identifies one rendered page image: which document revision,
// which page, and at what pixel size it was rendered.
type PageKey struct {
	Revision uint64
	Page     int
	Width    int
	Height   int
}

// DefaultCacheSize is the number of page images kept by NewTextureCache(0).
const DefaultCacheSize = 16

// TextureCache is a least-recently-used cache of rendered page images.
// A viewer rebinds the page texture only when the displayed key changes,
// so returning to a page already seen costs no re-render.
//
// TextureCache is safe for concurrent use.
type TextureCache struct {
	lru *cache.LRU[PageKey, *Pixmap]
}

// NewTextureCache creates a cache holding at most capacity pages.
// capacity <= 0 selects DefaultCacheSize.
func NewTextureCache(capacity int) *TextureCache {
	if capacity <= 0 {
		capacity = DefaultCacheSize
	}
	return &TextureCache{lru: cache.New[PageKey, *Pixmap](capacity)}
}

// Get returns the cached page image for key and marks it recently used.
func (c *TextureCache) Get(key PageKey) (*Pixmap, bool) {
	return c.lru.Get(key)
}

// Put stores a page image, evicting the least recently used entry when full.
func (c *TextureCache) Put(key PageKey, pm *Pixmap) {
	c.lru.Set(key, pm)
}

// GetOrRender returns the cached image for key, calling render and caching
// its result on a miss. hit reports whether the image came from the cache.
// render runs without the cache lock held.
func (c *TextureCache) GetOrRender(key PageKey, render func() (*Pixmap, error)) (pm *Pixmap, hit bool, err error) {
	return c.lru.GetOrCreate(key, render)
}

// DropOlder removes every entry whose revision is older than revision, and
// returns how many were removed.
func (c *TextureCache) DropOlder(revision uint64) int {
	return c.lru.DeleteFunc(func(k PageKey) bool { return k.Revision < revision })
}

// Len returns the number of cached pages.
func (c *TextureCache) Len() int {
	return c.lru.Len()
}

// Stats returns hit and miss counts since creation or the last Purge.
func (c *TextureCache) Stats() (hits, misses uint64) {
	s := c.lru.Stats()
	return s.Hits, s.Misses
}

// Purge empties the cache and resets statistics.
func (c *TextureCache) Purge() {
	c.lru.Clear()
}
