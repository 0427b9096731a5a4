// Copyright ©2024 The GUDA Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package cacheprobe measures the capacity and line size of the first-level
// data cache by timing pointer-chasing traversals.
//
// A traversal buffer links every slot to one stride further back, so each
// load depends on the value of the previous one and neither out-of-order
// execution nor a stride prefetcher can run ahead of the chase. Sweeping the
// buffer size shows where traversal time starts climbing (the capacity);
// sweeping the stride at that size shows where per-hop timings stop jumping
// between hits and misses (the line size).
//
// The measurement path is single-threaded. Callers should pin the measuring
// goroutine with PinThread and keep the garbage collector quiet while a
// sweep runs.
package cacheprobe
