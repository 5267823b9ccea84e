// Copyright 2025 The WordServe Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package main implements the tstserve completion server and its CLI [DBG] tools.

Note: This is a BETA release. APIs and functionality may rapidly change.

tstserve answers prefix completions from an in-memory ternary search tree,
ranked by weight. It can operate as a MessagePack IPC server for editors,
as an interactive CLI for testing, or as a one-shot builder that turns a
corpus into a snapshot that loads without rebuilding.

# Usage

Start the server with default settings:

	tstserve serve

Use a text dictionary and enable debug mode:

	tstserve serve --data words.txt -d

Run the interactive CLI:

	tstserve cli --limit 10 --prmin 2

Build a snapshot from chunk files:

	tstserve build --data data/ words.tst

The data path may be a directory of dict_0001.bin, dict_0002.bin, ... chunk
files, a .txt file with "word weight" lines, or a .tst snapshot.

# Configuration

Runtime configuration lives in a TOML file in the user's config dir and is
created with defaults on first run:

	[server]
	max_limit = 64
	default_limit = 24
	min_prefix = 1
	max_prefix = 60
	enable_filter = true

	[dict]
	path = "data/"
	chunk_count = 0
	max_words = 50000
	mapping = ""

	[engine]
	rank_by_weight = true
	hot_cache_size = 2048
	snapshot = ""
	save_on_exit = false
	lowercase_keys = true

Flags override the file. When engine.snapshot names an existing file it is
loaded instead of dict.path; with save_on_exit the dictionary, including
words added at runtime, is written back there on shutdown.

# IPC Protocol

See package server. Requests and responses are msgpack maps on stdin and
stdout; logs go to stderr or to --log-file.
*/
package main

func main() {
	Execute()
}
