/*
Package stagefs provides a staged (transactional) filesystem layer for Go.
All mutations (writes, deletes, copies and moves) are recorded in memory
and merged over a real base filesystem, so transformation code can rework a
file tree speculatively and only touch real storage when the caller commits.

# Overview

A stagefs.FS sits in front of a base filesystem (any afero.Fs) rooted at a
working directory. Reads see a single merged view of "real + pending":
staged entries shadow real entries of the same path, deletions hide real
entries, and renames are tracked back to the original on-disk path so that
queries and the eventual commit still resolve correctly after a file or a
whole directory tree has been moved.

When the transformation is done, Diff produces an ordered snapshot of every
pending mutation. The snapshot can be rendered for preview, serialized, or
handed to an Applier to commit against real storage.

# Key Features

  - Merged view of real and staged state with staged-entry shadowing
  - Tombstone tracking for deletions of real paths
  - Rename bindings: reads and deletes resolve through prior moves
  - Recursive directory moves without per-file bookkeeping
  - Ignore-pattern-aware glob over the merged namespace
  - Ordered, serializable diffs with a safe commit ordering contract

# Basic Usage

	package main

	import (
	    "context"
	    "os"

	    "github.com/absfs/stagefs"
	    "github.com/spf13/afero"
	)

	func main() {
	    base := afero.NewOsFs()

	    sfs, err := stagefs.New(base,
	        stagefs.WithRoot("/work"),
	        stagefs.WithIgnoredGlobs(".git/**", "node_modules/**"),
	    )
	    if err != nil {
	        panic(err)
	    }

	    // Mutations are staged in memory; real storage is untouched.
	    sfs.WriteFile("/work/b.txt", []byte("new"))
	    sfs.Remove("/work/a.txt")
	    sfs.MkdirAll("/work/sub")
	    sfs.Rename("/work/b.txt", "/work/sub/b.txt")

	    // Reads observe the merged view.
	    data, _ := sfs.ReadFile("/work/sub/b.txt") // "new"

	    // Preview, then commit.
	    diff := sfs.Diff()
	    stagefs.WritePreview(os.Stdout, diff, nil)

	    applier := stagefs.NewApplier(base)
	    if err := sfs.Commit(context.Background(), applier); err != nil {
	        panic(err)
	    }
	    _ = data
	}

# Merged View

Queries combine overlay state with the base filesystem:

	// Base has /work/x.txt. Stage a file of the same name:
	sfs.WriteFile("/work/x.txt", []byte("staged"))

	entries, _ := sfs.ReadDir("/work")
	// One entry named x.txt: the staged file shadows the real one.

Deleting a real path records a tombstone; the path and everything below it
disappears from the merged view but stays on disk until commit.

# Moves

Moving a path that exists only in the overlay is pure map rewriting. Moving
a path that originates on real disk additionally records one replayable
move operation and a rename binding per real descendant, so later reads of
the destination resolve to the original on-disk bytes:

	sfs.Rename("/work/src", "/work/dst")
	data, _ := sfs.ReadFile("/work/dst/keep.go") // reads /work/src/keep.go

Prefix matching during a move is path-separator aware: moving /work/dir1
never disturbs /work/dir10.

# Commit Ordering

An Applier must apply deletions first, then replay move operations in
recorded order, then materialize staged entries parent-before-child. The
Applier returned by NewApplier sorts staged entries by path depth and
creates parent directories unconditionally before writing any file. A
failure partway through commit leaves real storage in a mixed state; there
is no rollback.

# Concurrency

An FS is single-owner state for one transformation run. No internal locking
is provided; wrap access in your own synchronization if you must share one
instance across goroutines.

# Limitations

  - Copying a directory is not supported (copy is defined on file content)
  - No write-ahead log or crash durability; the diff lives in memory
  - Commit is not transactional; partial failure is reported, not undone
*/
package stagefs
