// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package content

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/Giorgiosaud/giorgiosaud.io/pkg/logging"
	"github.com/Giorgiosaud/giorgiosaud.io/services/selfheal"
)

func TestWatcher_ReloadsOnChange(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	root, sources := fixture(t)
	ix := newTestIndex(t, sources...)
	require.NoError(t, ix.Load(context.Background()))

	reloaded := make(chan selfheal.CollectionName, 8)
	ix.OnReload(func(s *Snapshot) { reloaded <- s.Collection() })

	w, err := NewWatcher(ix, 20*time.Millisecond, logging.Nop().Slog())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, w.Start(ctx))
	defer func() {
		cancel()
		w.Stop()
	}()
	assert.True(t, w.IsWatching())

	writeFile(t, filepath.Join(root, "notes/es/nvnt-nuevo.md"), note("Nuevo", "nvntxx", "2024-05-01", false))

	select {
	case name := <-reloaded:
		assert.Equal(t, selfheal.CollectionName("notas"), name)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reload")
	}

	entries, err := ix.ListEntries(context.Background(), "notas")
	require.NoError(t, err)
	assert.Contains(t, entries, selfheal.Entry{Code: "nvntxx", Slug: "nvnt-nuevo"})
}

func TestWatcher_PicksUpCollectionCreatedLater(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "notes/en/brdcst-new-title.md"), note("Broadcast", "brdcst", "2024-01-10", false))
	ix := newTestIndex(t,
		Source{Name: "notes", Dir: filepath.Join(root, "notes/en"), RequireCode: true},
		Source{Name: "notas", Dir: filepath.Join(root, "notes/es"), RequireCode: true},
		Source{Name: "equipo", Dir: filepath.Join(root, "team/es")},
	)
	require.NoError(t, ix.Load(context.Background()))

	w, err := NewWatcher(ix, 20*time.Millisecond, logging.Nop().Slog())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, w.Start(ctx))
	defer func() {
		cancel()
		w.Stop()
	}()

	want := selfheal.Entry{Code: "nvntxx", Slug: "nvnt-nuevo"}
	writeFile(t, filepath.Join(root, "notes/es/nvnt-nuevo.md"), note("Nuevo", "nvntxx", "2024-05-01", false))

	assert.Eventually(t, func() bool {
		entries, err := ix.ListEntries(context.Background(), "notas")
		return err == nil && len(entries) == 1 && entries[0] == want
	}, 5*time.Second, 20*time.Millisecond, "notes/es was created after Start")

	writeFile(t, filepath.Join(root, "team/es/ana.md"), "---\nname: Ana\n---\n")
	assert.Eventually(t, func() bool {
		snap, err := ix.Snapshot(context.Background(), "equipo")
		return err == nil && snap.Len() == 1
	}, 5*time.Second, 20*time.Millisecond, "team/ did not exist at Start")
}

func TestExistingAncestor(t *testing.T) {
	root := t.TempDir()
	got, ok := existingAncestor(filepath.Join(root, "notes", "es"))
	require.True(t, ok)
	assert.Equal(t, root, got)

	got, ok = existingAncestor(root)
	require.True(t, ok)
	assert.Equal(t, filepath.Dir(root), got)
}

func TestWatcher_CollectionsUnder(t *testing.T) {
	ix := newTestIndex(t,
		Source{Name: "notes", Dir: "/content/notes/en"},
		Source{Name: "notas", Dir: "/content/notes/es"},
		Source{Name: "team", Dir: "/content/team/en"},
	)
	w, err := NewWatcher(ix, 0, nil)
	require.NoError(t, err)
	defer w.Stop()

	assert.ElementsMatch(t, []selfheal.CollectionName{"notes", "notas"}, w.collectionsUnder("/content/notes"))
	assert.Equal(t, []selfheal.CollectionName{"notas"}, w.collectionsUnder("/content/notes/es"))
	assert.Equal(t, []selfheal.CollectionName{"team"}, w.collectionsUnder("/content/team/en/css"))
	assert.Empty(t, w.collectionsUnder("/content/blog"))
}

func TestWatcher_CollectionFor(t *testing.T) {
	ix := newTestIndex(t,
		Source{Name: "notes", Dir: "/content/notes"},
		Source{Name: "drafts", Dir: "/content/notes/drafts"},
	)
	w, err := NewWatcher(ix, 0, nil)
	require.NoError(t, err)
	defer w.Stop()

	name, ok := w.collectionFor("/content/notes/drafts/a.md")
	require.True(t, ok)
	assert.Equal(t, selfheal.CollectionName("drafts"), name)

	name, ok = w.collectionFor("/content/notes/a.md")
	require.True(t, ok)
	assert.Equal(t, selfheal.CollectionName("notes"), name)

	_, ok = w.collectionFor("/content/notesx/a.md")
	assert.False(t, ok)
	assert.Equal(t, DefaultDebounce, w.debounce)
}
