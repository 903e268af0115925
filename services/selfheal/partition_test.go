// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package selfheal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultPartitions(t *testing.T) *Partitions {
	t.Helper()
	reg, err := NewPartitions(
		Partition{Name: "notes", BasePath: "/notebook", Locale: "en"},
		Partition{Name: "notas", BasePath: "es/cuaderno/", Locale: "es"},
		Partition{Name: "team", BasePath: "/team", Locale: "en"},
		Partition{Name: "equipo", BasePath: "/es/equipo", Locale: "es"},
	)
	require.NoError(t, err)
	return reg
}

func TestParseCollectionName(t *testing.T) {
	name, err := ParseCollectionName("notas")
	require.NoError(t, err)
	assert.Equal(t, CollectionName("notas"), name)

	for _, bad := range []string{"", "Notes", "no tes", "notes/", "ñotas"} {
		_, err := ParseCollectionName(bad)
		assert.ErrorIs(t, err, ErrInvalidCollectionName, bad)
	}
}

func TestNewPartitions_NormalizesBasePath(t *testing.T) {
	reg := defaultPartitions(t)
	p, ok := reg.Lookup("notas")
	require.True(t, ok)
	assert.Equal(t, "/es/cuaderno", p.BasePath)
	assert.Equal(t, 4, reg.Len())
}

func TestNewPartitions_Rejects(t *testing.T) {
	_, err := NewPartitions(
		Partition{Name: "notes", BasePath: "/notebook"},
		Partition{Name: "notes", BasePath: "/other"},
	)
	assert.ErrorIs(t, err, ErrDuplicatePartition)

	_, err = NewPartitions(
		Partition{Name: "notes", BasePath: "/notebook"},
		Partition{Name: "notas", BasePath: "/notebook/"},
	)
	assert.ErrorIs(t, err, ErrDuplicatePartition)

	_, err = NewPartitions(Partition{Name: "notes", BasePath: "/"})
	assert.ErrorIs(t, err, ErrInvalidPartition)

	_, err = NewPartitions(Partition{Name: "Notes", BasePath: "/notebook"})
	assert.ErrorIs(t, err, ErrInvalidCollectionName)
}

func TestPartitions_Match(t *testing.T) {
	reg := defaultPartitions(t)

	tests := []struct {
		path string
		want CollectionName
		ok   bool
	}{
		{"/notebook/brdcst-title", "notes", true},
		{"/es/cuaderno/brdcst-titulo", "notas", true},
		{"/team/giorgio", "team", true},
		{"/es/equipo/giorgio", "equipo", true},
		{"/notebook/", "", false},
		{"/notebook", "", false},
		{"/notebooks/brdcst", "", false},
		{"/es/brdcst", "", false},
		{"/", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			p, ok := reg.Match(tt.path)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, p.Name)
		})
	}
}

func TestPartitions_MatchPrefersLongestBasePath(t *testing.T) {
	reg, err := NewPartitions(
		Partition{Name: "es", BasePath: "/es"},
		Partition{Name: "notas", BasePath: "/es/cuaderno"},
	)
	require.NoError(t, err)

	p, ok := reg.Match("/es/cuaderno/brdcst")
	require.True(t, ok)
	assert.Equal(t, CollectionName("notas"), p.Name)

	p, ok = reg.Match("/es/sobre-mi")
	require.True(t, ok)
	assert.Equal(t, CollectionName("es"), p.Name)
}

func TestPartitions_All(t *testing.T) {
	reg := defaultPartitions(t)
	var names []CollectionName
	for _, p := range reg.All() {
		names = append(names, p.Name)
	}
	assert.Equal(t, []CollectionName{"equipo", "notas", "notes", "team"}, names)
}

func TestPartition_EntryPath(t *testing.T) {
	assert.Equal(t, "/notebook/brdcst-title", notesPartition.EntryPath("brdcst-title"))
	assert.True(t, Partition{}.IsZero())
	assert.False(t, notesPartition.IsZero())
}
