package search

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDocs() []Document {
	return []Document{
		{ID: 1, Title: "João da Silva", Fields: []string{"Produção Eventos", "Segurança"}, Keys: []string{"52998224725"}},
		{ID: 2, Title: "Maria Joana Souza", Fields: []string{"Som & Luz", "Técnica"}, Keys: []string{"11144477735"}},
		{ID: 3, Title: "Joana Prado", Fields: []string{"Produção Eventos", "Recepção"}},
	}
}

func TestSearchPrefixAndAccents(t *testing.T) {
	ix := NewIndex(testDocs())

	assert.Equal(t, []uint{3, 2}, ix.Search("joana"))
	assert.Equal(t, []uint{1}, ix.Search("JOAO"))
	assert.ElementsMatch(t, []uint{1, 3}, ix.Search("produc"))
}

func TestSearchIsConjunctive(t *testing.T) {
	ix := NewIndex(testDocs())

	assert.Equal(t, []uint{3}, ix.Search("jo recep"))
	assert.Empty(t, ix.Search("joana seguranca"))
}

func TestSearchRanksExactMatchesFirst(t *testing.T) {
	ix := NewIndex([]Document{
		{ID: 1, Title: "Anabela Costa"},
		{ID: 2, Title: "Ana Lima"},
	})

	assert.Equal(t, []uint{2, 1}, ix.Search("ana"))
}

func TestSearchByCPF(t *testing.T) {
	ix := NewIndex(testDocs())

	assert.Equal(t, []uint{1}, ix.Search("529.982"))
	assert.Equal(t, []uint{2}, ix.Search("111.444.777-35"))
	assert.Empty(t, ix.Search("999"))
}

func TestSearchEmptyQuery(t *testing.T) {
	ix := NewIndex(testDocs())

	assert.Nil(t, ix.Search("  "))
	assert.Equal(t, 3, ix.Len())
}

func TestCacheBuildsOnceAndInvalidates(t *testing.T) {
	c, err := NewCache(2)
	require.NoError(t, err)

	builds := 0
	build := func() ([]Document, error) {
		builds++
		return testDocs(), nil
	}

	_, err = c.GetOrBuild(7, build)
	require.NoError(t, err)
	_, err = c.GetOrBuild(7, build)
	require.NoError(t, err)
	assert.Equal(t, 1, builds)

	c.Invalidate(7)
	_, err = c.GetOrBuild(7, build)
	require.NoError(t, err)
	assert.Equal(t, 2, builds)
}

func TestCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c, err := NewCache(2)
	require.NoError(t, err)

	empty := func() ([]Document, error) { return nil, nil }
	for _, id := range []uint{1, 2, 3} {
		_, err := c.GetOrBuild(id, empty)
		require.NoError(t, err)
	}
	assert.Equal(t, 2, c.Len())

	rebuilt := false
	_, err = c.GetOrBuild(1, func() ([]Document, error) {
		rebuilt = true
		return nil, nil
	})
	require.NoError(t, err)
	assert.True(t, rebuilt)
}

func TestCacheBuildError(t *testing.T) {
	c, err := NewCache(1)
	require.NoError(t, err)

	boom := errors.New("boom")
	_, err = c.GetOrBuild(1, func() ([]Document, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, c.Len())
}

func TestCacheSkipsIndexBuiltAcrossInvalidation(t *testing.T) {
	c, err := NewCache(2)
	require.NoError(t, err)

	builds := 0
	_, err = c.GetOrBuild(7, func() ([]Document, error) {
		builds++
		// a write lands while the documents are being loaded
		c.Invalidate(7)
		return testDocs(), nil
	})
	require.NoError(t, err)
	assert.Equal(t, 0, c.Len())

	_, err = c.GetOrBuild(7, func() ([]Document, error) {
		builds++
		return testDocs(), nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, builds)
	assert.Equal(t, 1, c.Len())
}
