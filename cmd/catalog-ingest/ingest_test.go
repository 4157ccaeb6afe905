package main

import (
	"context"
	"strings"
	"testing"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xenking/logos-bookstore/internal/domain/catalog"
)

// --- Mock implementations ---

type mockSink struct {
	nextID     int64
	authors    int
	categories int
	inserted   []catalog.Book
	copied     [][]catalog.Book
	stored     map[string]bool
}

func newMockSink(existing ...string) *mockSink {
	s := &mockSink{stored: map[string]bool{}}
	for _, k := range existing {
		s.stored[k] = true
	}
	return s
}

func (m *mockSink) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *mockSink) UpsertAuthor(_ context.Context, a *catalog.Author) error {
	m.authors++
	a.ID = m.id()
	return nil
}

func (m *mockSink) UpsertCategory(_ context.Context, c *catalog.Category) error {
	m.categories++
	c.ID = m.id()
	return nil
}

func (m *mockSink) InsertBook(_ context.Context, b *catalog.Book) (bool, error) {
	k := catalog.Key(b.Author.FirstName, b.Author.LastName, b.Title)
	if m.stored[k] {
		return false, nil
	}
	m.stored[k] = true
	b.ID = m.id()
	m.inserted = append(m.inserted, *b)
	return true, nil
}

func (m *mockSink) CopyBooks(_ context.Context, books []catalog.Book) (int64, error) {
	batch := make([]catalog.Book, len(books))
	copy(batch, books)
	for _, b := range batch {
		k := catalog.Key(b.Author.FirstName, b.Author.LastName, b.Title)
		if m.stored[k] {
			return 0, assert.AnError
		}
		m.stored[k] = true
	}
	m.copied = append(m.copied, batch)
	return int64(len(batch)), nil
}

// --- Helpers ---

func testRecord(title, first, last string) record {
	return record{
		Title:    title,
		Author:   catalog.Author{FirstName: first, LastName: last},
		Category: "Novela",
		Price:    decimal.NewFromInt(300),
		Stock:    5,
	}
}

func newTestIngester(s *mockSink, batchSize int, existing ...string) *ingester {
	known := bloom.NewWithEstimates(1000, 0.0001)
	for _, k := range existing {
		known.AddString(k)
	}
	return newIngester(zap.NewNop(), s, known, batchSize)
}

// --- Tests ---

func TestDecodeRecord(t *testing.T) {
	line := `{"title":" Rayuela ","author":{"first_name":"Julio","last_name":"Cortázar","extra":1},` +
		`"category":"Novela","price":"349.50","stock":12,"featured":true,"isbn":"x"}`

	r, err := decodeRecord([]byte(line))
	require.NoError(t, err)
	assert.Equal(t, "Rayuela", r.Title)
	assert.Equal(t, "Julio", r.Author.FirstName)
	assert.Equal(t, "Cortázar", r.Author.LastName)
	assert.Equal(t, "Novela", r.Category)
	assert.True(t, r.Price.Equal(decimal.RequireFromString("349.50")))
	assert.Equal(t, 12, r.Stock)
	assert.True(t, r.Featured)
}

func TestDecodeRecord_NumericPrice(t *testing.T) {
	r, err := decodeRecord([]byte(`{"title":"Ficciones","author":{"last_name":"Borges"},"price":199.9}`))
	require.NoError(t, err)
	assert.True(t, r.Price.Equal(decimal.RequireFromString("199.9")))
}

func TestDecodeRecord_Invalid(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{name: "not json", line: `not json`},
		{name: "missing title", line: `{"author":{"first_name":"Julio"},"price":"1"}`},
		{name: "missing author", line: `{"title":"Rayuela","price":"1"}`},
		{name: "negative price", line: `{"title":"Rayuela","author":{"first_name":"J"},"price":"-1"}`},
		{name: "negative stock", line: `{"title":"Rayuela","author":{"first_name":"J"},"stock":-2}`},
		{name: "bad price", line: `{"title":"Rayuela","author":{"first_name":"J"},"price":"abc"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decodeRecord([]byte(tt.line))
			assert.Error(t, err)
		})
	}
}

func TestIngester_NewBooksAreCopied(t *testing.T) {
	ctx := context.Background()
	s := newMockSink()
	in := newTestIngester(s, 2)

	require.NoError(t, in.add(ctx, testRecord("Rayuela", "Julio", "Cortázar")))
	require.NoError(t, in.add(ctx, testRecord("Bestiario", "Julio", "Cortázar")))
	require.NoError(t, in.add(ctx, testRecord("Ficciones", "Jorge Luis", "Borges")))
	require.NoError(t, in.flush(ctx))

	require.Len(t, s.copied, 2)
	assert.Len(t, s.copied[0], 2)
	assert.Len(t, s.copied[1], 1)
	assert.Empty(t, s.inserted)
	assert.Equal(t, int64(3), in.stats.Copied)

	assert.Equal(t, 2, s.authors, "authors are cached")
	assert.Equal(t, 1, s.categories, "categories are cached")
	for _, b := range s.copied[0] {
		require.NotNil(t, b.CategoryID)
		assert.True(t, b.Active)
	}
}

func TestIngester_KnownBooksUseInsert(t *testing.T) {
	ctx := context.Background()
	key := catalog.Key("Julio", "Cortázar", "Rayuela")
	s := newMockSink(key)
	in := newTestIngester(s, 10, key)

	require.NoError(t, in.add(ctx, testRecord("Rayuela", "Julio", "Cortázar")))
	require.NoError(t, in.flush(ctx))

	assert.Empty(t, s.copied)
	assert.Empty(t, s.inserted)
	assert.Equal(t, 1, in.stats.Duplicates)
}

func TestIngester_DuplicatesWithinFeed(t *testing.T) {
	ctx := context.Background()
	s := newMockSink()
	in := newTestIngester(s, 10)

	require.NoError(t, in.add(ctx, testRecord("Rayuela", "Julio", "Cortázar")))
	// Same book with different spelling of the title.
	require.NoError(t, in.add(ctx, testRecord("RAYUELA", "Julio", "Cortázar")))
	require.NoError(t, in.flush(ctx))

	// After the flush the key is stored; a later repeat goes through InsertBook.
	require.NoError(t, in.add(ctx, testRecord("Rayuela", "Julio", "Cortázar")))
	require.NoError(t, in.flush(ctx))

	require.Len(t, s.copied, 1)
	assert.Len(t, s.copied[0], 1)
	assert.Empty(t, s.inserted)
	assert.Equal(t, 2, in.stats.Duplicates)
	assert.Equal(t, 3, in.stats.Records)
}

func TestIngester_NoCategory(t *testing.T) {
	ctx := context.Background()
	s := newMockSink()
	in := newTestIngester(s, 10)

	r := testRecord("Rayuela", "Julio", "Cortázar")
	r.Category = ""
	require.NoError(t, in.add(ctx, r))
	require.NoError(t, in.flush(ctx))

	require.Len(t, s.copied, 1)
	assert.Nil(t, s.copied[0][0].CategoryID)
	assert.Zero(t, s.categories)
}

func TestRecordKey_FoldsAccentsAndCase(t *testing.T) {
	a := testRecord("Cien años de soledad", "Gabriel", "García Márquez")
	b := testRecord("CIEN AÑOS DE SOLEDAD", "gabriel", "garcia marquez")
	assert.Equal(t, a.key(), b.key())
	assert.True(t, strings.Contains(a.key(), "|"))
}
