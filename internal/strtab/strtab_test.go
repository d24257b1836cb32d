package strtab

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInternAssignsSequentialLabels(t *testing.T) {
	tab := New()
	assert.Equal(t, "str_0", tab.Intern("hello"))
	assert.Equal(t, "str_1", tab.Intern("world"))
}

func TestInternReusesLabelForIdenticalContent(t *testing.T) {
	tab := New()
	first := tab.Intern("duplicate")
	second := tab.Intern("duplicate")
	assert.Equal(t, first, second)

	entries := tab.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "duplicate", entries[0].Content)
}

func TestEntriesPreserveFirstSeenOrder(t *testing.T) {
	tab := New()
	tab.Intern("b")
	tab.Intern("a")
	tab.Intern("b")

	entries := tab.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "b", entries[0].Content)
	assert.Equal(t, "a", entries[1].Content)
}

func TestEncodeRodataPlainString(t *testing.T) {
	assert.Equal(t, "db 'h', 'i', 0", EncodeRodata("hi"))
}

func TestEncodeRodataEscapesSpecialBytes(t *testing.T) {
	got := EncodeRodata("a\nb")
	assert.Equal(t, "db 'a', 10, 'b', 0", got)
}

func TestEncodeRodataAllEscapeBytes(t *testing.T) {
	got := EncodeRodata("\n\r\t'\"\\")
	assert.Equal(t, "db 10, 13, 9, 39, 34, 92, 0", got)
}

func TestEncodeRodataEmptyString(t *testing.T) {
	assert.Equal(t, "db 0", EncodeRodata(""))
}
