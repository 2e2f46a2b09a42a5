package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBook_ApplyPage(t *testing.T) {
	now := time.Now().UTC()

	t.Run("derives progress from page count", func(t *testing.T) {
		book := &Book{Status: StatusReading, TotalPages: 300}
		book.ApplyPage(80, now)

		assert.Equal(t, 80, book.CurrentPage)
		assert.InDelta(t, 0.267, book.Progress, 0.001)
		assert.Equal(t, StatusReading, book.Status)
		require.NotNil(t, book.LastReadAt)
		assert.Equal(t, now, *book.LastReadAt)
	})

	t.Run("finishes at the last page", func(t *testing.T) {
		book := &Book{Status: StatusReading, TotalPages: 300, CurrentPage: 299}
		book.ApplyPage(300, now)

		assert.Equal(t, 1.0, book.Progress)
		assert.Equal(t, StatusFinished, book.Status)
		require.NotNil(t, book.CompletedAt)
		assert.Equal(t, now, *book.CompletedAt)
	})

	t.Run("finishing is idempotent", func(t *testing.T) {
		book := &Book{Status: StatusReading, TotalPages: 300}
		book.ApplyPage(300, now)
		first := *book.CompletedAt

		later := now.Add(time.Hour)
		book.ApplyPage(300, later)

		assert.Equal(t, first, *book.CompletedAt, "completion timestamp must not be re-stamped")
		assert.Equal(t, later, *book.LastReadAt)
	})

	t.Run("finished status survives a page walk back", func(t *testing.T) {
		book := &Book{Status: StatusReading, TotalPages: 300}
		book.ApplyPage(300, now)
		book.ApplyPage(150, now)

		assert.Equal(t, StatusFinished, book.Status)
		assert.InDelta(t, 0.5, book.Progress, 0.001)
	})

	t.Run("no page count leaves progress alone", func(t *testing.T) {
		book := &Book{Status: StatusReading, Progress: 0.4}
		book.ApplyPage(212, now)

		assert.Equal(t, 212, book.CurrentPage)
		assert.Equal(t, 0.4, book.Progress)
	})

	t.Run("negative page is clamped to zero", func(t *testing.T) {
		book := &Book{Status: StatusReading, TotalPages: 100}
		book.ApplyPage(-5, now)

		assert.Equal(t, 0, book.CurrentPage)
		assert.Equal(t, 0.0, book.Progress)
	})
}

func TestBook_ApplyProgress(t *testing.T) {
	now := time.Now().UTC()

	t.Run("overwrites progress directly", func(t *testing.T) {
		book := &Book{Status: StatusReading, Format: FormatAudio}
		book.ApplyProgress(0.65, now)

		assert.Equal(t, 0.65, book.Progress)
		assert.Equal(t, StatusReading, book.Status)
	})

	t.Run("clamps outside the unit interval", func(t *testing.T) {
		book := &Book{Status: StatusReading}
		book.ApplyProgress(-0.2, now)
		assert.Equal(t, 0.0, book.Progress)

		book.ApplyProgress(1.7, now)
		assert.Equal(t, 1.0, book.Progress)
		assert.Equal(t, StatusFinished, book.Status)
	})
}

func TestBook_MarkReading(t *testing.T) {
	now := time.Now().UTC()
	book := &Book{Status: StatusToRead}

	book.MarkReading(now)
	assert.Equal(t, StatusReading, book.Status)
	require.NotNil(t, book.StartedAt)
	first := *book.StartedAt

	book.MarkReading(now.Add(time.Hour))
	assert.Equal(t, first, *book.StartedAt, "StartedAt is stamped once")
}

func TestBook_RemainingPages(t *testing.T) {
	assert.Equal(t, 250, (&Book{TotalPages: 300, CurrentPage: 50}).RemainingPages())
	assert.Equal(t, 0, (&Book{TotalPages: 300, CurrentPage: 350}).RemainingPages())
	assert.Equal(t, 0, (&Book{CurrentPage: 50}).RemainingPages())
}

func TestBookFormatAndStatusValidity(t *testing.T) {
	assert.True(t, FormatPaper.Valid())
	assert.True(t, FormatEbook.Valid())
	assert.True(t, FormatAudio.Valid())
	assert.False(t, BookFormat("vinyl").Valid())

	assert.True(t, StatusToRead.Valid())
	assert.True(t, StatusFinished.Valid())
	assert.False(t, BookStatus("lent-out").Valid())
}
