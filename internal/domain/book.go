package domain

import "time"

// BookFormat distinguishes how a book is read. Paper books track pages;
// ebooks and audiobooks may only have a progress percentage.
type BookFormat string

const (
	FormatPaper BookFormat = "paper"
	FormatEbook BookFormat = "ebook"
	FormatAudio BookFormat = "audio"
)

func (f BookFormat) Valid() bool {
	switch f {
	case FormatPaper, FormatEbook, FormatAudio:
		return true
	}
	return false
}

type BookStatus string

const (
	StatusToRead   BookStatus = "toRead"
	StatusReading  BookStatus = "reading"
	StatusOnHold   BookStatus = "onHold"
	StatusDNF      BookStatus = "dnf"
	StatusFinished BookStatus = "finished"
)

func (s BookStatus) Valid() bool {
	switch s {
	case StatusToRead, StatusReading, StatusOnHold, StatusDNF, StatusFinished:
		return true
	}
	return false
}

type Book struct {
	Record
	Title       string     `json:"title"`
	Author      string     `json:"author"`
	Genre       string     `json:"genre,omitempty"`
	Format      BookFormat `json:"format"`
	Status      BookStatus `json:"status"`
	CurrentPage int        `json:"currentPage"`
	TotalPages  int        `json:"totalPages,omitempty"`
	// Progress is a fraction in [0,1]. Authoritative for ebook and audio
	// formats; derived from CurrentPage/TotalPages for paper books.
	Progress      float64    `json:"progress"`
	ISBN          string     `json:"isbn,omitempty"`
	Description   string     `json:"description,omitempty"`
	CoverPath     string     `json:"coverPath,omitempty"`
	CoverBlurHash string     `json:"coverBlurHash,omitempty"`
	LastReadAt    *time.Time `json:"lastReadAt,omitempty"`
	StartedAt     *time.Time `json:"startedAt,omitempty"`
	CompletedAt   *time.Time `json:"completedAt,omitempty"`
}

// ApplyPage records a new current page and rederives progress when the
// book has a known page count. Finishing is one way: once progress hits
// 1 the book stays finished even if pages are later walked back.
func (b *Book) ApplyPage(page int, now time.Time) {
	if page < 0 {
		page = 0
	}
	b.CurrentPage = page
	if b.TotalPages > 0 {
		b.setProgress(float64(page)/float64(b.TotalPages), now)
	}
	b.markRead(now)
}

// ApplyProgress overwrites the progress fraction directly. Used for
// ebook and audio formats that have no meaningful page numbers.
func (b *Book) ApplyProgress(progress float64, now time.Time) {
	b.setProgress(progress, now)
	b.markRead(now)
}

// MarkReading flips the book into the reading status when a session
// starts, stamping StartedAt the first time.
func (b *Book) MarkReading(now time.Time) {
	b.Status = StatusReading
	if b.StartedAt == nil {
		b.StartedAt = &now
	}
	b.markRead(now)
}

func (b *Book) setProgress(progress float64, now time.Time) {
	if progress < 0 {
		progress = 0
	}
	if progress > 1 {
		progress = 1
	}
	b.Progress = progress
	if progress >= 1 && b.Status != StatusFinished {
		b.Status = StatusFinished
		b.CompletedAt = &now
	}
}

func (b *Book) markRead(now time.Time) {
	b.LastReadAt = &now
}

// RemainingPages returns the pages left to read, or 0 when the book has
// no page count.
func (b *Book) RemainingPages() int {
	if b.TotalPages <= 0 {
		return 0
	}
	remaining := b.TotalPages - b.CurrentPage
	if remaining < 0 {
		return 0
	}
	return remaining
}
