// Package review aggregates customer review rows into per-book statistics.
package review

import (
	"context"
	"time"
)

// Review is a single customer review. Reviews are immutable once written.
type Review struct {
	ID         int64
	BookID     int64
	Title      string
	Details    string
	ReviewDate time.Time
	RatingStar int
}

// Stats is the review aggregate for one book. Books without reviews have a
// zero count and a zero average rather than null semantics; views that need
// to exclude unreviewed books filter on Count.
type Stats struct {
	Count     int64
	AvgRating float64
}

// Repository computes review aggregates.
type Repository interface {
	// StatsForBook returns the review count and mean rating for a book.
	// A book with no reviews yields the zero Stats value.
	StatsForBook(ctx context.Context, bookID int64) (Stats, error)
}

// Summarize computes Stats from a slice of reviews.
func Summarize(reviews []Review) Stats {
	if len(reviews) == 0 {
		return Stats{}
	}
	var sum int
	for _, r := range reviews {
		sum += r.RatingStar
	}
	return Stats{
		Count:     int64(len(reviews)),
		AvgRating: float64(sum) / float64(len(reviews)),
	}
}
