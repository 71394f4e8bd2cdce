package types

import "time"

// Post represents a published blog entry.
//
// Posts hold a non-owning back-reference to their author (AuthorID plus the
// denormalized AuthorHandle). The reference is used for lookup and cascade
// cleanup only; the database enforces no foreign-key constraint between
// posts and accounts.
type Post struct {
	// ID is the unique identifier of the post.
	ID int `json:"id" db:"id"`

	// Title is the post's display title, unique across posts.
	Title string `json:"title" db:"title"`

	// Body contains the full post text.
	Body string `json:"body" db:"body"`

	// Photo is the object key of an optional cover image in the media
	// store. Empty when the post has no photo.
	Photo string `json:"photo,omitempty" db:"photo"`

	// Categories are free-form labels attached to the post.
	Categories []string `json:"categories,omitempty" db:"categories"`

	// AuthorHandle is the handle of the owning account at creation time.
	AuthorHandle string `json:"author_handle" db:"author_handle"`

	// AuthorID is the identifier of the owning account.
	AuthorID int `json:"author_id" db:"author_id"`

	// CreatedAt is the timestamp at which the post was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the post.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
