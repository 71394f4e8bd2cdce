package types

import "time"

// Comment represents a reply to a post. Like Post it carries value
// back-references (PostID, AuthorID) with no database-level constraint;
// cascade cleanup is the only thing keeping them from dangling.
type Comment struct {
	ID           int       `json:"id" db:"id"`
	Body         string    `json:"body" db:"body"`
	AuthorHandle string    `json:"author_handle" db:"author_handle"`
	PostID       int       `json:"post_id" db:"post_id"`
	AuthorID     int       `json:"author_id" db:"author_id"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
