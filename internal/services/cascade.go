package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/inkwell-blog/apiserver/internal/events"
	"github.com/inkwell-blog/apiserver/internal/media"
)

// Collections swept by the cascade engine.
const (
	collectionPosts    = "posts"
	collectionComments = "comments"
	collectionMedia    = "media"
)

// PartialCascadeError reports a primary delete that committed while one or
// more dependent sweeps failed. The named records are orphaned until a
// retry or the reconciler cleans them up; callers must not report plain
// success when they see this.
type PartialCascadeError struct {
	Entity string
	ID     int
	Failed []string
}

func (e *PartialCascadeError) Error() string {
	return fmt.Sprintf("%s %d deleted but cleanup incomplete: %s",
		e.Entity, e.ID, strings.Join(e.Failed, ", "))
}

// Cascade removes dependent records after a primary delete commits. The
// database holds no foreign keys between collections, so this engine is
// the only referential-integrity enforcement in the system.
//
// Sweeps are best-effort: every collection is attempted even when an
// earlier one fails, failures accumulate into a PartialCascadeError, and
// each outcome is published on the integrity channel. Re-invoking a sweep
// for an already-swept key is a no-op.
type Cascade struct {
	posts    PostRepository
	comments CommentRepository
	library  *media.Library
	bus      *events.Bus
}

func NewCascade(posts PostRepository, comments CommentRepository, library *media.Library, bus *events.Bus) *Cascade {
	return &Cascade{
		posts:    posts,
		comments: comments,
		library:  library,
		bus:      bus,
	}
}

// OnAccountDeleted removes every post owned by the account, every comment
// it authored, and the photo objects of those posts. photoKeys must be
// collected before the primary delete; afterwards the posts are gone.
func (c *Cascade) OnAccountDeleted(ctx context.Context, accountID int, photoKeys []string) error {
	ev := events.Event{
		Kind:      events.KindCascadeCompleted,
		Entity:    events.EntityAccount,
		EntityID:  accountID,
		PhotoKeys: photoKeys,
	}
	ev.Failed = c.sweepAccount(ctx, accountID, photoKeys, &ev)
	return c.finish(ctx, ev)
}

// OnPostDeleted removes every comment referencing the post and its photo
// object, if any.
func (c *Cascade) OnPostDeleted(ctx context.Context, postID int, photoKey string) error {
	ev := events.Event{
		Kind:     events.KindCascadeCompleted,
		Entity:   events.EntityPost,
		EntityID: postID,
	}
	if photoKey != "" {
		ev.PhotoKeys = []string{photoKey}
	}
	ev.Failed = c.sweepPost(ctx, postID, ev.PhotoKeys, &ev)
	return c.finish(ctx, ev)
}

// Retry re-runs the sweeps described by a partial event. It reports the
// collections that failed again, if any; the reconciler uses a non-empty
// result to requeue the event.
func (c *Cascade) Retry(ctx context.Context, ev events.Event) []string {
	switch ev.Entity {
	case events.EntityAccount:
		return c.sweepAccount(ctx, ev.EntityID, ev.PhotoKeys, nil)
	case events.EntityPost:
		return c.sweepPost(ctx, ev.EntityID, ev.PhotoKeys, nil)
	default:
		return nil
	}
}

func (c *Cascade) sweepAccount(ctx context.Context, accountID int, photoKeys []string, ev *events.Event) []string {
	var failed []string

	posts, err := c.posts.DeleteByAuthor(ctx, accountID)
	if err != nil {
		failed = append(failed, collectionPosts)
	} else if ev != nil {
		ev.SweptPosts = posts
	}

	comments, err := c.comments.DeleteByAuthor(ctx, accountID)
	if err != nil {
		failed = append(failed, collectionComments)
	} else if ev != nil {
		ev.SweptComments = comments
	}

	if c.sweepMedia(ctx, photoKeys) {
		failed = append(failed, collectionMedia)
	}
	return failed
}

func (c *Cascade) sweepPost(ctx context.Context, postID int, photoKeys []string, ev *events.Event) []string {
	var failed []string

	comments, err := c.comments.DeleteByPost(ctx, postID)
	if err != nil {
		failed = append(failed, collectionComments)
	} else if ev != nil {
		ev.SweptComments = comments
	}

	if c.sweepMedia(ctx, photoKeys) {
		failed = append(failed, collectionMedia)
	}
	return failed
}

func (c *Cascade) sweepMedia(ctx context.Context, photoKeys []string) (failed bool) {
	for _, key := range photoKeys {
		if err := c.library.RemovePhoto(ctx, key); err != nil {
			failed = true
		}
	}
	return failed
}

func (c *Cascade) finish(ctx context.Context, ev events.Event) error {
	if len(ev.Failed) > 0 {
		ev.Kind = events.KindCascadePartial
	}
	// Publishing is itself best-effort; a broker outage must not turn a
	// completed cascade into a reported failure. A dropped partial event
	// leaves the reconciler blind, so the drop at least leaves a trace.
	if err := c.bus.Publish(ctx, ev); err != nil {
		fmt.Fprintf(os.Stderr, "publish %s for %s %d: %v\n", ev.Kind, ev.Entity, ev.EntityID, err)
	}

	if len(ev.Failed) > 0 {
		return &PartialCascadeError{Entity: ev.Entity, ID: ev.EntityID, Failed: ev.Failed}
	}
	return nil
}

// mergeCascadeFailure folds an additional failed collection into a cascade
// outcome, upgrading a clean result into a partial one when needed.
func mergeCascadeFailure(err error, entity string, id int, collection string) error {
	var partial *PartialCascadeError
	if errors.As(err, &partial) {
		for _, failed := range partial.Failed {
			if failed == collection {
				return err
			}
		}
		partial.Failed = append(partial.Failed, collection)
		return partial
	}
	if err != nil {
		return err
	}
	return &PartialCascadeError{Entity: entity, ID: id, Failed: []string{collection}}
}
