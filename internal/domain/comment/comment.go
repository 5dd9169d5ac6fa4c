package comment

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/shareit/service-booking/internal/platform/apperr"
)

// MaxTextLength is the longest accepted comment, in characters.
const MaxTextLength = 512

var (
	ErrInvalidComment    = apperr.New(apperr.KindBadRequest, "INVALID_COMMENT", "comment text is invalid")
	ErrCommentNotAllowed = apperr.New(apperr.KindBadRequest, "COMMENT_NOT_ALLOWED", "user has no finished approved booking of the item")
)

// Comment is a renter's note on an item.
type Comment struct {
	id        uuid.UUID
	itemID    uuid.UUID
	authorID  uuid.UUID
	author    string
	text      string
	createdAt time.Time
}

// NewComment creates a comment. Text is trimmed and must hold 1..MaxTextLength characters.
// author is the display name of the author.
func NewComment(itemID, authorID uuid.UUID, author, text string, createdAt time.Time) (*Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrInvalidComment.WithMessage("comment text should not be blank")
	}
	if n := utf8.RuneCountInString(text); n > MaxTextLength {
		return nil, ErrInvalidComment.WithMessagef("comment text is %d characters, at most %d allowed", n, MaxTextLength)
	}
	return &Comment{
		id:        uuid.New(),
		itemID:    itemID,
		authorID:  authorID,
		author:    author,
		text:      text,
		createdAt: createdAt.UTC(),
	}, nil
}

// Reconstruct rebuilds a Comment from persistence.
func Reconstruct(id, itemID, authorID uuid.UUID, author, text string, createdAt time.Time) *Comment {
	return &Comment{id: id, itemID: itemID, authorID: authorID, author: author, text: text, createdAt: createdAt}
}

// Getters.
func (c *Comment) ID() uuid.UUID        { return c.id }
func (c *Comment) ItemID() uuid.UUID    { return c.itemID }
func (c *Comment) AuthorID() uuid.UUID  { return c.authorID }
func (c *Comment) Author() string       { return c.author }
func (c *Comment) Text() string         { return c.text }
func (c *Comment) CreatedAt() time.Time { return c.createdAt }
