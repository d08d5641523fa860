package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

var (
	ErrInvalidItem = goerr.New("invalid item")
)

type ItemID string

// NewItemID generates a new unique ItemID
func NewItemID() ItemID {
	return ItemID(uuid.New().String())
}

type ItemType string

const (
	ItemTypeArticle ItemType = "article"
	ItemTypeVideo   ItemType = "video"
	ItemTypeNote    ItemType = "note"
	ItemTypeImage   ItemType = "image"
	ItemTypeTweet   ItemType = "tweet"
	ItemTypeChatLog ItemType = "chat_log"
	ItemTypeLink    ItemType = "link"
)

// Validate checks if the item type is valid
func (t ItemType) Validate() error {
	switch t {
	case ItemTypeArticle, ItemTypeVideo, ItemTypeNote, ItemTypeImage, ItemTypeTweet, ItemTypeChatLog, ItemTypeLink:
		return nil
	default:
		return goerr.Wrap(ErrInvalidItem, "invalid item type", goerr.V("type", t))
	}
}

type ItemStatus string

const (
	ItemStatusNew      ItemStatus = "new"
	ItemStatusLearned  ItemStatus = "learned"
	ItemStatusArchived ItemStatus = "archived"
)

// Validate checks if the item status is valid
func (s ItemStatus) Validate() error {
	switch s {
	case ItemStatusNew, ItemStatusLearned, ItemStatusArchived:
		return nil
	default:
		return goerr.Wrap(ErrInvalidItem, "invalid item status", goerr.V("status", s))
	}
}

type ItemSource string

const (
	ItemSourceExtension ItemSource = "extension"
	ItemSourceWeb       ItemSource = "web"
	ItemSourceChat      ItemSource = "chat"
)

// Item is one unit of captured knowledge. It is produced by the capture
// flow and consumed read-only by the retrieval engine.
type Item struct {
	ID      ItemID
	SpaceID SpaceID
	Type    ItemType

	Title   string
	Summary string
	Content string
	URL     string
	Tags    []string

	CreatedAt time.Time
	UpdatedAt time.Time
	Status    ItemStatus
	Pinned    bool
	Source    ItemSource
}

// Validate checks the item invariants. Title must be present; absence of
// summary or content is not an error, the scorer just gets no signal from
// that field.
func (x *Item) Validate() error {
	if x.ID == "" {
		return goerr.Wrap(ErrInvalidItem, "item ID is empty")
	}
	if x.SpaceID == "" {
		return goerr.Wrap(ErrInvalidItem, "space ID is empty")
	}
	if x.Title == "" {
		return goerr.Wrap(ErrInvalidItem, "item title is empty")
	}
	if err := x.Type.Validate(); err != nil {
		return err
	}
	if err := x.Status.Validate(); err != nil {
		return err
	}
	return nil
}
