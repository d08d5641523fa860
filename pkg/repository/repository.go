package repository

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/nook/pkg/model"
)

// ErrNotFound indicates the requested entity does not exist
var ErrNotFound = goerr.New("not found")

// Repository is the persistence collaborator. The retrieval engine only
// reads items; writes happen through the capture flow.
type Repository interface {
	// PutSpace saves a space
	PutSpace(ctx context.Context, space *model.Space) error

	// GetSpace retrieves a space by ID
	GetSpace(ctx context.Context, id model.SpaceID) (*model.Space, error)

	// ListSpaces retrieves all spaces
	ListSpaces(ctx context.Context) ([]*model.Space, error)

	// PutItem saves an item
	PutItem(ctx context.Context, item *model.Item) error

	// GetItem retrieves an item by ID
	GetItem(ctx context.Context, id model.ItemID) (*model.Item, error)

	// ListItems retrieves all items belonging to a space, newest first
	ListItems(ctx context.Context, spaceID model.SpaceID) ([]*model.Item, error)

	// PutConversation saves conversation metadata
	PutConversation(ctx context.Context, conv *model.Conversation) error

	// GetConversation retrieves conversation metadata by ID
	GetConversation(ctx context.Context, id model.ConversationID) (*model.Conversation, error)

	// ListConversations retrieves conversation metadata for a space
	ListConversations(ctx context.Context, spaceID model.SpaceID) ([]*model.Conversation, error)
}
