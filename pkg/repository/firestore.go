package repository

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/nook/pkg/model"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	collectionSpaces        = "spaces"
	collectionItems         = "items"
	collectionConversations = "conversations"
)

// Firestore implements Repository on Cloud Firestore
type Firestore struct {
	client *firestore.Client
}

// New creates a new Firestore repository
func New(ctx context.Context, projectID, databaseID string) (*Firestore, error) {
	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("project", projectID), goerr.V("database", databaseID))
	}

	return &Firestore{client: client}, nil
}

// Close releases the underlying client
func (r *Firestore) Close() error {
	return r.client.Close()
}

func (r *Firestore) PutSpace(ctx context.Context, space *model.Space) error {
	if err := space.Validate(); err != nil {
		return err
	}

	_, err := r.client.Collection(collectionSpaces).Doc(string(space.ID)).Set(ctx, space)
	if err != nil {
		return goerr.Wrap(err, "failed to put space", goerr.V("id", space.ID))
	}
	return nil
}

func (r *Firestore) GetSpace(ctx context.Context, id model.SpaceID) (*model.Space, error) {
	doc, err := r.client.Collection(collectionSpaces).Doc(string(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "space not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get space", goerr.V("id", id))
	}

	var space model.Space
	if err := doc.DataTo(&space); err != nil {
		return nil, goerr.Wrap(err, "failed to decode space", goerr.V("id", id))
	}
	return &space, nil
}

func (r *Firestore) ListSpaces(ctx context.Context) ([]*model.Space, error) {
	iter := r.client.Collection(collectionSpaces).OrderBy("CreatedAt", firestore.Desc).Documents(ctx)
	defer iter.Stop()

	var spaces []*model.Space
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate spaces")
		}

		var space model.Space
		if err := doc.DataTo(&space); err != nil {
			return nil, goerr.Wrap(err, "failed to decode space", goerr.V("doc", doc.Ref.ID))
		}
		spaces = append(spaces, &space)
	}
	return spaces, nil
}

func (r *Firestore) PutItem(ctx context.Context, item *model.Item) error {
	if err := item.Validate(); err != nil {
		return err
	}

	_, err := r.client.Collection(collectionItems).Doc(string(item.ID)).Set(ctx, item)
	if err != nil {
		return goerr.Wrap(err, "failed to put item", goerr.V("id", item.ID))
	}
	return nil
}

func (r *Firestore) GetItem(ctx context.Context, id model.ItemID) (*model.Item, error) {
	doc, err := r.client.Collection(collectionItems).Doc(string(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "item not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get item", goerr.V("id", id))
	}

	var item model.Item
	if err := doc.DataTo(&item); err != nil {
		return nil, goerr.Wrap(err, "failed to decode item", goerr.V("id", id))
	}
	return &item, nil
}

func (r *Firestore) ListItems(ctx context.Context, spaceID model.SpaceID) ([]*model.Item, error) {
	iter := r.client.Collection(collectionItems).
		Where("SpaceID", "==", string(spaceID)).
		OrderBy("CreatedAt", firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	var items []*model.Item
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate items", goerr.V("space", spaceID))
		}

		var item model.Item
		if err := doc.DataTo(&item); err != nil {
			return nil, goerr.Wrap(err, "failed to decode item", goerr.V("doc", doc.Ref.ID))
		}
		items = append(items, &item)
	}
	return items, nil
}

func (r *Firestore) PutConversation(ctx context.Context, conv *model.Conversation) error {
	if conv.ID == "" {
		return goerr.New("conversation ID is empty")
	}

	// Turns are excluded via the firestore tag; bodies live in object
	// storage
	_, err := r.client.Collection(collectionConversations).Doc(string(conv.ID)).Set(ctx, conv)
	if err != nil {
		return goerr.Wrap(err, "failed to put conversation", goerr.V("id", conv.ID))
	}
	return nil
}

func (r *Firestore) GetConversation(ctx context.Context, id model.ConversationID) (*model.Conversation, error) {
	doc, err := r.client.Collection(collectionConversations).Doc(string(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "conversation not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get conversation", goerr.V("id", id))
	}

	var conv model.Conversation
	if err := doc.DataTo(&conv); err != nil {
		return nil, goerr.Wrap(err, "failed to decode conversation", goerr.V("id", id))
	}
	return &conv, nil
}

func (r *Firestore) ListConversations(ctx context.Context, spaceID model.SpaceID) ([]*model.Conversation, error) {
	iter := r.client.Collection(collectionConversations).
		Where("SpaceID", "==", string(spaceID)).
		OrderBy("UpdatedAt", firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	var convs []*model.Conversation
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate conversations", goerr.V("space", spaceID))
		}

		var conv model.Conversation
		if err := doc.DataTo(&conv); err != nil {
			return nil, goerr.Wrap(err, "failed to decode conversation", goerr.V("doc", doc.Ref.ID))
		}
		convs = append(convs, &conv)
	}
	return convs, nil
}
