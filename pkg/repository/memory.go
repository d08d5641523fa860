package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/nook/pkg/model"
)

// Memory is an in-memory Repository. It backs unit tests and embedded use
// where no Firestore project is available.
type Memory struct {
	mu            sync.RWMutex
	spaces        map[model.SpaceID]*model.Space
	items         map[model.ItemID]*model.Item
	conversations map[model.ConversationID]*model.Conversation
}

// NewMemory creates an empty in-memory repository
func NewMemory() *Memory {
	return &Memory{
		spaces:        make(map[model.SpaceID]*model.Space),
		items:         make(map[model.ItemID]*model.Item),
		conversations: make(map[model.ConversationID]*model.Conversation),
	}
}

func (r *Memory) PutSpace(ctx context.Context, space *model.Space) error {
	if err := space.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *space
	r.spaces[space.ID] = &copied
	return nil
}

func (r *Memory) GetSpace(ctx context.Context, id model.SpaceID) (*model.Space, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	space, ok := r.spaces[id]
	if !ok {
		return nil, goerr.Wrap(ErrNotFound, "space not found", goerr.V("id", id))
	}
	copied := *space
	return &copied, nil
}

func (r *Memory) ListSpaces(ctx context.Context) ([]*model.Space, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	spaces := make([]*model.Space, 0, len(r.spaces))
	for _, space := range r.spaces {
		copied := *space
		spaces = append(spaces, &copied)
	}
	sort.SliceStable(spaces, func(i, j int) bool {
		return spaces[i].CreatedAt.After(spaces[j].CreatedAt)
	})
	return spaces, nil
}

func (r *Memory) PutItem(ctx context.Context, item *model.Item) error {
	if err := item.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *item
	r.items[item.ID] = &copied
	return nil
}

func (r *Memory) GetItem(ctx context.Context, id model.ItemID) (*model.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[id]
	if !ok {
		return nil, goerr.Wrap(ErrNotFound, "item not found", goerr.V("id", id))
	}
	copied := *item
	return &copied, nil
}

func (r *Memory) ListItems(ctx context.Context, spaceID model.SpaceID) ([]*model.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var items []*model.Item
	for _, item := range r.items {
		if item.SpaceID != spaceID {
			continue
		}
		copied := *item
		items = append(items, &copied)
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return items, nil
}

func (r *Memory) PutConversation(ctx context.Context, conv *model.Conversation) error {
	if conv.ID == "" {
		return goerr.New("conversation ID is empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *conv
	copied.Turns = nil // metadata only, as with the Firestore backend
	r.conversations[conv.ID] = &copied
	return nil
}

func (r *Memory) GetConversation(ctx context.Context, id model.ConversationID) (*model.Conversation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conv, ok := r.conversations[id]
	if !ok {
		return nil, goerr.Wrap(ErrNotFound, "conversation not found", goerr.V("id", id))
	}
	copied := *conv
	return &copied, nil
}

func (r *Memory) ListConversations(ctx context.Context, spaceID model.SpaceID) ([]*model.Conversation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var convs []*model.Conversation
	for _, conv := range r.conversations {
		if conv.SpaceID != spaceID {
			continue
		}
		copied := *conv
		convs = append(convs, &copied)
	}
	sort.SliceStable(convs, func(i, j int) bool {
		return convs[i].UpdatedAt.After(convs[j].UpdatedAt)
	})
	return convs, nil
}
