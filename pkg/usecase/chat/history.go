package chat

import (
	"context"
	"encoding/json"
	"io"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/nook/pkg/model"
)

func transcriptKey(id model.ConversationID) string {
	return "conversations/" + string(id) + ".json"
}

// loadConversation restores metadata from the repository and the turn
// bodies from object storage.
func (s *Session) loadConversation(ctx context.Context, id model.ConversationID) (*model.Conversation, error) {
	conv, err := s.repo.GetConversation(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get conversation", goerr.V("id", id))
	}
	if conv.SpaceID != s.space.ID {
		return nil, goerr.New("conversation belongs to another space",
			goerr.V("id", id), goerr.V("space", conv.SpaceID))
	}

	reader, err := s.storage.Get(ctx, transcriptKey(id))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get transcript from storage")
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read transcript")
	}

	var turns []model.Turn
	if err := json.Unmarshal(data, &turns); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal transcript")
	}

	conv.Turns = turns
	return conv, nil
}

// Save writes the turn bodies to object storage and the metadata to
// the repository. Turn bodies stay out of the repository because of
// document size limits.
func (s *Session) Save(ctx context.Context) error {
	writer, err := s.storage.Put(ctx, transcriptKey(s.conversation.ID))
	if err != nil {
		return goerr.Wrap(err, "failed to create storage writer")
	}
	defer writer.Close()

	data, err := json.Marshal(s.conversation.Turns)
	if err != nil {
		return goerr.Wrap(err, "failed to marshal transcript")
	}

	if _, err := writer.Write(data); err != nil {
		return goerr.Wrap(err, "failed to write transcript to storage")
	}
	if err := writer.Close(); err != nil {
		return goerr.Wrap(err, "failed to close storage writer")
	}

	if err := s.repo.PutConversation(ctx, s.conversation); err != nil {
		return goerr.Wrap(err, "failed to put conversation to repository")
	}

	return nil
}
