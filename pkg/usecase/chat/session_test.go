package chat_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/nook/pkg/model"
	"github.com/m-mizutani/nook/pkg/repository"
	"github.com/m-mizutani/nook/pkg/tool"
	"github.com/m-mizutani/nook/pkg/tool/knowledge"
	"github.com/m-mizutani/nook/pkg/usecase/chat"
	"google.golang.org/genai"
)

type mockGemini struct {
	responses []*genai.GenerateContentResponse
	calls     int
	systems   []string
	contents  []*genai.Content
}

func (m *mockGemini) GenerateContent(ctx context.Context, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	if config != nil && config.SystemInstruction != nil && len(config.SystemInstruction.Parts) > 0 {
		m.systems = append(m.systems, config.SystemInstruction.Parts[0].Text)
	}
	m.contents = contents
	if m.calls >= len(m.responses) {
		return nil, errors.New("no more scripted responses")
	}
	resp := m.responses[m.calls]
	m.calls++
	return resp, nil
}

type memStorage struct {
	objects map[string][]byte
}

func newMemStorage() *memStorage {
	return &memStorage{objects: make(map[string][]byte)}
}

type memWriter struct {
	buf    bytes.Buffer
	store  *memStorage
	key    string
	closed bool
}

func (w *memWriter) Write(p []byte) (int, error) {
	return w.buf.Write(p)
}

func (w *memWriter) Close() error {
	if !w.closed {
		w.store.objects[w.key] = w.buf.Bytes()
		w.closed = true
	}
	return nil
}

func (s *memStorage) Put(ctx context.Context, key string) (io.WriteCloser, error) {
	return &memWriter{store: s, key: key}, nil
}

func (s *memStorage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	data, ok := s.objects[key]
	if !ok {
		return nil, errors.New("object not found: " + key)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: genai.NewContentFromText(text, genai.RoleModel)},
		},
	}
}

func funcCallResponse(name string, args map[string]any) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{
				Role: genai.RoleModel,
				Parts: []*genai.Part{
					{FunctionCall: &genai.FunctionCall{Name: name, Args: args}},
				},
			}},
		},
	}
}

func setupSpace(t *testing.T, repo repository.Repository) *model.Space {
	space := &model.Space{
		ID:        model.NewSpaceID(),
		Name:      "Research",
		CreatedAt: time.Now(),
	}
	gt.NoError(t, repo.PutSpace(context.Background(), space))
	return space
}

func TestSendPlainAnswer(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemory()
	space := setupSpace(t, repo)

	gemini := &mockGemini{responses: []*genai.GenerateContentResponse{
		textResponse("hello there"),
	}}

	session := gt.R1(chat.New(ctx, chat.NewInput{
		Repo:    repo,
		Gemini:  gemini,
		Storage: newMemStorage(),
		SpaceID: space.ID,
	})).NoError(t)

	answer := gt.R1(session.Send(ctx, "hi")).NoError(t)
	gt.Value(t, answer).Equal("hello there")
	gt.A(t, session.Conversation().Turns).Length(2)
}

func TestSendSystemPromptDigest(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemory()
	space := setupSpace(t, repo)

	gt.NoError(t, repo.PutItem(ctx, &model.Item{
		ID:        model.NewItemID(),
		SpaceID:   space.ID,
		Type:      model.ItemTypeArticle,
		Title:     "Raft Explained",
		Summary:   "consensus made understandable",
		CreatedAt: time.Now(),
		Status:    model.ItemStatusNew,
	}))

	gemini := &mockGemini{responses: []*genai.GenerateContentResponse{
		textResponse("ok"),
	}}

	session := gt.R1(chat.New(ctx, chat.NewInput{
		Repo:    repo,
		Gemini:  gemini,
		Storage: newMemStorage(),
		SpaceID: space.ID,
	})).NoError(t)

	gt.R1(session.Send(ctx, "what do I have saved?")).NoError(t)

	gt.A(t, gemini.systems).Longer(0)
	gt.S(t, gemini.systems[0]).Contains("Raft Explained")
	gt.S(t, gemini.systems[0]).Contains("Research")
}

func TestSendToolCallRound(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemory()
	space := setupSpace(t, repo)

	gt.NoError(t, repo.PutItem(ctx, &model.Item{
		ID:        model.NewItemID(),
		SpaceID:   space.ID,
		Type:      model.ItemTypeNote,
		Title:     "Paxos Notes",
		Summary:   "the other consensus protocol",
		CreatedAt: time.Now(),
		Status:    model.ItemStatusNew,
	}))

	registry := tool.New(
		knowledge.NewSearch(repo, space.ID),
		knowledge.NewSave(repo, space.ID),
	)

	gemini := &mockGemini{responses: []*genai.GenerateContentResponse{
		funcCallResponse("search_knowledge_base", map[string]any{"query": "paxos"}),
		textResponse("You saved \"Paxos Notes\"."),
	}}

	session := gt.R1(chat.New(ctx, chat.NewInput{
		Repo:     repo,
		Gemini:   gemini,
		Storage:  newMemStorage(),
		Registry: registry,
		SpaceID:  space.ID,
	})).NoError(t)

	answer := gt.R1(session.Send(ctx, "do I have notes on paxos?")).NoError(t)
	gt.S(t, answer).Contains("Paxos Notes")
	gt.Number(t, gemini.calls).Equal(2)
}

func TestSendToolRoundLimit(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemory()
	space := setupSpace(t, repo)

	registry := tool.New(knowledge.NewSearch(repo, space.ID))

	// model keeps calling tools until the round budget runs out
	responses := make([]*genai.GenerateContentResponse, 6)
	for i := range responses {
		responses[i] = funcCallResponse("search_knowledge_base", map[string]any{"query": "loop"})
	}
	gemini := &mockGemini{responses: responses}

	session := gt.R1(chat.New(ctx, chat.NewInput{
		Repo:     repo,
		Gemini:   gemini,
		Storage:  newMemStorage(),
		Registry: registry,
		SpaceID:  space.ID,
	})).NoError(t)

	answer := gt.R1(session.Send(ctx, "search forever")).NoError(t)
	gt.Number(t, gemini.calls).Equal(5)
	gt.S(t, answer).Contains("rephrase")
}

func TestSaveAndResume(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemory()
	space := setupSpace(t, repo)
	storage := newMemStorage()

	gemini := &mockGemini{responses: []*genai.GenerateContentResponse{
		textResponse("first answer"),
	}}

	session := gt.R1(chat.New(ctx, chat.NewInput{
		Repo:    repo,
		Gemini:  gemini,
		Storage: storage,
		SpaceID: space.ID,
	})).NoError(t)

	gt.R1(session.Send(ctx, "first question")).NoError(t)
	gt.NoError(t, session.Save(ctx))

	convID := session.Conversation().ID

	resumedGemini := &mockGemini{responses: []*genai.GenerateContentResponse{
		textResponse("second answer"),
	}}
	resumed := gt.R1(chat.New(ctx, chat.NewInput{
		Repo:           repo,
		Gemini:         resumedGemini,
		Storage:        storage,
		SpaceID:        space.ID,
		ConversationID: convID,
	})).NoError(t)

	turns := resumed.Conversation().Turns
	gt.A(t, turns).Length(2)
	gt.Value(t, turns[0].Content).Equal("first question")
	gt.Value(t, turns[1].Content).Equal("first answer")

	// The restored history must reach the model with the right roles
	gt.R1(resumed.Send(ctx, "second question")).NoError(t)
	gt.A(t, resumedGemini.contents).Length(3)
	gt.Value(t, resumedGemini.contents[0].Role).Equal(genai.RoleUser)
	gt.Value(t, resumedGemini.contents[0].Parts[0].Text).Equal("first question")
	gt.Value(t, resumedGemini.contents[1].Role).Equal(genai.RoleModel)
	gt.Value(t, resumedGemini.contents[1].Parts[0].Text).Equal("first answer")
	gt.Value(t, resumedGemini.contents[2].Parts[0].Text).Equal("second question")
}

func TestResumeWrongSpace(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemory()
	space := setupSpace(t, repo)
	other := setupSpace(t, repo)
	storage := newMemStorage()

	session := gt.R1(chat.New(ctx, chat.NewInput{
		Repo:    repo,
		Gemini:  &mockGemini{responses: []*genai.GenerateContentResponse{textResponse("a")}},
		Storage: storage,
		SpaceID: space.ID,
	})).NoError(t)
	gt.R1(session.Send(ctx, "q")).NoError(t)
	gt.NoError(t, session.Save(ctx))

	_, err := chat.New(ctx, chat.NewInput{
		Repo:           repo,
		Gemini:         &mockGemini{},
		Storage:        storage,
		SpaceID:        other.ID,
		ConversationID: session.Conversation().ID,
	})
	gt.Error(t, err)
}

func TestNewUnknownSpace(t *testing.T) {
	_, err := chat.New(context.Background(), chat.NewInput{
		Repo:    repository.NewMemory(),
		Gemini:  &mockGemini{},
		Storage: newMemStorage(),
		SpaceID: "missing",
	})
	gt.Error(t, err)
	gt.True(t, errors.Is(err, repository.ErrNotFound))
}
