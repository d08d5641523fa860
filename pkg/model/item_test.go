package model_test

import (
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/nook/pkg/model"
)

func validItem() *model.Item {
	return &model.Item{
		ID:        model.NewItemID(),
		SpaceID:   model.NewSpaceID(),
		Type:      model.ItemTypeArticle,
		Title:     "Attention is All You Need",
		Summary:   "Foundational Transformers paper",
		Tags:      []string{"AI", "Transformers"},
		CreatedAt: time.Now(),
		Status:    model.ItemStatusNew,
	}
}

func TestItemValidate(t *testing.T) {
	gt.NoError(t, validItem().Validate())
}

func TestItemValidateErrors(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(*model.Item)
	}{
		{
			name:   "empty title",
			mutate: func(x *model.Item) { x.Title = "" },
		},
		{
			name:   "empty ID",
			mutate: func(x *model.Item) { x.ID = "" },
		},
		{
			name:   "empty space ID",
			mutate: func(x *model.Item) { x.SpaceID = "" },
		},
		{
			name:   "invalid type",
			mutate: func(x *model.Item) { x.Type = "podcast" },
		},
		{
			name:   "invalid status",
			mutate: func(x *model.Item) { x.Status = "pending" },
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			item := validItem()
			tc.mutate(item)
			gt.Error(t, item.Validate())
		})
	}
}

func TestItemValidateAllowsMissingOptionalFields(t *testing.T) {
	item := validItem()
	item.Summary = ""
	item.Content = ""
	item.Tags = nil
	item.URL = ""
	gt.NoError(t, item.Validate())
}

func TestSpaceValidate(t *testing.T) {
	space := &model.Space{
		ID:        model.NewSpaceID(),
		Name:      "AI Research",
		CreatedAt: time.Now(),
	}
	gt.NoError(t, space.Validate())

	space.Name = ""
	gt.Error(t, space.Validate())
}
