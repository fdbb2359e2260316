package entities

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"futuremap/domain/core/valueobjects"
	pkgerrors "futuremap/pkg/errors"
)

func TestCardTemplate_Validate(t *testing.T) {
	tests := []struct {
		name     string
		template CardTemplate
		wantErr  bool
		errMsg   string
	}{
		{
			name:     "valid course",
			template: CardTemplate{Title: "B.Tech Computer Science", Duration: "4 years", Cost: 400000, Type: CardTypeCourse},
		},
		{
			name:     "zero cost is allowed",
			template: CardTemplate{Title: "Open source", Type: CardTypeSkill},
		},
		{
			name:     "empty title",
			template: CardTemplate{Title: "   ", Type: CardTypeExam},
			wantErr:  true,
			errMsg:   "card title cannot be empty",
		},
		{
			name:     "negative cost",
			template: CardTemplate{Title: "JEE Main", Cost: -1, Type: CardTypeExam},
			wantErr:  true,
			errMsg:   "card cost cannot be negative",
		},
		{
			name:     "unknown type",
			template: CardTemplate{Title: "Gap year", Type: "holiday"},
			wantErr:  true,
			errMsg:   "unknown card type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.template.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, pkgerrors.IsInvalidArgument(err))
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestParseCardType(t *testing.T) {
	ct, err := ParseCardType(" Internship ")
	require.NoError(t, err)
	assert.Equal(t, CardTypeInternship, ct)

	_, err = ParseCardType("degree")
	assert.True(t, pkgerrors.IsInvalidArgument(err))

	assert.True(t, CardTypeCourse.CountsTowardScholarships())
	assert.True(t, CardTypeInstitution.CountsTowardScholarships())
	assert.False(t, CardTypeExam.CountsTowardScholarships())
}

func TestNewCard(t *testing.T) {
	canvas := valueobjects.NewCanvasID()
	id := valueobjects.NewCardID("skill", 1, canvas)
	now := time.Now()

	card, err := NewCard(id, CardTemplate{Title: " Python ", Duration: "3 months", Cost: 5000, Type: CardTypeSkill},
		valueobjects.NewPosition(30, 60), now)
	require.NoError(t, err)

	assert.Equal(t, id, card.ID())
	assert.Equal(t, "Python", card.Title())
	assert.Equal(t, CardTypeSkill, card.Type())
	assert.Equal(t, "3 months", card.Duration())
	assert.Equal(t, 5000, card.Cost())
	assert.Equal(t, valueobjects.NewPosition(30, 60), card.Position())
	assert.Equal(t, now, card.PlacedAt())

	card.MoveTo(valueobjects.NewPosition(90, 0))
	assert.Equal(t, valueobjects.NewPosition(90, 0), card.Position())

	assert.True(t, card.TitleMatchesAny([]string{"", "PYTHON"}))
	assert.False(t, card.TitleMatchesAny([]string{"medicine"}))

	_, err = NewCard(valueobjects.CardID{}, card.Template(), card.Position(), now)
	assert.True(t, pkgerrors.IsInvalidArgument(err))
}

func TestCatalog(t *testing.T) {
	catalog := NewCatalog(map[string]CatalogCategory{
		"Courses": {
			Icon:  "BookOpen",
			Color: "blue",
			Items: []CardTemplate{
				{Title: "MBBS", Duration: "5.5 years", Cost: 600000, Type: CardTypeCourse},
				{Title: "", Duration: "broken", Type: CardTypeCourse},
			},
		},
	})

	assert.Equal(t, 1, catalog.Size())
	assert.Equal(t, []string{"Courses"}, catalog.CategoryNames())

	require.NoError(t, catalog.AddCustom(CardTemplate{Title: "Robotics club", Type: CardTypeSkill}))
	assert.Error(t, catalog.AddCustom(CardTemplate{Title: "Bad", Cost: -5, Type: CardTypeSkill}))

	custom := catalog.Categories()[CustomCategory]
	assert.Equal(t, "Star", custom.Icon)
	assert.Equal(t, "cyan", custom.Color)
	assert.Len(t, custom.Items, 1)

	fresh := NewCatalog(map[string]CatalogCategory{
		"Exams": {Icon: "FileText", Color: "red", Items: []CardTemplate{{Title: "NEET", Type: CardTypeExam}}},
	})
	merged := catalog.Merge(fresh)
	assert.Equal(t, []string{"Exams", CustomCategory}, merged.CategoryNames())
	assert.Equal(t, 2, merged.Size())

	assert.Equal(t, 1, catalog.Merge(nil).Size())
}

func TestCatalog_MergeKeepsEveryCustomItem(t *testing.T) {
	local := EmptyCatalog()
	require.NoError(t, local.AddCustom(CardTemplate{Title: "Robotics club", Type: CardTypeSkill}))
	require.NoError(t, local.AddCustom(CardTemplate{Title: "Debate", Type: CardTypeSkill}))

	tests := []struct {
		name      string
		remote    *Catalog
		wantIcon  string
		wantTitle []string
	}{
		{
			name:      "remote without custom category",
			remote:    NewCatalog(map[string]CatalogCategory{"Exams": {Items: []CardTemplate{{Title: "NEET", Type: CardTypeExam}}}}),
			wantIcon:  "Star",
			wantTitle: []string{"Robotics club", "Debate"},
		},
		{
			name: "remote with its own custom category",
			remote: NewCatalog(map[string]CatalogCategory{
				CustomCategory: {Icon: "Heart", Color: "pink", Items: []CardTemplate{{Title: "Shared", Type: CardTypeSkill}}},
			}),
			wantIcon:  "Heart",
			wantTitle: []string{"Shared", "Robotics club", "Debate"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			custom := local.Merge(tt.remote).Categories()[CustomCategory]
			assert.Equal(t, tt.wantIcon, custom.Icon)
			titles := make([]string, 0, len(custom.Items))
			for _, item := range custom.Items {
				titles = append(titles, item.Title)
			}
			assert.Equal(t, tt.wantTitle, titles)
		})
	}

	assert.Len(t, local.Categories()[CustomCategory].Items, 2)
}
