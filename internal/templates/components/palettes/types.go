package palettes

import (
	"github.com/codr1/chroma/internal/ai"
	"github.com/codr1/chroma/internal/models"
	"github.com/codr1/chroma/internal/studio"
)

const savedOnLayout = "Jan 2, 2006"

type Tab struct {
	Kind   ai.Kind
	Label  string
	Active bool
}

type InputData struct {
	Active ai.Kind
	Tabs   []Tab
}

var tabLabels = map[ai.Kind]string{
	ai.KindCSS:   "CSS",
	ai.KindURL:   "Website URL",
	ai.KindImage: "Image",
}

func NewInputData(active ai.Kind) InputData {
	if active == "" {
		active = ai.KindCSS
	}
	tabs := make([]Tab, len(ai.Kinds))
	for i, kind := range ai.Kinds {
		tabs[i] = Tab{Kind: kind, Label: tabLabels[kind], Active: kind == active}
	}
	return InputData{Active: active, Tabs: tabs}
}

type ResultData struct {
	Colors        []string
	Error         string
	Warning       string
	Naming        bool
	SuggestedName string
}

func (d ResultData) HasPalette() bool {
	return len(d.Colors) > 0
}

func NewResultData(state studio.State) ResultData {
	return ResultData{
		Colors:        state.Palette,
		Error:         state.Error,
		Warning:       state.Warning,
		Naming:        state.Phase == studio.PhaseNaming,
		SuggestedName: state.SuggestedName,
	}
}

type ThemeCard struct {
	ID      string
	Name    string
	Colors  []string
	SavedOn string
}

func NewThemeCard(theme models.ColorTheme) ThemeCard {
	savedOn := theme.CreatedAt
	if created, err := theme.CreatedTime(); err == nil {
		savedOn = created.Format(savedOnLayout)
	}
	return ThemeCard{
		ID:      theme.ID,
		Name:    theme.Name,
		Colors:  theme.Colors,
		SavedOn: savedOn,
	}
}

func NewThemeCards(themes []models.ColorTheme) []ThemeCard {
	cards := make([]ThemeCard, len(themes))
	for i, theme := range themes {
		cards[i] = NewThemeCard(theme)
	}
	return cards
}

type StudioData struct {
	Input  InputData
	Result ResultData
	Themes []ThemeCard
}

func NewStudioData(state studio.State) StudioData {
	return StudioData{
		Input:  NewInputData(ai.KindCSS),
		Result: NewResultData(state),
		Themes: NewThemeCards(state.Themes),
	}
}
