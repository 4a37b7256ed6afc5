package resolve

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/bradykim7/whobot/internal/models"
)

// SelectionCeiling is the hard limit on renderable candidates: five select
// menu rows of twenty-five options each.
const SelectionCeiling = 125

const (
	maxButtons    = 25
	chunkSize     = 25
	buttonsPerRow = 5
)

// ComponentPrefix marks custom IDs owned by the disambiguator so the
// gateway layer can route component interactions here.
const ComponentPrefix = "pick:"

type uiKind int

const (
	uiButtons uiKind = iota
	uiMenuGroups
	uiNativePicker
)

// selectionUI is the render target for one session: one button per
// candidate, grouped select menus, or the native member picker. The kind
// is fixed at session creation; render is called again with the terminal
// state to disable the controls in place.
type selectionUI struct {
	kind       uiKind
	sessionID  string
	candidates []models.User
}

// newSelectionUI picks the variant for a sorted candidate list. Whole-guild
// sessions always get the native picker; everything else is sized into
// buttons or menu groups, or rejected at the ceiling.
func newSelectionUI(sessionID string, candidates []models.User, wholeGuild bool) (*selectionUI, error) {
	ui := &selectionUI{sessionID: sessionID, candidates: candidates}
	switch {
	case wholeGuild:
		ui.kind = uiNativePicker
	case len(candidates) <= maxButtons:
		ui.kind = uiButtons
	case len(candidates) <= SelectionCeiling:
		ui.kind = uiMenuGroups
	default:
		return nil, &CeilingError{Count: len(candidates)}
	}
	return ui, nil
}

func (ui *selectionUI) customID(part string) string {
	return ComponentPrefix + ui.sessionID + ":" + part
}

// render builds the component tree. chosen is nil while the session is
// open; on a terminal transition disabled is true and, when resolution
// succeeded, chosen marks the winning candidate.
func (ui *selectionUI) render(disabled bool, chosen *models.User) []discordgo.MessageComponent {
	switch ui.kind {
	case uiNativePicker:
		return ui.renderPicker(disabled, chosen)
	case uiButtons:
		return ui.renderButtons(disabled, chosen)
	default:
		return ui.renderMenuGroups(disabled, chosen)
	}
}

func (ui *selectionUI) renderPicker(disabled bool, chosen *models.User) []discordgo.MessageComponent {
	placeholder := "Select user"
	if chosen != nil {
		placeholder = "@" + chosen.DisplayString()
	}
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.SelectMenu{
				MenuType:    discordgo.UserSelectMenu,
				CustomID:    ui.customID("picker"),
				Placeholder: placeholder,
				Disabled:    disabled,
			},
		}},
	}
}

func (ui *selectionUI) renderButtons(disabled bool, chosen *models.User) []discordgo.MessageComponent {
	var rows []discordgo.MessageComponent
	var row []discordgo.MessageComponent
	for i, u := range ui.candidates {
		style := discordgo.SecondaryButton
		if chosen != nil && u.ID == chosen.ID {
			style = discordgo.SuccessButton
		}
		row = append(row, discordgo.Button{
			Label:    "@" + u.DisplayString(),
			Style:    style,
			CustomID: ui.customID(strconv.Itoa(i)),
			Disabled: disabled,
		})
		if len(row) == buttonsPerRow || i == len(ui.candidates)-1 {
			rows = append(rows, discordgo.ActionsRow{Components: row})
			row = nil
		}
	}
	return rows
}

func (ui *selectionUI) renderMenuGroups(disabled bool, chosen *models.User) []discordgo.MessageComponent {
	var rows []discordgo.MessageComponent
	for chunk, start := 0, 0; start < len(ui.candidates); chunk, start = chunk+1, start+chunkSize {
		end := start + chunkSize
		if end > len(ui.candidates) {
			end = len(ui.candidates)
		}
		placeholder := ui.chunkPlaceholder(start, end)
		options := make([]discordgo.SelectMenuOption, 0, end-start)
		for i := start; i < end; i++ {
			u := ui.candidates[i]
			if chosen != nil && u.ID == chosen.ID {
				placeholder = "@" + chosen.DisplayString()
			}
			options = append(options, discordgo.SelectMenuOption{
				Label: "@" + u.DisplayString(),
				Value: strconv.Itoa(i),
			})
		}
		rows = append(rows, discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.SelectMenu{
				MenuType:    discordgo.StringSelectMenu,
				CustomID:    ui.customID(strconv.Itoa(chunk)),
				Placeholder: placeholder,
				Options:     options,
			},
		}})
	}
	if disabled {
		for i, row := range rows {
			ar := row.(discordgo.ActionsRow)
			menu := ar.Components[0].(discordgo.SelectMenu)
			menu.Disabled = true
			rows[i] = discordgo.ActionsRow{Components: []discordgo.MessageComponent{menu}}
		}
	}
	return rows
}

// chunkPlaceholder labels the chunk [start, end) with a compressed
// "Select (FIRST - LAST)" range. Each edge keeps one rune past its first
// point of case-insensitive divergence from the neighboring entry, so
// adjacent chunks stay tellable apart without spelling out full names.
// Edge chunks diverge against their own second entry instead.
func (ui *selectionUI) chunkPlaceholder(start, end int) string {
	first := ui.candidates[start].DisplayString()
	var against string
	if start > 0 {
		against = ui.candidates[start-1].DisplayString()
	} else {
		against = ui.candidates[start+1].DisplayString()
	}
	from := prefixTo(first, firstDifferenceAt(first, against))

	if end-start == 1 {
		return fmt.Sprintf("Select (%s)", strings.ToUpper(from))
	}

	last := ui.candidates[end-1].DisplayString()
	if end < len(ui.candidates) {
		against = ui.candidates[end].DisplayString()
	} else {
		against = ui.candidates[end-2].DisplayString()
	}
	to := prefixTo(last, firstDifferenceAt(last, against))
	return fmt.Sprintf("Select (%s - %s)", strings.ToUpper(from), strings.ToUpper(to))
}

// firstDifferenceAt returns the index of the first rune where the two
// strings diverge under case folding, or the length of the shorter string
// when one is a prefix of the other.
func firstDifferenceAt(a, b string) int {
	ar, br := []rune(a), []rune(b)
	n := len(ar)
	if len(br) < n {
		n = len(br)
	}
	for i := 0; i < n; i++ {
		if fold(string(ar[i])) != fold(string(br[i])) {
			return i
		}
	}
	return n
}

// prefixTo cuts s one rune past index i, clamped to its length.
func prefixTo(s string, i int) string {
	r := []rune(s)
	if i+1 >= len(r) {
		return s
	}
	return string(r[:i+1])
}
