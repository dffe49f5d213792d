package stage

import "github.com/chazu/kiln/pkg/vessel"

// ActionKind is a discrete choice reported back by the control surface.
type ActionKind int

const (
	ActionNext          ActionKind = iota // confirm, move to the next stage
	ActionSelectGlaze                     // pick a palette entry
	ActionSetAtmosphere                   // pick the kiln atmosphere
	ActionStartFiring                     // light the kiln
)

func (k ActionKind) String() string {
	switch k {
	case ActionNext:
		return "next"
	case ActionSelectGlaze:
		return "select-glaze"
	case ActionSetAtmosphere:
		return "set-atmosphere"
	case ActionStartFiring:
		return "start-firing"
	default:
		return "unknown"
	}
}

// Action is what a control does when used.
type Action struct {
	Kind       ActionKind        `json:"kind"`
	Index      int               `json:"index,omitempty"`
	Atmosphere vessel.Atmosphere `json:"atmosphere,omitempty"`
}

// ControlKind says how a control should be drawn.
type ControlKind int

const (
	ControlButton ControlKind = iota
	ControlSwatch
	ControlSelector
	ControlReadout
)

func (k ControlKind) String() string {
	switch k {
	case ControlButton:
		return "button"
	case ControlSwatch:
		return "swatch"
	case ControlSelector:
		return "selector"
	case ControlReadout:
		return "readout"
	default:
		return "unknown"
	}
}

// Control is one element of a stage's control surface.
type Control struct {
	Kind   ControlKind `json:"kind"`
	Label  string      `json:"label"`
	Color  string      `json:"color,omitempty"` // swatch fill, #rrggbb
	Group  string      `json:"group,omitempty"` // selectors sharing a group are exclusive
	Action *Action     `json:"action,omitempty"`
}

// View describes a stage's control surface. It carries no presentation
// beyond labels and colors; the UI decides how to lay it out.
type View struct {
	Stage    Stage     `json:"stage"`
	Name     string    `json:"name"`
	Prompt   string    `json:"prompt"`
	Heading  string    `json:"heading,omitempty"`
	Controls []Control `json:"controls"`
}

var info = map[Stage]struct{ name, prompt string }{
	Intro:    {"Prelude", "The soul of porcelain lies in the dance of earth and fire."},
	Pulling:  {"Throwing", "Touch the clay column and drag up or down to shape it. Pinch with two fingers to widen the opening."},
	Trimming: {"Trimming", "Scrape away excess clay with the trimming tool to refine the form."},
	Glazing:  {"Glazing", "Choose a glaze you like and brush it evenly over the body."},
	Firing:   {"Firing", "Choose the kiln atmosphere and watch the fire transform the piece."},
}

// ViewOf builds the control surface for s. palette supplies the glazing
// swatches.
func ViewOf(s Stage, palette []vessel.Swatch) View {
	v := View{Stage: s, Name: info[s].name, Prompt: info[s].prompt}
	next := &Action{Kind: ActionNext}
	switch s {
	case Intro:
		v.Controls = []Control{{Kind: ControlButton, Label: "Begin", Action: next}}
	case Pulling:
		v.Controls = []Control{{Kind: ControlButton, Label: "Next: trimming", Action: next}}
	case Trimming:
		v.Controls = []Control{{Kind: ControlButton, Label: "Next: glazing", Action: next}}
	case Glazing:
		v.Heading = "Choose a glaze"
		for i, sw := range palette {
			v.Controls = append(v.Controls, Control{
				Kind:   ControlSwatch,
				Label:  sw.Label,
				Color:  sw.Color.Hex(),
				Group:  "glaze",
				Action: &Action{Kind: ActionSelectGlaze, Index: i},
			})
		}
		v.Controls = append(v.Controls, Control{Kind: ControlButton, Label: "Next: firing", Action: next})
	case Firing:
		v.Heading = "Choose the kiln atmosphere"
		v.Controls = []Control{
			{Kind: ControlSelector, Label: "Reduction", Group: "atmosphere",
				Action: &Action{Kind: ActionSetAtmosphere, Atmosphere: vessel.Reduction}},
			{Kind: ControlSelector, Label: "Oxidation", Group: "atmosphere",
				Action: &Action{Kind: ActionSetAtmosphere, Atmosphere: vessel.Oxidation}},
			{Kind: ControlReadout, Label: "temperature"},
			{Kind: ControlButton, Label: "Light the kiln", Action: &Action{Kind: ActionStartFiring}},
		}
	}
	return v
}
