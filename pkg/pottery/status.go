package pottery

import (
	"math"

	"github.com/chazu/kiln/pkg/firing"
	"github.com/chazu/kiln/pkg/stage"
)

// Status is a read-only snapshot of the session for display.
type Status struct {
	Stage       stage.Stage    `json:"stage"`
	Height      float64        `json:"height"`
	Radius      float64        `json:"radius"`
	Thickness   float64        `json:"thickness"`
	Opening     float64        `json:"opening"`
	Rotation    float64        `json:"rotation"`
	Smoothness  float64        `json:"smoothness"`
	Glaze       string         `json:"glaze"`
	VesselColor string         `json:"vesselColor"`
	Atmosphere  string         `json:"atmosphere"`
	Temperature int            `json:"temperature"` // whole degrees Celsius
	Progress    float64        `json:"progress"`
	IsFiring    bool           `json:"isFiring"`
	Result      *firing.Result `json:"result,omitempty"`
	Feedback    string         `json:"feedback,omitempty"`
	Particles   int            `json:"particles"`
}

// Status returns the current snapshot.
func (c *Controller) Status() Status {
	s := Status{
		Stage:       c.stages.Current(),
		Height:      c.vessel.Height(),
		Radius:      c.vessel.Radius(),
		Thickness:   c.vessel.Thickness(),
		Opening:     c.vessel.Opening(),
		Rotation:    c.vessel.Rotation(),
		Smoothness:  c.vessel.Smoothness(),
		Glaze:       c.glaze.Current.Hex(),
		VesselColor: c.vesselColor.Hex(),
		Atmosphere:  c.firing.Atmosphere.String(),
		Temperature: int(math.Floor(c.firing.Temperature)),
		Progress:    c.firing.Progress,
		IsFiring:    c.firing.IsFiring,
		Result:      c.kiln.Result(),
		Particles:   c.particles.Len(),
	}
	if c.feedback.Active() {
		s.Feedback = c.feedback.Message
	}
	return s
}
