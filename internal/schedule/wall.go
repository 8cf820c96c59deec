package schedule

import "math"

// WallController is a PID loop on the packing reaction. Its output is the
// wall scale factor: a reaction above Target expands the wall, one below
// it lets the wall close in.
type WallController struct {
	Kp       float64
	Ki       float64
	Kd       float64
	Target   float64
	MinScale float64
	MaxScale float64

	integral float64
	prevErr  float64
	prevT    float64
	scale    float64
	first    bool
}

func NewWallController(kp, ki, kd, target float64) *WallController {
	return &WallController{
		Kp:       kp,
		Ki:       ki,
		Kd:       kd,
		Target:   target,
		MinScale: 0.5,
		MaxScale: 2,
		scale:    1,
		first:    true,
	}
}

// Update feeds the reaction measured at time t and returns the new scale.
func (c *WallController) Update(reaction, t float64) float64 {
	err := reaction - c.Target

	if c.first {
		c.prevErr = err
		c.prevT = t
		c.first = false
		return c.set(c.Kp * err)
	}

	dt := t - c.prevT
	if dt <= 0 {
		return c.set(c.Kp*err + c.Ki*c.integral)
	}

	c.integral += err * dt
	derivative := (err - c.prevErr) / dt
	c.prevErr = err
	c.prevT = t

	return c.set(c.Kp*err + c.Ki*c.integral + c.Kd*derivative)
}

func (c *WallController) set(u float64) float64 {
	if math.IsNaN(u) {
		return c.scale
	}
	c.scale = math.Min(math.Max(1+u, c.MinScale), c.MaxScale)
	return c.scale
}

// Apply updates the controller from reaction and sets the resulting
// scale on s.
func (c *WallController) Apply(s *Schedule, reaction, t float64) {
	s.SetWallScale(c.Update(reaction, t))
}

func (c *WallController) Scale() float64 { return c.scale }

// Reset clears integral and derivative state
func (c *WallController) Reset() {
	c.integral = 0
	c.prevErr = 0
	c.scale = 1
	c.first = true
}

// GetParams returns tunable parameters for live adjustment
func (c *WallController) GetParams() map[string]float64 {
	return map[string]float64{
		"Kp":     c.Kp,
		"Ki":     c.Ki,
		"Kd":     c.Kd,
		"Target": c.Target,
	}
}

// SetParam adjusts a controller parameter
func (c *WallController) SetParam(name string, value float64) {
	switch name {
	case "Kp":
		c.Kp = value
	case "Ki":
		c.Ki = value
	case "Kd":
		c.Kd = value
	case "Target":
		c.Target = value
	}
}
