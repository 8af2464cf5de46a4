package carousel

// SlideSnapshot is the render state of one slide.
type SlideSnapshot struct {
	Slide
	State     State  `json:"state"`
	ShowVideo bool   `json:"showVideo"`
	Label     string `json:"label,omitempty"`
}

// Snapshot is the initial viewer state handed to clients with project detail
// responses.
type Snapshot struct {
	ActiveIndex int             `json:"activeIndex"`
	Autoplay    bool            `json:"autoplay"`
	ModalOpen   bool            `json:"modalOpen"`
	Slides      []SlideSnapshot `json:"slides"`
}

func (c *Carousel) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := Snapshot{
		ActiveIndex: c.active,
		Autoplay:    c.autoplayEnabledLocked(),
		ModalOpen:   c.modalOpen,
		Slides:      make([]SlideSnapshot, 0, len(c.slides)),
	}
	for _, s := range c.slides {
		st := c.states[s.ID].state
		ss := SlideSnapshot{
			Slide:     s,
			State:     st,
			ShowVideo: s.Type == MediaVideo && st == Playing,
		}
		if s.Type == MediaVideo && st == Broken {
			ss.Label = ComingSoonLabel
		}
		snap.Slides = append(snap.Slides, ss)
	}
	return snap
}
