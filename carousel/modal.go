package carousel

import "strings"

// OpenModal stops inline playback and opens a larger viewer at the current
// slide. The modal shares the player and starts from the inline slide states,
// so a video that already failed stays Broken.
func (c *Carousel) OpenModal() *Carousel {
	c.mu.Lock()
	if c.modalOpen {
		m := c.modal
		c.mu.Unlock()
		return m
	}
	stop := c.stopAllLocked("")
	slides := append([]Slide(nil), c.slides...)
	// stopAllLocked has already cleared Playing and pending plays
	states := make(map[string]slideState, len(c.states))
	for id, st := range c.states {
		states[id] = st
	}
	active := c.active
	player := c.player
	c.mu.Unlock()

	c.stopPlayers(stop)

	m := New(slides, WithPlayer(player))
	m.mu.Lock()
	for id := range m.states {
		if st, ok := states[id]; ok {
			m.states[id] = st
		}
	}
	m.mu.Unlock()
	m.Goto(active)

	c.mu.Lock()
	c.modal = m
	c.modalOpen = true
	c.mu.Unlock()
	c.notify()
	return m
}

// CloseModal closes the modal and moves the inline viewer to the slide the
// modal was showing. Videos that broke in the modal are Broken inline too.
func (c *Carousel) CloseModal() {
	c.mu.Lock()
	m := c.modal
	c.modal = nil
	c.modalOpen = false
	c.mu.Unlock()

	if m == nil {
		return
	}
	active := m.Active()
	broken := m.brokenIDs()
	m.Close()

	c.mu.Lock()
	for _, id := range broken {
		if _, ok := c.states[id]; ok {
			c.states[id] = slideState{state: Broken}
		}
	}
	c.mu.Unlock()
	c.Goto(active)
}

func (c *Carousel) brokenIDs() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	var ids []string
	for id, st := range c.states {
		if st.state == Broken {
			ids = append(ids, id)
		}
	}
	return ids
}

func (c *Carousel) ModalOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.modalOpen
}

// Modal returns the open modal viewer, or nil.
func (c *Carousel) Modal() *Carousel {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.modal
}

// Focus describes the element holding keyboard focus.
type Focus struct {
	Tag             string
	InputType       string
	ContentEditable bool
}

var nonTextInputs = map[string]bool{
	"button": true, "checkbox": true, "radio": true, "submit": true,
	"reset": true, "range": true, "color": true, "file": true, "image": true,
}

// IsTextInput reports whether typing into the focused element would be
// intercepted by carousel shortcuts.
func (f Focus) IsTextInput() bool {
	if f.ContentEditable {
		return true
	}
	switch strings.ToLower(f.Tag) {
	case "textarea", "select":
		return true
	case "input":
		return !nonTextInputs[strings.ToLower(f.InputType)]
	}
	return false
}

// HandleKey applies ArrowLeft, ArrowRight and Escape to the open modal. Keys
// are ignored when the modal is closed or focus is in a text field. It
// reports whether the key was consumed.
func (c *Carousel) HandleKey(key string, focus Focus) bool {
	m := c.Modal()
	if m == nil || focus.IsTextInput() {
		return false
	}

	switch key {
	case "ArrowLeft":
		m.Prev()
	case "ArrowRight":
		m.Next()
	case "Escape":
		c.CloseModal()
	default:
		return false
	}
	return true
}

// Swipe resolves a touch gesture and navigates the modal when open, the
// inline viewer otherwise.
func (c *Carousel) Swipe(start, end Point) Direction {
	dir := ResolveSwipe(start, end)
	target := c
	if m := c.Modal(); m != nil {
		target = m
	}
	switch dir {
	case SwipeNext:
		target.Next()
	case SwipePrev:
		target.Prev()
	}
	return dir
}
