package carousel

import (
	"context"
	"fmt"
	"sync"
	"time"
)

const (
	MediaImage = "image"
	MediaVideo = "video"

	// ComingSoonLabel replaces the play control of a video that cannot play.
	ComingSoonLabel = "Coming soon"
)

// Slide is one carousel item. ID is derived from Type and Src when empty.
type Slide struct {
	ID    string `json:"id"`
	Type  string `json:"type"`
	Src   string `json:"src"`
	Thumb string `json:"thumb,omitempty"`
	Alt   string `json:"alt,omitempty"`
}

// Player controls the media elements behind video slides.
type Player interface {
	// Play starts playback and returns once it has begun or been refused.
	Play(ctx context.Context, slideID string) error
	// Stop pauses playback and rewinds to the start.
	Stop(slideID string)
}

type noopPlayer struct{}

func (noopPlayer) Play(context.Context, string) error { return nil }
func (noopPlayer) Stop(string) {}

type Option func(*Carousel)

func WithPlayer(p Player) Option {
	return func(c *Carousel) {
		if p != nil {
			c.player = p
		}
	}
}

// Carousel is a single-active-slide viewer. It is safe for concurrent use.
type Carousel struct {
	mu        sync.Mutex
	slides    []Slide
	states    map[string]slideState
	active    int
	playGen   uint64
	modalOpen bool
	modal     *Carousel
	player    Player
	changes   chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

func New(slides []Slide, opts ...Option) *Carousel {
	c := &Carousel{
		states:  make(map[string]slideState),
		player:  noopPlayer{},
		changes: make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.SetItems(slides)
	return c
}

// SetItems replaces the slide list. Slides whose ID survives keep their
// state, including Broken.
func (c *Carousel) SetItems(slides []Slide) {
	c.mu.Lock()
	c.setItemsLocked(slides, false)
	c.mu.Unlock()
	c.notify()
}

// Reset replaces the slide list and forgets every slide state.
func (c *Carousel) Reset(slides []Slide) {
	c.mu.Lock()
	stop := c.stopAllLocked("")
	c.setItemsLocked(slides, true)
	c.mu.Unlock()
	c.stopPlayers(stop)
	c.notify()
}

func (c *Carousel) setItemsLocked(slides []Slide, fresh bool) {
	var activeID string
	if len(c.slides) > 0 {
		activeID = c.slides[c.active].ID
	}

	c.slides = withIDs(slides)
	prev := c.states
	c.states = make(map[string]slideState, len(c.slides))
	for _, s := range c.slides {
		if st, ok := prev[s.ID]; ok && !fresh {
			c.states[s.ID] = st
			continue
		}
		c.states[s.ID] = initialState(s)
	}

	c.active = 0
	for i, s := range c.slides {
		if s.ID == activeID {
			c.active = i
			break
		}
	}
}

func initialState(s Slide) slideState {
	switch {
	case s.Type != MediaVideo:
		return slideState{state: Ready}
	case s.Src == "":
		return slideState{state: Broken}
	default:
		return slideState{state: Idle}
	}
}

func withIDs(slides []Slide) []Slide {
	out := make([]Slide, len(slides))
	seen := make(map[string]int, len(slides))
	for i, s := range slides {
		if s.ID == "" {
			s.ID = s.Type + ":" + s.Src
		}
		if n := seen[s.ID]; n > 0 {
			seen[s.ID] = n + 1
			s.ID = fmt.Sprintf("%s#%d", s.ID, n)
		} else {
			seen[s.ID] = 1
		}
		out[i] = s
	}
	return out
}

func (c *Carousel) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.slides)
}

func (c *Carousel) Active() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// Slides returns a copy of the slide list with IDs filled in.
func (c *Carousel) Slides() []Slide {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Slide(nil), c.slides...)
}

// State returns the state of slide i, or Idle when i is out of range.
func (c *Carousel) State(i int) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i < 0 || i >= len(c.slides) {
		return Idle
	}
	return c.states[c.slides[i].ID].state
}

// ShowVideo reports whether slide i should render its video element rather
// than the poster. Only a playing video qualifies; Playing implies ready and
// not broken.
func (c *Carousel) ShowVideo(i int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i < 0 || i >= len(c.slides) {
		return false
	}
	s := c.slides[i]
	return s.Type == MediaVideo && c.states[s.ID].state == Playing
}

// Label is the overlay text for slide i: ComingSoonLabel for a video that
// cannot play, empty otherwise.
func (c *Carousel) Label(i int) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i < 0 || i >= len(c.slides) {
		return ""
	}
	s := c.slides[i]
	if s.Type == MediaVideo && c.states[s.ID].state == Broken {
		return ComingSoonLabel
	}
	return ""
}

// Signal feeds a media element event for the slide with id.
func (c *Carousel) Signal(id string, e Event) {
	c.mu.Lock()
	st, ok := c.states[id]
	if !ok {
		c.mu.Unlock()
		return
	}
	c.states[id] = st.apply(e)
	c.mu.Unlock()
	c.notify()
}

func (c *Carousel) Next() { c.step(1) }
func (c *Carousel) Prev() { c.step(-1) }

func (c *Carousel) step(delta int) {
	c.mu.Lock()
	n := c.active + delta
	c.mu.Unlock()
	c.Goto(n)
}

// Goto stops all playback, then moves to n modulo the slide count.
func (c *Carousel) Goto(n int) {
	c.mu.Lock()
	stop := c.stopAllLocked("")
	if len(c.slides) > 0 {
		c.active = wrap(n, len(c.slides))
	}
	c.mu.Unlock()
	c.stopPlayers(stop)
	c.notify()
}

func wrap(n, length int) int {
	m := n % length
	if m < 0 {
		m += length
	}
	return m
}

// Play attempts playback of slide i after stopping every other slide. A
// refused play leaves the slide showing its poster. It reports whether the
// slide is now playing or will play once ready.
func (c *Carousel) Play(ctx context.Context, i int) bool {
	c.mu.Lock()
	if i < 0 || i >= len(c.slides) {
		c.mu.Unlock()
		return false
	}
	slide := c.slides[i]
	if slide.Type != MediaVideo || c.states[slide.ID].state == Broken {
		c.mu.Unlock()
		return false
	}
	stop := c.stopAllLocked(slide.ID)
	gen := c.playGen
	c.mu.Unlock()

	c.stopPlayers(stop)
	err := c.player.Play(ctx, slide.ID)

	c.mu.Lock()
	if c.playGen != gen {
		// navigation or another play superseded this request
		c.mu.Unlock()
		if err == nil {
			c.player.Stop(slide.ID)
		}
		return false
	}
	st, ok := c.states[slide.ID]
	if !ok {
		c.mu.Unlock()
		return false
	}
	if err != nil {
		st = st.apply(EventPlayFailed)
	} else {
		st = st.apply(EventPlay)
	}
	c.states[slide.ID] = st
	c.mu.Unlock()
	c.notify()
	return err == nil && st.state != Broken
}

// Pause stops slide i.
func (c *Carousel) Pause(i int) {
	c.mu.Lock()
	if i < 0 || i >= len(c.slides) {
		c.mu.Unlock()
		return
	}
	id := c.slides[i].ID
	c.playGen++
	c.states[id] = c.states[id].apply(EventPause)
	c.mu.Unlock()
	c.player.Stop(id)
	c.notify()
}

// stopAllLocked pauses every video except keep and invalidates pending play
// requests. It returns the ids whose elements must be stopped.
func (c *Carousel) stopAllLocked(keep string) []string {
	c.playGen++
	var stop []string
	for _, s := range c.slides {
		if s.ID == keep || s.Type != MediaVideo {
			continue
		}
		st := c.states[s.ID]
		if st.state == Broken {
			continue
		}
		c.states[s.ID] = st.apply(EventIndexChanged)
		stop = append(stop, s.ID)
	}
	return stop
}

func (c *Carousel) stopPlayers(ids []string) {
	for _, id := range ids {
		c.player.Stop(id)
	}
}

// AutoplayEnabled is false with one slide or fewer, while the modal is open
// or while the current slide is playing.
func (c *Carousel) AutoplayEnabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.autoplayEnabledLocked()
}

func (c *Carousel) autoplayEnabledLocked() bool {
	if len(c.slides) <= 1 || c.modalOpen {
		return false
	}
	return c.states[c.slides[c.active].ID].state != Playing
}

// RunAutoplay advances the carousel every interval until ctx is done or the
// carousel is closed. The timer restarts whenever the carousel changes.
func (c *Carousel) RunAutoplay(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.done:
			return
		case <-c.changes:
			ticker.Reset(interval)
		case <-ticker.C:
			if c.AutoplayEnabled() {
				c.Next()
				// our own advance must not restart the timer
				select {
				case <-c.changes:
				default:
				}
			}
		}
	}
}

// Close stops playback and ends any RunAutoplay loop.
func (c *Carousel) Close() {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		stop := c.stopAllLocked("")
		modal := c.modal
		c.modal = nil
		c.modalOpen = false
		c.mu.Unlock()

		c.stopPlayers(stop)
		if modal != nil {
			modal.Close()
		}
		close(c.done)
	})
}

func (c *Carousel) notify() {
	select {
	case c.changes <- struct{}{}:
	default:
	}
}
