package carousel

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePlayer struct {
	mu      sync.Mutex
	refuse  map[string]error
	stopped []string
	played  []string
	entered chan string
	release chan struct{}
}

func newFakePlayer() *fakePlayer {
	return &fakePlayer{refuse: map[string]error{}}
}

func (p *fakePlayer) Play(ctx context.Context, id string) error {
	p.mu.Lock()
	p.played = append(p.played, id)
	err := p.refuse[id]
	entered, release := p.entered, p.release
	p.mu.Unlock()

	if entered != nil {
		entered <- id
		<-release
	}
	return err
}

func (p *fakePlayer) Stop(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopped = append(p.stopped, id)
}

func (p *fakePlayer) stops() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.stopped...)
}

func videos(n int) []Slide {
	out := make([]Slide, n)
	for i := range out {
		out[i] = Slide{ID: string(rune('a' + i)), Type: MediaVideo, Src: "/v.mp4"}
	}
	return out
}

func ready(c *Carousel) {
	for _, s := range c.Slides() {
		c.Signal(s.ID, EventCanPlay)
	}
}

func TestGotoWraps(t *testing.T) {
	c := New(videos(4))
	n := c.Len()

	for i := 0; i < n; i++ {
		c.Goto(i)
		want := c.Active()
		c.Goto(i + n)
		assert.Equal(t, want, c.Active(), "goto(%d)", i+n)
		c.Goto(i - n)
		assert.Equal(t, want, c.Active(), "goto(%d)", i-n)
	}

	c.Goto(0)
	c.Prev()
	assert.Equal(t, 3, c.Active())
	c.Next()
	assert.Equal(t, 0, c.Active())
}

func TestGotoOnEmptyCarousel(t *testing.T) {
	c := New(nil)
	c.Next()
	c.Goto(5)
	assert.Equal(t, 0, c.Active())
	assert.False(t, c.AutoplayEnabled())
}

func TestPlayStopsOtherSlides(t *testing.T) {
	player := newFakePlayer()
	c := New(videos(3), WithPlayer(player))
	ready(c)

	require.True(t, c.Play(context.Background(), 0))
	assert.Equal(t, Playing, c.State(0))

	require.True(t, c.Play(context.Background(), 2))
	assert.Equal(t, Ready, c.State(0))
	assert.Equal(t, Playing, c.State(2))
	assert.Contains(t, player.stops(), "a")

	playing := 0
	for i := 0; i < c.Len(); i++ {
		if c.State(i) == Playing {
			playing++
		}
	}
	assert.Equal(t, 1, playing)
}

func TestShowVideoRequiresReadyAndPlaying(t *testing.T) {
	c := New(videos(1))
	assert.False(t, c.ShowVideo(0))

	// play resolves before the element can play
	assert.True(t, c.Play(context.Background(), 0))
	assert.Equal(t, Idle, c.State(0))
	assert.False(t, c.ShowVideo(0))

	c.Signal("a", EventCanPlay)
	assert.Equal(t, Playing, c.State(0))
	assert.True(t, c.ShowVideo(0))
}

func TestRefusedPlayIsSoft(t *testing.T) {
	player := newFakePlayer()
	player.refuse["a"] = errors.New("NotAllowedError")
	c := New(videos(2), WithPlayer(player))
	ready(c)

	assert.False(t, c.Play(context.Background(), 0))
	assert.Equal(t, Ready, c.State(0))
	assert.False(t, c.ShowVideo(0))
	assert.Empty(t, c.Label(0))
}

func TestErrorBreaksVideoUntilReset(t *testing.T) {
	slides := videos(2)
	c := New(slides)
	ready(c)

	c.Signal("a", EventError)
	assert.Equal(t, Broken, c.State(0))
	assert.Equal(t, ComingSoonLabel, c.Label(0))
	assert.False(t, c.Play(context.Background(), 0))

	c.Signal("a", EventCanPlay)
	assert.Equal(t, Broken, c.State(0))

	// reordering keeps identity and state
	c.SetItems([]Slide{slides[1], slides[0]})
	assert.Equal(t, Broken, c.State(1))
	assert.Equal(t, Ready, c.State(0))

	c.Reset(slides)
	assert.Equal(t, Idle, c.State(0))
}

func TestEmptySourceVideoIsComingSoon(t *testing.T) {
	c := New([]Slide{{Type: MediaVideo, Thumb: "/soon.jpg"}, {Type: MediaImage, Src: "/a.jpg"}})

	assert.Equal(t, Broken, c.State(0))
	assert.Equal(t, ComingSoonLabel, c.Label(0))
	assert.Equal(t, Ready, c.State(1))
	assert.Empty(t, c.Label(1))
	assert.False(t, c.Play(context.Background(), 1))
}

func TestDerivedIDsAreUnique(t *testing.T) {
	c := New([]Slide{
		{Type: MediaImage, Src: "/a.jpg"},
		{Type: MediaImage, Src: "/a.jpg"},
		{Type: MediaVideo},
		{Type: MediaVideo},
	})
	ids := map[string]bool{}
	for _, s := range c.Slides() {
		ids[s.ID] = true
	}
	assert.Len(t, ids, 4)
}

func TestNavigationStopsPlayback(t *testing.T) {
	player := newFakePlayer()
	c := New(videos(3), WithPlayer(player))
	ready(c)

	require.True(t, c.Play(context.Background(), 0))
	c.Next()

	assert.Equal(t, 1, c.Active())
	assert.Equal(t, Ready, c.State(0))
	assert.Contains(t, player.stops(), "a")
}

func TestSupersededPlayIsStopped(t *testing.T) {
	player := newFakePlayer()
	player.entered = make(chan string)
	player.release = make(chan struct{})
	c := New(videos(2), WithPlayer(player))
	ready(c)

	result := make(chan bool)
	go func() { result <- c.Play(context.Background(), 0) }()

	<-player.entered
	c.Next()
	close(player.release)

	assert.False(t, <-result)
	assert.Equal(t, Ready, c.State(0))
	stops := player.stops()
	assert.Equal(t, "a", stops[len(stops)-1])
}

func TestAutoplayEnabled(t *testing.T) {
	assert.False(t, New(videos(1)).AutoplayEnabled())

	c := New(videos(3))
	ready(c)
	assert.True(t, c.AutoplayEnabled())

	require.True(t, c.Play(context.Background(), 0))
	assert.False(t, c.AutoplayEnabled())

	c.Pause(0)
	assert.True(t, c.AutoplayEnabled())

	c.OpenModal()
	assert.False(t, c.AutoplayEnabled())
	c.CloseModal()
	assert.True(t, c.AutoplayEnabled())
}

func TestRunAutoplayAdvancesUntilClosed(t *testing.T) {
	c := New([]Slide{
		{Type: MediaImage, Src: "/1.jpg"},
		{Type: MediaImage, Src: "/2.jpg"},
		{Type: MediaImage, Src: "/3.jpg"},
	})

	stopped := make(chan struct{})
	go func() {
		c.RunAutoplay(context.Background(), 5*time.Millisecond)
		close(stopped)
	}()

	assert.Eventually(t, func() bool { return c.Active() != 0 }, time.Second, time.Millisecond)

	c.Close()
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("autoplay loop did not stop on Close")
	}
}

func TestRunAutoplayStopsOnContext(t *testing.T) {
	c := New(videos(2))
	ctx, cancel := context.WithCancel(context.Background())

	stopped := make(chan struct{})
	go func() {
		c.RunAutoplay(ctx, time.Hour)
		close(stopped)
	}()
	cancel()

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("autoplay loop did not stop on cancel")
	}
}

func TestModalKeyboard(t *testing.T) {
	c := New(videos(3))
	c.Goto(1)

	assert.False(t, c.HandleKey("ArrowRight", Focus{}), "closed modal ignores keys")

	m := c.OpenModal()
	require.NotNil(t, m)
	assert.Equal(t, 1, m.Active())

	assert.False(t, c.HandleKey("ArrowRight", Focus{Tag: "input", InputType: "text"}))
	assert.False(t, c.HandleKey("ArrowRight", Focus{Tag: "TEXTAREA"}))
	assert.False(t, c.HandleKey("ArrowRight", Focus{Tag: "div", ContentEditable: true}))
	assert.Equal(t, 1, m.Active())

	assert.True(t, c.HandleKey("ArrowRight", Focus{Tag: "input", InputType: "checkbox"}))
	assert.Equal(t, 2, m.Active())
	assert.True(t, c.HandleKey("ArrowRight", Focus{Tag: "button"}))
	assert.Equal(t, 0, m.Active())
	assert.True(t, c.HandleKey("ArrowLeft", Focus{}))
	assert.Equal(t, 2, m.Active())
	assert.False(t, c.HandleKey("Enter", Focus{}))

	assert.True(t, c.HandleKey("Escape", Focus{}))
	assert.False(t, c.ModalOpen())
	assert.Nil(t, c.Modal())
	assert.Equal(t, 2, c.Active())
}

func TestSwipeNavigatesModalWhenOpen(t *testing.T) {
	c := New(videos(3))
	t0 := time.Now()

	assert.Equal(t, SwipeNext, c.Swipe(Point{X: 200, At: t0}, Point{X: 100, At: t0.Add(100 * time.Millisecond)}))
	assert.Equal(t, 1, c.Active())

	m := c.OpenModal()
	assert.Equal(t, SwipePrev, c.Swipe(Point{X: 100, At: t0}, Point{X: 200, At: t0.Add(100 * time.Millisecond)}))
	assert.Equal(t, 0, m.Active())
	assert.Equal(t, 1, c.Active())
}

func TestModalKeepsBrokenVideos(t *testing.T) {
	c := New(videos(3))
	ready(c)
	c.Signal("b", EventError)
	require.Equal(t, Broken, c.State(1))

	m := c.OpenModal()
	assert.Equal(t, Broken, m.State(1))
	assert.Equal(t, ComingSoonLabel, m.Label(1))
	assert.False(t, m.Play(context.Background(), 1))
	assert.False(t, m.ShowVideo(1))
	assert.Equal(t, Ready, m.State(0))
	c.CloseModal()

	// a failure inside the modal survives closing and reopening
	m = c.OpenModal()
	m.Signal("c", EventError)
	c.CloseModal()
	assert.Equal(t, Broken, c.State(2))

	m = c.OpenModal()
	assert.Equal(t, Broken, m.State(2))
	c.CloseModal()

	c.Reset(videos(3))
	assert.Equal(t, Idle, c.State(1))
	assert.Equal(t, Idle, c.State(2))
}

func TestSnapshot(t *testing.T) {
	c := New([]Slide{
		{Type: MediaImage, Src: "/a.jpg", Alt: "A"},
		{Type: MediaVideo, Thumb: "/soon.jpg"},
		{Type: MediaVideo, Src: "/b.mp4"},
	})

	snap := c.Snapshot()
	assert.Equal(t, 0, snap.ActiveIndex)
	assert.True(t, snap.Autoplay)
	require.Len(t, snap.Slides, 3)
	assert.Equal(t, Broken, snap.Slides[1].State)
	assert.Equal(t, ComingSoonLabel, snap.Slides[1].Label)
	assert.False(t, snap.Slides[2].ShowVideo)

	raw, err := json.Marshal(snap)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"state":"broken"`)
	assert.Contains(t, string(raw), `"id":"image:/a.jpg"`)
	assert.Contains(t, string(raw), `"activeIndex":0`)
}
