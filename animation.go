package strata

// AnimFrame describes a single frame in a tile animation sequence.
type AnimFrame struct {
	SpriteIndex int // atlas rect index for this frame
	Duration    int // milliseconds
}

// Animator advances tile animation sequences keyed by base sprite index.
// Tiles keep their authored base index; the animator resolves the base to
// the current frame's index at mesh build time, so stopping an animation
// needs no tile rewrites.
//
// There is no global animation manager — callers drive Update themselves.
type Animator struct {
	sequences map[int][]AnimFrame
	elapsed   float64 // seconds
}

// NewAnimator creates an animator with no sequences.
func NewAnimator() *Animator {
	return &Animator{sequences: make(map[int][]AnimFrame)}
}

// SetSequence registers the animation frames for a base sprite index.
// A nil or empty frames slice removes the sequence.
func (a *Animator) SetSequence(base int, frames []AnimFrame) {
	if len(frames) == 0 {
		delete(a.sequences, base)
		return
	}
	a.sequences[base] = frames
}

// Update advances the animation clock. dt is in seconds.
func (a *Animator) Update(dt float32) {
	a.elapsed += float64(dt)
}

// FrameFor resolves a base sprite index to the current frame's sprite index.
// Indices with no sequence (or a zero total duration) resolve to themselves.
func (a *Animator) FrameFor(base int) int {
	frames, ok := a.sequences[base]
	if !ok {
		return base
	}

	total := 0
	for _, f := range frames {
		total += f.Duration
	}
	if total == 0 {
		return base
	}

	elapsed := int(a.elapsed*1000) % total
	acc := 0
	for _, f := range frames {
		acc += f.Duration
		if elapsed < acc {
			return f.SpriteIndex
		}
	}
	return frames[0].SpriteIndex
}
