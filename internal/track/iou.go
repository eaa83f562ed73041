// Package track implements a multi-object tracker over per-frame
// detections, assigning identities that persist across frames of one
// sequence.
package track

import (
	"github.com/openmot/trackbench/internal/mot"
)

// TrackState represents the lifecycle state of a track.
type TrackState string

const (
	TrackTentative TrackState = "tentative" // New track, needs confirmation
	TrackConfirmed TrackState = "confirmed" // Stable track emitted in output
	TrackDeleted   TrackState = "deleted"   // Track marked for removal
)

// TrackerConfig holds configuration parameters for the tracker.
type TrackerConfig struct {
	IOUThreshold  float64 // Minimum IOU for detection-to-track association
	MaxMisses     int     // Consecutive misses before deletion
	HitsToConfirm int     // Consecutive hits needed for confirmation
	MaxTracks     int     // Maximum number of concurrent tracks
}

// DefaultTrackerConfig returns default tracker configuration.
func DefaultTrackerConfig() TrackerConfig {
	return TrackerConfig{
		IOUThreshold:  0.3,
		MaxMisses:     3,
		HitsToConfirm: 1,
		MaxTracks:     200,
	}
}

// trackedObject is the internal per-identity state.
type trackedObject struct {
	ID    int
	Label string
	Box   mot.BoundingBox
	State TrackState

	Hits   int // Consecutive successful associations
	Misses int // Consecutive missed associations
}

// IOUTracker associates detections to tracks by greedy nearest-neighbour
// matching on intersection-over-union. Identities are integers, unique
// within a sequence at any point in time; an ID is retired when its track
// is deleted and never reassigned within the same tracker instance.
type IOUTracker struct {
	config TrackerConfig
	tracks map[int]*trackedObject
	nextID int
}

// NewIOUTracker creates a new tracker with the specified configuration.
func NewIOUTracker(config TrackerConfig) *IOUTracker {
	return &IOUTracker{
		config: config,
		tracks: make(map[int]*trackedObject),
		nextID: 1,
	}
}

// Update processes one frame of detections and returns the trackings for
// every confirmed track matched in this frame. FrameIndex is left zero;
// the pipeline attaches it.
func (t *IOUTracker) Update(detections []mot.Detection) ([]mot.Tracking, error) {
	// Step 1: associate detections to active tracks by best IOU.
	associations := t.associate(detections)

	// Step 2: update matched tracks.
	matched := make(map[int]bool)
	for di, trackID := range associations {
		if trackID == 0 {
			continue
		}
		tr := t.tracks[trackID]
		tr.Box = detections[di].Box
		tr.Hits++
		tr.Misses = 0
		matched[trackID] = true

		// Promote tentative -> confirmed
		if tr.State == TrackTentative && tr.Hits >= t.config.HitsToConfirm {
			tr.State = TrackConfirmed
		}
	}

	// Step 3: age unmatched tracks.
	for id, tr := range t.tracks {
		if !matched[id] && tr.State != TrackDeleted {
			tr.Misses++
			tr.Hits = 0
			if tr.Misses >= t.config.MaxMisses {
				tr.State = TrackDeleted
			}
		}
	}

	// Step 4: start new tracks from unassociated detections.
	for di, trackID := range associations {
		if trackID != 0 || t.activeCount() >= t.config.MaxTracks {
			continue
		}
		tr := t.initTrack(detections[di])
		if tr.State == TrackConfirmed {
			matched[tr.ID] = true
		}
	}

	// Step 5: drop deleted tracks.
	for id, tr := range t.tracks {
		if tr.State == TrackDeleted {
			delete(t.tracks, id)
		}
	}

	// Emit one tracking per confirmed track seen in this frame.
	// Emission order within a frame is unspecified.
	out := make([]mot.Tracking, 0, len(matched))
	for id := range matched {
		tr := t.tracks[id]
		if tr == nil || tr.State != TrackConfirmed {
			continue
		}
		out = append(out, mot.Tracking{
			Label: tr.Label,
			ID:    tr.ID,
			Box:   tr.Box,
		})
	}
	return out, nil
}

// associate performs detection-to-track association using IOU gating and
// greedy nearest neighbour. Returns a slice mapping detection index to
// track ID (zero for unassociated).
func (t *IOUTracker) associate(detections []mot.Detection) []int {
	associations := make([]int, len(detections))
	trackUsed := make(map[int]bool)

	for di, det := range detections {
		bestID := 0
		bestIOU := t.config.IOUThreshold

		for id, tr := range t.tracks {
			if trackUsed[id] || tr.State == TrackDeleted {
				continue
			}
			if tr.Label != det.Label {
				continue
			}
			if iou := mot.IOU(tr.Box, det.Box); iou > bestIOU {
				bestIOU = iou
				bestID = id
			}
		}

		if bestID != 0 {
			associations[di] = bestID
			trackUsed[bestID] = true
		}
	}

	return associations
}

// initTrack creates a new track from an unassociated detection.
func (t *IOUTracker) initTrack(det mot.Detection) *trackedObject {
	tr := &trackedObject{
		ID:    t.nextID,
		Label: det.Label,
		Box:   det.Box,
		State: TrackTentative,
		Hits:  1,
	}
	t.nextID++

	if tr.Hits >= t.config.HitsToConfirm {
		tr.State = TrackConfirmed
	}

	t.tracks[tr.ID] = tr
	return tr
}

func (t *IOUTracker) activeCount() int {
	n := 0
	for _, tr := range t.tracks {
		if tr.State != TrackDeleted {
			n++
		}
	}
	return n
}

// ActiveTrackCount returns the number of non-deleted tracks.
func (t *IOUTracker) ActiveTrackCount() int {
	return t.activeCount()
}
