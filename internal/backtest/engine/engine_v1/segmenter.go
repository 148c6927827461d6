package engine

import "github.com/rxtech-lab/intraday-backtester/internal/types"

// BuildDirectionWindows splits the snapshots from warmupIndex onward into runs of
// equal direction. The first window opens at warmupIndex even when that snapshot
// is Flat. Each window ends where the next one starts and the last window
// ends at the last snapshot index, so a direction change on the final snapshot opens
// no window. Every returned window has StartIndex < EndIndex. Flat runs are kept;
// callers skip them when trading.
func BuildDirectionWindows(snapshots []types.SignalSnapshot, warmupIndex int) []types.DirectionWindow {
	if warmupIndex < 0 {
		warmupIndex = 0
	}

	if warmupIndex >= len(snapshots) {
		return nil
	}

	var windows []types.DirectionWindow

	current := types.DirectionFlat

	for i := warmupIndex; i < len(snapshots); i++ {
		direction := snapshots[i].Direction
		if len(windows) > 0 && direction == current {
			continue
		}

		if len(windows) > 0 {
			windows[len(windows)-1].EndIndex = i
		}

		windows = append(windows, types.DirectionWindow{StartIndex: i, EndIndex: i})
		current = direction
	}

	last := len(windows) - 1
	windows[last].EndIndex = len(snapshots) - 1

	if windows[last].Len() == 0 {
		windows = windows[:last]
	}

	if len(windows) == 0 {
		return nil
	}

	return windows
}

// LatestDirectionWindow returns the most recent window, if any.
func LatestDirectionWindow(windows []types.DirectionWindow) (types.DirectionWindow, bool) {
	if len(windows) == 0 {
		return types.DirectionWindow{}, false
	}

	return windows[len(windows)-1], true
}
