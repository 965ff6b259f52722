package grid_world

// The state consists of the position and current x/y velocity.
// Velocity is number of cells moved per time step.
// Note that the cell type (wall, track, etc) is not really part of the state's
// identity, but is only used for the reward function.
type State struct {
	X, Y, VX, VY int
	CellType     rune
}

// Action consists of a velocity increment/decrement and horizontal or vertical direction.
// In this problem, three actions (+1, -1, 0) yields 9 actions per step, e.g. |(+1, -1, 0)|**2.
type Action struct {
	Dvx, Dvy int
}

const (
	// Track cell types
	WALL   = 'W'
	TRACK  = 'o'
	START  = '-'
	FINISH = '+'

	// Kinematic actions in the x and y direction. A velocity of 1 means traveling one grid cell per time step.
	MAX_VELOCITY      = 4
	MIN_VELOCITY      = -MAX_VELOCITY
	NUM_VELOCITIES    = MAX_VELOCITY - MIN_VELOCITY + 1
	MAX_ACCELERATION  = 1
	MIN_ACCELERATION  = -1
	NUM_ACCELERATIONS = MAX_ACCELERATION - MIN_ACCELERATION + 1

	// Rewards
	COLLISION_REWARD = -5
	STEP_REWARD      = -1
	FINISH_REWARD    = 0
)

// The classical track and a smaller debug track for development.
var (
	DebugTrack []string = []string{
		"WWWWWW",
		"Woooo+",
		"Woooo+",
		"WooWWW",
		"WooWWW",
		"WooWWW",
		"WooWWW",
		"W--WWW",
	}

	FullTrack []string = []string{
		"WWWWWWWWWWWWWWWWWW",
		"WWWWooooooooooooo+",
		"WWWoooooooooooooo+",
		"WWWoooooooooooooo+",
		"WWooooooooooooooo+",
		"Woooooooooooooooo+",
		"Woooooooooooooooo+",
		"WooooooooooWWWWWWW",
		"WoooooooooWWWWWWWW",
		"WoooooooooWWWWWWWW",
		"WoooooooooWWWWWWWW",
		"WoooooooooWWWWWWWW",
		"WoooooooooWWWWWWWW",
		"WoooooooooWWWWWWWW",
		"WoooooooooWWWWWWWW",
		"WWooooooooWWWWWWWW",
		"WWooooooooWWWWWWWW",
		"WWooooooooWWWWWWWW",
		"WWooooooooWWWWWWWW",
		"WWooooooooWWWWWWWW",
		"WWooooooooWWWWWWWW",
		"WWooooooooWWWWWWWW",
		"WWooooooooWWWWWWWW",
		"WWWoooooooWWWWWWWW",
		"WWWoooooooWWWWWWWW",
		"WWWoooooooWWWWWWWW",
		"WWWoooooooWWWWWWWW",
		"WWWoooooooWWWWWWWW",
		"WWWoooooooWWWWWWWW",
		"WWWoooooooWWWWWWWW",
		"WWWWooooooWWWWWWWW",
		"WWWWooooooWWWWWWWW",
		"WWWW------WWWWWWWW",
	}
)

// Converts a track input string array to an actual state grid of positions and velocities.
// The orientation is such that the bottom/left most position of the track (when printed in a console) is (0,0).
// This gives awkward reverse-iteration displaying, but makes sense for the problem dynamics: +1 velocity yields +1 position in some array.
// Note that this is just an (X x Y x VX x VY) size matrix and would be implemented as such in Python.
// Note there is no error checking on the input track, nor error returned.
// Returns: multidim state slice, whose indices are [x][y][vx][vy].
func Convert(track []string) (states [][][][]State) {
	width := len(track[0])
	height := len(track)

	states = make([][][][]State, 0, width)
	// Build cells from left to right...
	for x := 0; x < width; x++ {
		states = append(states, make([][][]State, 0, height))
		// And bottom to top...
		for y := 0; y < height; y++ {
			states[x] = append(states[x], make([][]State, 0, NUM_VELOCITIES))
			// Select cells bottom up, so the grid has a logical progression where positive x/y velocities are right/up, from (0,0).
			cell_type := rune(track[height-y-1][x])
			// Add vx/vy velocities per x/y state
			for vxi := 0; vxi < NUM_VELOCITIES; vxi++ {
				vx := MIN_VELOCITY + vxi
				states[x][y] = append(states[x][y], make([]State, 0, NUM_VELOCITIES))
				for vyi := 0; vyi < NUM_VELOCITIES; vyi++ {
					state := State{
						X:        x,
						Y:        y,
						VX:       vx,
						VY:       MIN_VELOCITY + vyi,
						CellType: cell_type,
					}
					states[x][y][vxi] = append(states[x][y][vxi], state)
				}
			}
		}
	}

	return states
}

// Returns reversed indices of a slice, e.g. for ranging over.
func Rev(length int) []int {
	indices := make([]int, length)
	for i := 0; i < length; i++ {
		indices[i] = length - i - 1
	}
	return indices
}
