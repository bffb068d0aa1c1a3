package wumpus

import (
	"fmt"
	"math/rand/v2"
	"strings"
)

// Location indices. The player, the wumpus, two pits and two bats each
// occupy one room.
const (
	you = iota
	wumpus
	pit1
	pit2
	bat1
	bat2
	locationCount
)

const msgSeparator = "<br/>"

// tunnels lists, for each room, the three rooms it connects to. Rooms are
// numbered from 1; tunnels[r-1] holds the neighbours of room r.
var tunnels = [RoomCount][3]int{
	{2, 5, 8}, {1, 3, 10}, {2, 4, 12}, {3, 5, 14}, {1, 4, 6},
	{5, 7, 15}, {6, 8, 17}, {1, 7, 9}, {8, 10, 18}, {2, 9, 11},
	{10, 12, 19}, {3, 11, 13}, {12, 14, 20}, {4, 13, 15}, {6, 14, 16},
	{15, 17, 20}, {7, 16, 18}, {9, 17, 19}, {11, 18, 20}, {13, 16, 19},
}

// Tunnels returns the rooms connected to room
func Tunnels(room int) [3]int {
	if room < 1 || room > RoomCount {
		return [3]int{}
	}
	return tunnels[room-1]
}

// Adjacent reports whether a tunnel joins rooms a and b
func Adjacent(a, b int) bool {
	for _, r := range Tunnels(a) {
		if r == b {
			return true
		}
	}
	return false
}

// cave holds the state of one game
type cave struct {
	rng       *rand.Rand
	loc       [locationCount]int
	arrows    int
	maxArrows int
	outcome   Outcome
	msgs      []string
}

func newCave(rng *rand.Rand, arrows int) *cave {
	c := &cave{rng: rng, maxArrows: arrows}
	c.renew()
	c.say("HUNT THE WUMPUS")
	return c
}

// renew starts a new game: the player and hazards go to distinct random
// rooms of the same cave and the quiver is refilled
func (c *cave) renew() {
	perm := c.rng.Perm(RoomCount)
	for i := range c.loc {
		c.loc[i] = perm[i] + 1
	}
	c.arrows = c.maxArrows
	c.outcome = Playing
}

func (c *cave) randomRoom() int {
	return c.rng.IntN(RoomCount) + 1
}

func (c *cave) say(msg string) {
	c.msgs = append(c.msgs, msg)
}

func (c *cave) over() bool {
	if c.outcome == Playing {
		return false
	}
	c.say("THE GAME IS OVER - RESTART TO PLAY AGAIN")
	return true
}

// move walks the player through a tunnel, resolving hazards on arrival
func (c *cave) move(room int) {
	if c.over() {
		return
	}
	if !Adjacent(c.loc[you], room) {
		if room != c.loc[you] {
			c.say("NOT POSSIBLE -")
		}
		return
	}

	for {
		c.loc[you] = room

		if room == c.loc[wumpus] {
			c.say("...OOPS! BUMPED A WUMPUS!")
			c.moveWumpus()
			if c.outcome != Playing {
				return
			}
		}

		if room == c.loc[pit1] || room == c.loc[pit2] {
			c.say("YYYIIIIEEEE . . . FELL IN PIT")
			c.outcome = Lost
			return
		}

		if room != c.loc[bat1] && room != c.loc[bat2] {
			return
		}
		c.say("ZAP--SUPER BAT SNATCH! ELSEWHEREVILLE FOR YOU!")
		room = c.randomRoom()
	}
}

// moveWumpus wakes the wumpus: it moves one room with p=.75 and eats the
// player if it ends up in the player's room.
func (c *cave) moveWumpus() {
	if k := c.rng.IntN(4); k < 3 {
		c.loc[wumpus] = tunnels[c.loc[wumpus]-1][k]
	}
	if c.loc[wumpus] == c.loc[you] {
		c.say("TSK TSK TSK- WUMPUS GOT YOU!")
		c.outcome = Lost
	}
}

// shoot flies a crooked arrow along path
func (c *cave) shoot(path []int) {
	if c.over() {
		return
	}
	if len(path) < 1 || len(path) > MaxArrowPath {
		c.say(fmt.Sprintf("NO. OF ROOMS(1-%d)", MaxArrowPath))
		return
	}
	for k := 2; k < len(path); k++ {
		if path[k] == path[k-2] {
			c.say("ARROWS AREN'T THAT CROOKED - TRY ANOTHER ROOM")
			return
		}
	}

	arrow := c.loc[you]
	for _, target := range path {
		if Adjacent(arrow, target) {
			arrow = target
		} else {
			arrow = tunnels[arrow-1][c.rng.IntN(3)]
		}

		if arrow == c.loc[wumpus] {
			c.say("AHA! YOU GOT THE WUMPUS!")
			c.outcome = Won
			return
		}
		if arrow == c.loc[you] {
			c.say("OUCH! ARROW GOT YOU!")
			c.outcome = Lost
			return
		}
	}

	c.say("MISSED")
	c.moveWumpus()
	c.arrows--
	if c.arrows <= 0 && c.outcome == Playing {
		c.say("OUT OF ARROWS")
		c.outcome = Lost
	}
}

// warnings reports nearby hazards and the player's position
func (c *cave) warnings() {
	here := c.loc[you]
	for _, r := range tunnels[here-1] {
		if r == c.loc[wumpus] {
			c.say("I SMELL A WUMPUS!")
		}
		if r == c.loc[pit1] || r == c.loc[pit2] {
			c.say("I FEEL A DRAFT")
		}
		if r == c.loc[bat1] || r == c.loc[bat2] {
			c.say("BATS NEARBY!")
		}
	}
	t := tunnels[here-1]
	c.say(fmt.Sprintf("YOU ARE IN ROOM %d", here))
	c.say(fmt.Sprintf("TUNNELS LEAD TO %d, %d, %d", t[0], t[1], t[2]))
}

// response drains the pending messages into a Response
func (c *cave) response() Response {
	switch c.outcome {
	case Playing:
		c.warnings()
	case Lost:
		c.say("HA HA HA - YOU LOSE!")
	case Won:
		c.say("HEE HEE HEE - THE WUMPUS'LL GETCHA NEXT TIME!!")
	}

	resp := Response{
		Msgs:    strings.Join(c.msgs, msgSeparator),
		Tunnels: tunnels[c.loc[you]-1],
		Arrows:  c.arrows,
		Outcome: c.outcome,
	}
	c.msgs = c.msgs[:0]
	return resp
}

func (c *cave) snapshot() Snapshot {
	return Snapshot{
		Locations: c.loc,
		Arrows:    c.arrows,
		Outcome:   c.outcome,
	}
}

func (c *cave) restore(s Snapshot) {
	c.loc = s.Locations
	c.arrows = s.Arrows
	c.outcome = s.Outcome
	c.msgs = c.msgs[:0]
}
