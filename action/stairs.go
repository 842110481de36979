package action

import (
	"fmt"
	"time"

	"wizmind/analysis"
	"wizmind/input"
	"wizmind/mirror"
	"wizmind/telemetry"
)

// EnterStairs leaves the map through stairs under the player, or through
// the stairs one step away in dir. Stairs inside a Garrison ask for one
// more confirmation.
func (c *Controller) EnterStairs(dir *analysis.Direction, garrison bool) error {
	block, err := c.mirror.Read()
	if err != nil {
		return err
	}

	key, mods := input.KeyOemPeriod, input.ModShift
	if dir != nil {
		if key, err = DirectionKey(*dir); err != nil {
			return err
		}
		mods = input.ModNone
	}

	if err := c.tap(key, mods); err != nil {
		return err
	}
	time.Sleep(c.timings.MapLeaveConfirmation)
	if err := c.tap(key, mods); err != nil {
		return err
	}
	if garrison {
		time.Sleep(c.timings.MapLeaveConfirmation)
		if err := c.tap(input.KeyOemPeriod, input.ModShift); err != nil {
			return err
		}
	}

	return c.waitForNewMap(block)
}

// waitForNewMap polls until the counter moved and the map or depth
// changed. The same map at the same depth cannot be entered twice in a row.
func (c *Controller) waitForNewMap(from telemetry.Block) error {
	err := poll(c.timings.MapLoadTime, c.timings.MapLoadSleep, ErrStairsFailed, func() (bool, error) {
		c.mirror.Invalidate(mirror.NonAdvancing)
		block, err := c.mirror.Read()
		if err != nil {
			return false, err
		}
		return block.ActionReady != from.ActionReady &&
			(block.LocationMap != from.LocationMap || block.LocationDepth != from.LocationDepth), nil
	})
	if err != nil {
		return fmt.Errorf("leave %s depth %d: %w", from.LocationMap, from.LocationDepth, err)
	}
	time.Sleep(c.timings.PostMapLoad)
	return nil
}
