package action

import (
	"time"

	"wizmind/analysis"
	"wizmind/input"
	"wizmind/mirror"
)

// OpenHackingPopup bumps into the machine in dir and waits until the popup
// takes input. The player must already stand next to the machine.
func (c *Controller) OpenHackingPopup(dir analysis.Direction) error {
	key, err := DirectionKey(dir)
	if err != nil {
		return err
	}
	if err := c.tap(key, input.ModNone); err != nil {
		return err
	}

	err = poll(c.timings.HackingPopupLoadTimeout, c.timings.HackPopupLoadSleep, ErrHackPopupOpen, func() (bool, error) {
		c.mirror.Invalidate(mirror.NonAdvancing)
		h, err := c.mirror.Hacking()
		if err != nil {
			return false, err
		}
		return h != nil && h.ActionReady() == 1, nil
	})
	if err != nil {
		return err
	}

	// the popup keeps animating after it reports ready
	time.Sleep(c.timings.PostHackPopupLoad)
	return nil
}

func (c *Controller) readyHacking() (*mirror.Hacking, error) {
	h, err := c.mirror.Hacking()
	if err != nil {
		return nil, err
	}
	if h == nil || h.ActionReady() == 0 {
		return nil, ErrHackNotReady
	}
	return h, nil
}

// PerformHack picks the listed hack bound to key and waits for the result.
// It reports whether the hack succeeded.
func (c *Controller) PerformHack(key input.Key) (bool, error) {
	h, err := c.readyHacking()
	if err != nil {
		return false, err
	}
	last := h.ActionReady()

	if err := c.tap(key, input.ModNone); err != nil {
		return false, err
	}

	var success bool
	err = poll(c.timings.HackingPopupLoadTimeout, c.timings.HackDataRefresh, ErrHackIncomplete, func() (bool, error) {
		c.mirror.Invalidate(mirror.NonAdvancing)
		h, err := c.mirror.Hacking()
		if err != nil || h == nil {
			return false, err
		}
		if h.ActionReady() == last {
			return false, nil
		}
		success = h.LastHackSuccess()
		return true, nil
	})
	if err != nil {
		return false, err
	}
	c.log.Infoln("Hack", key, "success", success)
	return success, nil
}

// CloseHackingPopup escapes the popup. The hacking record is cleared before
// the close animation ends, so a fixed sleep follows.
func (c *Controller) CloseHackingPopup() error {
	if _, err := c.readyHacking(); err != nil {
		return err
	}
	if err := c.tap(input.KeyEscape, input.ModNone); err != nil {
		return err
	}
	c.mirror.Invalidate(mirror.NonAdvancing)
	time.Sleep(c.timings.PostHackPopupLoad)

	h, err := c.mirror.Hacking()
	if err != nil {
		return err
	}
	if h != nil {
		return ErrHackPopupClose
	}
	return nil
}
