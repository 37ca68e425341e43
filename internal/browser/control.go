package browser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/cdp"
	"github.com/go-rod/rod/lib/proto"

	"github.com/gridcrawl/gridcrawl/internal/types"
)

// control adapts a located load-more element to reveal.Control.
type control struct {
	el *rod.Element
}

func (c *control) Visible() (bool, error) {
	visible, err := c.el.Visible()
	if err != nil {
		return false, mapStale(err)
	}
	return visible, nil
}

func (c *control) ScrollIntoView() error {
	return mapStale(c.el.ScrollIntoView())
}

func (c *control) Click() error {
	return mapStale(c.el.Click(proto.InputMouseButtonLeft, 1))
}

// mapStale translates protocol errors caused by a re-rendered page into
// types.ErrStaleControl so the reveal loop can retry instead of aborting.
// The remote object or backing node disappearing out from under a held
// reference is exactly the stale case.
func mapStale(err error) error {
	if err == nil {
		return nil
	}

	var cdpErr *cdp.Error
	if errors.As(err, &cdpErr) {
		msg := cdpErr.Message
		switch {
		case strings.Contains(msg, "Cannot find context with specified id"),
			strings.Contains(msg, "Could not find node with given id"),
			strings.Contains(msg, "No node with given id found"),
			strings.Contains(msg, "Node with given id does not belong to the document"),
			strings.Contains(msg, "Object id doesn't reference a Node"):
			return fmt.Errorf("%w: %v", types.ErrStaleControl, err)
		}
	}

	var objErr *rod.ObjectNotFoundError
	if errors.As(err, &objErr) {
		return fmt.Errorf("%w: %v", types.ErrStaleControl, err)
	}

	return err
}
