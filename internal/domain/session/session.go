// Package session tracks a single in-progress product configuration.
package session

import (
	"github.com/go-faster/errors"

	"github.com/xenking/menukart/internal/domain/catalog"
	"github.com/xenking/menukart/internal/domain/pricing"
)

var (
	// ErrInvalidState is returned when an operation does not apply to the
	// current session state or product kind.
	ErrInvalidState = errors.New("invalid session state")
	// ErrInvalidOption is returned when a mutation names an option that the
	// open product does not offer.
	ErrInvalidOption = errors.New("invalid option")
)

// State of a Session.
type State int

const (
	StateClosed State = iota
	StateOpen
)

func (s State) String() string {
	if s == StateOpen {
		return "open"
	}
	return "closed"
}

// Confirmation is the outcome of a successful Confirm.
type Confirmation struct {
	Product    catalog.Product
	Resolution pricing.Resolution
}

// View is a read-only snapshot of an open session.
type View struct {
	Product catalog.Product
	// Variant is the selected variant index, or -1.
	Variant int
	// Checked has one entry per add-on (checkbox control).
	Checked []bool
	// Counts has one entry per add-on (counter control).
	Counts []int
}

// Session mediates one configuration attempt at a time. Opening a new
// session discards any unconfirmed one. The zero value is a closed session.
//
// Session is not safe for concurrent use.
type Session struct {
	product catalog.Product
	sel     pricing.Selection
	open    bool
}

// State returns the current state.
func (s *Session) State() State {
	if s.open {
		return StateOpen
	}
	return StateClosed
}

// Open starts configuring p. Simple products bypass sessions and yield
// ErrInvalidState.
func (s *Session) Open(p catalog.Product) error {
	if !p.Configurable() {
		return errors.Wrapf(ErrInvalidState, "product %s needs no configuration", p.ID)
	}
	s.product = p
	s.sel = pricing.Selection{
		Variant: -1,
		Checked: make(map[int]bool),
		Counts:  make(map[int]int),
	}
	s.open = true
	return nil
}

// SelectVariant replaces the variant choice.
func (s *Session) SelectVariant(i int) error {
	if err := s.require(catalog.KindVariant); err != nil {
		return err
	}
	if i < 0 || i >= len(s.product.Variants) {
		return errors.Wrapf(ErrInvalidOption, "variant %d", i)
	}
	s.sel.Variant = i
	return nil
}

// SetAddOn checks or unchecks a checkbox add-on. Repeating a call is a no-op.
func (s *Session) SetAddOn(i int, checked bool) error {
	if err := s.requireControl(catalog.ControlCheckbox); err != nil {
		return err
	}
	if i < 0 || i >= len(s.product.AddOns) {
		return errors.Wrapf(ErrInvalidOption, "add-on %d", i)
	}
	if checked {
		s.sel.Checked[i] = true
	} else {
		delete(s.sel.Checked, i)
	}
	return nil
}

// Adjust changes a counter add-on by delta. Counts never drop below zero;
// decrementing an empty counter is not an error.
func (s *Session) Adjust(i, delta int) error {
	if err := s.requireControl(catalog.ControlCounter); err != nil {
		return err
	}
	if i < 0 || i >= len(s.product.AddOns) {
		return errors.Wrapf(ErrInvalidOption, "add-on %d", i)
	}
	n := max(s.sel.Counts[i]+delta, 0)
	if n == 0 {
		delete(s.sel.Counts, i)
	} else {
		s.sel.Counts[i] = n
	}
	return nil
}

// Confirm prices the current selection. On *pricing.ValidationError the
// session stays open so the selection can be corrected. On success the
// session closes.
func (s *Session) Confirm() (Confirmation, error) {
	if !s.open {
		return Confirmation{}, errors.Wrap(ErrInvalidState, "no open session")
	}
	res, err := pricing.Resolve(s.product, s.sel)
	if err != nil {
		return Confirmation{}, err
	}
	c := Confirmation{Product: s.product, Resolution: res}
	s.Cancel()
	return c, nil
}

// Cancel discards the session. It is a no-op when closed.
func (s *Session) Cancel() {
	*s = Session{}
}

// View returns the open session's selection.
func (s *Session) View() (View, bool) {
	if !s.open {
		return View{}, false
	}
	v := View{Product: s.product, Variant: s.sel.Variant}
	if s.product.Kind == catalog.KindAddOns {
		if s.product.Control == catalog.ControlCounter {
			v.Counts = make([]int, len(s.product.AddOns))
			for i := range v.Counts {
				v.Counts[i] = s.sel.Counts[i]
			}
		} else {
			v.Checked = make([]bool, len(s.product.AddOns))
			for i := range v.Checked {
				v.Checked[i] = s.sel.Checked[i]
			}
		}
	}
	return v, true
}

func (s *Session) require(kind catalog.Kind) error {
	if !s.open {
		return errors.Wrap(ErrInvalidState, "no open session")
	}
	if s.product.Kind != kind {
		return errors.Wrapf(ErrInvalidOption, "product %s is %s", s.product.ID, s.product.Kind)
	}
	return nil
}

func (s *Session) requireControl(control catalog.Control) error {
	if err := s.require(catalog.KindAddOns); err != nil {
		return err
	}
	if s.product.Control != control {
		return errors.Wrapf(ErrInvalidOption, "product %s uses %s add-ons", s.product.ID, s.product.Control)
	}
	return nil
}
