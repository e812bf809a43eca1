package analysis

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/newthinker/finsight/internal/core"
)

// MaxCompanies is the hard upper bound on companies per report
const MaxCompanies = 3

// Selection is what the user picked: a handful of tickers (or display
// names from the universe) and a historical window.
type Selection struct {
	Tickers []string    `json:"tickers" validate:"required,min=1,max=3,unique,dive,required,max=32"`
	Window  core.Window `json:"window" validate:"omitempty,oneof=1y 2y 5y"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Normalize trims blanks and drops empty entries.
func (s Selection) Normalize() Selection {
	out := Selection{Window: core.Window(strings.TrimSpace(string(s.Window)))}
	for _, t := range s.Tickers {
		if t = strings.TrimSpace(t); t != "" {
			out.Tickers = append(out.Tickers, t)
		}
	}
	if w, err := core.ParseWindow(string(out.Window)); err == nil {
		out.Window = w
	}
	return out
}

// Validate checks the selection and maps validation failures onto the
// coded domain errors.
func (s Selection) Validate() error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return core.WrapError(core.ErrInvalidRequest, err)
	}

	fe := verrs[0]
	switch {
	case fe.Field() == "Tickers" && (fe.Tag() == "required" || fe.Tag() == "min"):
		return core.ErrEmptySelection
	case fe.Field() == "Tickers" && fe.Tag() == "max":
		return core.WrapError(core.ErrTooManyCompanies, fmt.Errorf("got %d, at most %d", len(s.Tickers), MaxCompanies))
	case fe.Field() == "Tickers" && fe.Tag() == "unique":
		return core.WrapError(core.ErrInvalidRequest, fmt.Errorf("duplicate ticker in selection"))
	case fe.Field() == "Window":
		return core.WrapError(core.ErrInvalidWindow, fmt.Errorf("%q", s.Window))
	default:
		return core.WrapError(core.ErrInvalidRequest, fmt.Errorf("%s failed %s", fe.Namespace(), fe.Tag()))
	}
}
