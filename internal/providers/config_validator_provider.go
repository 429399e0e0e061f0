package providers

import (
	"errors"

	"github.com/gookit/validate"

	"tripsync/internal/structures"
)

type CnfValidator struct {
	conf *structures.Config
}

func NewCnfValidator(conf *structures.Config) *CnfValidator {
	return &CnfValidator{conf: conf}
}

// Validate runs the struct-tag rules over every config section and
// returns the first violation.
func (cv *CnfValidator) Validate() error {
	for _, section := range []any{
		&cv.conf.WebServer,
		&cv.conf.Persistence,
		&cv.conf.Logger,
	} {
		v := validate.Struct(section)
		if !v.Validate() {
			return errors.New(v.Errors.One())
		}
	}
	if cv.conf.Trip.DefaultBudget != "" {
		v := validate.Struct(&cv.conf.Trip)
		if !v.Validate() {
			return errors.New(v.Errors.One())
		}
	}
	return nil
}
