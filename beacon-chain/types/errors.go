package types

import "github.com/pkg/errors"

func errNilField(name string) error {
	return errors.Errorf("nil %s field", name)
}
