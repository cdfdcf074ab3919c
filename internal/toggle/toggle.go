// Package toggle is a minimal capability used to demonstrate consuming the
// locator: a service that flips booleans and a view model that depends on it.
package toggle

import (
	"github.com/GoCodeAlone/locator"
)

// Toggler flips a boolean.
type Toggler interface {
	Toggle(value bool) bool
}

// Service is the default Toggler. Its zero value is ready to use.
type Service struct{}

func (*Service) Toggle(value bool) bool {
	return !value
}

// Model holds the state shown by a ViewModel.
type Model struct {
	Value bool
}

// ViewModel derives display values from a Model through an injected Toggler.
type ViewModel struct {
	model   Model
	toggler Toggler
}

// NewViewModel creates a ViewModel with an explicit Toggler.
func NewViewModel(model Model, toggler Toggler) *ViewModel {
	return &ViewModel{model: model, toggler: toggler}
}

// NewViewModelFromLocator creates a ViewModel whose Toggler is resolved from
// l; see Resolve.
func NewViewModelFromLocator(l *locator.Locator, model Model, name string) (*ViewModel, error) {
	toggler, err := Resolve(l, name)
	if err != nil {
		return nil, err
	}
	return NewViewModel(model, toggler), nil
}

func (vm *ViewModel) Model() Model {
	return vm.model
}

// UpdatedValue returns the toggled model value.
func (vm *ViewModel) UpdatedValue() bool {
	return vm.toggler.Toggle(vm.model.Value)
}

// Bootstrap registers the default Service under name. An empty name
// registers nothing: the service is then created on first Resolve.
func Bootstrap(l *locator.Locator, name string) error {
	if name == "" {
		return nil
	}
	_, err := locator.RegisterNamed[Toggler](l, name, &Service{})
	return err
}

// Resolve returns the Toggler registered under name. With an empty name the
// type-keyed Toggler is returned, creating the default Service on first use.
func Resolve(l *locator.Locator, name string) (Toggler, error) {
	if name == "" {
		return locator.GetOrRegisterFunc(l, func() Toggler { return &Service{} }), nil
	}
	return locator.GetNamed[Toggler](l, name)
}
