package component

import (
	"errors"
	"fmt"
)

// Error kinds reported by the Builder.
const (
	KindDuplicateComponent = "DuplicateComponent"
	KindInvalidEntity      = "InvalidEntity"
)

// ErrNilComponent is returned by Builder.Add for a nil component.
var ErrNilComponent = errors.New("nil component")

// DuplicateComponentError is returned by Builder.Add when a component of the
// same kind is already pending for the entity.
type DuplicateComponentError struct {
	Component Kind
}

func (e *DuplicateComponentError) Error() string {
	return fmt.Sprintf("%s(%s): entity already has a %s component", KindDuplicateComponent, e.Component, e.Component)
}

// Kind returns KindDuplicateComponent.
func (e *DuplicateComponentError) Kind() string {
	return KindDuplicateComponent
}

// InvalidEntityError is returned by Builder.Finish when there is nothing to
// attach or the pinned entity does not exist.
type InvalidEntityError struct {
	// Entity is the pinned id, or 0 when none was pinned.
	Entity int64

	// Reason describes what was wrong.
	Reason string
}

func (e *InvalidEntityError) Error() string {
	if e.Entity != 0 {
		return fmt.Sprintf("%s: entity %d: %s", KindInvalidEntity, e.Entity, e.Reason)
	}
	return fmt.Sprintf("%s: %s", KindInvalidEntity, e.Reason)
}

// Kind returns KindInvalidEntity.
func (e *InvalidEntityError) Kind() string {
	return KindInvalidEntity
}

// IsDuplicateComponent returns true if err is a duplicate component error.
// Uses errors.As to handle wrapped errors.
func IsDuplicateComponent(err error) bool {
	var de *DuplicateComponentError
	return errors.As(err, &de)
}

// IsInvalidEntity returns true if err is an invalid entity error.
func IsInvalidEntity(err error) bool {
	var ie *InvalidEntityError
	return errors.As(err, &ie)
}
