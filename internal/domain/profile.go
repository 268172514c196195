package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownProfile is returned when a profile kind name is not recognized
var ErrUnknownProfile = errors.New("unknown profile kind")

// ProfileKind selects the balance arithmetic and the persisted table
type ProfileKind string

const (
	ProfileAccount ProfileKind = "account"
	ProfileSaving  ProfileKind = "saving"
	ProfilePension ProfileKind = "pension"
)

// AllProfileKinds lists every kind in recompute order
func AllProfileKinds() []ProfileKind {
	return []ProfileKind{ProfileAccount, ProfileSaving, ProfilePension}
}

// ParseProfileKind accepts singular or plural names, case-insensitively
func ParseProfileKind(s string) (ProfileKind, error) {
	name := strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), "s")
	switch ProfileKind(name) {
	case ProfileAccount, ProfileSaving, ProfilePension:
		return ProfileKind(name), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownProfile, s)
}

func (k ProfileKind) String() string {
	return string(k)
}
