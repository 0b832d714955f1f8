package domain

import (
	"errors"
	"fmt"
)

type Role string

const (
	RoleVendor Role = "VENDOR"
	RoleRenter Role = "RENTER"
)

func ToRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleVendor, RoleRenter:
		return r, nil
	default:
		return "", errors.New("invalid role")
	}
}

// Principal is the authenticated caller supplied by the auth collaborator.
type Principal struct {
	ID   string
	Role Role
}

// VendorCapability authorizes vendor operations. The zero value authorizes nothing;
// build one with NewVendorCapability.
type VendorCapability struct {
	vendorID string
}

func NewVendorCapability(p Principal) (VendorCapability, error) {
	if p.ID == "" {
		return VendorCapability{}, fmt.Errorf("principal id is empty: %w", ErrUnauthorized)
	}
	if p.Role != RoleVendor {
		return VendorCapability{}, fmt.Errorf("role[%s] is not %s: %w", p.Role, RoleVendor, ErrForbidden)
	}

	return VendorCapability{vendorID: p.ID}, nil
}

func (c VendorCapability) VendorID() string {
	return c.vendorID
}

// Authorize checks that the capability acts for vendorID.
func (c VendorCapability) Authorize(vendorID string) error {
	if c.vendorID == "" {
		return fmt.Errorf("empty capability: %w", ErrUnauthorized)
	}
	if c.vendorID != vendorID {
		return fmt.Errorf("vendor[%s] may not act for vendor[%s]: %w", c.vendorID, vendorID, ErrForbidden)
	}
	return nil
}
