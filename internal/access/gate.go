// Package access is the single authorization gate in front of submission
// reads and writes. Handlers extract the authenticated identity from the
// request and pass it explicitly into every check; nothing here reads
// ambient state.
package access

import (
	"github.com/google/uuid"

	"zoowatch/internal/identity"
	"zoowatch/pkg/domainerrors"
)

// Identity is the request-scoped authenticated principal. A nil *Identity
// means the request carried no valid session.
type Identity struct {
	UserID uuid.UUID
	Role   identity.Role
	Name   string
	Login  string
}

// Gate evaluates role and ownership rules. All methods return nil to proceed,
// a CodeUnauthorized error when no identity is present, or a CodeForbidden
// error when the identity is not allowed.
type Gate struct{}

func NewGate() *Gate {
	return &Gate{}
}

func (g *Gate) require(ident *Identity) error {
	if ident == nil {
		return domainerrors.New(domainerrors.CodeUnauthorized, "authentication required")
	}
	if !ident.Role.Valid() {
		return domainerrors.New(domainerrors.CodeForbidden, "insufficient permissions")
	}
	return nil
}

// CanSubmit allows only keepers to create submissions.
func (g *Gate) CanSubmit(ident *Identity) error {
	if err := g.require(ident); err != nil {
		return err
	}
	switch ident.Role {
	case identity.RoleKeeper:
		return nil
	case identity.RoleAdmin, identity.RoleDoctor:
		return domainerrors.New(domainerrors.CodeForbidden, "only keepers can submit observations")
	default:
		return domainerrors.New(domainerrors.CodeForbidden, "insufficient permissions")
	}
}

// CanListOwn allows a keeper to list their own submissions. authorID is the
// author whose submissions are requested.
func (g *Gate) CanListOwn(ident *Identity, authorID uuid.UUID) error {
	if err := g.require(ident); err != nil {
		return err
	}
	switch ident.Role {
	case identity.RoleKeeper:
		if ident.UserID != authorID {
			return domainerrors.New(domainerrors.CodeForbidden, "keepers can only list their own submissions")
		}
		return nil
	case identity.RoleAdmin, identity.RoleDoctor:
		return domainerrors.New(domainerrors.CodeForbidden, "insufficient permissions")
	default:
		return domainerrors.New(domainerrors.CodeForbidden, "insufficient permissions")
	}
}

// CanListAll allows reviewers (admin, doctor) to list every submission.
func (g *Gate) CanListAll(ident *Identity) error {
	if err := g.require(ident); err != nil {
		return err
	}
	switch ident.Role {
	case identity.RoleAdmin, identity.RoleDoctor:
		return nil
	case identity.RoleKeeper:
		return domainerrors.New(domainerrors.CodeForbidden, "insufficient permissions")
	default:
		return domainerrors.New(domainerrors.CodeForbidden, "insufficient permissions")
	}
}

// CanView allows any authenticated identity to read a single submission.
func (g *Gate) CanView(ident *Identity) error {
	return g.require(ident)
}

// CanDownloadReport allows any authenticated identity to download a report.
// Authentication-only: keepers may download reports they did not author.
func (g *Gate) CanDownloadReport(ident *Identity) error {
	return g.require(ident)
}

// CanEdit allows the keeper author or any reviewer to update structured data.
func (g *Gate) CanEdit(ident *Identity, authorID uuid.UUID) error {
	if err := g.require(ident); err != nil {
		return err
	}
	switch ident.Role {
	case identity.RoleAdmin, identity.RoleDoctor:
		return nil
	case identity.RoleKeeper:
		if ident.UserID != authorID {
			return domainerrors.New(domainerrors.CodeForbidden, "keepers can only edit their own submissions")
		}
		return nil
	default:
		return domainerrors.New(domainerrors.CodeForbidden, "insufficient permissions")
	}
}

// CanComment allows reviewers (admin, doctor) to attach comments.
func (g *Gate) CanComment(ident *Identity) error {
	if err := g.require(ident); err != nil {
		return err
	}
	switch ident.Role {
	case identity.RoleAdmin, identity.RoleDoctor:
		return nil
	case identity.RoleKeeper:
		return domainerrors.New(domainerrors.CodeForbidden, "insufficient permissions")
	default:
		return domainerrors.New(domainerrors.CodeForbidden, "insufficient permissions")
	}
}
