package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores and artifact backends return
// these (optionally wrapped) so services can translate them into domain errors.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: entity or artifact does not exist
// - ErrConflict: unique constraint or foreign key violated
// - ErrExpired: session has passed its expiry
// - ErrUnavailable: backing service temporarily unreachable
var (
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrExpired     = errors.New("expired")
	ErrUnavailable = errors.New("unavailable")
)
