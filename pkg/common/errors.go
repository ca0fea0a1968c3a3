package common

import (
	"database/sql"
	"errors"
)

var (
	// ErrNoRows is returned by ScanOne when the query matches nothing.
	ErrNoRows = sql.ErrNoRows

	// ErrUnknownRelation is returned when a dotted column names a relation the
	// model does not declare.
	ErrUnknownRelation = errors.New("unknown relation")

	// ErrNoModel is returned by terminal operations on a handle without a model.
	ErrNoModel = errors.New("query has no model")
)
