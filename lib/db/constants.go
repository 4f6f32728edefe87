package db

import "errors"

const RevisionNotFoundError = "revision not found"

var ErrRevisionNotFound = errors.New(RevisionNotFoundError)
