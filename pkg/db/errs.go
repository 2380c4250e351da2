package db

import "errors"

var (
	// database errs.
	ErrDBExists      = errors.New("database exists")
	ErrDBNotFound    = errors.New("database not found")
	ErrDriverUnknown = errors.New("unknown database driver")
)

var (
	// records errs.
	ErrRecordDuplicate     = errors.New("record already exists")
	ErrRecordIDNotProvided = errors.New("no id provided")
	ErrRecordNotFound      = errors.New("no record found")
	ErrRecordScan          = errors.New("scan record")
)

var (
	// users and keys errs.
	ErrUserNotFound   = errors.New("user not found")
	ErrAPIKeyNotFound = errors.New("api key not found")
)
