package file

import "errors"

var (
	ErrInvalidPath        = errors.New("file: invalid path")
	ErrInvalidConfig      = errors.New("file: invalid configuration")
	ErrFailedToLoadConfig = errors.New("file: failed to load AWS config")
	ErrFailedToWriteFile  = errors.New("file: failed to write file")
	ErrFailedToDeleteFile = errors.New("file: failed to delete file")
	ErrContentTypeNotAllowed = errors.New("file: content type is not allowed")
)
