package errors

func InvalidPath(err error, path string) error {
	return newError(ErrInvalidPath, "normalize", path, err)
}
