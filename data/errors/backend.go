package errors

func StreamReadFailure(err error, path string) error {
	return newError(ErrStreamRead, "read", path, err)
}

func StreamWriteFailure(err error, path string) error {
	return newError(ErrStreamWrite, "write", path, err)
}

func Persistence(err error, op, path string) error {
	return newError(ErrPersistence, op, path, err)
}
