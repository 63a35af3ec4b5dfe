package bootstrap

import "errors"

var errRequiredDatabase = errors.New("DATABASE_URL is required outside dev environments")
