package errs

import (
	"github.com/pkg/errors"
)

// ========== Config 相关错误 ==========

var (
	ErrInvalidConfig = errors.New("invalid config")
)

func ErrReadConfigFileFailed(err error) error {
	return errors.Wrap(err, "read config file failed")
}

func ErrUnmarshalConfigFailed(err error) error {
	return errors.Wrap(err, "unmarshal config failed")
}

func ErrInvalidConfigField(field string, format string, args ...interface{}) error {
	return errors.Wrapf(ErrInvalidConfig, "%s: "+format, append([]interface{}{field}, args...)...)
}

// ========== Runtime 相关错误 ==========

func ErrCreateDispatcherFailed(err error) error {
	return errors.Wrap(err, "create dispatcher failed")
}

func ErrShutdownTimeout(err error) error {
	return errors.Wrap(err, "wait actors to stop")
}
