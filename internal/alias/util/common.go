package util

import (
	"os"

	"go.uber.org/zap"
)

// CloseFileFunc closes f and logs, rather than returns, the failure. Meant
// for defer on read-only or already-synced paths.
func CloseFileFunc(f *os.File) {
	if err := f.Close(); err != nil {
		zap.L().Error("close file", zap.String("file", f.Name()), zap.Error(err))
	}
}
