package domain

import "errors"

var (
	ErrDeviceNotFound    = errors.New("device not found")
	ErrProductNotFound   = errors.New("product not found")
	ErrPackageNotFound   = errors.New("package not found")
	ErrPackageDeleted    = errors.New("package has been deleted")
	ErrPackageExists     = errors.New("package version already exists for product")
	ErrTaskNotFound      = errors.New("ota task not found")
	ErrDeviceOTANotFound = errors.New("device ota record not found")
	ErrDeviceBusy        = errors.New("device already has an active ota participation")
	ErrAlreadyTerminal   = errors.New("device ota record is already in a terminal state")
	ErrStillActive       = errors.New("device ota record is still active")
)
