package estate

import (
	"errors"
	"fmt"

	"github.com/amanah/faraid-engine/faraid"
)

var (
	// ErrNotFound is returned when a referenced record doesn't exist.
	ErrNotFound = errors.New("not found")

	// ErrAssetNotPending is returned when reviewing an already reviewed asset.
	ErrAssetNotPending = errors.New("asset is not pending review")

	// ErrAssetNotApproved is returned when calculating for an unapproved asset.
	ErrAssetNotApproved = errors.New("asset is not approved")
)

// AssetStatusError reports an asset in the wrong review state.
type AssetStatusError struct {
	AssetID string
	Status  AssetStatus // actual
	Want    AssetStatus // required by the operation
}

func (e *AssetStatusError) Error() string {
	return fmt.Sprintf("asset %s is %s, want %s", e.AssetID, e.Status, e.Want)
}

func (e *AssetStatusError) Unwrap() error {
	if e.Want == AssetPending {
		return ErrAssetNotPending
	}
	return ErrAssetNotApproved
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConflict returns true if the record is in the wrong state for the operation.
func IsConflict(err error) bool {
	return errors.Is(err, ErrAssetNotPending) || errors.Is(err, ErrAssetNotApproved)
}

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return faraid.IsClientError(err)
}
