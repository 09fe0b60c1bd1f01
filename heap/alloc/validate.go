package alloc

import (
	"errors"

	"github.com/joshuapare/heapkit/heap/verify"
)

// Validate checks the used-bytes counter against the arena size, and with
// Options.DeepValidate also walks the block chain. A violation is logged,
// passed to the corruption hook, and reported as false; it is never fatal.
func (a *ImplicitAllocator) Validate() bool {
	a.stats.ValidateCalls++

	err := verify.UsedBytes(a.used, len(a.seg))
	if err == nil && a.deep && a.seg != nil {
		err = verify.AllInvariants(a.seg)
	}
	if err != nil {
		a.reportCorruption(err)
		return false
	}
	return true
}

// Check runs every invariant check and returns the first violation as a
// *verify.ValidationError. Unlike Validate it does not log or call the hook.
func (a *ImplicitAllocator) Check() error {
	if a.seg == nil {
		return ErrNotInitialized
	}
	if err := verify.UsedBytes(a.used, len(a.seg)); err != nil {
		return err
	}
	return verify.AllInvariants(a.seg)
}

func (a *ImplicitAllocator) reportCorruption(err error) {
	var verr *verify.ValidationError
	if !errors.As(err, &verr) {
		verr = &verify.ValidationError{Kind: verify.KindChain, Message: err.Error(), Offset: -1}
	}
	a.stats.CorruptionReports++
	a.log.Error("heap corruption detected",
		"kind", string(verr.Kind),
		"offset", verr.Offset,
		"message", verr.Message,
		"used", a.used,
		"arena", len(a.seg),
	)
	if a.onCorruption != nil {
		a.onCorruption(verr)
	}
}
