package pipeline

// State is a step of a sync run.
type State string

const (
	StateInit         State = "INIT"
	StateFetching     State = "FETCHING"
	StateFiltering    State = "FILTERING"
	StateReconciling  State = "RECONCILING"
	StateAssetCaching State = "ASSET_CACHING"
	StateStaging      State = "STAGING"
	StateFlushing     State = "FLUSHING"
	StateFinalFlush   State = "FINAL_FLUSH"
	StateDone         State = "DONE"

	StateFetchFailed  State = "FETCH_FAILED"
	StateLookupFailed State = "LOOKUP_FAILED"
	StateFlushFailed  State = "FLUSH_FAILED"
	StateCancelled    State = "CANCELLED"
)

// Terminal reports whether no further transition follows s.
func (s State) Terminal() bool {
	switch s {
	case StateDone, StateFetchFailed, StateLookupFailed, StateFlushFailed, StateCancelled:
		return true
	}
	return false
}

// Failed reports whether s is a terminal failure.
func (s State) Failed() bool {
	return s.Terminal() && s != StateDone
}
