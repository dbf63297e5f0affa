package core

// FetchState tells a "no data" listing apart from a failed fetch.
type FetchState string

const (
	FetchOK     FetchState = "ok"
	FetchEmpty  FetchState = "empty"
	FetchFailed FetchState = "failed"
)

// ListingMeta describes the outcome of a listing.
// Count is the number of returned items, Total the number of records before filtering.
type ListingMeta struct {
	State FetchState `json:"state"`
	Count int        `json:"count"`
	Total int        `json:"total"`
	Error string     `json:"error,omitempty"`
}

func NewListingMeta(count, total int) ListingMeta {
	state := FetchOK
	if count == 0 {
		state = FetchEmpty
	}
	return ListingMeta{State: state, Count: count, Total: total}
}

func FailedListingMeta(msg string) ListingMeta {
	return ListingMeta{State: FetchFailed, Error: msg}
}

func (lm ListingMeta) Failed() bool { return lm.State == FetchFailed }
