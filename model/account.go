package model

// Account is the record kept by the remote accounts API. The whole record is
// replaced on every write.
//
// The console never does arithmetic on ID, but it must be a JSON integer:
// routes carry it as /accounts/{id} parsed with strconv.Atoi, and a string id
// from the API fails decoding instead of silently becoming 0.
type Account struct {
	ID                int     `json:"id"`
	AccountHolderName string  `json:"accountHolderName"`
	Balance           float64 `json:"balance"`
}

// NewAccountRequest is the body of POST /accounts. The remote service assigns
// the id.
type NewAccountRequest struct {
	AccountHolderName string  `json:"accountHolderName"`
	Balance           float64 `json:"balance"`
}
