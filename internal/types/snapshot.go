package types

type Snapshot struct {
	Address   string `json:"address"`
	Outcome   string `json:"outcome"`
	Length    int    `json:"length"`
	Sha256    string `json:"sha256,omitempty"`
	Slot      uint64 `json:"slot"`
	Lamports  uint64 `json:"lamports"`
	Owner     string `json:"owner,omitempty"`
	BaseMint  string `json:"baseMint,omitempty"`
	QuoteMint string `json:"quoteMint,omitempty"`
	Error     string `json:"error,omitempty"`
	FetchedAt int64  `json:"fetchedAt"`
}
