package result

// Validator describes one member of the validator set.
type Validator struct {
	Address          string `json:"address"`
	PubKey           PubKey `json:"pub_key"`
	VotingPower      int64  `json:"voting_power,string"`
	ProposerPriority int64  `json:"proposer_priority,string"`
}

// Validators is the response of the `validators` call: one page of the
// validator set at a given height plus the server-reported total count.
type Validators struct {
	BlockHeight int64       `json:"block_height,string"`
	Validators  []Validator `json:"validators"`
	Count       int64       `json:"count,string"`
	Total       int64       `json:"total,string"`
}
