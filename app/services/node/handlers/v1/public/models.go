package public

import (
	"github.com/ardanlabs/gossipchain/business/sys/validate"
	"github.com/ardanlabs/gossipchain/foundation/blockchain/database"
)

// address is the document used to admit a new address.
type address struct {
	Hash      []byte `json:"hash" validate:"required"`
	Name      string `json:"name" validate:"required"`
	PublicKey []byte `json:"publicKey" validate:"required"`
}

// Validate checks the data in the model is considered clean.
func (a address) Validate() error {
	return validate.Check(a)
}

func (a address) toDB() database.Address {
	return database.Address{
		Hash:      a.Hash,
		Name:      a.Name,
		PublicKey: a.PublicKey,
	}
}

// tx is the document used to submit a signed transaction.
type tx struct {
	Hash       []byte `json:"hash" validate:"required"`
	Payload    []byte `json:"payload"`
	SenderHash []byte `json:"senderHash" validate:"required"`
	Signature  []byte `json:"signature" validate:"required"`
	TimeStamp  int64  `json:"timestamp" validate:"gte=0"`
}

// Validate checks the data in the model is considered clean.
func (t tx) Validate() error {
	return validate.Check(t)
}

func (t tx) toDB() database.Transaction {
	return database.Transaction{
		Hash:       t.Hash,
		Payload:    t.Payload,
		SenderHash: t.SenderHash,
		Signature:  t.Signature,
		TimeStamp:  t.TimeStamp,
	}
}

// status is the document returned by the write endpoints.
type status struct {
	Status string `json:"status"`
}
