package paymaster

import "time"

// Paymaster is a stored paymaster contract registration.
type Paymaster struct {
	ID        string    `db:"id"`
	Address   string    `db:"address"`
	ChainID   int64     `db:"chain_id"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Public is the API representation of a paymaster.
type Public struct {
	ID      string `json:"id"`
	Address string `json:"address"`
	ChainID int64  `json:"chain_id"`
}

// Public strips storage bookkeeping from p.
func (p Paymaster) Public() Public {
	return Public{
		ID:      p.ID,
		Address: p.Address,
		ChainID: p.ChainID,
	}
}
