package ledger

import "meme-hunter/internal/chain"

// Authority is whoever approves a debit: a transaction signer, or the
// program itself proving it derived the account from seeds and a bump.
type Authority struct {
	signer    chain.Address
	programID chain.Address
	bump      uint8
	seeds     [][]byte
	derived   bool
}

func Signer(addr chain.Address) Authority {
	return Authority{signer: addr}
}

func ProgramSigner(programID chain.Address, bump uint8, seeds ...[]byte) Authority {
	return Authority{programID: programID, bump: bump, seeds: seeds, derived: true}
}

// Authorizes reports whether the authority may debit addr.
func (a Authority) Authorizes(addr chain.Address) bool {
	if !a.derived {
		return !a.signer.IsZero() && a.signer == addr
	}
	got, err := chain.CreateAddress(a.programID, a.bump, a.seeds...)
	return err == nil && got == addr
}

func (a Authority) Address() chain.Address {
	if !a.derived {
		return a.signer
	}
	got, err := chain.CreateAddress(a.programID, a.bump, a.seeds...)
	if err != nil {
		return chain.Address{}
	}
	return got
}
