package store

import (
	"errors"
	"fmt"
	"math"

	"meme-hunter/internal/chain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	uniqueViolation = "23505"

	// maxStored is the largest amount either backend persists (bigint).
	maxStored = math.MaxInt64
)

func mapNotFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func mapWriteErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", ErrConflict, pgErr.ConstraintName)
	}
	return err
}

func int8Param(v uint64) (int64, error) {
	if v > maxStored {
		return 0, fmt.Errorf("%w: %d", ErrOutOfRange, v)
	}
	return int64(v), nil
}

func int8Params(vs ...uint64) ([]int64, error) {
	out := make([]int64, len(vs))
	for i, v := range vs {
		p, err := int8Param(v)
		if err != nil {
			return nil, err
		}
		out[i] = p
	}
	return out, nil
}

func addrParam(a chain.Address) string {
	if a.IsZero() {
		return ""
	}
	return a.String()
}

func addrVal(s string) (chain.Address, error) {
	if s == "" {
		return chain.Address{}, nil
	}
	return chain.ParseAddress(s)
}

func addrVals(dst []*chain.Address, src ...string) error {
	for i, s := range src {
		a, err := addrVal(s)
		if err != nil {
			return err
		}
		*dst[i] = a
	}
	return nil
}
