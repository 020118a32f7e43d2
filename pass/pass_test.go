package pass

import (
	"context"
	"testing"
	"time"

	"github.com/billat883/ArtSync/storage"
	"github.com/billat883/ArtSync/types"
	"github.com/ethereum/go-ethereum/common"
	qt "github.com/frankban/quicktest"
	"github.com/vocdoni/arbo/memdb"
)

var (
	owner    = common.HexToAddress("0x00000000000000000000000000000000000000aa")
	minter   = common.HexToAddress("0x00000000000000000000000000000000000000bb")
	attendee = common.HexToAddress("0x00000000000000000000000000000000000000cc")
)

func newTestToken(c *qt.C) (*Token, *storage.Storage) {
	stg := storage.New(memdb.New())
	tk, err := New(stg, owner, func() time.Time { return time.Unix(1_700_000_000, 0) })
	c.Assert(err, qt.IsNil)
	return tk, stg
}

func TestMinterAdministration(t *testing.T) {
	c := qt.New(t)
	tk, stg := newTestToken(c)

	got, err := tk.Owner()
	c.Assert(err, qt.IsNil)
	c.Assert(got, qt.Equals, owner)
	m, err := tk.Minter()
	c.Assert(err, qt.IsNil)
	c.Assert(m, qt.Equals, common.Address{})

	c.Assert(tk.SetMinter(attendee, minter), qt.Equals, ErrNotOwner)
	c.Assert(tk.SetMinter(owner, common.Address{}), qt.Equals, ErrZeroAddress)
	c.Assert(tk.SetMinter(owner, minter), qt.IsNil)
	m, err = tk.Minter()
	c.Assert(err, qt.IsNil)
	c.Assert(m, qt.Equals, minter)

	// reopening keeps the stored administration
	again, err := New(stg, attendee, nil)
	c.Assert(err, qt.IsNil)
	got, err = again.Owner()
	c.Assert(err, qt.IsNil)
	c.Assert(got, qt.Equals, owner)

	_, err = New(storage.New(memdb.New()), common.Address{}, nil)
	c.Assert(err, qt.Equals, ErrZeroAddress)
}

func TestMint(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()
	tk, _ := newTestToken(c)

	_, err := tk.Mint(ctx, minter, attendee, 1)
	c.Assert(err, qt.Equals, ErrNotMinter)
	c.Assert(tk.SetMinter(owner, minter), qt.IsNil)
	_, err = tk.Mint(ctx, owner, attendee, 1)
	c.Assert(err, qt.Equals, ErrNotMinter)

	id, err := tk.Issuer(minter).Mint(ctx, attendee, 1)
	c.Assert(err, qt.IsNil)
	c.Assert(id, qt.Equals, TokenID(1))

	_, err = tk.Mint(ctx, minter, attendee, 1)
	c.Assert(err, qt.Equals, ErrAlreadyMinted)

	id2, err := tk.Mint(ctx, minter, attendee, 2)
	c.Assert(err, qt.IsNil)
	c.Assert(id2, qt.Equals, TokenID(2))

	holder, err := tk.OwnerOf(id)
	c.Assert(err, qt.IsNil)
	c.Assert(holder, qt.Equals, attendee)
	ex, err := tk.ExhibitOf(id2)
	c.Assert(err, qt.IsNil)
	c.Assert(ex, qt.Equals, types.ExhibitID(2))
	balance, err := tk.BalanceOf(attendee)
	c.Assert(err, qt.IsNil)
	c.Assert(balance, qt.Equals, uint64(2))
	uri, err := tk.TokenURI(id2)
	c.Assert(err, qt.IsNil)
	c.Assert(uri, qt.Equals, "artsync://exhibit/2/pass/2")
	found, err := tk.TokenFor(1, attendee)
	c.Assert(err, qt.IsNil)
	c.Assert(found, qt.Equals, id)

	_, err = tk.OwnerOf(99)
	c.Assert(err, qt.Equals, ErrTokenNotFound)
	_, err = tk.TokenFor(3, attendee)
	c.Assert(err, qt.Equals, ErrTokenNotFound)
	_, err = tk.BalanceOf(common.Address{})
	c.Assert(err, qt.Equals, ErrZeroAddress)
}
