package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/billat883/ArtSync/api"
	"github.com/billat883/ArtSync/crypto/ethereum"
	"github.com/billat883/ArtSync/fhe"
	"github.com/billat883/ArtSync/pass"
	"github.com/billat883/ArtSync/types"
	"github.com/ethereum/go-ethereum/common"
)

// ResponseError is a non 200 answer of the API.
type ResponseError struct {
	Status  int
	Code    int
	Message string
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("%s: %d (code %d): %s", errCodeNot200, e.Status, e.Code, e.Message)
}

func responseError(data []byte, status int) error {
	rerr := &ResponseError{Status: status, Message: strings.TrimSpace(string(data))}
	var body struct {
		Error string `json:"error"`
		Code  int    `json:"code"`
	}
	if err := json.Unmarshal(data, &body); err == nil && body.Code != 0 {
		rerr.Code, rerr.Message = body.Code, body.Error
	}
	return rerr
}

// IsCode reports whether err is an API answer with the code of def.
func IsCode(err error, def api.Error) bool {
	var rerr *ResponseError
	return errors.As(err, &rerr) && rerr.Code == def.Code
}

// call performs the request and decodes a 200 answer into out.
func (c *HTTPclient) call(ctx context.Context, method string, body, out any, params []string, urlPath ...string) error {
	data, status, err := c.RequestContext(ctx, method, body, params, urlPath...)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return responseError(data, status)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("could not decode response: %w", err)
	}
	return nil
}

func exhibitPath(id types.ExhibitID, rest ...string) []string {
	return append([]string{"exhibits", id.String()}, rest...)
}

// Info returns the ledger description.
func (c *HTTPclient) Info(ctx context.Context) (*api.Info, error) {
	info := &api.Info{}
	return info, c.call(ctx, HTTPGET, nil, info, nil, api.InfoEndpoint)
}

// ScheduleNonce returns the nonce the next schedule request of organizer
// must carry.
func (c *HTTPclient) ScheduleNonce(ctx context.Context, organizer common.Address) (uint64, error) {
	resp := &api.ScheduleNonce{}
	if err := c.call(ctx, HTTPGET, nil, resp, nil, "organizers", organizer.Hex(), "nonce"); err != nil {
		return 0, err
	}
	return resp.Nonce, nil
}

// Schedule signs req as organizer, with its current nonce, and creates the
// exhibit.
func (c *HTTPclient) Schedule(ctx context.Context, info *api.Info, organizer *ethereum.SignKeys,
	req *api.ScheduleRequest,
) (types.ExhibitID, error) {
	nonce, err := c.ScheduleNonce(ctx, organizer.Address())
	if err != nil {
		return 0, err
	}
	req.Nonce = nonce
	sig, err := organizer.SignEthereum(api.ScheduleMessage(info.ChainID, info.Contract, req))
	if err != nil {
		return 0, err
	}
	req.Signature = sig
	resp := &api.ScheduleResponse{}
	if err := c.call(ctx, HTTPPOST, req, resp, nil, api.ExhibitsEndpoint); err != nil {
		return 0, err
	}
	return resp.ExhibitID, nil
}

// Exhibits lists up to limit exhibit headers starting at from.
func (c *HTTPclient) Exhibits(ctx context.Context, from types.ExhibitID, limit int) ([]*types.ExhibitHeader, error) {
	resp := &api.Exhibits{}
	params := []string{"from", from.String(), "limit", strconv.Itoa(limit)}
	if err := c.call(ctx, HTTPGET, nil, resp, params, api.ExhibitsEndpoint); err != nil {
		return nil, err
	}
	return resp.Exhibits, nil
}

// Exhibit returns the exhibit record and its status.
func (c *HTTPclient) Exhibit(ctx context.Context, id types.ExhibitID) (*api.ExhibitInfo, error) {
	ex := &api.ExhibitInfo{}
	return ex, c.call(ctx, HTTPGET, nil, ex, nil, exhibitPath(id)...)
}

// EncryptedAttendance returns the handle of the exhibit counter.
func (c *HTTPclient) EncryptedAttendance(ctx context.Context, id types.ExhibitID) (types.Handle, error) {
	att := &api.Attendance{}
	if err := c.call(ctx, HTTPGET, nil, att, nil, exhibitPath(id, "attendance")...); err != nil {
		return types.Handle{}, err
	}
	return att.EncryptedCount, nil
}

// CheckIn signs the attendee in with an encrypted input bound to it.
func (c *HTTPclient) CheckIn(ctx context.Context, info *api.Info, attendee *ethereum.SignKeys, id types.ExhibitID,
	handle types.Handle, proof []byte,
) error {
	sig, err := attendee.SignEthereum(api.CheckInMessage(info.ChainID, info.Contract, id, handle))
	if err != nil {
		return err
	}
	req := &api.CheckInRequest{Handle: handle, InputProof: proof, Signature: sig}
	return c.call(ctx, HTTPPOST, req, nil, nil, exhibitPath(id, "checkins")...)
}

// HasCheckedIn reports whether the address signed in.
func (c *HTTPclient) HasCheckedIn(ctx context.Context, id types.ExhibitID, attendee common.Address) (bool, error) {
	st := &api.CheckInStatus{}
	if err := c.call(ctx, HTTPGET, nil, st, nil, exhibitPath(id, "checkins", attendee.Hex())...); err != nil {
		return false, err
	}
	return st.CheckedIn, nil
}

// PassStatus returns the pass status of the address.
func (c *HTTPclient) PassStatus(ctx context.Context, id types.ExhibitID, attendee common.Address) (*api.PassStatus, error) {
	st := &api.PassStatus{}
	return st, c.call(ctx, HTTPGET, nil, st, nil, exhibitPath(id, "passes", attendee.Hex())...)
}

// MintPass mints the exhibit pass of the attendee.
func (c *HTTPclient) MintPass(ctx context.Context, info *api.Info, attendee *ethereum.SignKeys,
	id types.ExhibitID,
) (pass.TokenID, error) {
	sig, err := attendee.SignEthereum(api.MintPassMessage(info.ChainID, info.Contract, id))
	if err != nil {
		return 0, err
	}
	resp := &api.MintPassResponse{}
	if err := c.call(ctx, HTTPPOST, &api.MintPassRequest{Signature: sig}, resp, nil, exhibitPath(id, "passes")...); err != nil {
		return 0, err
	}
	return resp.TokenID, nil
}

// DecryptionService performs user decryption through the API.
type DecryptionService struct {
	c *HTTPclient
}

var _ fhe.DecryptionService = (*DecryptionService)(nil)

// DecryptionService returns the remote decryption service of the API.
func (c *HTTPclient) DecryptionService() *DecryptionService {
	return &DecryptionService{c: c}
}

// UserDecrypt forwards req. Refusals are fhe.ErrDecryptionDenied, anything
// else that prevents an answer is fhe.ErrUnavailable.
func (d *DecryptionService) UserDecrypt(ctx context.Context, req *fhe.UserDecryptRequest) (*fhe.UserDecryptResponse, error) {
	resp := &fhe.UserDecryptResponse{}
	err := d.c.call(ctx, HTTPPOST, req, resp, nil, api.DecryptEndpoint)
	switch {
	case err == nil:
		return resp, nil
	case IsCode(err, api.ErrDecryptionDenied):
		return nil, fmt.Errorf("%w: %v", fhe.ErrDecryptionDenied, err)
	default:
		return nil, fmt.Errorf("%w: %v", fhe.ErrUnavailable, err)
	}
}

// CounterSource exposes the exhibit counters of a remote ledger to the
// decryption client.
type CounterSource struct {
	c        *HTTPclient
	contract common.Address
}

// CounterSource returns the counters of the ledger described by info.
func (c *HTTPclient) CounterSource(info *api.Info) *CounterSource {
	return &CounterSource{c: c, contract: info.Contract}
}

func (s *CounterSource) Address() common.Address {
	return s.contract
}

func (s *CounterSource) EncryptedAttendance(ctx context.Context, id types.ExhibitID) (types.Handle, error) {
	return s.c.EncryptedAttendance(ctx, id)
}
